package view

import (
	"embed"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed content/*.yaml
var contentFS embed.FS

// Card is a titled block of static copy.
type Card struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Details     []string `yaml:"details"`
}

// About is the content of the about page.
type About struct {
	Title     string `yaml:"title"`
	Mission   string `yaml:"mission"`
	Vision    string `yaml:"vision"`
	Audiences []Card `yaml:"audiences"`
	Values    []Card `yaml:"values"`
}

// MetricGroup lists the metrics tracked under one category.
type MetricGroup struct {
	Category string   `yaml:"category"`
	Metrics  []string `yaml:"metrics"`
}

// Methodology is the content of the methodology page.
type Methodology struct {
	Title          string        `yaml:"title"`
	ETL            []Card        `yaml:"etl"`
	DesignThinking []Card        `yaml:"design_thinking"`
	Metrics        []MetricGroup `yaml:"metrics"`
}

// CaseStudy is one curated event write-up.
type CaseStudy struct {
	Slug        string `yaml:"slug"`
	Title       string `yaml:"title"`
	City        string `yaml:"city"`
	Country     string `yaml:"country"`
	Date        string `yaml:"date"`
	Duration    string `yaml:"duration"`
	Description string `yaml:"description"`
	Stats       struct {
		Visitors       string `yaml:"visitors"`
		EconomicImpact string `yaml:"economic_impact"`
		JobsCreated    string `yaml:"jobs_created"`
		HotelOccupancy string `yaml:"hotel_occupancy"`
		PriceIncrease  string `yaml:"price_increase"`
		ROI            string `yaml:"roi"`
	} `yaml:"stats"`
	Insights  []string `yaml:"insights"`
	Breakdown []struct {
		Category   string `yaml:"category"`
		Amount     string `yaml:"amount"`
		Percentage int    `yaml:"percentage"`
	} `yaml:"breakdown"`
	Timeline []struct {
		Phase   string `yaml:"phase"`
		Metrics string `yaml:"metrics"`
	} `yaml:"timeline"`
}

// CaseStudies is the content of the case studies page with one study selected.
type CaseStudies struct {
	Studies  []CaseStudy
	Selected CaseStudy
}

// Content holds the static pages.
type Content struct {
	About       About
	Methodology Methodology
	CaseStudies []CaseStudy
}

var (
	contentOnce sync.Once
	content     *Content
	contentErr  error
)

// LoadContent parses the embedded static content once.
func LoadContent() (*Content, error) {
	contentOnce.Do(func() {
		var c Content
		if err := decodeContent("content/about.yaml", &c.About); err != nil {
			contentErr = err
			return
		}
		if err := decodeContent("content/methodology.yaml", &c.Methodology); err != nil {
			contentErr = err
			return
		}
		if err := decodeContent("content/case_studies.yaml", &c.CaseStudies); err != nil {
			contentErr = err
			return
		}
		if len(c.CaseStudies) == 0 {
			contentErr = eris.New("view: no case studies")
			return
		}
		content = &c
	})
	return content, contentErr
}

func decodeContent(name string, out any) error {
	b, err := contentFS.ReadFile(name)
	if err != nil {
		return eris.Wrapf(err, "view: read %s", name)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return eris.Wrapf(err, "view: parse %s", name)
	}
	return nil
}

// SelectCaseStudy returns the page with the study named slug selected. An
// unknown or empty slug selects the first study.
func (c *Content) SelectCaseStudy(slug string) CaseStudies {
	page := CaseStudies{Studies: c.CaseStudies, Selected: c.CaseStudies[0]}
	for _, s := range c.CaseStudies {
		if s.Slug == slug {
			page.Selected = s
			break
		}
	}
	return page
}
