// Package globe maps the city catalog onto the landing-page globe.
//
// Rendering is done in the browser by a third-party globe library. This
// package only produces its input (point markers, as GeoJSON) and resolves
// a selected city into the camera target and side panel the page shows.
package globe

import (
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/evently-app/evently/internal/query"
	"github.com/evently-app/evently/internal/view"
	"github.com/evently-app/evently/pkg/analytics"
)

// Marker defaults.
const (
	MarkerSize  = 0.5
	MarkerColor = "#ef4444"
)

// Camera defaults for a fly-to.
const (
	CameraAltitude   = 2.0
	CameraDurationMs = 1000
)

// Placeholder is the first entry of the city dropdown.
const Placeholder = "-- Select a city --"

// Marker is one renderable point.
type Marker struct {
	CityID int     `json:"city_id"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Size   float64 `json:"size"`
	Color  string  `json:"color"`
	Label  string  `json:"label"`
}

// Markers converts cities to markers, skipping any with out-of-range
// coordinates.
func Markers(cities []analytics.City) []Marker {
	markers := make([]Marker, 0, len(cities))
	for _, c := range cities {
		if !c.ValidCoordinates() {
			continue
		}
		markers = append(markers, Marker{
			CityID: c.ID,
			Lat:    c.Latitude,
			Lng:    c.Longitude,
			Size:   MarkerSize,
			Color:  MarkerColor,
			Label:  c.Name + ", " + c.Country,
		})
	}
	return markers
}

// FeatureCollection encodes markers as GeoJSON points (lng, lat).
func FeatureCollection(markers []Marker) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(markers))}
	for _, m := range markers {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       strconv.Itoa(m.CityID),
			Geometry: geom.NewPoint(geom.XY).MustSetCoords(geom.Coord{m.Lng, m.Lat}),
			Properties: map[string]interface{}{
				"city_id": m.CityID,
				"label":   m.Label,
				"size":    m.Size,
				"color":   m.Color,
			},
		})
	}
	return fc
}

// MarshalMarkers returns the GeoJSON document for cities.
func MarshalMarkers(cities []analytics.City) ([]byte, error) {
	b, err := json.Marshal(FeatureCollection(Markers(cities)))
	if err != nil {
		return nil, eris.Wrap(err, "globe: marshal markers")
	}
	return b, nil
}

// CameraTarget is where the globe flies to after a selection.
type CameraTarget struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Altitude   float64 `json:"altitude"`
	DurationMs int     `json:"duration_ms"`
}

// Selection is a selected city with its camera target and panel.
type Selection struct {
	City   analytics.City
	Camera CameraTarget
	Panel  Panel
}

// Select resolves id against cities. An unknown id selects nothing.
func Select(cities []analytics.City, id int) (Selection, bool) {
	for _, c := range cities {
		if c.ID != id {
			continue
		}
		return Selection{
			City: c,
			Camera: CameraTarget{
				Lat:        c.Latitude,
				Lng:        c.Longitude,
				Altitude:   CameraAltitude,
				DurationMs: CameraDurationMs,
			},
			Panel: NewPanel(c),
		}, true
	}
	return Selection{}, false
}

// Panel is the side panel for a selected city. Values are the backend's,
// only scaled for display.
type Panel struct {
	Name           string
	Country        string
	Continent      string
	Timezone       string
	Population     string
	AnnualTourists string
	HotelRooms     string
	AvgHotelPrice  string
	Coordinates    string
	Summary        string
}

// NewPanel renders c: population and tourists in millions with one
// decimal, hotel rooms in thousands, coordinates to four decimals.
func NewPanel(c analytics.City) Panel {
	return Panel{
		Name:           c.Name,
		Country:        c.Country,
		Continent:      c.Continent,
		Timezone:       c.Timezone,
		Population:     millions(c.Population) + "M",
		AnnualTourists: millions(c.AnnualTourists) + "M",
		HotelRooms:     strconv.FormatFloat(float64(c.HotelRooms)/1e3, 'f', 0, 64) + "K",
		AvgHotelPrice:  "$" + strconv.FormatFloat(c.AvgHotelPriceUSD, 'f', -1, 64),
		Coordinates: strconv.FormatFloat(c.Latitude, 'f', 4, 64) + "°, " +
			strconv.FormatFloat(c.Longitude, 'f', 4, 64) + "°",
		Summary: c.Name + " welcomes " + millions(c.AnnualTourists) + " million tourists every year.",
	}
}

func millions(n int64) string {
	return strconv.FormatFloat(float64(n)/1e6, 'f', 1, 64)
}

// Options returns the city dropdown: the placeholder, then one entry per city.
func Options(cities []analytics.City, selectedID int) []view.Option {
	opts := make([]view.Option, 0, len(cities)+1)
	opts = append(opts, view.Option{Value: "", Label: Placeholder, Selected: selectedID == 0})
	for _, c := range cities {
		opts = append(opts, view.Option{
			Value:    strconv.Itoa(c.ID),
			Label:    c.Name + ", " + c.Country,
			Selected: c.ID == selectedID,
		})
	}
	return opts
}

// Landing is the globe landing page model.
type Landing struct {
	Status    view.Status
	Error     *view.ErrorPanel
	Markers   []Marker
	Options   []view.Option
	Selection *Selection
}

// NewLanding builds the landing page from the city query and the selected id.
func NewLanding(cities query.Result[[]analytics.City], selectedID int, apiURL string) Landing {
	status, err := view.Combine(cities)
	l := Landing{Status: status}
	switch status {
	case view.StatusFailed:
		l.Error = view.NewErrorPanel("cities", err, apiURL)
		l.Options = Options(nil, 0)
		return l
	case view.StatusLoading:
		l.Options = Options(nil, 0)
		return l
	}

	l.Markers = Markers(cities.Data)
	l.Options = Options(cities.Data, selectedID)
	if sel, ok := Select(cities.Data, selectedID); ok {
		l.Selection = &sel
	}
	return l
}
