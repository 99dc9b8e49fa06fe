package view

import (
	"sort"
	"strings"
)

const imageDir = "/static/img/"

var typeImages = map[string]string{
	"sports":         "stadium.svg",
	"concert":        "concert.svg",
	"music":          "concert.svg",
	"festival":       "festival.svg",
	"music festival": "festival.svg",
	"cultural":       "lantern.svg",
	"culture":        "lantern.svg",
	"conference":     "conference.svg",
	"technology":     "conference.svg",
	"business":       "conference.svg",
}

// Name keywords take precedence over the event type.
var nameImages = []struct {
	keywords []string
	image    string
}{
	{[]string{"marathon"}, "marathon.svg"},
	{[]string{"wimbledon", "champions league", "roland garros"}, "stadium.svg"},
	{[]string{"paris fashion week", "mad cool"}, "concert.svg"},
	{[]string{"design week"}, "conference.svg"},
	{[]string{"berlin festival of lights"}, "lantern.svg"},
}

const defaultImage = "festival.svg"

// EventImage picks the card image for an event.
func EventImage(eventType, name string) string {
	lower := strings.ToLower(name)
	for _, n := range nameImages {
		for _, kw := range n.keywords {
			if strings.Contains(lower, kw) {
				return imageDir + n.image
			}
		}
	}
	if img, ok := typeImages[strings.ToLower(strings.TrimSpace(eventType))]; ok {
		return imageDir + img
	}
	return imageDir + defaultImage
}

// EventImageFiles lists every file EventImage can point at, relative to the
// image directory.
func EventImageFiles() []string {
	set := map[string]bool{defaultImage: true}
	for _, img := range typeImages {
		set[img] = true
	}
	for _, n := range nameImages {
		set[n.image] = true
	}
	files := make([]string, 0, len(set))
	for f := range set {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}
