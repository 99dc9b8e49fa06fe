package web

import "strings"

// Route is one client-facing page.
type Route struct {
	Pattern string
	Title   string
	// Nav is the header label; empty routes are not listed in the header.
	Nav string
	// FullScreen pages render without the header and footer.
	FullScreen bool
}

var routes = []Route{
	{Pattern: "/", Title: "Evently", FullScreen: true},
	{Pattern: "/dashboard", Title: "Dashboard", Nav: "Dashboard"},
	{Pattern: "/events", Title: "Events", Nav: "Events"},
	{Pattern: "/events/{id}", Title: "Event Details"},
	{Pattern: "/compare", Title: "Compare", Nav: "Compare"},
	{Pattern: "/simulator", Title: "What-If Simulator", Nav: "Simulator"},
	{Pattern: "/predict", Title: "Event Impact Predictor", Nav: "Predict"},
	{Pattern: "/about", Title: "About Us", Nav: "About"},
	{Pattern: "/methodology", Title: "Methodology", Nav: "Methodology"},
	{Pattern: "/case-studies", Title: "Case Studies", Nav: "Case Studies"},
}

// Routes returns the page route table.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Lookup returns the route whose pattern matches path.
func Lookup(path string) (Route, bool) {
	for _, r := range routes {
		if match(r.Pattern, path) {
			return r, true
		}
	}
	return Route{}, false
}

// FullScreen reports whether path renders without chrome. Only the root does.
func FullScreen(path string) bool {
	r, ok := Lookup(path)
	return ok && r.FullScreen
}

// NavItem is one header link.
type NavItem struct {
	Href   string
	Label  string
	Active bool
}

// Nav returns the header links with the one for path marked active.
func Nav(path string) []NavItem {
	var items []NavItem
	for _, r := range routes {
		if r.Nav == "" {
			continue
		}
		active := path == r.Pattern || strings.HasPrefix(path, r.Pattern+"/")
		items = append(items, NavItem{Href: r.Pattern, Label: r.Nav, Active: active})
	}
	return items
}

// match compares a chi-style pattern against a path segment by segment.
func match(pattern, path string) bool {
	if pattern == "/" || path == "/" {
		return pattern == path
	}
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], "{") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != xs[i] {
			return false
		}
	}
	return true
}
