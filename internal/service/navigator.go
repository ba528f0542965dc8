package service

import "strings"

// Route is one top-level view.
type Route struct {
	Path  string
	Label string
	Key   string
}

var routes = []Route{
	{Path: "/feed", Label: "Feed", Key: "1"},
	{Path: "/creators", Label: "Creators", Key: "2"},
	{Path: "/wallet", Label: "Wallet", Key: "3"},
	{Path: "/search", Label: "Search", Key: "4"},
	{Path: "/communities", Label: "Communities", Key: "5"},
	{Path: "/events", Label: "Events", Key: "6"},
	{Path: "/profile", Label: "Profile", Key: "7"},
	{Path: "/tips", Label: "Tips", Key: "8"},
}

// Navigator maps view paths to labels.
type Navigator struct{}

// Routes lists the top-level views in tab order.
func (Navigator) Routes() []Route {
	return append([]Route(nil), routes...)
}

// Label returns the label for path. Sub-paths resolve to their parent, so
// "/creators/<id>" is "Creators". Unknown paths return "".
func (n Navigator) Label(path string) string {
	r, ok := n.Lookup(path)
	if !ok {
		return ""
	}
	return r.Label
}

// Lookup finds the route that owns path.
func (Navigator) Lookup(path string) (Route, bool) {
	path = "/" + strings.Trim(strings.TrimSpace(path), "/")
	for _, r := range routes {
		if path == r.Path || strings.HasPrefix(path, r.Path+"/") {
			return r, true
		}
	}
	return Route{}, false
}

// Index returns the tab position of path, or -1.
func (n Navigator) Index(path string) int {
	r, ok := n.Lookup(path)
	if !ok {
		return -1
	}
	for i, x := range routes {
		if x.Path == r.Path {
			return i
		}
	}
	return -1
}
