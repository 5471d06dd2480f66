package router

import (
	"net/url"
	"strings"
)

// QueryParam is the query parameter that selects the initial view.
const QueryParam = "view"

// Resolve picks the initial view for rawURL: the ?view= parameter first,
// then the #fragment, then def. Values that do not name a valid view are
// skipped, and an unparsable URL resolves to def.
func Resolve(rawURL string, valid func(ViewID) bool, def ViewID) ViewID {
	u, err := url.Parse(rawURL)
	if err != nil {
		return def
	}
	if id := ViewID(strings.TrimSpace(u.Query().Get(QueryParam))); id != "" && valid(id) {
		return id
	}
	if id := ViewID(strings.TrimPrefix(u.Fragment, "#")); id != "" && valid(id) {
		return id
	}
	return def
}
