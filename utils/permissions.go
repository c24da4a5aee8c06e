package utils

import "strings"

// MatchesPermission reports whether a granted permission covers the required one.
//
// Permission ids have the form "resource:action". A granted id may use "*" in
// either position:
//   - "*" or "*:*" grants everything
//   - "sales:*" grants every action on sales
//   - "*:read" grants read on every resource
func MatchesPermission(granted, required string) bool {
	if granted == required {
		return true
	}
	if granted == "*" || granted == "*:*" {
		return true
	}

	g := strings.SplitN(granted, ":", 2)
	q := strings.SplitN(required, ":", 2)
	if len(g) != 2 || len(q) != 2 {
		return false
	}

	resourceMatch := g[0] == "*" || g[0] == q[0]
	actionMatch := g[1] == "*" || g[1] == q[1]
	return resourceMatch && actionMatch
}

// HasPermission checks a set of granted permissions against a required one.
func HasPermission(granted []string, required string) bool {
	for _, p := range granted {
		if MatchesPermission(p, required) {
			return true
		}
	}
	return false
}
