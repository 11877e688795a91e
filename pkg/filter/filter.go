// Package filter implements keyword filtering of listing titles against
// per-target ordered level rules.
package filter

import (
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/adscope/pkg/domain"
)

// Accepts reports whether a title passes every level of the spec.
// Matching is case-insensitive substring containment, AND across levels,
// OR within a level. No stemming, no tokenization; compatibility with the
// existing rule files depends on keeping it this simple.
//
// An empty or nil spec accepts everything. A level without keywords is
// treated as automatically satisfied.
func Accepts(spec domain.FilterSpec, title string) bool {
	if len(spec) == 0 {
		return true
	}

	titleLower := strings.ToLower(title)
	for _, level := range spec {
		if len(level.Keywords) == 0 {
			lgr.Printf("[DEBUG] filter level %q has no keywords, skipped", level.Name)
			continue
		}
		if !levelMatches(level.Keywords, titleLower) {
			return false // short-circuit on the first failing level
		}
	}
	return true
}

func levelMatches(keywords []string, titleLower string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(titleLower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
