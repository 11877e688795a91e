package domain

import (
	"regexp"
	"sort"
	"strconv"
)

// Target is one monitored search endpoint with its own filter rules.
// Targets are owned by the config manager and replaced wholesale on
// reload, never mutated in place.
type Target struct {
	URL     string
	Filters FilterSpec
}

// Level is one AND-ed filter stage: a candidate title must contain at
// least one of the level's keywords (case-insensitive) to pass it.
type Level struct {
	Name     string
	Keywords []string
}

// FilterSpec is an ordered sequence of levels. A spec with zero levels
// accepts everything.
type FilterSpec []Level

var levelNameRe = regexp.MustCompile(`^level(\d+)$`)

// ValidLevelName reports whether a level key follows the ordered-level
// naming convention (level1, level2, ...).
func ValidLevelName(name string) bool {
	return levelNameRe.MatchString(name)
}

// MakeFilterSpec builds an ordered spec from raw level-name -> keywords
// rules. Keys not following the naming convention are dropped; ordering
// is by the numeric suffix, not lexicographic (level10 sorts after level9).
func MakeFilterSpec(rules map[string][]string) FilterSpec {
	spec := make(FilterSpec, 0, len(rules))
	for name, keywords := range rules {
		if !ValidLevelName(name) {
			continue
		}
		spec = append(spec, Level{Name: name, Keywords: keywords})
	}
	sort.Slice(spec, func(i, j int) bool {
		return levelNum(spec[i].Name) < levelNum(spec[j].Name)
	})
	return spec
}

func levelNum(name string) int {
	m := levelNameRe.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
