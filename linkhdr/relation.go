package linkhdr

import "strings"

// Relation is the value of a link's rel attribute.
type Relation string

const (
	RelNext  Relation = "next"
	RelPrev  Relation = "prev"
	RelFirst Relation = "first"
	RelLast  Relation = "last"
)

var canonical = []Relation{RelNext, RelPrev, RelFirst, RelLast}

// ParseRelation resolves s to one of the canonical relations, ignoring case.
// Any other token is returned as is.
func ParseRelation(s string) Relation {
	s = strings.TrimSpace(s)
	for _, r := range canonical {
		if strings.EqualFold(s, string(r)) {
			return r
		}
	}
	return Relation(s)
}

// IsCanonical reports whether r is next, prev, first or last.
func (r Relation) IsCanonical() bool {
	for _, c := range canonical {
		if r == c {
			return true
		}
	}
	return false
}
