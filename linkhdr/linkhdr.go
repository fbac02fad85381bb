// Package linkhdr parses RFC 8288 Link header values into ordered link records.
//
// Each record holds the link's attributes, the query parameters of its target
// URL and the target URL itself under the "url" key, so a caller can read
// a "page" or "cursor" value without parsing the URL again.
package linkhdr

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	attrRel = "rel"
	attrURL = "url"
)

// ; name="value" or ; name=token
var attrRegex = regexp.MustCompile(`;\s*([^\s=;"]+)\s*=\s*(?:"([^"]*)"|([^\s;,"]+))`)

// Record is the assembled output for one link.
type Record map[string]string

// URL returns the link target.
func (r Record) URL() string {
	return r[attrURL]
}

type Link struct {
	Rel    Relation
	Record Record
}

// Links is the ordered result of parsing one header value.
// A relation may appear more than once.
type Links []Link

// Get returns the first record with the given relation.
func (l Links) Get(rel Relation) (Record, bool) {
	for _, link := range l {
		if link.Rel == rel {
			return link.Record, true
		}
	}
	return nil, false
}

// All returns every record with the given relation, in header order.
func (l Links) All(rel Relation) []Record {
	var ret []Record
	for _, link := range l {
		if link.Rel == rel {
			ret = append(ret, link.Record)
		}
	}
	return ret
}

// Parse parses a raw Link header value using the default options.
func Parse(raw string) (Links, error) {
	return (&Options{}).links(raw)
}

// Split splits a raw header value into one segment per link.
// The split point is a comma outside of a quoted string and outside of
// a <target> that is followed, after optional whitespace, by '<'.
// An empty value yields one empty segment.
func Split(raw string) []string {
	var segments []string
	var quoted, inTarget bool
	start := 0
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '<':
			if !quoted {
				inTarget = true
			}
		case '>':
			inTarget = false
		case '"':
			if !inTarget {
				quoted = !quoted
			}
		case ',':
			if quoted || inTarget {
				continue
			}
			j := i + 1
			for j < len(raw) && (raw[j] == ' ' || raw[j] == '\t') {
				j++
			}
			if j < len(raw) && raw[j] == '<' {
				segments = append(segments, raw[start:i])
				start = j
				i = j - 1
			}
		}
	}
	return append(segments, raw[start:])
}

// ParseSegment extracts the target URL and the attributes of one segment.
// Text that does not look like an attribute is ignored.
func ParseSegment(seg string) (string, Record, error) {
	s := strings.TrimSpace(seg)
	if !strings.HasPrefix(s, "<") {
		return "", nil, &SegmentError{Segment: seg, Err: ErrMalformedSegment}
	}
	end := strings.IndexByte(s, '>')
	if end == -1 {
		return "", nil, &SegmentError{Segment: seg, Err: ErrMalformedSegment}
	}
	target, rest := s[1:end], s[end+1:]
	if strings.IndexByte(target, '<') != -1 || hasTarget(rest) {
		return "", nil, &SegmentError{Segment: seg, Err: ErrMalformedSegment}
	}

	attrs := make(Record)
	for _, m := range attrRegex.FindAllStringSubmatch(rest, -1) {
		value := m[2]
		if value == "" {
			value = m[3]
		}
		attrs[m[1]] = value
	}
	return target, attrs, nil
}

// hasTarget reports whether s contains a '<' outside of a quoted string.
func hasTarget(s string) bool {
	var quoted bool
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			quoted = !quoted
		case '<':
			if !quoted {
				return true
			}
		}
	}
	return false
}

// Query returns the decoded query parameters of rawURL.
// The last value wins when a parameter repeats.
// A URL that does not parse is treated as having no query.
func Query(rawURL string) map[string]string {
	ret := map[string]string{}
	u, err := url.Parse(rawURL)
	if err != nil || u.RawQuery == "" {
		return ret
	}
	// ParseQuery still returns the pairs it could decode on error.
	values, _ := url.ParseQuery(u.RawQuery)
	for k, v := range values {
		if len(v) > 0 {
			ret[k] = v[len(v)-1]
		}
	}
	return ret
}

// merge adds the query parameters that are not already attributes.
func merge(attrs Record, query map[string]string) {
	for k, v := range query {
		if _, ok := attrs[k]; !ok {
			attrs[k] = v
		}
	}
}

func (o *Options) parseLink(seg string) (Link, error) {
	target, attrs, err := ParseSegment(seg)
	if err != nil {
		return Link{}, err
	}

	// An explicit url attribute is never overwritten. Setting it before the
	// merge keeps a "url" query parameter from replacing the target.
	if _, ok := attrs[attrURL]; !ok {
		attrs[attrURL] = target
	}
	merge(attrs, Query(target))

	// rel comes from the merged record, so a query parameter can supply it.
	rawRel, ok := attrs[attrRel]
	delete(attrs, attrRel)
	if !ok || strings.TrimSpace(rawRel) == "" {
		return Link{}, &SegmentError{Segment: seg, Err: ErrMissingRelation}
	}
	rel := ParseRelation(rawRel)
	if o.Strict && !rel.IsCanonical() {
		return Link{}, &SegmentError{Segment: seg, Err: ErrUnknownRelation}
	}

	return Link{Rel: rel, Record: attrs}, nil
}

func (o *Options) links(raw string) (Links, error) {
	segments := Split(raw)
	ret := make(Links, 0, len(segments))
	for _, seg := range segments {
		link, err := o.parseLink(seg)
		if err != nil {
			return nil, err
		}
		ret = append(ret, link)
	}
	return ret, nil
}
