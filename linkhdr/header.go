package linkhdr

import (
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/exp/maps"
)

const (
	// Key is the header map key holding the raw value.
	Key = "link"
	// ParsedKey holds the parsed entries when KeepOriginal is set.
	ParsedKey = "parsed_link"
)

// Header is a response header map. Values are either strings,
// []string or Entries.
type Header map[string]interface{}

// FromHTTP converts h, lowercasing the keys.
// A key with several values maps to a []string.
func FromHTTP(h http.Header) Header {
	ret := make(Header, len(h))
	for k, v := range h {
		k = strings.ToLower(k)
		switch len(v) {
		case 0:
		case 1:
			ret[k] = v[0]
		default:
			ret[k] = append([]string(nil), v...)
		}
	}
	return ret
}

// Entry is one transformed link.
type Entry struct {
	Rel   Relation    `json:"rel"`
	Value interface{} `json:"value"`
}

type Entries []Entry

// Get returns the value of the first entry with the given relation.
func (e Entries) Get(rel Relation) (interface{}, bool) {
	for _, entry := range e {
		if entry.Rel == rel {
			return entry.Value, true
		}
	}
	return nil, false
}

// Records returns the values that are Records, keeping their order.
// With the identity transform that is every entry.
func (e Entries) Records() Links {
	ret := make(Links, 0, len(e))
	for _, entry := range e {
		if r, ok := entry.Value.(Record); ok {
			ret = append(ret, Link{Rel: entry.Rel, Record: r})
		}
	}
	return ret
}

// ParseValue parses raw and runs the transform on every link.
func (o *Options) ParseValue(raw string) (Entries, error) {
	if o == nil {
		o = &Options{}
	}
	links, err := o.links(raw)
	if err != nil {
		return nil, err
	}
	fn := o.transform()
	ret := make(Entries, len(links))
	for i, l := range links {
		ret[i] = Entry{Rel: l.Rel, Value: fn(l.Rel, l.Record)}
	}
	return ret, nil
}

// Apply parses the link value of h and returns a copy of h holding the result.
// h itself is never modified, so on error the caller still has the original.
//
// Without KeepOriginal the entries replace the raw value under Key,
// otherwise they are stored under ParsedKey.
// A missing or already parsed value is returned unchanged.
func (o *Options) Apply(h Header) (Header, error) {
	if o == nil {
		o = &Options{}
	}
	ret := maps.Clone(h)
	if ret == nil {
		ret = Header{}
	}

	var raw string
	switch v := h[Key].(type) {
	case nil, Entries:
		return ret, nil
	case string:
		raw = v
	case []string:
		if len(v) != 1 {
			return nil, fmt.Errorf("%w: got %d", ErrMultipleValues, len(v))
		}
		raw = v[0]
	default:
		return nil, fmt.Errorf("unsupported %s header value of type %T", Key, v)
	}

	entries, err := o.ParseValue(raw)
	if err != nil {
		return nil, err
	}

	if o.KeepOriginal {
		ret[ParsedKey] = entries
	} else {
		ret[Key] = entries
	}
	return ret, nil
}
