package linkhdr

import (
	"fmt"
	"net/http"
	"strconv"
)

const pageKey = "page"

// Next returns the target of the first next link, or "" if there is none.
func Next(h http.Header) (string, error) {
	rec, err := next(h)
	if err != nil || rec == nil {
		return "", err
	}
	return rec.URL(), nil
}

// NextPage returns the page query parameter of the first next link.
// It returns 0 if there is no next link or it has no page parameter.
func NextPage(h http.Header) (int, error) {
	rec, err := next(h)
	if err != nil || rec == nil {
		return 0, err
	}
	p, ok := rec[pageKey]
	if !ok {
		return 0, nil
	}
	page, err := strconv.Atoi(p)
	if err != nil {
		return 0, fmt.Errorf("invalid page %q in next link: %w", p, err)
	}
	return page, nil
}

func next(h http.Header) (Record, error) {
	vals := h.Values(Key)
	switch len(vals) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("%w: got %d", ErrMultipleValues, len(vals))
	}
	if vals[0] == "" {
		return nil, nil
	}
	links, err := Parse(vals[0])
	if err != nil {
		return nil, err
	}
	rec, _ := links.Get(RelNext)
	return rec, nil
}
