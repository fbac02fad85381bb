package linkhdr

import (
	"errors"
	"reflect"
	"testing"
)

const (
	giteaNext = "https://gitea.com/api/v1/repos/gitea/go-sdk/issues?page=2&state=all"
	giteaLast = "https://gitea.com/api/v1/repos/gitea/go-sdk/issues?page=20&state=all"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		in   string
		want Links
	}{
		"first page": {
			in: `<` + giteaNext + `>; rel="next",<` + giteaLast + `>; rel="last"`,
			want: Links{
				{Rel: RelNext, Record: Record{"url": giteaNext, "page": "2", "state": "all"}},
				{Rel: RelLast, Record: Record{"url": giteaLast, "page": "20", "state": "all"}},
			},
		},
		"next and prev": {
			in: `<https://api.example.com/resource?page=2>; rel="next", <https://api.example.com/resource?page=1>; rel="prev"`,
			want: Links{
				{Rel: RelNext, Record: Record{"url": "https://api.example.com/resource?page=2", "page": "2"}},
				{Rel: RelPrev, Record: Record{"url": "https://api.example.com/resource?page=1", "page": "1"}},
			},
		},
		"docker registry": {
			in: `</v2/library/alpine/tags/list?last=2.7&n=2>; rel="next"`,
			want: Links{
				{Rel: RelNext, Record: Record{"url": "/v2/library/alpine/tags/list?last=2.7&n=2", "last": "2.7", "n": "2"}},
			},
		},
		"explicit attribute wins": {
			in: `<https://x/?page=2>; rel="next"; page="5"`,
			want: Links{
				{Rel: RelNext, Record: Record{"url": "https://x/?page=2", "page": "5"}},
			},
		},
		"explicit url attribute": {
			in: `<https://x/?page=2>; rel="next"; url="https://y/"`,
			want: Links{
				{Rel: RelNext, Record: Record{"url": "https://y/", "page": "2"}},
			},
		},
		"url query parameter": {
			in: `<https://x/?url=abc>; rel="next"`,
			want: Links{
				{Rel: RelNext, Record: Record{"url": "https://x/?url=abc"}},
			},
		},
		"rel query parameter": {
			in: `<https://x/?rel=self>; rel="first"`,
			want: Links{
				{Rel: RelFirst, Record: Record{"url": "https://x/?rel=self"}},
			},
		},
		"rel from query": {
			in: `<https://x/?rel=next&page=4>`,
			want: Links{
				{Rel: RelNext, Record: Record{"url": "https://x/?rel=next&page=4", "page": "4"}},
			},
		},
		"quote in url": {
			in: `<https://x/?q=">; rel="next", <https://y/>; rel="prev"`,
			want: Links{
				{Rel: RelNext, Record: Record{"url": `https://x/?q="`, "q": `"`}},
				{Rel: RelPrev, Record: Record{"url": "https://y/"}},
			},
		},
		"quoted comma": {
			in: `<https://x/1>; rel="next"; title="a, <b>", <https://x/2>; rel="prev"`,
			want: Links{
				{Rel: RelNext, Record: Record{"url": "https://x/1", "title": "a, <b>"}},
				{Rel: RelPrev, Record: Record{"url": "https://x/2"}},
			},
		},
		"unknown relation": {
			in: `<https://x/items/1>; rel="item", <https://x/items/2>; rel="item"`,
			want: Links{
				{Rel: Relation("item"), Record: Record{"url": "https://x/items/1"}},
				{Rel: Relation("item"), Record: Record{"url": "https://x/items/2"}},
			},
		},
		"relation case": {
			in:   `<https://x/>; rel="NEXT"`,
			want: Links{{Rel: RelNext, Record: Record{"url": "https://x/"}}},
		},
		"token value": {
			in:   `<https://x/>;rel=last`,
			want: Links{{Rel: RelLast, Record: Record{"url": "https://x/"}}},
		},
		"spaces around equals": {
			in:   `<https://x/> ; rel = "prev"`,
			want: Links{{Rel: RelPrev, Record: Record{"url": "https://x/"}}},
		},
		"percent encoded query": {
			in:   `<https://x/?cursor=a%2Bb%3D&q=one+two>; rel="next"`,
			want: Links{{Rel: RelNext, Record: Record{"url": "https://x/?cursor=a%2Bb%3D&q=one+two", "cursor": "a+b=", "q": "one two"}}},
		},
		"repeated query parameter": {
			in:   `<https://x/?page=1&page=3>; rel="next"`,
			want: Links{{Rel: RelNext, Record: Record{"url": "https://x/?page=1&page=3", "page": "3"}}},
		},
		"repeated attribute": {
			in:   `<https://x/>; rel="next"; title="a"; title="b"`,
			want: Links{{Rel: RelNext, Record: Record{"url": "https://x/", "title": "b"}}},
		},
		"invalid url": {
			in:   `<:::gitea.com/api/v1/repos/gitea/go-sdk/issues?page=2&state=all>; rel="next"`,
			want: Links{{Rel: RelNext, Record: Record{"url": ":::gitea.com/api/v1/repos/gitea/go-sdk/issues?page=2&state=all"}}},
		},
		"trailing junk": {
			in:   `<https://x/>; rel="next"; junk`,
			want: Links{{Rel: RelNext, Record: Record{"url": "https://x/"}}},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			have, err := Parse(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(have, tc.want) {
				t.Errorf("got %#v, want %#v", have, tc.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    error
		segment string
	}{
		"empty": {
			in:   "",
			want: ErrMalformedSegment,
		},
		"no brackets": {
			in:      `rel="next"`,
			want:    ErrMalformedSegment,
			segment: `rel="next"`,
		},
		"unterminated url": {
			in:      `<; rel="next"`,
			want:    ErrMalformedSegment,
			segment: `<; rel="next"`,
		},
		"two urls": {
			in:      `<https://x/a><https://x/b>; rel="next"`,
			want:    ErrMalformedSegment,
			segment: `<https://x/a><https://x/b>; rel="next"`,
		},
		"no rel": {
			in:      `<https://x/>`,
			want:    ErrMissingRelation,
			segment: `<https://x/>`,
		},
		"empty rel": {
			in:      `<https://x/>; rel=""`,
			want:    ErrMissingRelation,
			segment: `<https://x/>; rel=""`,
		},
		"second segment": {
			in:      `<https://x/1>; rel="next", <https://x/2>; title="t"`,
			want:    ErrMissingRelation,
			segment: `<https://x/2>; title="t"`,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			have, err := Parse(tc.in)
			if have != nil {
				t.Errorf("expected no links, got %#v", have)
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("got error %v, want %v", err, tc.want)
			}
			var segErr *SegmentError
			if !errors.As(err, &segErr) {
				t.Fatalf("expected a *SegmentError, got %T", err)
			}
			if segErr.Segment != tc.segment {
				t.Errorf("got segment %q, want %q", segErr.Segment, tc.segment)
			}
		})
	}
}

func TestSplit(t *testing.T) {
	tests := map[string]struct {
		in   string
		want []string
	}{
		"empty": {
			in:   "",
			want: []string{""},
		},
		"no space": {
			in:   `<a>; rel="next",<b>; rel="prev"`,
			want: []string{`<a>; rel="next"`, `<b>; rel="prev"`},
		},
		"space": {
			in:   "<a>; rel=\"next\", \t<b>",
			want: []string{`<a>; rel="next"`, `<b>`},
		},
		"quoted": {
			in:   `<a>; title="x, <y>"`,
			want: []string{`<a>; title="x, <y>"`},
		},
		"quote in url": {
			in:   `<a?q=">; rel="next", <b>`,
			want: []string{`<a?q=">; rel="next"`, `<b>`},
		},
		"comma in url": {
			in:   `<a?x=1, <b>`,
			want: []string{`<a?x=1, <b>`},
		},
		"comma without url": {
			in:   `<a>; rel="next", prev`,
			want: []string{`<a>; rel="next", prev`},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if have := Split(tc.in); !reflect.DeepEqual(have, tc.want) {
				t.Errorf("got %#v, want %#v", have, tc.want)
			}
		})
	}
}

func TestQuery(t *testing.T) {
	tests := map[string]struct {
		in   string
		want map[string]string
	}{
		"no query":    {in: "https://x/", want: map[string]string{}},
		"empty query": {in: "https://x/?", want: map[string]string{}},
		"invalid":     {in: "::", want: map[string]string{}},
		"relative":    {in: "/v2/tags?n=2", want: map[string]string{"n": "2"}},
		"bad escape": {
			in:   "https://x/?a=%zz&b=1",
			want: map[string]string{"b": "1"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if have := Query(tc.in); !reflect.DeepEqual(have, tc.want) {
				t.Errorf("got %#v, want %#v", have, tc.want)
			}
		})
	}
}

func TestParseRelation(t *testing.T) {
	tests := map[string]struct {
		want      Relation
		canonical bool
	}{
		"next":     {want: RelNext, canonical: true},
		"Prev":     {want: RelPrev, canonical: true},
		" first ":  {want: RelFirst, canonical: true},
		"LAST":     {want: RelLast, canonical: true},
		"self":     {want: Relation("self")},
		"prefetch": {want: Relation("prefetch")},
	}

	for in, tc := range tests {
		t.Run(in, func(t *testing.T) {
			have := ParseRelation(in)
			if have != tc.want {
				t.Errorf("got %q, want %q", have, tc.want)
			}
			if have.IsCanonical() != tc.canonical {
				t.Errorf("got canonical=%t, want %t", have.IsCanonical(), tc.canonical)
			}
		})
	}
}

func TestLinksGet(t *testing.T) {
	links, err := Parse(`<https://x/1>; rel="item", <https://x/2>; rel="item", <https://x/3>; rel="next"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec, ok := links.Get(RelNext); !ok || rec.URL() != "https://x/3" {
		t.Errorf("got %#v, want next record", rec)
	}
	if _, ok := links.Get(RelPrev); ok {
		t.Errorf("expected no prev link")
	}

	want := []Record{{"url": "https://x/1"}, {"url": "https://x/2"}}
	if have := links.All("item"); !reflect.DeepEqual(have, want) {
		t.Errorf("got %#v, want %#v", have, want)
	}
}
