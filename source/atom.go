package source

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/devon-mar/linkpager/linkhdr"
	"github.com/mmcdole/gofeed/atom"
)

const (
	typeAtom = "atom"

	// The default relation of an Atom link element.
	atomDefaultRel = "alternate"
)

// Atom walks a paged Atom feed (RFC 5005). The links live in the
// feed document rather than the response header.
type Atom struct {
	URL      string `cfg:"url" validate:"required,url"`
	MaxPages int    `cfg:"max_pages" validate:"gte=0"`

	LinkConfig `cfg:",squash"`

	client *http.Client
}

func (a *Atom) init() error {
	a.client = &http.Client{Timeout: httpTimeout}
	return nil
}

// Pages implements Source
func (a *Atom) Pages(done chan struct{}) (chan *Page, chan error) {
	return follow(a.URL, a.MaxPages, a.fetch, done)
}

func (a *Atom) fetch(url string) (*Page, string, error) {
	resp, err := a.client.Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("error sending request %s: %w", url, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, "", err
	}
	return parseAtomPage(url, resp.Body, a.opts)
}

func parseAtomPage(url string, r io.Reader, opts *linkhdr.Options) (*Page, string, error) {
	fp := &atom.Parser{}
	feed, err := fp.Parse(r)
	if err != nil {
		return nil, "", fmt.Errorf("error parsing feed %s: %w", url, err)
	}

	raw := atomLinkValue(feed.Links)
	page := &Page{URL: url, Items: make([]*Item, 0, len(feed.Entries))}
	var next string
	if raw != "" {
		if page.Links, err = opts.ParseValue(raw); err != nil {
			return nil, "", fmt.Errorf("error parsing links of %s: %w", url, err)
		}
		links, err := linkhdr.Parse(raw)
		if err != nil {
			return nil, "", err
		}
		if rec, ok := links.Get(linkhdr.RelNext); ok {
			next = rec.URL()
		}
	}

	for _, e := range feed.Entries {
		itm := &Item{Name: e.Title}
		for _, l := range e.Links {
			if l.Rel == "" || l.Rel == atomDefaultRel {
				itm.URL = l.Href
				break
			}
		}
		page.Items = append(page.Items, itm)
	}
	return page, next, nil
}

// atomLinkValue renders link elements as a Link header value.
func atomLinkValue(links []*atom.Link) string {
	elems := make([]linkElem, 0, len(links))
	for _, l := range links {
		rel := l.Rel
		if rel == "" {
			rel = atomDefaultRel
		}
		elems = append(elems, linkElem{href: l.Href, rel: rel, typ: l.Type, title: l.Title, hreflang: l.Hreflang})
	}
	return linkValue(elems)
}

// A link found in a document body.
type linkElem struct {
	href     string
	rel      string
	typ      string
	title    string
	hreflang string
}

// linkValue renders elems as a Link header value. Quotes in a target are
// percent-encoded and other elements that need escaping are skipped.
func linkValue(elems []linkElem) string {
	parts := make([]string, 0, len(elems))
	for _, l := range elems {
		if l.href == "" || l.rel == "" || strings.ContainsAny(l.href, "<>") || strings.ContainsRune(l.rel, '"') {
			continue
		}
		b := &strings.Builder{}
		b.WriteString("<" + strings.ReplaceAll(l.href, `"`, "%22") + ">")
		writeAttr(b, "rel", l.rel)
		if l.typ != "" {
			writeAttr(b, "type", l.typ)
		}
		if l.title != "" {
			writeAttr(b, "title", l.title)
		}
		if l.hreflang != "" {
			writeAttr(b, "hreflang", l.hreflang)
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, ", ")
}

// Values are written verbatim, so any containing a quote are dropped.
func writeAttr(b *strings.Builder, name string, value string) {
	if strings.ContainsRune(value, '"') {
		return
	}
	b.WriteString("; ")
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(value)
	b.WriteString(`"`)
}
