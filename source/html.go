package source

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/devon-mar/linkpager/linkhdr"
)

const (
	typeHTML = "html"

	// Elements that may carry a link relation.
	htmlLinkSelector = "link[rel][href], a[rel][href]"
)

// HTML walks paginated HTML documents. The links of a page are those
// of its Link header followed by the link and anchor elements with a
// rel attribute, in document order.
type HTML struct {
	URL string `cfg:"url" validate:"required,url"`
	// Selects the item elements. The item name is the element text.
	ItemSelector string `cfg:"item_selector" validate:"required"`
	// Read from each item element for the item URL.
	URLAttr  string `cfg:"url_attr"`
	MaxPages int    `cfg:"max_pages" validate:"gte=0"`

	LinkConfig `cfg:",squash"`

	client *http.Client
}

func (h *HTML) init() error {
	if h.URLAttr == "" {
		h.URLAttr = "href"
	}
	h.client = &http.Client{Timeout: httpTimeout}
	return nil
}

// Pages implements Source
func (h *HTML) Pages(done chan struct{}) (chan *Page, chan error) {
	return follow(h.URL, h.MaxPages, h.fetch, done)
}

func (h *HTML) fetch(url string) (*Page, string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("error making new request %s: %w", url, err)
	}
	req.Header.Set("Accept", "text/html")
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("error sending request %s: %w", url, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, "", err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("error parsing document %s: %w", url, err)
	}

	hdr, err := withDocumentLinks(resp.Header, htmlLinkValue(doc))
	if err != nil {
		return nil, "", fmt.Errorf("error parsing link header of %s: %w", url, err)
	}
	links, err := h.entries(hdr)
	if err != nil {
		return nil, "", fmt.Errorf("error parsing links of %s: %w", url, err)
	}
	next, err := linkhdr.Next(hdr)
	if err != nil {
		return nil, "", fmt.Errorf("error parsing links of %s: %w", url, err)
	}

	page := &Page{URL: url, Links: links, Items: []*Item{}}
	doc.Find(h.ItemSelector).Each(func(_ int, s *goquery.Selection) {
		itm := &Item{Name: strings.TrimSpace(s.Text())}
		itm.URL, _ = s.Attr(h.URLAttr)
		page.Items = append(page.Items, itm)
	})
	return page, next, nil
}

// withDocumentLinks returns a copy of h with value appended to its Link header.
func withDocumentLinks(h http.Header, value string) (http.Header, error) {
	ret := h.Clone()
	if ret == nil {
		ret = http.Header{}
	}
	if value == "" {
		return ret, nil
	}
	values := ret.Values(linkhdr.Key)
	switch len(values) {
	case 0:
		ret.Set(linkhdr.Key, value)
	case 1:
		ret.Set(linkhdr.Key, values[0]+", "+value)
	default:
		return nil, fmt.Errorf("%w: got %d", linkhdr.ErrMultipleValues, len(values))
	}
	return ret, nil
}

// htmlLinkValue renders the link elements of doc as a Link header value,
// one link per relation of an element.
func htmlLinkValue(doc *goquery.Document) string {
	elems := []linkElem{}
	doc.Find(htmlLinkSelector).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		rels, _ := s.Attr("rel")
		typ, _ := s.Attr("type")
		title, _ := s.Attr("title")
		hreflang, _ := s.Attr("hreflang")
		for _, rel := range strings.Fields(rels) {
			elems = append(elems, linkElem{href: href, rel: rel, typ: typ, title: title, hreflang: hreflang})
		}
	})
	return linkValue(elems)
}
