package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/devon-mar/linkpager/linkhdr"
	"golang.org/x/oauth2"
)

const (
	typeHTTP = "http"

	defaultNameKey = "name"
	defaultURLKey  = "url"

	httpTimeout = 10 * time.Second
)

// HTTP walks a JSON API that paginates with the Link header.
type HTTP struct {
	URL string `cfg:"url" validate:"required,url"`
	// Sent as a bearer token.
	Token string `cfg:"token"`
	// The key of the item array in the response object.
	// If empty, the response must be an array.
	ItemsKey string `cfg:"items_key"`
	NameKey  string `cfg:"name_key"`
	URLKey   string `cfg:"url_key"`
	MaxPages int    `cfg:"max_pages" validate:"gte=0"`

	LinkConfig `cfg:",squash"`

	client *http.Client
}

func (h *HTTP) init() error {
	if h.NameKey == "" {
		h.NameKey = defaultNameKey
	}
	if h.URLKey == "" {
		h.URLKey = defaultURLKey
	}

	if h.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: h.Token})
		h.client = oauth2.NewClient(context.Background(), ts)
		h.client.Timeout = httpTimeout
	} else {
		h.client = &http.Client{Timeout: httpTimeout}
	}
	return nil
}

// Pages implements Source
func (h *HTTP) Pages(done chan struct{}) (chan *Page, chan error) {
	return walk(h.URL, h.MaxPages, h.get, h.LinkConfig.entries, h.decode, done)
}

func (h *HTTP) get(url string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error making new request %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")
	return h.client.Do(req)
}

func (h *HTTP) decode(r io.Reader) ([]*Item, error) {
	var body interface{}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, fmt.Errorf("error unmarshalling response: %w", err)
	}

	if h.ItemsKey != "" {
		obj, ok := body.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("expected a JSON object, got %T", body)
		}
		body = obj[h.ItemsKey]
	}
	list, ok := body.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a JSON array, got %T", body)
	}

	items := make([]*Item, 0, len(list))
	for i, v := range list {
		switch v := v.(type) {
		case string:
			items = append(items, &Item{Name: v})
		case map[string]interface{}:
			name, _ := v[h.NameKey].(string)
			url, _ := v[h.URLKey].(string)
			items = append(items, &Item{Name: name, URL: url})
		default:
			return nil, fmt.Errorf("item %d: unsupported type %T", i, v)
		}
	}
	return items, nil
}

// walk fetches start and follows the next link of every response.
// It stops after maxPages pages unless maxPages is 0.
func walk(
	start string,
	maxPages int,
	get func(url string) (*http.Response, error),
	entries func(http.Header) (linkhdr.Entries, error),
	decode func(io.Reader) ([]*Item, error),
	done chan struct{},
) (chan *Page, chan error) {
	return follow(start, maxPages, func(url string) (*Page, string, error) {
		return fetchPage(url, get, entries, decode)
	}, done)
}

// follow sends the page fetch returns for start, then for each next URL
// it returns, resolved against the URL of its page.
func follow(start string, maxPages int, fetch func(url string) (*Page, string, error), done chan struct{}) (chan *Page, chan error) {
	pageChan := make(chan *Page)
	errChan := make(chan error)

	go func() {
		defer close(pageChan)
		defer close(errChan)

		sendErr := func(err error) {
			select {
			case errChan <- err:
			case <-done:
			}
		}

		url := start
		for n := 0; maxPages == 0 || n < maxPages; n++ {
			page, next, err := fetch(url)
			if err != nil {
				sendErr(err)
				return
			}

			select {
			case pageChan <- page:
			case <-done:
				return
			}

			if next == "" {
				return
			}
			if url, err = resolve(url, next); err != nil {
				sendErr(err)
				return
			}
		}
	}()
	return pageChan, errChan
}

func fetchPage(
	url string,
	get func(url string) (*http.Response, error),
	entries func(http.Header) (linkhdr.Entries, error),
	decode func(io.Reader) ([]*Item, error),
) (*Page, string, error) {
	resp, err := get(url)
	if err != nil {
		return nil, "", fmt.Errorf("error sending request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, "", err
	}

	links, err := entries(resp.Header)
	if err != nil {
		return nil, "", fmt.Errorf("error parsing link header of %s: %w", url, err)
	}
	next, err := linkhdr.Next(resp.Header)
	if err != nil {
		return nil, "", fmt.Errorf("error parsing link header of %s: %w", url, err)
	}

	items, err := decode(resp.Body)
	if err != nil {
		return nil, "", err
	}

	return &Page{URL: url, Links: links, Items: items}, next, nil
}
