package source

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/devon-mar/linkpager/linkhdr"
	"github.com/devon-mar/linkpager/utils/envtag"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

const (
	cfgTag = "cfg"
)

var validate = validator.New()

// Source is a paginated collection.
type Source interface {
	// Send each page, in order, until there is no next page.
	// Both channels are closed when the source is exhausted or done is closed.
	Pages(done chan struct{}) (chan *Page, chan error)
}

type Page struct {
	URL   string
	Links linkhdr.Entries
	Items []*Item
}

type Item struct {
	Name string
	URL  string
}

func NewSource(name string, typ string, cfg map[string]interface{}) (Source, error) {
	s, err := getSource(name, typ, cfg)
	if err != nil {
		return nil, err
	}

	if v, ok := s.(interface{ init() error }); ok {
		if err := v.init(); err != nil {
			return nil, fmt.Errorf("error initializing source: %w", err)
		}
	}

	return s, nil
}

func Validate(name string, typ string, cfg map[string]interface{}) error {
	_, err := getSource(name, typ, cfg)
	return err
}

// Returns a new empty Source for the given typ.
func getSourceType(typ string) (Source, error) {
	switch typ {
	case typeHTTP:
		return &HTTP{}, nil
	case typeContainer:
		return &ContainerRegistry{}, nil
	case typeGitHubReleases:
		return &GitHubReleases{}, nil
	case typeGitHubTags:
		return &GitHubTags{}, nil
	case typeGiteaReleases:
		return &GiteaReleases{}, nil
	case typeGiteaTags:
		return &GiteaTags{}, nil
	case typeAtom:
		return &Atom{}, nil
	case typeHTML:
		return &HTML{}, nil
	default:
		return nil, fmt.Errorf("unsupported source type %q", typ)
	}
}

// Validates and returns the source.
func getSource(name string, typ string, cfg map[string]interface{}) (Source, error) {
	s, err := getSourceType(typ)
	if err != nil {
		return nil, err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{Result: s, ErrorUnused: true, TagName: cfgTag})
	if err != nil {
		return nil, err
	}
	if err = decoder.Decode(cfg); err != nil {
		return nil, err
	}

	if err := envtag.Unmarshal(cfgTag, "SOURCE_"+strings.ToUpper(name)+"_", s); err != nil {
		return nil, err
	}

	if err := validate.Struct(s); err != nil {
		return nil, err
	}

	if v, ok := s.(interface{ linkOptions() error }); ok {
		if err := v.linkOptions(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// LinkConfig holds the link header options of a source.
type LinkConfig struct {
	Link map[string]interface{} `cfg:"link"`

	opts *linkhdr.Options
}

func (l *LinkConfig) linkOptions() error {
	var err error
	l.opts, err = linkhdr.NewOptions(l.Link)
	return err
}

// entries returns the parsed link header of h.
func (l *LinkConfig) entries(h http.Header) (linkhdr.Entries, error) {
	hdr, err := l.opts.Apply(linkhdr.FromHTTP(h))
	if err != nil {
		return nil, err
	}
	key := linkhdr.Key
	if l.opts != nil && l.opts.KeepOriginal {
		key = linkhdr.ParsedKey
	}
	entries, _ := hdr[key].(linkhdr.Entries)
	return entries, nil
}

// Items sends the items of every page, stopping after limit items
// (no limit if limit is 0).
func Items(s Source, done chan struct{}, limit int) (chan *Item, chan error) {
	itemChan := make(chan *Item)
	errChan := make(chan error)

	go func() {
		defer close(itemChan)
		defer close(errChan)

		ourDone := make(chan struct{})
		defer close(ourDone)
		pages, errs := s.Pages(ourDone)

		var sent int
		for {
			select {
			case p, ok := <-pages:
				if !ok {
					return
				}
				for _, itm := range p.Items {
					select {
					case itemChan <- itm:
					case <-done:
						return
					}
					sent++
					if sent == limit {
						return
					}
				}
			case err, ok := <-errs:
				if !ok {
					return
				}
				select {
				case errChan <- err:
				case <-done:
				}
				return
			}
		}
	}()
	return itemChan, errChan
}

// resolve returns ref relative to base.
func resolve(base string, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("error parsing URL %q: %w", base, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("error parsing next URL %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}

var (
	errStatus = errors.New("unexpected HTTP status")
	// Returned internally when done was closed.
	errDone = errors.New("done")
)

func checkStatus(resp *http.Response) error {
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w %s: %s", errStatus, resp.Status, resp.Request.URL)
	}
	return nil
}
