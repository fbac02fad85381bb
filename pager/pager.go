package pager

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/devon-mar/linkpager/source"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	defaultItemTemplate = "{{ .Name }}{{ with .URL }} {{ . }}{{ end }}"
)

var ErrUnknownSource = errors.New("unknown source")

type Pager struct {
	sources map[string]source.Source
	configs map[string]*sourceConfig

	itemTemplate *template.Template
}

// Returns a Pager without calling NewSource
// (to avoid any side effects).
func newBasePager(config *Config) (*Pager, error) {
	p := &Pager{
		sources: make(map[string]source.Source, len(config.Sources)),
		configs: config.Sources,
	}
	var err error

	p.itemTemplate, err = newTemplate(config.Templates.Item, defaultItemTemplate)
	if err != nil {
		return nil, fmt.Errorf("error parsing item template: %w", err)
	}

	return p, nil
}

func NewPager(config *Config) (*Pager, error) {
	p, err := newBasePager(config)
	if err != nil {
		return nil, err
	}

	for name, cfg := range config.Sources {
		src, err := source.NewSource(name, cfg.Type, cfg.Config)
		if err != nil {
			return nil, fmt.Errorf("error initializing source %q: %w", name, err)
		}
		p.sources[name] = src
	}
	return p, nil
}

// ValidateConfig checks the templates and every source config
// without initializing any sources.
func ValidateConfig(c *Config) error {
	if _, err := newBasePager(c); err != nil {
		return err
	}
	for name, cfg := range c.Sources {
		if err := source.Validate(name, cfg.Type, cfg.Config); err != nil {
			return fmt.Errorf("source %q: %w", name, err)
		}
	}
	return nil
}

// Names returns the configured source names, sorted.
func (p *Pager) Names() []string {
	names := maps.Keys(p.sources)
	slices.Sort(names)
	return names
}

func (p *Pager) source(name string) (source.Source, error) {
	src, ok := p.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownSource, name)
	}
	return src, nil
}

// Walk calls fn for every page of the named source, in order.
// It stops at the first error.
func (p *Pager) Walk(name string, logger *log.Entry, fn func(*source.Page) error) error {
	src, err := p.source(name)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	defer close(done)
	pageChan, errChan := src.Pages(done)

	var n int
	for {
		select {
		case page, ok := <-pageChan:
			if !ok {
				logger.Debugf("Walked %d pages", n)
				return nil
			}
			n++
			pageLogger := logger.WithField("page", n)
			pageLogger.WithField("url", page.URL).Infof("Fetched %d items", len(page.Items))
			for _, l := range page.Links {
				pageLogger.WithField("rel", l.Rel).Debugf("link: %v", l.Value)
			}
			if err := fn(page); err != nil {
				return err
			}
		case err, ok := <-errChan:
			if !ok {
				return nil
			}
			return fmt.Errorf("error fetching page %d: %w", n+1, err)
		}
	}
}

// List returns up to limit items of the named source (all if limit is 0).
func (p *Pager) List(name string, limit int, logger *log.Entry) ([]*source.Item, error) {
	src, err := p.source(name)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	itemChan, errChan := source.Items(src, done, limit)

	items := []*source.Item{}
	for {
		select {
		case itm, ok := <-itemChan:
			if !ok {
				logger.Debugf("Listed %d items", len(items))
				return items, nil
			}
			items = append(items, itm)
		case err, ok := <-errChan:
			if !ok {
				return items, nil
			}
			return nil, err
		}
	}
}

// Format renders itm using the item template.
func (p *Pager) Format(itm *source.Item) (string, error) {
	buf := &bytes.Buffer{}
	err := p.itemTemplate.Execute(buf, itm)
	return buf.String(), err
}

func newTemplate(user string, def string) (*template.Template, error) {
	t := template.New("").Funcs(template.FuncMap{"lower": strings.ToLower, "upper": strings.ToUpper})
	if user != "" {
		return t.Parse(user)
	}
	return t.Parse(def)
}
