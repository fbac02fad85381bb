package pager

import (
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Sources map[string]*sourceConfig `yaml:"sources" validate:"required,min=1,dive,required"`

	Templates templateConfig `yaml:"templates"`
}

type templateConfig struct {
	Item string `yaml:"item"`
}

func (c *Config) init() error {
	for name, s := range c.Sources {
		if s == nil {
			continue
		}
		if err := s.init(); err != nil {
			return fmt.Errorf("source %q: %w", name, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	return validator.New().Struct(c)
}

// Keys of a source that are not passed to the source itself.
var sourceKeys = []string{"type", "pre_replace", "prerelease"}

type sourceConfig struct {
	Type string `validate:"required"`
	// Applied to item names before they are parsed as versions.
	PreReplace *Replace `validate:"omitempty"`
	Prerelease bool
	Config     map[string]interface{} `validate:"required"`
}

func (sc *sourceConfig) UnmarshalYAML(value *yaml.Node) error {
	tmp := struct {
		Type       string   `yaml:"type"`
		PreReplace *Replace `yaml:"pre_replace"`
		Prerelease bool     `yaml:"prerelease"`
	}{}
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	sc.Type = tmp.Type
	sc.PreReplace = tmp.PreReplace
	sc.Prerelease = tmp.Prerelease

	sc.Config = map[string]interface{}{}
	// Decode the rest...
	if err := value.Decode(sc.Config); err != nil {
		return err
	}
	for _, k := range sourceKeys {
		delete(sc.Config, k)
	}

	return nil
}

func (sc *sourceConfig) init() error {
	return sc.PreReplace.init()
}

type Replace struct {
	Find    string `yaml:"find" validate:"required"`
	Replace string `yaml:"replace"`

	// To be populated by init()
	regex *regexp.Regexp
}

func (r *Replace) init() error {
	if r == nil {
		return nil
	}
	var err error
	r.regex, err = regexp.Compile(r.Find)
	return err
}

func (r *Replace) Do(s string) string {
	if r == nil {
		return s
	}
	return r.regex.ReplaceAllString(s, r.Replace)
}

func ReadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := yaml.NewDecoder(f)
	d.KnownFields(true)

	c := &Config{}
	// https://github.com/go-yaml/yaml/issues/639#issuecomment-666935833
	if err := d.Decode(c); err != nil && err != io.EOF {
		return nil, err
	}

	if err = c.init(); err != nil {
		return nil, err
	}

	if err = c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}
