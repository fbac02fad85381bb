package linkhdr

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	cfgTag = "cfg"

	OptionTransform    = "pagination_transform"
	OptionKeepOriginal = "keep_original_link"
	OptionStrict       = "strict_relations"
)

// TransformFunc reshapes a parsed link. Its return value is used as is.
type TransformFunc func(Relation, Record) interface{}

// Identity returns the record unchanged.
func Identity(_ Relation, r Record) interface{} {
	return r
}

var transforms = map[string]TransformFunc{
	"identity": Identity,
	"url": func(_ Relation, r Record) interface{} {
		return r.URL()
	},
	"page": func(_ Relation, r Record) interface{} {
		return r["page"]
	},
}

var transformType = reflect.TypeOf(TransformFunc(nil))

type Options struct {
	// Defaults to Identity.
	Transform TransformFunc `cfg:"pagination_transform"`
	// Store the parsed links under ParsedKey instead of replacing Key.
	KeepOriginal bool `cfg:"keep_original_link"`
	// Fail on relations other than next, prev, first and last.
	Strict bool `cfg:"strict_relations"`
}

// NewOptions decodes options from a config map.
// Every error it returns is a *ConfigError naming the offending key
// and matches ErrConfiguration.
func NewOptions(c map[string]interface{}) (*Options, error) {
	o := &Options{}
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      o,
		ErrorUnused: true,
		TagName:     cfgTag,
		DecodeHook:  transformHook,
	})
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	// One key at a time so the error can name it.
	keys := maps.Keys(c)
	slices.Sort(keys)
	for _, k := range keys {
		if err := d.Decode(map[string]interface{}{k: c[k]}); err != nil {
			return nil, &ConfigError{Option: k, Value: c[k], Err: err}
		}
	}

	if o.Transform == nil {
		o.Transform = Identity
	}
	return o, nil
}

func (o *Options) transform() TransformFunc {
	if o == nil || o.Transform == nil {
		return Identity
	}
	return o.Transform
}

// TransformNames returns the names accepted for pagination_transform.
func TransformNames() []string {
	names := maps.Keys(transforms)
	slices.Sort(names)
	return names
}

func transformHook(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != transformType {
		return data, nil
	}
	switch v := data.(type) {
	case TransformFunc:
		return v, nil
	case func(Relation, Record) interface{}:
		return TransformFunc(v), nil
	case string:
		fn, ok := transforms[v]
		if !ok {
			return nil, fmt.Errorf("unknown transform %q, must be one of %v", v, TransformNames())
		}
		return fn, nil
	default:
		return nil, fmt.Errorf("expected %s or a transform name, got %T", transformType, data)
	}
}
