package envtag

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// Unmarshal overrides the fields of the struct s points to with
// environment variables named prefix + the upper cased tag.
// Embedded structs tagged ",squash" share the prefix.
// Only string, bool and int fields are set.
func Unmarshal(tagName string, prefix string, s interface{}) error {
	structVal := reflect.ValueOf(s)
	if structVal.Kind() != reflect.Ptr || structVal.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("expected a pointer to a struct, got %T", s)
	}
	structVal = structVal.Elem()
	typ := structVal.Type()

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get(tagName)
		if tag == "" || tag == "-" {
			continue
		}

		v := structVal.Field(i)
		if !v.CanSet() {
			continue
		}

		if tag == ",squash" {
			if v.Kind() == reflect.Struct {
				if err := Unmarshal(tagName, prefix, v.Addr().Interface()); err != nil {
					return err
				}
			}
			continue
		}

		name := strings.ToUpper(prefix + tag)
		envVal, ok := os.LookupEnv(name)
		if !ok || envVal == "" {
			continue
		}
		if err := set(v, envVal); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func set(v reflect.Value, s string) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 10, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(i)
	}
	return nil
}
