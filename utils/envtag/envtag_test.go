package envtag

import (
	"reflect"
	"testing"
)

func TestUnmarshal(t *testing.T) {
	type OtherStruct struct {
		FieldD string `env:"FIELD_D"`
		Limit  int    `env:"limit"`
	}
	type TestStruct struct {
		FieldA      string `env:"FIELD_A"`
		FieldB      string `env:"field_b"`
		FieldC      string
		Enabled     bool   `env:"enabled"`
		AppID       int64  `env:"app_id"`
		Skipped     string `env:"-"`
		OtherStruct `env:",squash"`
	}
	want := &TestStruct{
		FieldA:      "abcdef",
		FieldB:      "ghi123",
		FieldC:      "456",
		Enabled:     true,
		AppID:       1234,
		OtherStruct: OtherStruct{FieldD: "field d", Limit: 5},
	}

	t.Setenv("PREFIX_FIELD_A", want.FieldA)
	t.Setenv("PREFIX_FIELD_B", want.FieldB)
	t.Setenv("PREFIX_FIELD_D", want.FieldD)
	t.Setenv("PREFIX_ENABLED", "true")
	t.Setenv("PREFIX_APP_ID", "1234")
	t.Setenv("PREFIX_LIMIT", "5")
	t.Setenv("PREFIX_-", "x")

	s := &TestStruct{FieldC: "456"}
	if err := Unmarshal("env", "PREFIX_", s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(s, want) {
		t.Errorf("got %#v, want %#v", s, want)
	}
}

func TestUnmarshalErrors(t *testing.T) {
	type TestStruct struct {
		Limit int `env:"limit"`
	}

	t.Setenv("BAD_LIMIT", "ten")
	if err := Unmarshal("env", "BAD_", &TestStruct{}); err == nil {
		t.Errorf("expected an error")
	}

	if err := Unmarshal("env", "BAD_", TestStruct{}); err == nil {
		t.Errorf("expected an error for a non pointer")
	}
}
