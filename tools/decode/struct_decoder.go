package decode

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Options tunes Map.
type Options struct {
	// WeaklyTypedInput enables mapstructure's loose conversions (bool -> int,
	// number -> string ...). Numeric strings into integers are always accepted.
	WeaklyTypedInput bool
}

func DefaultOptions() Options {
	return Options{WeaklyTypedInput: false}
}

// Validator is implemented by payloads that check themselves after decoding.
type Validator interface {
	Validate() error
}

// Map decodes a JSON object (decoded with UseNumber or not) into T.
//
// Fields read their key from the `json` tag. A field tagged `decode:"required"`
// must be present and non-null in m. When *T implements Validator it runs last.
func Map[T any](m map[string]any, opts ...Options) (*T, error) {
	if m == nil {
		return nil, fmt.Errorf("payload is nil")
	}
	cfg := DefaultOptions()
	if len(opts) > 0 {
		cfg = opts[0]
	}

	var out T
	if err := checkRequired(reflect.TypeOf(out), m); err != nil {
		return nil, err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &out,
		WeaklyTypedInput: cfg.WeaklyTypedInput,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			numericStringToIntHook(),
			floatToIntHook(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("new decoder: %w", err)
	}
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	if v, ok := any(&out).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

func checkRequired(t reflect.Type, m map[string]any) error {
	if t.Kind() != reflect.Struct {
		return nil
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Tag.Get("decode") != "required" {
			continue
		}
		key := strings.Split(f.Tag.Get("json"), ",")[0]
		if key == "" {
			key = f.Name
		}
		if v, ok := m[key]; !ok || v == nil {
			return fmt.Errorf("missing field %q", key)
		}
	}
	return nil
}

func isInt(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

// numericStringToIntHook accepts "42" (and json.Number) for integer fields.
func numericStringToIntHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if !isInt(to.Kind()) {
			return data, nil
		}
		var s string
		switch v := data.(type) {
		case json.Number:
			s = v.String()
		case string:
			s = strings.TrimSpace(v)
		default:
			return data, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", s)
		}
		return n, nil
	}
}

// floatToIntHook rejects fractional numbers for integer fields instead of
// truncating them.
func floatToIntHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.Float64 || !isInt(to.Kind()) {
			return data, nil
		}
		f := data.(float64)
		if f != float64(int64(f)) {
			return nil, fmt.Errorf("%v is not an integer", f)
		}
		return int64(f), nil
	}
}
