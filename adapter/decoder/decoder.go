// Package decoder contains the default [domain.Decoder] implementation,
// mapping result documents onto caller-declared record structs.
package decoder

import (
	"fmt"
	"reflect"
	"time"

	goreflect "github.com/goccy/go-reflect"
	"github.com/mitchellh/mapstructure"
	"github.com/porolink/porobase/domain"
)

// Decoder implements [domain.Decoder]. Struct fields bind by the "poro"
// tag, falling back to the field name. Store-native timestamps and the ISO
// strings the normalizer produces both decode into [time.Time] targets.
type Decoder struct{}

// NewDecoder returns a new implementation of [domain.Decoder].
func NewDecoder() domain.Decoder {
	return &Decoder{}
}

// Decode implements [domain.Decoder].
func (d *Decoder) Decode(source, target any) error {
	if target == nil {
		return domain.ErrTargetNil
	}
	if goreflect.ValueNoEscapeOf(target).Kind() != goreflect.Ptr {
		return domain.ErrNonPointer
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "poro",
		Result:     target,
		DecodeHook: temporalHook,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(source); err != nil {
		return fmt.Errorf("decoding into %T: %w", target, err)
	}
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

// temporalHook converts [domain.Timestamp] values and ISO strings into
// [time.Time] when the target field asks for one.
func temporalHook(from, to reflect.Type, data any) (any, error) {
	if to != timeType {
		return data, nil
	}
	switch v := data.(type) {
	case domain.Timestamp:
		return v.Time(), nil
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t, nil
		}
		return data, nil
	default:
		return data, nil
	}
}
