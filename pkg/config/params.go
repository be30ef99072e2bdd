package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// DecodeParams decodes a domain's params map into a typed struct using
// "mapstructure" tags. Keys absent from the map leave the target's fields
// untouched, so callers set defaults before decoding. Input is coerced
// weakly (YAML scalars arrive as strings or numbers depending on quoting).
func DecodeParams(params map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build params decoder: %w", err)
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	return nil
}
