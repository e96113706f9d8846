package service

import (
	"github.com/mitchellh/mapstructure"
)

// Decode copies call data into out using its json tags. Decoding failures
// are reported as BadRequest.
func Decode(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(data); err != nil {
		return BadRequest("invalid data: %v", err)
	}
	return nil
}
