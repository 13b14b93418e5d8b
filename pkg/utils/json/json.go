// Package json wraps sonic so callers share one encoder configuration.
package json

import (
	"github.com/bytedance/sonic"
)

var api = sonic.ConfigStd

// Marshal encodes v using the standard-library compatible sonic config.
func Marshal(v interface{}) ([]byte, error) {
	return api.Marshal(v)
}

// MarshalIndent encodes v with indentation.
func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

// Unmarshal decodes data into v.
func Unmarshal(data []byte, v interface{}) error {
	return api.Unmarshal(data, v)
}
