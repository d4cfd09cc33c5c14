package ir

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Bytes is raw SCALE data. It serializes as a 0x-prefixed lowercase hex
// string in both JSON and YAML.
type Bytes []byte

// String returns the 0x-prefixed hex form.
func (b Bytes) String() string {
	return "0x" + hex.EncodeToString(b)
}

// MarshalJSON implements json.Marshaler.
func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("bytes: %w", err)
	}
	decoded, err := ParseBytes(s)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (b Bytes) MarshalYAML() (any, error) {
	return b.String(), nil
}

// UnmarshalYAML implements the yaml.v3 obsolete unmarshaler signature so
// ir does not have to import yaml.
func (b *Bytes) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return fmt.Errorf("bytes: %w", err)
	}
	decoded, err := ParseBytes(s)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}

// ParseBytes decodes a hex string with an optional 0x prefix.
func ParseBytes(s string) (Bytes, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("bytes: invalid hex %q: %w", s, err)
	}
	return Bytes(raw), nil
}
