package store

import (
	"encoding/json"
	"fmt"

	"github.com/danforbes/dots/internal/ir"
)

// marshalMetadata converts normalized metadata to canonical JSON TEXT for
// storage. Canonical form keeps the stored text stable across Go versions
// and map iteration order, so equal metadata is stored byte-identically.
func marshalMetadata(md *ir.Metadata) (string, error) {
	data, err := ir.MarshalCanonical(md)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	return string(data), nil
}

// unmarshalMetadata parses stored JSON TEXT back into normalized metadata.
func unmarshalMetadata(data string) (*ir.Metadata, error) {
	if data == "" {
		return nil, fmt.Errorf("unmarshal metadata: empty document")
	}
	var md ir.Metadata
	if err := json.Unmarshal([]byte(data), &md); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return &md, nil
}
