package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainMetadata = "dots/metadata/v1"
	DomainType     = "dots/type/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// MetadataHash computes the content-addressed fingerprint of normalized
// metadata. Two decodes of the same bytes always hash equal; the hash
// ignores Go-side details such as map iteration order.
func MetadataHash(md *Metadata) (string, error) {
	canonical, err := MarshalCanonical(md)
	if err != nil {
		return "", fmt.Errorf("MetadataHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainMetadata, canonical), nil
}

// TypeHash computes the fingerprint of a single normalized type.
func TypeHash(t ScaleType) (string, error) {
	canonical, err := MarshalCanonical(t)
	if err != nil {
		return "", fmt.Errorf("TypeHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainType, canonical), nil
}
