package datastore

import (
	"crypto/sha1" //nolint:gosec // used only as a content-derived identifier, not for security
	"encoding/hex"
	"fmt"
)

// DeriveID computes the 12-hex-digit SHA-1 prefix of
// "timestamp|species|confidence" that a Detection's id defaults to
// when no unique opaque id is supplied at creation. Idempotent:
// DeriveID(DeriveID(...)) is meaningless to call twice on an id, but
// calling DeriveID twice on the same (timestamp, species, confidence)
// always yields the same value.
func DeriveID(timestamp, species string, confidence *float64) string {
	conf := "null"
	if confidence != nil {
		conf = fmt.Sprintf("%g", *confidence)
	}
	sum := sha1.Sum([]byte(timestamp + "|" + species + "|" + conf)) //nolint:gosec
	return hex.EncodeToString(sum[:])[:12]
}

// NormalizeConfidence applies the pipeline-wide confidence convention:
// values above 1 are treated as percentages and divided by 100 (capped
// at 1), values below 0 are floored to 0, nil passes through unchanged.
func NormalizeConfidence(c *float64) *float64 {
	if c == nil {
		return nil
	}
	v := *c
	switch {
	case v > 1:
		v = v / 100
		if v > 1 {
			v = 1
		}
	case v < 0:
		v = 0
	}
	return &v
}
