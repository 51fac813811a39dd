package datastore

import "github.com/google/uuid"

// NewOpaqueID returns a fresh opaque identifier, the escape hatch from
// the default content-derived id for entries that want a guaranteed
// collision-free id (event ids and per-invocation classifier output
// directories).
func NewOpaqueID() string {
	return uuid.NewString()
}
