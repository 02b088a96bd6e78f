package document

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// --------------------------------------------------------------------------
// System Fields
// --------------------------------------------------------------------------

// Field names reserved for the kernel. They are assigned (or rewritten) by
// the store on every mutation and are exempt from schema validation.
const (
	// FieldID holds the unique identifier of a document within its collection
	FieldID = "id"
	// FieldCreated holds the creation timestamp, set once at insert time
	FieldCreated = "_created"
	// FieldModified holds the last modification timestamp
	FieldModified = "_modified"
	// FieldTTL optionally holds a per-document cache lifetime in milliseconds
	FieldTTL = "_ttl"
)

// IsSystemField reports whether a top-level field name is kernel-managed.
func IsSystemField(name string) bool {
	switch name {
	case FieldID, FieldCreated, FieldModified, FieldTTL:
		return true
	default:
		return false
	}
}

// --------------------------------------------------------------------------
// Identifiers and Timestamps
// --------------------------------------------------------------------------

// NewID returns a new document identifier. The id starts with the current
// unix millisecond timestamp in base36 so that ids created later sort
// later lexicographically, followed by a random suffix for uniqueness
// within the same millisecond.
func NewID() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return ts + "-" + suffix
}

// Timestamp renders t as the canonical timestamp representation used for
// the _created and _modified fields: RFC3339 with nanoseconds, normalized
// to UTC. Storing timestamps as strings keeps a document identical before
// and after a JSON round trip.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
