package util

import (
	"github.com/oklog/ulid/v2"
)

// NewULID returns a lexicographically sortable id. ulid.Make draws from a
// process-wide monotonic entropy source that is safe for concurrent use.
func NewULID() string {
	return ulid.Make().String()
}
