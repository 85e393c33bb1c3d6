package queryir

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnreachablePath matches any UnreachableError via errors.Is.
var ErrUnreachablePath = errors.New("unreachable reference")

// ErrUnknownReference is returned for references to entities, relations or
// columns the catalogue does not define.
var ErrUnknownReference = errors.New("unknown reference")

// UnreachableError reports a reference whose table is not joined by the query.
type UnreachableError struct {
	// Ref is the field or path as written, e.g. "Case.child.national_id".
	Ref string

	// Missing lists the entities that would have to be joined.
	Missing []string
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("unreachable reference %s: join %s to read it", e.Ref, strings.Join(e.Missing, ", "))
}

// Is makes errors.Is(err, ErrUnreachablePath) succeed.
func (e *UnreachableError) Is(target error) bool {
	return target == ErrUnreachablePath
}
