package vecdb

import "errors"

// ErrUniqueViolation is returned when a create/rename/insert call would produce a
// duplicate collection name or embedding id.
var ErrUniqueViolation = errors.New("unique violation")

// ErrNotFound is returned when a requested collection or embedding does not exist.
var ErrNotFound = errors.New("not found")

// ErrDimensionMismatch is returned when a vector's length does not equal the
// dimension of the collection it is being inserted or queried against.
var ErrDimensionMismatch = errors.New("dimension mismatch")
