package entries

import "errors"

var (
	// ErrInvalidDeclaration indicates a marker file could not be read or parsed
	ErrInvalidDeclaration = errors.New("invalid entry declaration")
	// ErrDuplicateEntry indicates two marker files declare the same output name
	ErrDuplicateEntry = errors.New("duplicate entry point")
	// ErrInvalidPattern indicates an exclude pattern is not a valid glob
	ErrInvalidPattern = errors.New("invalid exclude pattern")
)
