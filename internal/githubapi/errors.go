package githubapi

import (
	"errors"
	"fmt"
)

// The three failure kinds surfaced to callers. Anything that is not a 200,
// a 401 or a 404 ends up as an UnexpectedStatusError.
var (
	ErrInvalidCredentials = errors.New("githubapi: invalid or missing credentials")
	ErrNotFound           = errors.New("githubapi: repository or user not found")
)

type UnexpectedStatusError struct {
	StatusCode int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("githubapi: unexpected HTTP status %d", e.StatusCode)
}
