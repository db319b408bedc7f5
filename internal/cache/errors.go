package cache

import (
	"errors"
	"fmt"

	"github.com/mx42/stargazer/internal/githubapi"
)

// BatchError summarizes the per-user failures of one flush round, counted
// by kind. It is raised only after every successful member of the round has
// been persisted.
type BatchError struct {
	Auth       int
	NotFound   int
	Unexpected int
}

func NewBatchError(errs []error) *BatchError {
	be := &BatchError{}
	for _, err := range errs {
		switch {
		case errors.Is(err, githubapi.ErrInvalidCredentials):
			be.Auth++
		case errors.Is(err, githubapi.ErrNotFound):
			be.NotFound++
		default:
			be.Unexpected++
		}
	}
	return be
}

func (e *BatchError) Count() int {
	return e.Auth + e.NotFound + e.Unexpected
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch fetch failed for %d user(s) (auth: %d, not found: %d, unexpected: %d)",
		e.Count(), e.Auth, e.NotFound, e.Unexpected)
}
