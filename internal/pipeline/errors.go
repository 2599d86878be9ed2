package pipeline

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a command referenced an entity that does not
// exist. Callers can tell "nothing happened because the id was wrong" apart
// from "command succeeded".
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func notFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
