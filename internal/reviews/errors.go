package reviews

import "errors"

// Outcomes of review operations other than success. Handlers map them to
// status codes with errors.Is.
var (
	ErrNotFound     = errors.New("review not found")
	ErrForbidden    = errors.New("review belongs to another user")
	ErrUnauthorized = errors.New("caller could not be identified")
	ErrPersistence  = errors.New("review was not persisted")
	ErrTextTooShort = errors.New("review text is shorter than the title prefix")
)
