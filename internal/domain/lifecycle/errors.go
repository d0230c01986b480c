package lifecycle

import "errors"

var (
	// ErrInvalidTransition indicates the pairing's current status does not
	// allow the requested change.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNotParticipant indicates the acting member is not part of the
	// pairing.
	ErrNotParticipant = errors.New("member is not part of this pairing")
	// ErrFeedbackOnPending indicates feedback was attached before the
	// pairing was decided.
	ErrFeedbackOnPending = errors.New("feedback requires a decided pairing")
)
