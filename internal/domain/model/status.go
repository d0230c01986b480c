package model

import "fmt"

// Status enumerates the lifecycle states of a pairing.
type Status string

// Pairing lifecycle statuses. Missed and cancelled are recorded by operators
// or the front end when a meeting falls through; the engine never emits them
// but counts them toward the missed-streak eligibility threshold.
const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCompleted Status = "completed"
	StatusMissed    Status = "missed"
	StatusCancelled Status = "cancelled"
)

// transitions is the central transition table. Any move not listed here is
// rejected; declined and completed are terminal.
var transitions = map[Status][]Status{
	StatusPending:  {StatusAccepted, StatusDeclined, StatusMissed, StatusCancelled},
	StatusAccepted: {StatusCompleted, StatusMissed, StatusCancelled},
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusCompleted, StatusMissed, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// CountsAsMissed reports whether s counts toward the missed-streak threshold.
func (s Status) CountsAsMissed() bool {
	return s == StatusMissed || s == StatusCancelled
}

func (s Status) String() string { return string(s) }

// CanTransition reports whether the table allows moving from one status to another.
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ParseStatus converts a stored string into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown pairing status: %q", s)
	}
	return st, nil
}
