package route

import "fmt"

// Status represents where a map session is in its route lifecycle.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusComputing Status = "computing"
	StatusReady     Status = "ready"
	StatusDisplayed Status = "displayed"
)

// validTransitions defines the state machine for route status transitions.
// Computing may re-enter itself when a newer request supersedes the current one.
var validTransitions = map[Status][]Status{
	StatusIdle:      {StatusComputing},
	StatusComputing: {StatusReady, StatusIdle, StatusComputing},
	StatusReady:     {StatusDisplayed, StatusComputing, StatusIdle},
	StatusDisplayed: {StatusIdle, StatusComputing, StatusReady},
}

// IsValid returns true if the status is a recognized route status.
func (s Status) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, t := range allowed {
		if t == target {
			return true
		}
	}
	return false
}

// IsActive returns true while a route is being computed or is available.
// Changing the travel mode in an active status triggers a recomputation.
func (s Status) IsActive() bool {
	return s == StatusComputing || s == StatusReady || s == StatusDisplayed
}

// HasRoute returns true when a computed route is available.
func (s Status) HasRoute() bool {
	return s == StatusReady || s == StatusDisplayed
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a string to a Status, returning an error if invalid.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid route status: %s", s)
	}
	return status, nil
}
