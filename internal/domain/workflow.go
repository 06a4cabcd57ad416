package domain

import (
	"fmt"
	"strings"
)

// transitions lists, for each status, the statuses a project may move to.
// APPROVED and REJECTED are terminal; leaving them goes through Reopen.
var transitions = map[ProjectStatus][]ProjectStatus{
	StatusDraft:           {StatusAnalysisPending, StatusAnalyzed, StatusRejected},
	StatusAnalysisPending: {StatusDraft, StatusAnalyzed, StatusRejected},
	StatusAnalyzed:        {StatusAnalysisPending, StatusApproved, StatusRejected},
	StatusApproved:        {},
	StatusRejected:        {},
}

func (s ProjectStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransition reports whether a move from one status to another is allowed.
// Staying on the same status is always allowed.
func CanTransition(from, to ProjectStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from s, excluding s itself.
func AllowedTransitions(s ProjectStatus) []ProjectStatus {
	allowed := transitions[s]
	out := make([]ProjectStatus, len(allowed))
	copy(out, allowed)
	return out
}

func ValidateTransition(from, to ProjectStatus) error {
	if !to.IsValid() {
		return NewValidationError("status", fmt.Sprintf("unknown status %q", to))
	}
	if !CanTransition(from, to) {
		allowed := AllowedTransitions(from)
		if len(allowed) == 0 {
			return NewValidationError("status", fmt.Sprintf("cannot move project from %s to %s: %s is closed", from, to, from))
		}
		names := make([]string, len(allowed))
		for i, s := range allowed {
			names[i] = string(s)
		}
		return NewValidationError("status", fmt.Sprintf("cannot move project from %s to %s, allowed: %s", from, to, strings.Join(names, ", ")))
	}
	return nil
}
