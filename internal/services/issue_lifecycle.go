package services

import (
	"github.com/hostelhub/hostel-service/internal/models"
)

// issueTransitions lists the forward edges. Resolved is terminal.
var issueTransitions = map[models.IssueStatus][]models.IssueStatus{
	models.IssueOpen:       {models.IssueInProgress, models.IssueResolved},
	models.IssueInProgress: {models.IssueResolved},
}

// ValidateTransition reports whether an issue may move from one status to
// another. Self edges are accepted; see isNoopTransition.
func ValidateTransition(from, to models.IssueStatus) error {
	if !to.IsValid() {
		return singleValidation("status", "must be one of open, in_progress, resolved", string(to))
	}
	if from == to {
		return nil
	}
	for _, allowed := range issueTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &TransitionError{From: from, To: to}
}

// isNoopTransition is true for self edges that leave the assignee as it was.
// Re-opening an in progress issue with a new assignee is a real change.
func isNoopTransition(from, to models.IssueStatus, assigneeBefore, assigneeAfter *uint) bool {
	if from != to {
		return false
	}
	if assigneeBefore == nil || assigneeAfter == nil {
		return assigneeBefore == assigneeAfter
	}
	return *assigneeBefore == *assigneeAfter
}
