package conveyancing

import (
	"time"

	"golang.org/x/exp/slices"

	"conveyancing-server/models"
)

// StartStage moves a pending stage to in-progress. The start date is the
// server clock, never client-supplied, and is not overwritten if a solicitor
// already set one while drafting the timeline. Starting has no side effect on
// neighboring stages.
func StartStage(stage *models.PropertyStage, now time.Time) error {
	if stage.Status != models.StagePending {
		return InvalidTransition("cannot start stage %q from status %q", stage.Stage, stage.Status)
	}
	stage.Status = models.StageInProgress
	if stage.StartDate == nil {
		stage.StartDate = &now
	}
	return nil
}

// CompleteStage moves an in-progress stage to completed and stamps the
// completion date from the server clock.
func CompleteStage(stage *models.PropertyStage, now time.Time) error {
	if stage.Status != models.StageInProgress {
		return InvalidTransition("cannot complete stage %q from status %q", stage.Stage, stage.Status)
	}
	stage.Status = models.StageCompleted
	stage.CompletionDate = &now
	return nil
}

// RevertStage puts a stage back to pending and clears its progress dates, so
// a reverted stage is indistinguishable from one that never started.
func RevertStage(stage *models.PropertyStage) {
	stage.Status = models.StagePending
	stage.StartDate = nil
	stage.CompletionDate = nil
}

// AdvanceNext applies the completion side effect: the immediately following
// stage by order, if still pending, becomes in-progress so linear progression
// chains without a manual start on every stage. Returns the advanced stage or
// nil. stages must belong to one property; order of the slice is irrelevant.
func AdvanceNext(stages []models.PropertyStage, completed models.PropertyStage, now time.Time) *models.PropertyStage {
	var next *models.PropertyStage
	for i := range stages {
		s := &stages[i]
		if s.StageOrder <= completed.StageOrder || s.ID == completed.ID {
			continue
		}
		if next == nil || s.StageOrder < next.StageOrder {
			next = s
		}
	}
	if next == nil || next.Status != models.StagePending {
		return nil
	}
	next.Status = models.StageInProgress
	if next.StartDate == nil {
		next.StartDate = &now
	}
	return next
}

// ValidateNewStage checks the required fields for an ad hoc stage. The
// responsible role must already be normalized.
func ValidateNewStage(stage models.PropertyStage) error {
	if stage.Stage == "" {
		return Validation("stage name is required")
	}
	if stage.Description == "" {
		return Validation("stage description is required")
	}
	if stage.ResponsibleRole == "" {
		return Validation("responsible role is required")
	}
	if !ValidResponsibleRole(stage.ResponsibleRole) {
		return Validation("unknown responsible role %q", stage.ResponsibleRole)
	}
	if stage.StartDate == nil {
		return Validation("start date is required")
	}
	if stage.DueDate == nil {
		return Validation("due date is required")
	}
	return nil
}

// ValidateReorder checks that orderedIDs is exactly the id set of stages.
// The stored order must be left untouched when this fails.
func ValidateReorder(stages []models.PropertyStage, orderedIDs []uint) error {
	if len(orderedIDs) != len(stages) {
		return Validation("stage IDs do not match current stages")
	}
	for _, s := range stages {
		if !slices.Contains(orderedIDs, s.ID) {
			return Validation("stage IDs do not match current stages")
		}
	}
	seen := make(map[uint]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if seen[id] {
			return Validation("duplicate stage ID %d in reorder request", id)
		}
		seen[id] = true
	}
	return nil
}

// RequireUnlocked gates structural stage mutations (create, edit, delete,
// reorder) on the timeline lock. Pure status transitions stay permitted while
// locked and must not call this.
func RequireUnlocked(prop models.Property) error {
	if prop.TimelineLocked {
		return TimelineLocked("cannot modify stages while the timeline is locked")
	}
	return nil
}
