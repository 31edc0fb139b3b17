// Package moderation implements the course moderation lifecycle and the
// visibility rules that depend on it.
package moderation

import (
	"github.com/s/coursehub/internal/apperror"
	"github.com/s/coursehub/internal/domain"
	"github.com/s/coursehub/internal/ident"
)

// Presentation tells the caller how a course may be shown to a viewer.
type Presentation string

const (
	Public             Presentation = "public"
	AwaitingModeration Presentation = "awaiting_moderation"
	RejectedWithReason Presentation = "rejected_with_reason"
	Hidden             Presentation = "hidden"
)

// InitialStatus is the status of a freshly created course. Administrators
// self-publish, everyone else waits for moderation.
func InitialStatus(author domain.Role) domain.Status {
	if author == domain.RoleAdmin {
		return domain.StatusApproved
	}
	return domain.StatusPending
}

// Transition applies a decision to current. Only pending courses move.
func Transition(current domain.Status, decision domain.Decision) (domain.Status, error) {
	if current != domain.StatusPending {
		return current, apperror.NotFound("moderate", "no pending course to %s", verb(decision))
	}
	switch decision {
	case domain.DecisionApproved:
		return domain.StatusApproved, nil
	case domain.DecisionRejected:
		return domain.StatusRejected, nil
	default:
		return current, apperror.Invalid("moderate", "unknown decision %q", decision)
	}
}

// Resubmit is the status after an owner edit. The course returns to pending
// only when the edit explicitly asks for it.
func Resubmit(current domain.Status, reset bool) domain.Status {
	if reset {
		return domain.StatusPending
	}
	return current
}

// IsOwner reports whether viewer authored c.
func IsOwner(c domain.Course, viewer domain.Actor) bool {
	if viewer.ID == "" || c.IsSeed() {
		return false
	}
	return ident.SameOwner(c.CreatedBy, viewer.ID)
}

// Visibility decides how c is presented to viewer on a detail read.
func Visibility(c domain.Course, viewer domain.Actor) Presentation {
	status := c.EffectiveStatus()
	if status == domain.StatusApproved {
		return Public
	}
	if viewer.Role != domain.RoleAdmin && !IsOwner(c, viewer) {
		return Hidden
	}
	if status == domain.StatusRejected {
		return RejectedWithReason
	}
	return AwaitingModeration
}

// Listed reports whether c belongs in viewer's catalog listing: approved and
// seed courses for everyone, plus the viewer's own courses in any status.
func Listed(c domain.Course, viewer domain.Actor) bool {
	return c.EffectiveStatus() == domain.StatusApproved || IsOwner(c, viewer)
}

// Queued reports whether c is waiting in the moderation queue.
func Queued(c domain.Course) bool {
	return !c.IsSeed() && c.Status == domain.StatusPending
}

func verb(d domain.Decision) string {
	if d == domain.DecisionRejected {
		return "reject"
	}
	return "approve"
}
