package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionStatusScheduled = "scheduled"
	SessionStatusCompleted = "completed"
	SessionStatusCancelled = "cancelled"
)

// Session is one unit of training consuming package credit.
type Session struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	PackageID       uuid.UUID  `json:"package_id" db:"package_id"`
	ScheduledAt     time.Time  `json:"scheduled_at" db:"scheduled_at"`
	DurationMinutes int        `json:"duration_minutes" db:"duration_minutes"`
	Cost            int64      `json:"cost" db:"cost"`
	Status          string     `json:"status" db:"status"` // scheduled, completed, cancelled
	CompletedAt     *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether the session can no longer change status.
func (s *Session) IsTerminal() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusCancelled
}

// CanTransitionTo reports whether status is reachable from the current one.
func (s *Session) CanTransitionTo(status string) bool {
	if s.Status != SessionStatusScheduled {
		return false
	}
	return status == SessionStatusCompleted || status == SessionStatusCancelled
}

type ScheduleSessionRequest struct {
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"gte=0,lte=600"`
	Cost            *int64    `json:"cost,omitempty" validate:"omitempty,gte=0"`
}

type CompleteSessionResponse struct {
	Session *Session       `json:"session"`
	Balance PackageBalance `json:"balance"`
}
