package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// StatusHistory — append-only журнал смен статуса. Записи никогда не
// изменяются и не удаляются.
type StatusHistory struct {
	ID        int
	TicketID  int
	OldStatus null.String // NULL только у самой первой записи заявки
	NewStatus string
	ChangedBy null.Int
	ChangedAt time.Time
	Comment   null.String
}

// AssignmentHistory — журнал назначений мастеров. Инвариант: на заявку
// в любой момент открыта (unassigned_at IS NULL) не более одной записи.
type AssignmentHistory struct {
	ID           int
	TicketID     int
	MasterID     int
	AssignedBy   null.Int
	AssignedAt   time.Time
	UnassignedAt null.Time
	Reason       null.String
}
