package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"repair-system/pkg/constants"
)

type Ticket struct {
	ID                  int
	TicketID            string
	ClientID            null.Int
	DeviceType          string
	Brand               null.String
	Model               null.String
	SerialNumber        null.String
	ProblemDescription  string
	Status              constants.Status
	Priority            constants.Priority
	EstimatedCost       null.Float64
	FinalCost           null.Float64
	EstimatedCompletion null.Time
	ActualCompletion    null.Time
	AssignedMasterID    null.Int
	AssignedByID        null.Int
	AssignedAt          null.Time
	CreatedByID         null.Int
	CreatedAt           time.Time
	UpdatedAt           time.Time
	IsArchived          bool
	Notes               null.String
}
