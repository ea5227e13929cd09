package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidStatus(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, IsValidStatus(string(s)))
	}
	assert.False(t, IsValidStatus("Repaired"))
	assert.False(t, IsValidStatus("accepted"), "статусы чувствительны к регистру")
	assert.False(t, IsValidStatus(""))
}

func TestIsTerminalStatus(t *testing.T) {
	assert.True(t, IsTerminalStatus(StatusReadyForPickup))
	assert.True(t, IsTerminalStatus(StatusIssued))

	for _, s := range []Status{StatusAccepted, StatusDiagnostics, StatusWaitingForParts, StatusInRepair, StatusTesting} {
		assert.False(t, IsTerminalStatus(s))
	}
}

func TestPriorityRank(t *testing.T) {
	assert.Equal(t, 1, PriorityRank(PriorityCritical))
	assert.Equal(t, 2, PriorityRank(PriorityHigh))
	assert.Equal(t, 3, PriorityRank(PriorityNormal))
	assert.Equal(t, 4, PriorityRank(PriorityLow))

	// Ранги срочности строго упорядочены.
	assert.Less(t, PriorityRank(PriorityCritical), PriorityRank(PriorityHigh))
	assert.Less(t, PriorityRank(PriorityHigh), PriorityRank(PriorityNormal))
	assert.Less(t, PriorityRank(PriorityNormal), PriorityRank(PriorityLow))
}

func TestCanAssignMasters(t *testing.T) {
	assert.True(t, CanAssignMasters(RoleAdmin))
	assert.True(t, CanAssignMasters(RoleDirector))
	assert.True(t, CanAssignMasters(RoleManager))
	assert.False(t, CanAssignMasters(RoleMaster))
	assert.False(t, CanAssignMasters(Role("client")))
}
