package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repair-system/internal/dto"
	apperrors "repair-system/pkg/errors"
)

func TestAssignmentService_Integration_AssignMaster(t *testing.T) {
	require.NotNil(t, testPool, "testPool не инициализирован")
	cleanupTables(t, testPool)
	managerID, masterA, _ := seedStaff(t, testPool)
	ticketSvc := newTicketService(testPool)
	assignmentSvc := newAssignmentService(testPool)

	res := mustCreateTicket(t, ticketSvc, "89123456789")

	updated, err := assignmentSvc.AssignMaster(ctxWithUser(managerID), res.TicketID, dto.AssignMasterDTO{MasterID: masterA})
	require.NoError(t, err)

	require.NotNil(t, updated.MasterName)
	assert.Equal(t, "Мастер А", *updated.MasterName)
	require.NotNil(t, updated.AssignedByName)
	assert.Equal(t, "Тестовый Менеджер", *updated.AssignedByName)

	// Счётчик равен фактическому числу активных заявок мастера.
	assert.Equal(t, 1, masterLoad(t, masterA))
	assert.Equal(t, 1, countRows(t, testPool,
		`SELECT COUNT(*) FROM assignment_history WHERE master_id = $1 AND unassigned_at IS NULL`, masterA))
}

func TestAssignmentService_Integration_AssignSameMasterIsNoOp(t *testing.T) {
	cleanupTables(t, testPool)
	managerID, masterA, _ := seedStaff(t, testPool)
	ticketSvc := newTicketService(testPool)
	assignmentSvc := newAssignmentService(testPool)

	res := mustCreateTicket(t, ticketSvc, "89123456789")

	_, err := assignmentSvc.AssignMaster(ctxWithUser(managerID), res.TicketID, dto.AssignMasterDTO{MasterID: masterA})
	require.NoError(t, err)
	_, err = assignmentSvc.AssignMaster(ctxWithUser(managerID), res.TicketID, dto.AssignMasterDTO{MasterID: masterA})
	require.NoError(t, err)

	assert.Equal(t, 1, countRows(t, testPool, `SELECT COUNT(*) FROM assignment_history`),
		"повторное назначение того же мастера не плодит записей")
	assert.Equal(t, 1, masterLoad(t, masterA))
}

func TestAssignmentService_Integration_Reassign(t *testing.T) {
	cleanupTables(t, testPool)
	managerID, masterA, masterB := seedStaff(t, testPool)
	ticketSvc := newTicketService(testPool)
	assignmentSvc := newAssignmentService(testPool)

	res := mustCreateTicket(t, ticketSvc, "89123456789")

	_, err := assignmentSvc.AssignMaster(ctxWithUser(managerID), res.TicketID, dto.AssignMasterDTO{MasterID: masterA})
	require.NoError(t, err)
	updated, err := assignmentSvc.AssignMaster(ctxWithUser(managerID), res.TicketID, dto.AssignMasterDTO{MasterID: masterB})
	require.NoError(t, err)

	require.NotNil(t, updated.MasterName)
	assert.Equal(t, "Мастер Б", *updated.MasterName)

	// Загрузка обоих мастеров пересчитана.
	assert.Equal(t, 0, masterLoad(t, masterA))
	assert.Equal(t, 1, masterLoad(t, masterB))

	// Две записи истории, открыта только запись нового мастера.
	assert.Equal(t, 2, countRows(t, testPool, `SELECT COUNT(*) FROM assignment_history`))
	assert.Equal(t, 1, countRows(t, testPool, `SELECT COUNT(*) FROM assignment_history WHERE unassigned_at IS NULL`))
	assert.Equal(t, 1, countRows(t, testPool,
		`SELECT COUNT(*) FROM assignment_history WHERE master_id = $1 AND unassigned_at IS NOT NULL AND reason = 'reassigned'`, masterA))
}

func TestAssignmentService_Integration_Unassign(t *testing.T) {
	cleanupTables(t, testPool)
	managerID, masterA, _ := seedStaff(t, testPool)
	ticketSvc := newTicketService(testPool)
	assignmentSvc := newAssignmentService(testPool)

	res := mustCreateTicket(t, ticketSvc, "89123456789")
	_, err := assignmentSvc.AssignMaster(ctxWithUser(managerID), res.TicketID, dto.AssignMasterDTO{MasterID: masterA})
	require.NoError(t, err)

	updated, err := assignmentSvc.UnassignMaster(ctxWithUser(managerID), res.TicketID, dto.UnassignMasterDTO{})
	require.NoError(t, err)

	assert.Nil(t, updated.MasterName)
	assert.Equal(t, 0, masterLoad(t, masterA))
	assert.Equal(t, 1, countRows(t, testPool,
		`SELECT COUNT(*) FROM assignment_history WHERE unassigned_at IS NOT NULL AND reason = 'removed from ticket'`))
}

func TestAssignmentService_Integration_UnassignWithoutMasterFails(t *testing.T) {
	cleanupTables(t, testPool)
	managerID, _, _ := seedStaff(t, testPool)
	ticketSvc := newTicketService(testPool)
	assignmentSvc := newAssignmentService(testPool)

	res := mustCreateTicket(t, ticketSvc, "89123456789")

	_, err := assignmentSvc.UnassignMaster(ctxWithUser(managerID), res.TicketID, dto.UnassignMasterDTO{})
	assert.ErrorIs(t, err, apperrors.ErrNoAssignedMaster)
	assert.Equal(t, 0, countRows(t, testPool, `SELECT COUNT(*) FROM assignment_history`))
}

func TestAssignmentService_Integration_AssignUnknownMaster(t *testing.T) {
	cleanupTables(t, testPool)
	managerID, _, _ := seedStaff(t, testPool)
	ticketSvc := newTicketService(testPool)
	assignmentSvc := newAssignmentService(testPool)

	res := mustCreateTicket(t, ticketSvc, "89123456789")

	_, err := assignmentSvc.AssignMaster(ctxWithUser(managerID), res.TicketID, dto.AssignMasterDTO{MasterID: 9999})
	assert.ErrorIs(t, err, apperrors.ErrMasterNotFound)

	// Менеджер не может быть назначен как мастер.
	_, err = assignmentSvc.AssignMaster(ctxWithUser(managerID), res.TicketID, dto.AssignMasterDTO{MasterID: managerID})
	assert.ErrorIs(t, err, apperrors.ErrMasterNotFound)
}

func TestAssignmentService_Integration_MasterWorkload(t *testing.T) {
	cleanupTables(t, testPool)
	managerID, masterA, _ := seedStaff(t, testPool)
	ticketSvc := newTicketService(testPool)
	assignmentSvc := newAssignmentService(testPool)

	first := mustCreateTicket(t, ticketSvc, "89123456781")
	second, err := ticketSvc.CreateTicket(context.Background(), dto.CreateTicketDTO{
		ClientName:         "Клиент Два",
		Phone:              "89123456782",
		DeviceType:         "Смартфон",
		ProblemDescription: "Разбит экран",
		Priority:           "Critical",
	})
	require.NoError(t, err)

	_, err = assignmentSvc.AssignMaster(ctxWithUser(managerID), first.TicketID, dto.AssignMasterDTO{MasterID: masterA})
	require.NoError(t, err)
	_, err = assignmentSvc.AssignMaster(ctxWithUser(managerID), second.TicketID, dto.AssignMasterDTO{MasterID: masterA})
	require.NoError(t, err)

	workload, err := assignmentSvc.GetMasterWorkload(context.Background(), masterA)
	require.NoError(t, err)
	require.Len(t, workload.ActiveTickets, 2)
	assert.Equal(t, "Critical", workload.ActiveTickets[0].Priority, "срочные заявки идут первыми")
	assert.Equal(t, 2, workload.Stats.TotalRepairs)
	assert.Equal(t, 0, workload.Stats.CompletedRepairs)
}

func TestAssignmentService_Integration_AvailableMasters(t *testing.T) {
	cleanupTables(t, testPool)
	managerID, masterA, masterB := seedStaff(t, testPool)
	ticketSvc := newTicketService(testPool)
	assignmentSvc := newAssignmentService(testPool)

	res := mustCreateTicket(t, ticketSvc, "89123456789")
	_, err := assignmentSvc.AssignMaster(ctxWithUser(managerID), res.TicketID, dto.AssignMasterDTO{MasterID: masterA})
	require.NoError(t, err)

	masters, err := assignmentSvc.ListAvailableMasters(context.Background())
	require.NoError(t, err)
	require.Len(t, masters, 2)
	assert.Equal(t, masterB, masters[0].ID, "наименее загруженный мастер идёт первым")

	// Недоступный мастер выпадает из выдачи.
	require.NoError(t, assignmentSvc.SetAvailability(context.Background(), masterB, false))
	masters, err = assignmentSvc.ListAvailableMasters(context.Background())
	require.NoError(t, err)
	require.Len(t, masters, 1)
	assert.Equal(t, masterA, masters[0].ID)
}

func TestAssignmentService_Integration_MastersDashboard(t *testing.T) {
	cleanupTables(t, testPool)
	managerID, masterA, masterB := seedStaff(t, testPool)
	ticketSvc := newTicketService(testPool)
	workflowSvc := newWorkflowService(testPool)
	assignmentSvc := newAssignmentService(testPool)

	first := mustCreateTicket(t, ticketSvc, "89123456789")
	second := mustCreateTicket(t, ticketSvc, "89123456788")
	third := mustCreateTicket(t, ticketSvc, "89123456787")

	_, err := assignmentSvc.AssignMaster(ctxWithUser(managerID), first.TicketID, dto.AssignMasterDTO{MasterID: masterA})
	require.NoError(t, err)
	_, err = assignmentSvc.AssignMaster(ctxWithUser(managerID), second.TicketID, dto.AssignMasterDTO{MasterID: masterA})
	require.NoError(t, err)
	_, err = assignmentSvc.AssignMaster(ctxWithUser(managerID), third.TicketID, dto.AssignMasterDTO{MasterID: masterB})
	require.NoError(t, err)

	_, err = workflowSvc.TransitionStatus(ctxWithUser(managerID), third.TicketID,
		dto.TransitionStatusDTO{Status: "Issued"})
	require.NoError(t, err)

	dashboard, err := assignmentSvc.GetMastersDashboard(context.Background())
	require.NoError(t, err)
	require.Len(t, dashboard, 2)

	// Самый загруженный мастер идёт первым.
	assert.Equal(t, masterA, dashboard[0].ID)
	assert.Equal(t, 2, dashboard[0].ActiveRepairs)
	assert.Equal(t, 0, dashboard[0].CompletedThisWeek)
	assert.Equal(t, "Ноутбуки", dashboard[0].Specialization)

	// Выданная заявка уходит из загрузки, но попадает в выдачи недели.
	assert.Equal(t, masterB, dashboard[1].ID)
	assert.Equal(t, 0, dashboard[1].ActiveRepairs)
	assert.Equal(t, 1, dashboard[1].CompletedThisWeek)
	assert.True(t, dashboard[1].IsAvailable)
}
