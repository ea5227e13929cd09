package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repair-system/internal/dto"
	apperrors "repair-system/pkg/errors"
)

func TestWorkflowService_Integration_TransitionAppendsHistory(t *testing.T) {
	require.NotNil(t, testPool, "testPool не инициализирован")
	cleanupTables(t, testPool)
	ticketSvc := newTicketService(testPool)
	workflowSvc := newWorkflowService(testPool)

	res := mustCreateTicket(t, ticketSvc, "89123456789")

	updated, err := workflowSvc.TransitionStatus(context.Background(), res.TicketID,
		dto.TransitionStatusDTO{Status: "Diagnostics"})
	require.NoError(t, err)
	assert.Equal(t, "Diagnostics", updated.Status)

	history, err := ticketSvc.GetTicketHistory(context.Background(), res.TicketID)
	require.NoError(t, err)
	require.Len(t, history.StatusChanges, 1)

	entry := history.StatusChanges[0]
	require.NotNil(t, entry.OldStatus)
	assert.Equal(t, "Accepted", *entry.OldStatus)
	assert.Equal(t, "Diagnostics", entry.NewStatus)
	assert.Equal(t, "status changed from Accepted to Diagnostics", entry.Comment)
}

func TestWorkflowService_Integration_SameStatusIsNoOp(t *testing.T) {
	cleanupTables(t, testPool)
	ticketSvc := newTicketService(testPool)
	workflowSvc := newWorkflowService(testPool)

	res := mustCreateTicket(t, ticketSvc, "89123456789")

	_, err := workflowSvc.TransitionStatus(context.Background(), res.TicketID,
		dto.TransitionStatusDTO{Status: "Accepted"})
	require.NoError(t, err)

	assert.Equal(t, 0, countRows(t, testPool, `SELECT COUNT(*) FROM status_history`),
		"переход в тот же статус не должен попадать в журнал")
}

func TestWorkflowService_Integration_InvalidStatusRejected(t *testing.T) {
	cleanupTables(t, testPool)
	ticketSvc := newTicketService(testPool)
	workflowSvc := newWorkflowService(testPool)

	res := mustCreateTicket(t, ticketSvc, "89123456789")

	_, err := workflowSvc.TransitionStatus(context.Background(), res.TicketID,
		dto.TransitionStatusDTO{Status: "Repaired"})
	require.Error(t, err)

	var invalidInput *apperrors.InvalidInputError
	require.True(t, errors.As(err, &invalidInput))
	assert.Contains(t, invalidInput.Message, "ReadyForPickup", "текст ошибки перечисляет допустимые статусы")
	assert.Equal(t, 0, countRows(t, testPool, `SELECT COUNT(*) FROM status_history`))
}

func TestWorkflowService_Integration_IssuedStampsCompletionOnce(t *testing.T) {
	cleanupTables(t, testPool)
	ticketSvc := newTicketService(testPool)
	workflowSvc := newWorkflowService(testPool)

	res := mustCreateTicket(t, ticketSvc, "89123456789")

	issued, err := workflowSvc.TransitionStatus(context.Background(), res.TicketID,
		dto.TransitionStatusDTO{Status: "Issued"})
	require.NoError(t, err)
	require.NotNil(t, issued.ActualCompletion)
	firstCompletion := *issued.ActualCompletion

	// Уводим заявку из Issued и возвращаем обратно: момент завершения
	// не должен перезаписаться.
	_, err = workflowSvc.TransitionStatus(context.Background(), res.TicketID,
		dto.TransitionStatusDTO{Status: "Testing"})
	require.NoError(t, err)

	reissued, err := workflowSvc.TransitionStatus(context.Background(), res.TicketID,
		dto.TransitionStatusDTO{Status: "Issued"})
	require.NoError(t, err)
	require.NotNil(t, reissued.ActualCompletion)
	assert.Equal(t, firstCompletion, *reissued.ActualCompletion)
}

func TestWorkflowService_Integration_TerminalStatusFreesMasterLoad(t *testing.T) {
	cleanupTables(t, testPool)
	managerID, masterA, _ := seedStaff(t, testPool)
	ticketSvc := newTicketService(testPool)
	workflowSvc := newWorkflowService(testPool)
	assignmentSvc := newAssignmentService(testPool)

	res := mustCreateTicket(t, ticketSvc, "89123456789")
	_, err := assignmentSvc.AssignMaster(ctxWithUser(managerID), res.TicketID, dto.AssignMasterDTO{MasterID: masterA})
	require.NoError(t, err)
	assert.Equal(t, 1, masterLoad(t, masterA))

	_, err = workflowSvc.TransitionStatus(context.Background(), res.TicketID,
		dto.TransitionStatusDTO{Status: "ReadyForPickup"})
	require.NoError(t, err)
	assert.Equal(t, 0, masterLoad(t, masterA), "завершённая заявка не входит в загрузку")

	// Возврат в работу снова учитывается.
	_, err = workflowSvc.TransitionStatus(context.Background(), res.TicketID,
		dto.TransitionStatusDTO{Status: "InRepair"})
	require.NoError(t, err)
	assert.Equal(t, 1, masterLoad(t, masterA))
}

func TestWorkflowService_Integration_ArchivedTicketRejected(t *testing.T) {
	cleanupTables(t, testPool)
	ticketSvc := newTicketService(testPool)
	workflowSvc := newWorkflowService(testPool)

	res := mustCreateTicket(t, ticketSvc, "89123456789")
	require.NoError(t, ticketSvc.ArchiveTicket(context.Background(), res.TicketID))

	_, err := workflowSvc.TransitionStatus(context.Background(), res.TicketID,
		dto.TransitionStatusDTO{Status: "Diagnostics"})
	assert.ErrorIs(t, err, apperrors.ErrTicketArchived)
}

func masterLoad(t *testing.T, masterID int) int {
	t.Helper()
	var n int
	require.NoError(t, testPool.QueryRow(context.Background(),
		`SELECT current_repairs_count FROM users WHERE id = $1`, masterID).Scan(&n))
	return n
}
