package services

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"repair-system/internal/dto"
	"repair-system/internal/repositories"
	apperrors "repair-system/pkg/errors"
	"repair-system/pkg/utils"
)

func newClientService(pool *pgxpool.Pool) ClientServiceInterface {
	return NewClientService(repositories.NewClientRepository(pool), zap.NewNop())
}

func clientIDByPhone(t *testing.T, phone string) int {
	t.Helper()
	var id int
	require.NoError(t, testPool.QueryRow(context.Background(),
		`SELECT id FROM clients WHERE phone = $1`, phone).Scan(&id))
	return id
}

func TestClientService_Integration_GetClientWithStats(t *testing.T) {
	require.NotNil(t, testPool, "testPool не инициализирован")
	cleanupTables(t, testPool)
	ticketSvc := newTicketService(testPool)
	workflowSvc := newWorkflowService(testPool)
	clientSvc := newClientService(testPool)

	first := mustCreateTicket(t, ticketSvc, "89123456789")
	mustCreateTicket(t, ticketSvc, "89123456789")

	_, err := workflowSvc.TransitionStatus(context.Background(), first.TicketID,
		dto.TransitionStatusDTO{Status: "Issued"})
	require.NoError(t, err)

	client, err := clientSvc.GetClient(context.Background(), clientIDByPhone(t, "79123456789"))
	require.NoError(t, err)

	assert.Equal(t, 2, client.TotalRepairs)
	assert.Equal(t, 1, client.ActiveTickets)
	assert.Equal(t, 1, client.CompletedTickets)
}

func TestClientService_Integration_SearchByPhoneFragment(t *testing.T) {
	cleanupTables(t, testPool)
	ticketSvc := newTicketService(testPool)
	clientSvc := newClientService(testPool)

	mustCreateTicket(t, ticketSvc, "89123456789")
	mustCreateTicket(t, ticketSvc, "89990001122")

	found, err := clientSvc.SearchClients(context.Background(), "(912) 345")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "79123456789", found[0].Phone)

	_, err = clientSvc.SearchClients(context.Background(), "abc")
	assert.Error(t, err, "запрос без цифр отклоняется")
}

func TestClientService_Integration_DeleteGuardedByActiveTickets(t *testing.T) {
	cleanupTables(t, testPool)
	ticketSvc := newTicketService(testPool)
	workflowSvc := newWorkflowService(testPool)
	clientSvc := newClientService(testPool)

	res := mustCreateTicket(t, ticketSvc, "89123456789")
	clientID := clientIDByPhone(t, "79123456789")

	err := clientSvc.DeleteClient(context.Background(), clientID)
	assert.ErrorIs(t, err, apperrors.ErrClientHasActive)

	// После выдачи заявки клиента можно удалить, его заявки уходят в архив.
	_, err = workflowSvc.TransitionStatus(context.Background(), res.TicketID,
		dto.TransitionStatusDTO{Status: "Issued"})
	require.NoError(t, err)

	require.NoError(t, clientSvc.DeleteClient(context.Background(), clientID))
	assert.Equal(t, 0, countRows(t, testPool, `SELECT COUNT(*) FROM clients`))
	assert.Equal(t, 1, countRows(t, testPool, `SELECT COUNT(*) FROM tickets WHERE is_archived = TRUE`))
}

func TestClientService_Integration_UpdateClient(t *testing.T) {
	cleanupTables(t, testPool)
	ticketSvc := newTicketService(testPool)
	clientSvc := newClientService(testPool)

	mustCreateTicket(t, ticketSvc, "89123456789")
	clientID := clientIDByPhone(t, "79123456789")

	updated, err := clientSvc.UpdateClient(context.Background(), clientID, dto.UpdateClientDTO{
		IsVIP: utils.ToPtr(true),
		Notes: utils.ToPtr("постоянный клиент"),
	})
	require.NoError(t, err)
	assert.True(t, updated.IsVIP)
	assert.Equal(t, "постоянный клиент", updated.Notes)
	assert.Equal(t, "Иван Петров", updated.FullName, "нетронутые поля сохраняются")
}
