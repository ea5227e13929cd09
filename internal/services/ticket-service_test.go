package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"repair-system/internal/dto"
	"repair-system/internal/repositories"
	apperrors "repair-system/pkg/errors"
	"repair-system/pkg/utils"
)

func TestTicketService_Integration_CreateTicket(t *testing.T) {
	require.NotNil(t, testPool, "testPool не инициализирован")
	cleanupTables(t, testPool)
	svc := newTicketService(testPool)

	res := mustCreateTicket(t, svc, "8 (912) 345-67-89")

	assert.True(t, strings.HasPrefix(res.TicketID, "RQ"), "номер заявки должен начинаться с RQ")
	assert.Len(t, res.TicketID, 8)
	assert.Equal(t, "Accepted", res.Status)
	assert.Equal(t, "Normal", res.Priority)
	assert.Nil(t, res.ActualCompletion)
	assert.Equal(t, "79123456789", res.ClientPhone, "телефон должен храниться в каноническом виде")

	// Заявка сразу читается по своему номеру.
	found, err := svc.GetTicket(context.Background(), res.TicketID)
	require.NoError(t, err)
	assert.Equal(t, res.TicketID, found.TicketID)
}

func TestTicketService_Integration_CreateTicket_DedupesClientByPhone(t *testing.T) {
	cleanupTables(t, testPool)
	svc := newTicketService(testPool)

	// Один и тот же телефон в разных написаниях.
	mustCreateTicket(t, svc, "89123456789")
	mustCreateTicket(t, svc, "+7 912 345-67-89")

	assert.Equal(t, 1, countRows(t, testPool, `SELECT COUNT(*) FROM clients`), "должен появиться один клиент")

	var totalRepairs int
	require.NoError(t, testPool.QueryRow(context.Background(),
		`SELECT total_repairs FROM clients WHERE phone = '79123456789'`).Scan(&totalRepairs))
	assert.Equal(t, 2, totalRepairs)
}

func TestTicketService_Integration_CreateTicket_RejectsBadPhone(t *testing.T) {
	cleanupTables(t, testPool)
	svc := newTicketService(testPool)

	_, err := svc.CreateTicket(context.Background(), dto.CreateTicketDTO{
		ClientName:         "Иван Петров",
		Phone:              "12345",
		DeviceType:         "Ноутбук",
		ProblemDescription: "Не включается",
	})
	require.Error(t, err)

	var invalidInput *apperrors.InvalidInputError
	assert.True(t, errors.As(err, &invalidInput))
	assert.Equal(t, 0, countRows(t, testPool, `SELECT COUNT(*) FROM tickets`))
}

func TestTicketService_Integration_GetTicket_CaseInsensitive(t *testing.T) {
	cleanupTables(t, testPool)
	svc := newTicketService(testPool)

	res := mustCreateTicket(t, svc, "89123456789")

	found, err := svc.GetTicket(context.Background(), strings.ToLower(res.TicketID))
	require.NoError(t, err)
	assert.Equal(t, res.TicketID, found.TicketID)
}

func TestTicketService_Integration_ArchiveHidesTicket(t *testing.T) {
	cleanupTables(t, testPool)
	svc := newTicketService(testPool)

	res := mustCreateTicket(t, svc, "89123456789")
	require.NoError(t, svc.ArchiveTicket(context.Background(), res.TicketID))

	_, err := svc.GetTicket(context.Background(), res.TicketID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	list, err := svc.ListTickets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTicketService_Integration_UpdateTicket_SparseFields(t *testing.T) {
	cleanupTables(t, testPool)
	svc := newTicketService(testPool)

	res := mustCreateTicket(t, svc, "89123456789")

	updated, err := svc.UpdateTicket(context.Background(), res.TicketID, dto.UpdateTicketDTO{
		Brand:     utils.ToPtr("Lenovo"),
		FinalCost: utils.ToPtr(4500.0),
	})
	require.NoError(t, err)

	assert.Equal(t, "Lenovo", updated.Brand)
	require.NotNil(t, updated.FinalCost)
	assert.Equal(t, 4500.0, *updated.FinalCost)
	// Нетронутые поля сохраняются.
	assert.Equal(t, "Не включается", updated.ProblemDescription)
	assert.Equal(t, "Accepted", updated.Status)
}

func TestTicketService_Integration_UpdateTicket_StatusGoesThroughWorkflow(t *testing.T) {
	cleanupTables(t, testPool)
	svc := newTicketService(testPool)

	res := mustCreateTicket(t, svc, "89123456789")

	updated, err := svc.UpdateTicket(context.Background(), res.TicketID, dto.UpdateTicketDTO{
		Status:  utils.ToPtr("Diagnostics"),
		Comment: utils.ToPtr("принято в диагностику"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Diagnostics", updated.Status)

	// Смена статуса через общее обновление тоже попадает в журнал.
	history, err := svc.GetTicketHistory(context.Background(), res.TicketID)
	require.NoError(t, err)
	require.Len(t, history.StatusChanges, 1)
	assert.Equal(t, "Diagnostics", history.StatusChanges[0].NewStatus)
	assert.Equal(t, "принято в диагностику", history.StatusChanges[0].Comment)
}

func TestTicketService_Integration_ListTickets_PriorityOrdering(t *testing.T) {
	cleanupTables(t, testPool)
	svc := newTicketService(testPool)

	for i, priority := range []string{"Low", "Critical", "Normal", "High"} {
		_, err := svc.CreateTicket(context.Background(), dto.CreateTicketDTO{
			ClientName:         "Клиент",
			Phone:              "8912345678" + string(rune('0'+i)),
			DeviceType:         "ПК",
			ProblemDescription: "Шумит",
			Priority:           priority,
		})
		require.NoError(t, err)
	}

	list, err := svc.ListTickets(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 4)
	assert.Equal(t, "Critical", list[0].Priority)
	assert.Equal(t, "High", list[1].Priority)
	assert.Equal(t, "Normal", list[2].Priority)
	assert.Equal(t, "Low", list[3].Priority)
}

func TestTicketService_Integration_PublicStatus(t *testing.T) {
	cleanupTables(t, testPool)
	svc := newTicketService(testPool)

	res := mustCreateTicket(t, svc, "89123456789")

	status, err := svc.GetPublicStatus(context.Background(), res.TicketID)
	require.NoError(t, err)
	assert.Equal(t, res.TicketID, status.TicketID)
	assert.Equal(t, "Accepted", status.Status)

	_, err = svc.GetPublicStatus(context.Background(), "RQ000000")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// collidingTxManager имитирует гонку по номеру заявки: первые collisions
// транзакций завершаются нарушением уникальности, дальше работает настоящий
// менеджер.
type collidingTxManager struct {
	inner      repositories.TxManagerInterface
	collisions int
}

func (m *collidingTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if m.collisions > 0 {
		m.collisions--
		return &pgconn.PgError{Code: "23505", ConstraintName: "tickets_ticket_id_key"}
	}
	return m.inner.RunInTransaction(ctx, fn)
}

func TestTicketService_Integration_CreateRetriesOnTicketIDCollision(t *testing.T) {
	cleanupTables(t, testPool)

	txm := &collidingTxManager{inner: repositories.NewTxManager(testPool), collisions: maxCreateAttempts - 1}
	svc := NewTicketService(
		txm,
		repositories.NewTicketRepository(testPool),
		repositories.NewClientRepository(testPool),
		repositories.NewStatusHistoryRepository(testPool),
		repositories.NewAssignmentRepository(testPool),
		zap.NewNop(),
	)

	res := mustCreateTicket(t, svc, "89123456789")
	assert.Equal(t, 0, txm.collisions, "все коллизии должны быть пройдены повторами")
	assert.Equal(t, 1, countRows(t, testPool, `SELECT COUNT(*) FROM tickets WHERE ticket_id = $1`, res.TicketID))
}

func TestTicketService_Integration_CreateFailsAfterRepeatedCollisions(t *testing.T) {
	cleanupTables(t, testPool)

	txm := &collidingTxManager{inner: repositories.NewTxManager(testPool), collisions: maxCreateAttempts}
	svc := NewTicketService(
		txm,
		repositories.NewTicketRepository(testPool),
		repositories.NewClientRepository(testPool),
		repositories.NewStatusHistoryRepository(testPool),
		repositories.NewAssignmentRepository(testPool),
		zap.NewNop(),
	)

	_, err := svc.CreateTicket(context.Background(), dto.CreateTicketDTO{
		ClientName:         "Иван Петров",
		Phone:              "89123456789",
		DeviceType:         "Ноутбук",
		ProblemDescription: "Не включается",
	})
	require.Error(t, err)
	assert.Equal(t, 0, countRows(t, testPool, `SELECT COUNT(*) FROM tickets`))
}
