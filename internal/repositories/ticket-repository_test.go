package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsTicketIDCollision(t *testing.T) {
	collision := &pgconn.PgError{Code: "23505", ConstraintName: "tickets_ticket_id_key"}
	assert.True(t, IsTicketIDCollision(collision))
	assert.True(t, IsTicketIDCollision(fmt.Errorf("ошибка создания заявки: %w", collision)))

	assert.False(t, IsTicketIDCollision(nil))
	assert.False(t, IsTicketIDCollision(errors.New("обычная ошибка")))
	assert.False(t, IsTicketIDCollision(&pgconn.PgError{Code: "23505", ConstraintName: "clients_phone_key"}))
	assert.False(t, IsTicketIDCollision(&pgconn.PgError{Code: "23503", ConstraintName: "tickets_ticket_id_key"}))
}
