package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"repair-system/internal/dto"
	"repair-system/internal/entities"
	"repair-system/pkg/constants"
	apperrors "repair-system/pkg/errors"
	"repair-system/pkg/utils"
)

type UserRepositoryInterface interface {
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	FindByID(ctx context.Context, id int) (*entities.User, error)
	FindMasterInTx(ctx context.Context, q querier, masterID int) (*entities.User, error)
	Create(ctx context.Context, d dto.CreateUserDTO, passwordHash string) (int, error)
	ListAvailableMasters(ctx context.Context) ([]dto.MasterDTO, error)
	MastersDashboard(ctx context.Context) ([]dto.MasterDashboardDTO, error)
	ListMasterActiveTickets(ctx context.Context, masterID int) ([]dto.WorkloadTicketDTO, error)
	MasterStats(ctx context.Context, masterID int) (*dto.MasterWorkloadStatsDTO, error)
	SetAvailability(ctx context.Context, masterID int, isAvailable bool) error
	UpdateLastLogin(ctx context.Context, userID int) error
}

type UserRepository struct {
	storage *pgxpool.Pool
}

func NewUserRepository(storage *pgxpool.Pool) UserRepositoryInterface {
	return &UserRepository{storage: storage}
}

const userSelect = `
	SELECT id, username, email, password_hash, full_name, role, phone,
	       specialization, is_active, is_available, max_concurrent_repairs,
	       current_repairs_count, created_at, last_login
	FROM users`

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Role,
		&u.Phone, &u.Specialization, &u.IsActive, &u.IsAvailable,
		&u.MaxConcurrentRepairs, &u.CurrentRepairsCount, &u.CreatedAt, &u.LastLogin,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	row := r.storage.QueryRow(ctx, userSelect+` WHERE username = $1 AND is_active = TRUE`, username)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска пользователя по логину: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (*entities.User, error) {
	row := r.storage.QueryRow(ctx, userSelect+` WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}
	return u, nil
}

// FindMasterInTx читает мастера внутри транзакции назначения. Кандидат
// обязан существовать, иметь роль master и быть активным.
func (r *UserRepository) FindMasterInTx(ctx context.Context, q querier, masterID int) (*entities.User, error) {
	row := q.QueryRow(ctx,
		userSelect+` WHERE id = $1 AND role = $2 AND is_active = TRUE`,
		masterID, string(constants.RoleMaster),
	)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMasterNotFound
		}
		return nil, fmt.Errorf("ошибка поиска мастера: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, d dto.CreateUserDTO, passwordHash string) (int, error) {
	query := `
		INSERT INTO users (username, email, password_hash, full_name, role, phone, specialization, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (username) DO NOTHING
		RETURNING id`

	var id int
	err := r.storage.QueryRow(ctx, query,
		d.Username, d.Email, passwordHash, d.FullName, d.Role,
		utils.StringToNullString(utils.NormalizePhone(d.Phone)),
		utils.StringToNullString(d.Specialization),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, apperrors.ErrUsernameTaken
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return id, nil
}

// ListAvailableMasters возвращает мастеров с незаполненной ёмкостью,
// отсортированных от наименее загруженного.
func (r *UserRepository) ListAvailableMasters(ctx context.Context) ([]dto.MasterDTO, error) {
	query := `
		SELECT id, full_name, phone, specialization, is_available,
		       max_concurrent_repairs, current_repairs_count
		FROM users
		WHERE role = $1 AND is_active = TRUE AND is_available = TRUE
		  AND current_repairs_count < max_concurrent_repairs
		ORDER BY current_repairs_count, full_name`

	rows, err := r.storage.Query(ctx, query, string(constants.RoleMaster))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка мастеров: %w", err)
	}
	defer rows.Close()

	masters := make([]dto.MasterDTO, 0)
	for rows.Next() {
		var (
			m                     dto.MasterDTO
			phone, specialization sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.FullName, &phone, &specialization,
			&m.IsAvailable, &m.MaxConcurrentRepairs, &m.CurrentRepairsCount); err != nil {
			return nil, fmt.Errorf("ошибка сканирования мастера: %w", err)
		}
		m.Phone = utils.NullStringToString(phone)
		m.Specialization = utils.NullStringToString(specialization)
		masters = append(masters, m)
	}
	return masters, rows.Err()
}

// MastersDashboard — сводка по всем активным мастерам: текущая загрузка
// и число выдач за последние 7 дней, самые загруженные сверху.
func (r *UserRepository) MastersDashboard(ctx context.Context) ([]dto.MasterDashboardDTO, error) {
	query := `
		SELECT
			u.id, u.full_name, u.specialization, u.is_available,
			COUNT(t.id) FILTER (WHERE t.is_archived = FALSE
				AND t.status NOT IN ('ReadyForPickup', 'Issued')) AS active_repairs,
			COUNT(t.id) FILTER (WHERE t.status = 'Issued'
				AND t.created_at >= NOW() - INTERVAL '7 days') AS completed_this_week
		FROM users u
		LEFT JOIN tickets t ON t.assigned_master_id = u.id
		WHERE u.role = $1 AND u.is_active = TRUE
		GROUP BY u.id, u.full_name, u.specialization, u.is_available
		ORDER BY active_repairs DESC, u.full_name`

	rows, err := r.storage.Query(ctx, query, string(constants.RoleMaster))
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сводки по мастерам: %w", err)
	}
	defer rows.Close()

	masters := make([]dto.MasterDashboardDTO, 0)
	for rows.Next() {
		var (
			m              dto.MasterDashboardDTO
			specialization sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.FullName, &specialization, &m.IsAvailable,
			&m.ActiveRepairs, &m.CompletedThisWeek); err != nil {
			return nil, fmt.Errorf("ошибка сканирования сводки мастера: %w", err)
		}
		m.Specialization = utils.NullStringToString(specialization)
		masters = append(masters, m)
	}
	return masters, rows.Err()
}

func (r *UserRepository) ListMasterActiveTickets(ctx context.Context, masterID int) ([]dto.WorkloadTicketDTO, error) {
	query := `
		SELECT t.ticket_id, t.status, t.priority, COALESCE(c.full_name, ''), t.device_type, t.created_at
		FROM tickets t
		LEFT JOIN clients c ON t.client_id = c.id
		WHERE t.assigned_master_id = $1
		  AND t.is_archived = FALSE
		  AND t.status NOT IN ('ReadyForPickup', 'Issued')
		ORDER BY
			CASE t.priority
				WHEN 'Critical' THEN 1
				WHEN 'High' THEN 2
				WHEN 'Normal' THEN 3
				WHEN 'Low' THEN 4
			END,
			t.created_at`

	rows, err := r.storage.Query(ctx, query, masterID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения заявок мастера: %w", err)
	}
	defer rows.Close()

	tickets := make([]dto.WorkloadTicketDTO, 0)
	for rows.Next() {
		var (
			t         dto.WorkloadTicketDTO
			createdAt sql.NullTime
		)
		if err := rows.Scan(&t.TicketID, &t.Status, &t.Priority, &t.ClientName, &t.DeviceType, &createdAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования заявки мастера: %w", err)
		}
		if createdAt.Valid {
			t.CreatedAt = utils.FormatTime(createdAt.Time)
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// MasterStats — сводка за последние 30 дней: всего назначений, сколько
// доведено до выдачи и средняя длительность ремонта в часах.
func (r *UserRepository) MasterStats(ctx context.Context, masterID int) (*dto.MasterWorkloadStatsDTO, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE t.status = 'Issued'),
			COALESCE(AVG(EXTRACT(EPOCH FROM (t.actual_completion - t.created_at)) / 3600)
				FILTER (WHERE t.actual_completion IS NOT NULL), 0)
		FROM tickets t
		WHERE t.assigned_master_id = $1
		  AND t.created_at >= NOW() - INTERVAL '30 days'`

	var stats dto.MasterWorkloadStatsDTO
	err := r.storage.QueryRow(ctx, query, masterID).Scan(
		&stats.TotalRepairs, &stats.CompletedRepairs, &stats.AvgRepairHours,
	)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения статистики мастера: %w", err)
	}
	return &stats, nil
}

func (r *UserRepository) SetAvailability(ctx context.Context, masterID int, isAvailable bool) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE users SET is_available = $1 WHERE id = $2 AND role = $3`,
		isAvailable, masterID, string(constants.RoleMaster),
	)
	if err != nil {
		return fmt.Errorf("ошибка смены доступности мастера: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMasterNotFound
	}
	return nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, userID int) error {
	_, err := r.storage.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("ошибка обновления времени входа: %w", err)
	}
	return nil
}
