package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"repair-system/internal/dto"
)

type DashboardRepositoryInterface interface {
	TotalAndActive(ctx context.Context) (total int, active int, err error)
	CompletedByMonth(ctx context.Context) (thisMonth int, lastMonth int, err error)
	AvgCostAndDuration(ctx context.Context) (avgCost float64, avgDays float64, err error)
	MonthlyRevenue(ctx context.Context) (float64, error)
	StatusCounts(ctx context.Context) ([]dto.StatusCountDTO, error)
	PriorityCounts(ctx context.Context) ([]dto.PriorityCountDTO, error)
	TopMasters(ctx context.Context, limit uint64) ([]dto.TopMasterDTO, error)
	WeeklyChart(ctx context.Context) ([]dto.ChartPointDTO, error)
}

type DashboardRepository struct {
	storage *pgxpool.Pool
}

func NewDashboardRepository(storage *pgxpool.Pool) DashboardRepositoryInterface {
	return &DashboardRepository{storage: storage}
}

func (r *DashboardRepository) TotalAndActive(ctx context.Context) (int, int, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE is_archived = FALSE),
			COUNT(*) FILTER (WHERE is_archived = FALSE AND status NOT IN ('ReadyForPickup', 'Issued'))
		FROM tickets`

	var total, active int
	if err := r.storage.QueryRow(ctx, query).Scan(&total, &active); err != nil {
		return 0, 0, fmt.Errorf("ошибка подсчёта заявок: %w", err)
	}
	return total, active, nil
}

// CompletedByMonth считает выданные заявки за текущий и предыдущий
// календарный месяц по моменту фактического завершения.
func (r *DashboardRepository) CompletedByMonth(ctx context.Context) (int, int, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE date_trunc('month', actual_completion) = date_trunc('month', NOW())),
			COUNT(*) FILTER (WHERE date_trunc('month', actual_completion) = date_trunc('month', NOW() - INTERVAL '1 month'))
		FROM tickets
		WHERE status = 'Issued' AND actual_completion IS NOT NULL`

	var thisMonth, lastMonth int
	if err := r.storage.QueryRow(ctx, query).Scan(&thisMonth, &lastMonth); err != nil {
		return 0, 0, fmt.Errorf("ошибка подсчёта завершённых по месяцам: %w", err)
	}
	return thisMonth, lastMonth, nil
}

func (r *DashboardRepository) AvgCostAndDuration(ctx context.Context) (float64, float64, error) {
	query := `
		SELECT
			COALESCE(AVG(final_cost) FILTER (WHERE final_cost IS NOT NULL), 0),
			COALESCE(AVG(EXTRACT(EPOCH FROM (actual_completion - created_at)) / 86400)
				FILTER (WHERE actual_completion IS NOT NULL), 0)
		FROM tickets
		WHERE is_archived = FALSE`

	var avgCost, avgDays float64
	if err := r.storage.QueryRow(ctx, query).Scan(&avgCost, &avgDays); err != nil {
		return 0, 0, fmt.Errorf("ошибка подсчёта средних показателей: %w", err)
	}
	return avgCost, avgDays, nil
}

func (r *DashboardRepository) MonthlyRevenue(ctx context.Context) (float64, error) {
	query := `
		SELECT COALESCE(SUM(final_cost), 0)
		FROM tickets
		WHERE status = 'Issued'
		  AND actual_completion IS NOT NULL
		  AND date_trunc('month', actual_completion) = date_trunc('month', NOW())`

	var revenue float64
	if err := r.storage.QueryRow(ctx, query).Scan(&revenue); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта выручки за месяц: %w", err)
	}
	return revenue, nil
}

func (r *DashboardRepository) StatusCounts(ctx context.Context) ([]dto.StatusCountDTO, error) {
	query, args, err := sq.Select("status", "COUNT(*)").
		From("tickets").
		Where(sq.Eq{"is_archived": false}).
		GroupBy("status").
		OrderBy("COUNT(*) DESC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса по статусам: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта по статусам: %w", err)
	}
	defer rows.Close()

	stats := make([]dto.StatusCountDTO, 0)
	for rows.Next() {
		var item dto.StatusCountDTO
		if err := rows.Scan(&item.Status, &item.Count); err != nil {
			return nil, fmt.Errorf("ошибка сканирования статистики статусов: %w", err)
		}
		stats = append(stats, item)
	}
	return stats, rows.Err()
}

func (r *DashboardRepository) PriorityCounts(ctx context.Context) ([]dto.PriorityCountDTO, error) {
	query, args, err := sq.Select("priority", "COUNT(*)").
		From("tickets").
		Where(sq.Eq{"is_archived": false}).
		Where("status NOT IN ('ReadyForPickup', 'Issued')").
		GroupBy("priority").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса по приоритетам: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта по приоритетам: %w", err)
	}
	defer rows.Close()

	stats := make([]dto.PriorityCountDTO, 0)
	for rows.Next() {
		var item dto.PriorityCountDTO
		if err := rows.Scan(&item.Priority, &item.Count); err != nil {
			return nil, fmt.Errorf("ошибка сканирования статистики приоритетов: %w", err)
		}
		stats = append(stats, item)
	}
	return stats, rows.Err()
}

// TopMasters — лучшие мастера за последние 30 дней по числу выданных
// заявок, вторым критерием — средняя длительность ремонта.
func (r *DashboardRepository) TopMasters(ctx context.Context, limit uint64) ([]dto.TopMasterDTO, error) {
	query, args, err := sq.Select(
		"u.full_name",
		"COUNT(t.id)",
		"COALESCE(AVG(EXTRACT(EPOCH FROM (t.actual_completion - t.created_at)) / 86400), 0)",
	).
		From("tickets t").
		Join("users u ON t.assigned_master_id = u.id").
		Where("t.status = 'Issued'").
		Where("t.actual_completion >= NOW() - INTERVAL '30 days'").
		GroupBy("u.id", "u.full_name").
		OrderBy("COUNT(t.id) DESC", "AVG(EXTRACT(EPOCH FROM (t.actual_completion - t.created_at)))").
		Limit(limit).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса лучших мастеров: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения лучших мастеров: %w", err)
	}
	defer rows.Close()

	masters := make([]dto.TopMasterDTO, 0)
	for rows.Next() {
		var item dto.TopMasterDTO
		if err := rows.Scan(&item.FullName, &item.CompletedRepairs, &item.AvgDays); err != nil {
			return nil, fmt.Errorf("ошибка сканирования лучшего мастера: %w", err)
		}
		masters = append(masters, item)
	}
	return masters, rows.Err()
}

// WeeklyChart — по точке на каждый из последних 7 дней, включая пустые.
func (r *DashboardRepository) WeeklyChart(ctx context.Context) ([]dto.ChartPointDTO, error) {
	query := `
		SELECT
			to_char(d.day, 'YYYY-MM-DD'),
			COALESCE(created.cnt, 0),
			COALESCE(completed.cnt, 0)
		FROM generate_series(CURRENT_DATE - INTERVAL '6 days', CURRENT_DATE, '1 day') AS d(day)
		LEFT JOIN (
			SELECT created_at::date AS day, COUNT(*) AS cnt
			FROM tickets GROUP BY created_at::date
		) created ON created.day = d.day::date
		LEFT JOIN (
			SELECT actual_completion::date AS day, COUNT(*) AS cnt
			FROM tickets WHERE actual_completion IS NOT NULL
			GROUP BY actual_completion::date
		) completed ON completed.day = d.day::date
		ORDER BY d.day`

	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения недельного графика: %w", err)
	}
	defer rows.Close()

	points := make([]dto.ChartPointDTO, 0, 7)
	for rows.Next() {
		var p dto.ChartPointDTO
		if err := rows.Scan(&p.Label, &p.Created, &p.Completed); err != nil {
			return nil, fmt.Errorf("ошибка сканирования точки графика: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
