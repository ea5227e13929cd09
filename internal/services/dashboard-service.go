package services

import (
	"context"

	"go.uber.org/zap"

	"repair-system/internal/dto"
	"repair-system/internal/repositories"
)

const topMastersLimit = 5

type DashboardServiceInterface interface {
	GetStats(ctx context.Context) (*dto.DashboardStatsDTO, error)
	GetWeeklyChart(ctx context.Context) ([]dto.ChartPointDTO, error)
}

type DashboardService struct {
	dashboardRepo repositories.DashboardRepositoryInterface
	logger        *zap.Logger
}

func NewDashboardService(dashboardRepo repositories.DashboardRepositoryInterface, logger *zap.Logger) DashboardServiceInterface {
	return &DashboardService{dashboardRepo: dashboardRepo, logger: logger}
}

// GetStats собирает сводку по живым данным, без кеширования.
func (s *DashboardService) GetStats(ctx context.Context) (*dto.DashboardStatsDTO, error) {
	total, active, err := s.dashboardRepo.TotalAndActive(ctx)
	if err != nil {
		return nil, err
	}
	thisMonth, lastMonth, err := s.dashboardRepo.CompletedByMonth(ctx)
	if err != nil {
		return nil, err
	}
	avgCost, avgDays, err := s.dashboardRepo.AvgCostAndDuration(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.dashboardRepo.MonthlyRevenue(ctx)
	if err != nil {
		return nil, err
	}
	statusStats, err := s.dashboardRepo.StatusCounts(ctx)
	if err != nil {
		return nil, err
	}
	priorityStats, err := s.dashboardRepo.PriorityCounts(ctx)
	if err != nil {
		return nil, err
	}
	topMasters, err := s.dashboardRepo.TopMasters(ctx, topMastersLimit)
	if err != nil {
		return nil, err
	}

	// Рост месяц к месяцу; при пустом прошлом месяце рост равен нулю,
	// а не бесконечности.
	growth := 0.0
	if lastMonth > 0 {
		growth = float64(thisMonth-lastMonth) / float64(lastMonth) * 100
	}

	return &dto.DashboardStatsDTO{
		TotalTickets:       total,
		ActiveTickets:      active,
		CompletedThisMonth: thisMonth,
		CompletedLastMonth: lastMonth,
		GrowthPercentage:   growth,
		AvgCost:            avgCost,
		AvgRepairDays:      avgDays,
		MonthlyRevenue:     revenue,
		StatusStats:        statusStats,
		PriorityStats:      priorityStats,
		TopMasters:         topMasters,
	}, nil
}

func (s *DashboardService) GetWeeklyChart(ctx context.Context) ([]dto.ChartPointDTO, error) {
	return s.dashboardRepo.WeeklyChart(ctx)
}
