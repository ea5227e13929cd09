package dto

type StatusCountDTO struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type PriorityCountDTO struct {
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}

type TopMasterDTO struct {
	FullName         string  `json:"full_name"`
	CompletedRepairs int     `json:"completed_repairs"`
	AvgDays          float64 `json:"avg_days"`
}

type DashboardStatsDTO struct {
	TotalTickets       int                `json:"total_tickets"`
	ActiveTickets      int                `json:"active_tickets"`
	CompletedThisMonth int                `json:"completed_this_month"`
	CompletedLastMonth int                `json:"completed_last_month"`
	GrowthPercentage   float64            `json:"growth_percentage"`
	AvgCost            float64            `json:"avg_cost"`
	AvgRepairDays      float64            `json:"avg_repair_days"`
	MonthlyRevenue     float64            `json:"monthly_revenue"`
	StatusStats        []StatusCountDTO   `json:"status_stats"`
	PriorityStats      []PriorityCountDTO `json:"priority_stats"`
	TopMasters         []TopMasterDTO     `json:"top_masters"`
}

type ChartPointDTO struct {
	Label     string `json:"label"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}
