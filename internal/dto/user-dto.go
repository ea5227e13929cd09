package dto

type CreateUserDTO struct {
	Username       string `json:"username" validate:"required,min=3,max=50"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8"`
	FullName       string `json:"full_name" validate:"required,max=100"`
	Role           string `json:"role" validate:"required,staff_role"`
	Phone          string `json:"phone" validate:"omitempty,ru_phone"`
	Specialization string `json:"specialization" validate:"omitempty,max=100"`
}

type SetAvailabilityDTO struct {
	IsAvailable bool `json:"is_available"`
}

type UserDTO struct {
	ID             int    `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	FullName       string `json:"full_name"`
	Role           string `json:"role"`
	Phone          string `json:"phone,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	IsActive       bool   `json:"is_active"`
	CreatedAt      string `json:"created_at"`
}

type MasterDTO struct {
	ID                   int    `json:"id"`
	FullName             string `json:"full_name"`
	Phone                string `json:"phone,omitempty"`
	Specialization       string `json:"specialization,omitempty"`
	IsAvailable          bool   `json:"is_available"`
	MaxConcurrentRepairs int    `json:"max_concurrent_repairs"`
	CurrentRepairsCount  int    `json:"current_repairs_count"`
}

// MasterDashboardDTO — строка сводки по мастерам для управляющих ролей:
// живая загрузка и выдачи за последние 7 дней.
type MasterDashboardDTO struct {
	ID                int    `json:"id"`
	FullName          string `json:"full_name"`
	Specialization    string `json:"specialization,omitempty"`
	IsAvailable       bool   `json:"is_available"`
	ActiveRepairs     int    `json:"active_repairs"`
	CompletedThisWeek int    `json:"completed_this_week"`
}

// WorkloadTicketDTO — активная заявка мастера в порядке ранга приоритета,
// при равенстве — от старых к новым.
type WorkloadTicketDTO struct {
	TicketID   string `json:"ticket_id"`
	Status     string `json:"status"`
	Priority   string `json:"priority"`
	ClientName string `json:"client_name"`
	DeviceType string `json:"device_type"`
	CreatedAt  string `json:"created_at"`
}

type MasterWorkloadStatsDTO struct {
	TotalRepairs     int     `json:"total_repairs"`
	CompletedRepairs int     `json:"completed_repairs"`
	AvgRepairHours   float64 `json:"avg_repair_hours"`
}

type MasterWorkloadDTO struct {
	ActiveTickets []WorkloadTicketDTO    `json:"active_tickets"`
	Stats         MasterWorkloadStatsDTO `json:"stats"`
}
