package dto

type CreateTicketDTO struct {
	ClientName         string   `json:"client_name" validate:"required,max=100"`
	Phone              string   `json:"phone" validate:"required,ru_phone"`
	Email              string   `json:"email" validate:"omitempty,email"`
	DeviceType         string   `json:"device_type" validate:"required,max=50"`
	Brand              string   `json:"brand" validate:"omitempty,max=50"`
	Model              string   `json:"model" validate:"omitempty,max=100"`
	SerialNumber       string   `json:"serial_number" validate:"omitempty,max=100"`
	ProblemDescription string   `json:"problem_description" validate:"required"`
	Priority           string   `json:"priority" validate:"omitempty,ticket_priority"`
	EstimatedCost      *float64 `json:"estimated_cost" validate:"omitempty,gte=0"`
}

// UpdateTicketDTO — разреженное обновление: nil-поля не трогаются,
// неизвестные поля игнорируются на уровне JSON-декодера.
type UpdateTicketDTO struct {
	DeviceType          *string  `json:"device_type" validate:"omitempty,max=50"`
	Brand               *string  `json:"brand" validate:"omitempty,max=50"`
	Model               *string  `json:"model" validate:"omitempty,max=100"`
	SerialNumber        *string  `json:"serial_number" validate:"omitempty,max=100"`
	ProblemDescription  *string  `json:"problem_description"`
	Status              *string  `json:"status" validate:"omitempty,ticket_status"`
	Priority            *string  `json:"priority" validate:"omitempty,ticket_priority"`
	EstimatedCost       *float64 `json:"estimated_cost" validate:"omitempty,gte=0"`
	FinalCost           *float64 `json:"final_cost" validate:"omitempty,gte=0"`
	EstimatedCompletion *string  `json:"estimated_completion" validate:"omitempty,datetime=2006-01-02"`
	Notes               *string  `json:"notes"`
	Comment             *string  `json:"comment"`
}

type TransitionStatusDTO struct {
	Status  string `json:"status" validate:"required,ticket_status"`
	Comment string `json:"comment"`
}

type AssignMasterDTO struct {
	MasterID int `json:"master_id" validate:"required,gt=0"`
}

type UnassignMasterDTO struct {
	Reason string `json:"reason" validate:"omitempty,max=255"`
}

type TicketDTO struct {
	TicketID             string   `json:"ticket_id"`
	ClientName           string   `json:"client_name"`
	ClientPhone          string   `json:"client_phone"`
	ClientIsVIP          bool     `json:"client_is_vip"`
	DeviceType           string   `json:"device_type"`
	Brand                string   `json:"brand,omitempty"`
	Model                string   `json:"model,omitempty"`
	SerialNumber         string   `json:"serial_number,omitempty"`
	ProblemDescription   string   `json:"problem_description"`
	Status               string   `json:"status"`
	Priority             string   `json:"priority"`
	EstimatedCost        *float64 `json:"estimated_cost,omitempty"`
	FinalCost            *float64 `json:"final_cost,omitempty"`
	EstimatedCompletion  *string  `json:"estimated_completion,omitempty"`
	ActualCompletion     *string  `json:"actual_completion,omitempty"`
	MasterName           *string  `json:"master_name,omitempty"`
	MasterSpecialization *string  `json:"master_specialization,omitempty"`
	AssignedByName       *string  `json:"assigned_by_name,omitempty"`
	CreatedByName        *string  `json:"created_by_name,omitempty"`
	CreatedAt            string   `json:"created_at"`
	UpdatedAt            string   `json:"updated_at"`
	Notes                string   `json:"notes,omitempty"`
}

// PublicStatusDTO — ответ публичной проверки статуса по номеру заявки.
type PublicStatusDTO struct {
	TicketID   string `json:"ticket_id"`
	DeviceType string `json:"device_type"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

type StatusHistoryDTO struct {
	OldStatus     *string `json:"old_status,omitempty"`
	NewStatus     string  `json:"new_status"`
	ChangedByName *string `json:"changed_by_name,omitempty"`
	ChangedAt     string  `json:"changed_at"`
	Comment       string  `json:"comment,omitempty"`
}

type AssignmentHistoryDTO struct {
	MasterName     string  `json:"master_name"`
	AssignedByName *string `json:"assigned_by_name,omitempty"`
	AssignedAt     string  `json:"assigned_at"`
	UnassignedAt   *string `json:"unassigned_at,omitempty"`
	Reason         string  `json:"reason,omitempty"`
}

type TicketHistoryDTO struct {
	StatusChanges []StatusHistoryDTO     `json:"status_changes"`
	Assignments   []AssignmentHistoryDTO `json:"assignments"`
}
