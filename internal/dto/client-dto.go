package dto

type UpdateClientDTO struct {
	FullName *string `json:"full_name" validate:"omitempty,max=100"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Address  *string `json:"address"`
	IsVIP    *bool   `json:"is_vip"`
	Notes    *string `json:"notes"`
}

type ClientDTO struct {
	ID           int     `json:"id"`
	FullName     string  `json:"full_name"`
	Phone        string  `json:"phone"`
	Email        string  `json:"email,omitempty"`
	Address      string  `json:"address,omitempty"`
	IsVIP        bool    `json:"is_vip"`
	TotalRepairs int     `json:"total_repairs"`
	CreatedAt    string  `json:"created_at"`
	Notes        string  `json:"notes,omitempty"`

	// Живая статистика из заявок, не хранится в строке клиента.
	ActiveTickets    int      `json:"active_tickets"`
	CompletedTickets int      `json:"completed_tickets"`
	TotalSpent       float64  `json:"total_spent"`
	AvgCost          *float64 `json:"avg_cost,omitempty"`
}

type ClientSearchItemDTO struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email,omitempty"`
}
