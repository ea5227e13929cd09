package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"repair-system/pkg/constants"
)

type User struct {
	ID             int
	Username       string
	Email          string
	PasswordHash   string
	FullName       string
	Role           constants.Role
	Phone          null.String
	Specialization null.String
	IsActive       bool
	IsAvailable    bool

	// MaxConcurrentRepairs — ёмкость мастера; CurrentRepairsCount — кэш,
	// пересчитываемый из авторитетного COUNT при каждом (пере)назначении.
	MaxConcurrentRepairs int
	CurrentRepairsCount  int

	CreatedAt time.Time
	LastLogin null.Time
}
