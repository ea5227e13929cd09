package constants

import "strings"

// --- СТАТУСЫ ЗАЯВОК (совпадает с CHECK-ограничением в БД) ---
//
// Переходы между статусами не ограничены графом: принимается любой статус
// из набора. Валидируется только членство в наборе.
type Status string

const (
	StatusAccepted        Status = "Accepted"
	StatusDiagnostics     Status = "Diagnostics"
	StatusWaitingForParts Status = "WaitingForParts"
	StatusInRepair        Status = "InRepair"
	StatusTesting         Status = "Testing"
	StatusReadyForPickup  Status = "ReadyForPickup"
	StatusIssued          Status = "Issued"
)

// AllStatuses — порядок важен: он используется для отображения по умолчанию.
var AllStatuses = []Status{
	StatusAccepted,
	StatusDiagnostics,
	StatusWaitingForParts,
	StatusInRepair,
	StatusTesting,
	StatusReadyForPickup,
	StatusIssued,
}

// Терминальные статусы: заявка больше не входит в активную нагрузку мастера.
var TerminalStatuses = []Status{
	StatusReadyForPickup,
	StatusIssued,
}

func IsValidStatus(s string) bool {
	for _, st := range AllStatuses {
		if string(st) == s {
			return true
		}
	}
	return false
}

func IsTerminalStatus(s Status) bool {
	for _, st := range TerminalStatuses {
		if st == s {
			return true
		}
	}
	return false
}

func StatusNames() []string {
	names := make([]string, 0, len(AllStatuses))
	for _, s := range AllStatuses {
		names = append(names, string(s))
	}
	return names
}

func AllowedStatusList() string {
	return strings.Join(StatusNames(), ", ")
}

// --- ПРИОРИТЕТЫ ---
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityNormal   Priority = "Normal" // приоритет по умолчанию
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

var AllPriorities = []Priority{
	PriorityLow,
	PriorityNormal,
	PriorityHigh,
	PriorityCritical,
}

// PriorityRank — строгий ранг срочности: чем меньше число, тем срочнее.
func PriorityRank(p Priority) int {
	switch p {
	case PriorityCritical:
		return 1
	case PriorityHigh:
		return 2
	case PriorityNormal:
		return 3
	case PriorityLow:
		return 4
	}
	return 5
}

func IsValidPriority(p string) bool {
	for _, pr := range AllPriorities {
		if string(pr) == p {
			return true
		}
	}
	return false
}

func PriorityNames() []string {
	names := make([]string, 0, len(AllPriorities))
	for _, p := range AllPriorities {
		names = append(names, string(p))
	}
	return names
}

// --- РОЛИ СОТРУДНИКОВ ---
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleDirector Role = "director"
	RoleManager  Role = "manager"
	RoleMaster   Role = "master"
)

var AllRoles = []Role{RoleAdmin, RoleDirector, RoleManager, RoleMaster}

func IsValidRole(r string) bool {
	for _, role := range AllRoles {
		if string(role) == r {
			return true
		}
	}
	return false
}

// CanAssignMasters — назначение/снятие мастера доступно только управляющим ролям.
func CanAssignMasters(r Role) bool {
	return r == RoleAdmin || r == RoleDirector || r == RoleManager
}
