package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type Client struct {
	ID           int
	FullName     string
	Phone        string // канонический вид 7XXXXXXXXXX, уникален
	Email        null.String
	Address      null.String
	IsVIP        bool
	TotalRepairs int
	CreatedAt    time.Time
	Notes        null.String
}
