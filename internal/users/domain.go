package users

import (
	"time"

	"github.com/romay-erp/romay/internal/capability"
)

// User represents a dashboard account.
type User struct {
	ID           int64
	Name         string
	Phone        string
	PasswordHash string
	Role         capability.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
