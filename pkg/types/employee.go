package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Employee is a person on the farm payroll.
type Employee struct {
	EmployeeID string          `json:"employee_id"`
	Name       string          `json:"name"`
	Role       string          `json:"role"`
	Salary     decimal.Decimal `json:"salary"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Validate checks required fields and that the salary is positive.
func (e *Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(e.Role) == "" {
		return fmt.Errorf("%w: role", ErrMissingField)
	}
	if !e.Salary.IsPositive() {
		return fmt.Errorf("%w: salary must be positive", ErrInvalidAmount)
	}
	return nil
}
