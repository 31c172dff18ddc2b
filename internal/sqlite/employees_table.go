package sqlite

import (
	"fmt"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

var _ types.Table = (*employeesTable)(nil)

const employeeColumns = "employee_id, name, role, salary, created_at, updated_at"

type employeesTable struct {
	backend *Backend
}

// Get retrieves an employee by ID.
func (et *employeesTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	db, err := et.backend.conn()
	if err != nil {
		return nil, err
	}
	e, err := hydrateEmployee(db.QueryRow(
		"SELECT "+employeeColumns+" FROM employees WHERE employee_id = ?", id,
	))
	if err != nil {
		return nil, notFound(err, "getting employee %s", id)
	}
	return e, nil
}

// Set creates an employee when id is empty, otherwise updates it.
func (et *employeesTable) Set(id string, data any) (string, error) {
	e, ok := data.(*types.Employee)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := e.Validate(); err != nil {
		return "", err
	}
	db, err := et.backend.conn()
	if err != nil {
		return "", err
	}

	now := et.backend.now()
	if id == "" {
		newID, err := newID()
		if err != nil {
			return "", err
		}
		e.EmployeeID = newID
		e.CreatedAt = now
		e.UpdatedAt = now
		_, err = db.Exec(
			"INSERT INTO employees ("+employeeColumns+") VALUES (?, ?, ?, ?, ?, ?)",
			e.EmployeeID, e.Name, e.Role, e.Salary, formatTime(e.CreatedAt), formatTime(e.UpdatedAt),
		)
		if err != nil {
			return "", fmt.Errorf("inserting employee: %w", err)
		}
		return e.EmployeeID, nil
	}

	e.EmployeeID = id
	e.UpdatedAt = now
	res, err := db.Exec(
		"UPDATE employees SET name = ?, role = ?, salary = ?, updated_at = ? WHERE employee_id = ?",
		e.Name, e.Role, e.Salary, formatTime(e.UpdatedAt), id,
	)
	if err != nil {
		return "", fmt.Errorf("updating employee: %w", err)
	}
	if err := requireAffected(res, "updating employee"); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes an employee.
func (et *employeesTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	db, err := et.backend.conn()
	if err != nil {
		return err
	}
	res, err := db.Exec("DELETE FROM employees WHERE employee_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting employee: %w", err)
	}
	return requireAffected(res, "deleting employee")
}

// Fetch lists employees ordered by name. Filter keys: role, limit, offset.
func (et *employeesTable) Fetch(filter types.Filter) ([]any, error) {
	var where whereClause
	if role, ok, err := filterString(filter, "role"); err != nil {
		return nil, err
	} else if ok {
		where.add("role = ?", role)
	}
	page, err := limitOffset(filter)
	if err != nil {
		return nil, err
	}
	db, err := et.backend.conn()
	if err != nil {
		return nil, err
	}
	return fetchAll(db, "employees", hydrateEmployee,
		"SELECT "+employeeColumns+" FROM employees"+where.String()+" ORDER BY name ASC, employee_id ASC"+page,
		where.args...,
	)
}

func hydrateEmployee(row rowScanner) (*types.Employee, error) {
	var e types.Employee
	var createdAt, updatedAt string
	if err := row.Scan(&e.EmployeeID, &e.Name, &e.Role, &e.Salary, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if e.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &e, nil
}
