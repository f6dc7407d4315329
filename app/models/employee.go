package models

import (
	"strings"
	"time"
)

// Role is a staff role
type Role string

const (
	RoleManager  Role = "manager"
	RoleSales    Role = "sales"
	RoleChef     Role = "chef"
	RoleCashier  Role = "cashier"
	RoleDelivery Role = "delivery"
)

// Roles lists every valid role in display order
var Roles = []Role{RoleManager, RoleSales, RoleChef, RoleCashier, RoleDelivery}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// EmployeeStatus is the roster status of an employee
type EmployeeStatus string

const (
	StatusActive   EmployeeStatus = "Active"
	StatusInactive EmployeeStatus = "Inactive"
	StatusOnLeave  EmployeeStatus = "On Leave"
)

// Valid reports whether s is a known status
func (s EmployeeStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusOnLeave:
		return true
	}
	return false
}

// DateLayout is the layout used for date-only fields such as hire dates
const DateLayout = "2006-01-02"

// Employee is roster data, independent of sales and inventory
type Employee struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	Role     Role           `json:"role"`
	Salary   float64        `json:"salary"`
	Status   EmployeeStatus `json:"status"`
	Phone    string         `json:"phone,omitempty"`
	Address  string         `json:"address,omitempty"`
	HireDate string         `json:"hire_date"` // YYYY-MM-DD
}

// EmployeeDraft collects employee form fields
type EmployeeDraft struct {
	ID       int64
	Name     string
	Role     Role
	Salary   float64
	Status   EmployeeStatus
	Phone    string
	Address  string
	HireDate string
}

// Build validates the draft. An empty hire date becomes the date of now.
func (d EmployeeDraft) Build(now time.Time) (Employee, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Employee{}, missing("name")
	}

	role := d.Role
	if role == "" {
		role = RoleSales
	}
	if !role.Valid() {
		return Employee{}, invalid("unknown role %q", role)
	}

	status := d.Status
	if status == "" {
		status = StatusActive
	}
	if !status.Valid() {
		return Employee{}, invalid("unknown status %q", status)
	}

	if d.Salary < 0 {
		return Employee{}, invalid("salary must not be negative: %v", d.Salary)
	}

	hireDate := strings.TrimSpace(d.HireDate)
	if hireDate == "" {
		hireDate = now.Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, hireDate); err != nil {
		return Employee{}, invalid("hire date %q: %v", hireDate, err)
	}

	return Employee{
		ID:       d.ID,
		Name:     name,
		Role:     role,
		Salary:   d.Salary,
		Status:   status,
		Phone:    strings.TrimSpace(d.Phone),
		Address:  strings.TrimSpace(d.Address),
		HireDate: hireDate,
	}, nil
}

// StaffUser is the value held in the staff session slot
type StaffUser struct {
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	Currency   string `json:"currency"`
	IsLoggedIn bool   `json:"is_logged_in"`
}
