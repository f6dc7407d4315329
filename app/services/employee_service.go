package services

import (
	"slices"
	"strings"

	"RetailPOS/app/database"
	"RetailPOS/app/models"
)

// Employees returns a copy of the staff roster
func (s *Store) Employees() []models.Employee {
	return slices.Clone(s.employees)
}

// GetEmployee returns the employee with the given id
func (s *Store) GetEmployee(id int64) (models.Employee, bool) {
	for _, e := range s.employees {
		if e.ID == id {
			return e, true
		}
	}
	return models.Employee{}, false
}

// AddEmployee appends an employee, assigning the next free id when ID is zero
func (s *Store) AddEmployee(e models.Employee) (models.Employee, error) {
	if e.ID == 0 {
		e.ID = nextID(s.employees, func(x models.Employee) int64 { return x.ID })
	}
	next := append(slices.Clone(s.employees), e)
	return e, s.commit(stage(&s.employees, database.KeyStaff, next, "create", idString(e.ID)))
}

// UpdateEmployee replaces the employee with the same id. Unknown ids are ignored.
func (s *Store) UpdateEmployee(e models.Employee) error {
	i := slices.IndexFunc(s.employees, func(x models.Employee) bool { return x.ID == e.ID })
	if i < 0 {
		return nil
	}
	next := slices.Clone(s.employees)
	next[i] = e
	return s.commit(stage(&s.employees, database.KeyStaff, next, "update", idString(e.ID)))
}

// DeleteEmployee removes the employee with the given id. Unknown ids are ignored.
func (s *Store) DeleteEmployee(id int64) error {
	i := slices.IndexFunc(s.employees, func(x models.Employee) bool { return x.ID == id })
	if i < 0 {
		return nil
	}
	next := slices.Delete(slices.Clone(s.employees), i, i+1)
	return s.commit(stage(&s.employees, database.KeyStaff, next, "delete", idString(id)))
}

// SearchEmployees filters the roster by a case-insensitive name or role
// match and by role. An empty role or AllCategories matches every role.
func (s *Store) SearchEmployees(query string, role models.Role) []models.Employee {
	query = strings.ToLower(strings.TrimSpace(query))
	result := []models.Employee{}
	for _, e := range s.employees {
		if role != "" && role != AllCategories && e.Role != role {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(e.Name), query) &&
			!strings.Contains(string(e.Role), query) {
			continue
		}
		result = append(result, e)
	}
	return result
}

// RosterStats summarizes the staff roster
type RosterStats struct {
	Total   int     `json:"total"`
	Active  int     `json:"active"`
	OnLeave int     `json:"on_leave"`
	Payroll float64 `json:"payroll"` // Monthly salary of active employees
}

// Roster returns headcounts and the monthly payroll
func (s *Store) Roster() RosterStats {
	stats := RosterStats{Total: len(s.employees)}
	for _, e := range s.employees {
		switch e.Status {
		case models.StatusActive:
			stats.Active++
			stats.Payroll += e.Salary
		case models.StatusOnLeave:
			stats.OnLeave++
		}
	}
	return stats
}
