package core

import (
	"time"

	"salesperf/internal/domain/scoring"
)

type Employee struct {
	ID             string    `json:"id"`
	EmployeeNumber string    `json:"employeeNumber"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	Position       string    `json:"position"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (e Employee) Ref() scoring.EmployeeRef {
	return scoring.EmployeeRef{ID: e.ID, FirstName: e.FirstName, LastName: e.LastName}
}

type Opportunity struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Name       string    `json:"name"`
	ClientName string    `json:"clientName"`
	Stage      string    `json:"stage"`
	Amount     float64   `json:"amount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
