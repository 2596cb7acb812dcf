package core

import (
	"context"
	"strings"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) ListEmployees(ctx context.Context, status string, limit, offset int) ([]Employee, int, error) {
	return s.store.ListEmployees(ctx, status, limit, offset)
}

func (s *Service) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	return s.store.GetEmployee(ctx, employeeID)
}

func (s *Service) CreateEmployee(ctx context.Context, emp Employee) (Employee, error) {
	emp = normalizeEmployee(emp)
	id, err := s.store.CreateEmployee(ctx, emp)
	if err != nil {
		return Employee{}, err
	}
	return s.store.GetEmployee(ctx, id)
}

func (s *Service) UpdateEmployee(ctx context.Context, employeeID string, emp Employee) (Employee, error) {
	if err := s.store.UpdateEmployee(ctx, employeeID, normalizeEmployee(emp)); err != nil {
		return Employee{}, err
	}
	return s.store.GetEmployee(ctx, employeeID)
}

func (s *Service) ListOpportunities(ctx context.Context, employeeID string, limit, offset int) ([]Opportunity, int, error) {
	return s.store.ListOpportunities(ctx, employeeID, limit, offset)
}

func (s *Service) GetOpportunity(ctx context.Context, opportunityID string) (Opportunity, error) {
	return s.store.GetOpportunity(ctx, opportunityID)
}

func (s *Service) CreateOpportunity(ctx context.Context, opp Opportunity) (Opportunity, error) {
	if opp.Stage == "" {
		opp.Stage = StageOpen
	}
	if opp.Amount < 0 {
		opp.Amount = 0
	}
	opp.Name = strings.TrimSpace(opp.Name)
	id, err := s.store.CreateOpportunity(ctx, opp)
	if err != nil {
		return Opportunity{}, err
	}
	return s.store.GetOpportunity(ctx, id)
}

func (s *Service) UpdateOpportunityStage(ctx context.Context, opportunityID, stage string) (Opportunity, error) {
	if err := s.store.UpdateOpportunityStage(ctx, opportunityID, stage); err != nil {
		return Opportunity{}, err
	}
	return s.store.GetOpportunity(ctx, opportunityID)
}

func normalizeEmployee(emp Employee) Employee {
	emp.FirstName = strings.TrimSpace(emp.FirstName)
	emp.LastName = strings.TrimSpace(emp.LastName)
	emp.Email = strings.ToLower(strings.TrimSpace(emp.Email))
	emp.EmployeeNumber = strings.TrimSpace(emp.EmployeeNumber)
	if emp.Status == "" {
		emp.Status = EmployeeStatusActive
	}
	return emp
}
