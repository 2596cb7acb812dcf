package core

import "context"

type StoreAPI interface {
	ListEmployees(ctx context.Context, status string, limit, offset int) ([]Employee, int, error)
	GetEmployee(ctx context.Context, employeeID string) (Employee, error)
	CreateEmployee(ctx context.Context, emp Employee) (string, error)
	UpdateEmployee(ctx context.Context, employeeID string, emp Employee) error
	ListOpportunities(ctx context.Context, employeeID string, limit, offset int) ([]Opportunity, int, error)
	GetOpportunity(ctx context.Context, opportunityID string) (Opportunity, error)
	CreateOpportunity(ctx context.Context, opp Opportunity) (string, error)
	UpdateOpportunityStage(ctx context.Context, opportunityID, stage string) error
}
