package auth

const (
	RoleEvaluator = "evaluator"
	RoleEmployee  = "employee"
)

const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

const (
	PermEmployeesRead      = "employees.read"
	PermEmployeesWrite     = "employees.write"
	PermOpportunitiesRead  = "opportunities.read"
	PermOpportunitiesWrite = "opportunities.write"
	PermEvaluationsRead    = "evaluations.read"
	PermEvaluationsWrite   = "evaluations.write"
	PermReportsRead        = "reports.read"
	PermReportsWrite       = "reports.write"
	PermUsersWrite         = "users.write"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermOpportunitiesRead,
	PermOpportunitiesWrite,
	PermEvaluationsRead,
	PermEvaluationsWrite,
	PermReportsRead,
	PermReportsWrite,
	PermUsersWrite,
}

// RolePermissions is the grant table written by the seeder. The database copy
// is what requests are checked against.
var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermOpportunitiesRead,
		PermEvaluationsRead,
		PermReportsRead,
	},
	RoleEvaluator: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermOpportunitiesRead,
		PermOpportunitiesWrite,
		PermEvaluationsRead,
		PermEvaluationsWrite,
		PermReportsRead,
		PermReportsWrite,
		PermUsersWrite,
	},
}

func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
