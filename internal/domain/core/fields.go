package core

import "salesperf/internal/domain/auth"

// FilterEmployeeFields strips contact details that an employee may only see
// on their own record.
func FilterEmployeeFields(emp *Employee, user auth.UserContext) {
	if user.RoleName == auth.RoleEvaluator {
		return
	}
	if user.RoleName == auth.RoleEmployee && user.EmployeeID == emp.ID {
		return
	}
	emp.Email = ""
	emp.EmployeeNumber = ""
}
