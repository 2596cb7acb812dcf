package core

import "errors"

var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrOpportunityNotFound = errors.New("opportunity not found")
	ErrDuplicateEmployee   = errors.New("employee email or number already exists")
)
