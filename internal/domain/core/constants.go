package core

const (
	EmployeeStatusActive   = "active"
	EmployeeStatusInactive = "inactive"
)

const (
	StageOpen        = "open"
	StageQualified   = "qualified"
	StageProposal    = "proposal"
	StageNegotiation = "negotiation"
	StageWon         = "won"
	StageLost        = "lost"
)

var EmployeeStatuses = []string{EmployeeStatusActive, EmployeeStatusInactive}

var OpportunityStages = []string{StageOpen, StageQualified, StageProposal, StageNegotiation, StageWon, StageLost}
