package enums

type IntakeStatus string

const (
	IntakeStatusActive IntakeStatus = "active"
	IntakeStatusDone   IntakeStatus = "done"
)
