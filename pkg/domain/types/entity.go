package types

// ModelName identifies a replicated domain model that actions can
// subscribe to
type ModelName string

const (
	ModelNameIssue        ModelName = "Issue"
	ModelNameIssueComment ModelName = "IssueComment"
	ModelNameLinkedIssue  ModelName = "LinkedIssue"
	ModelNameLabel        ModelName = "Label"
)

// String returns the string representation of the model name
func (m ModelName) String() string {
	return string(m)
}

// Role is a workspace membership role
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
	RoleBot   Role = "BOT"
)

// RunEnv selects the task execution environment for an action
type RunEnv string

const (
	RunEnvDev  RunEnv = "dev"
	RunEnvProd RunEnv = "prod"
)

// String returns the string representation of the run environment
func (e RunEnv) String() string {
	return string(e)
}
