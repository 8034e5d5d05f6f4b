package constants

// Session and context keys
const (
	SessionCookieName = "corepm_session"
	ContextKeyUserID  = "user_id"
	ContextKeyUser    = "current_user"
	ContextKeyRequest = "request_id"
)

// Pagination defaults (skip/limit)
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Password policy
const (
	MinPasswordLength = 8
)

// Reserved team that receives orphaned tasks when a team is deleted.
const (
	UnassignedTeamSlug = "unassigned"
	UnassignedTeamName = "Unassigned"
)

// Fallback statuses used when a type has an empty workflow.
const (
	FallbackProjectStatus = "New"
	FallbackTaskStatus    = "Backlog"
)

// ScanBatchSize is the page size of the bulk work-item iterator.
const ScanBatchSize = 500

// MaxAIGeneratedTasks caps the number of drafts accepted from the AI service.
const MaxAIGeneratedTasks = 20
