package domain

import "github.com/google/uuid"

type InterceptStatus string

const (
	InterceptStatusPending  InterceptStatus = "pending"
	InterceptStatusApproved InterceptStatus = "approved"
	InterceptStatusBlocked  InterceptStatus = "blocked"
)

// ValidTransition reports whether an intercept may move from s to next.
// Pending is the only non-terminal state; approved and blocked are final.
func (s InterceptStatus) ValidTransition(next InterceptStatus) bool {
	if s != InterceptStatusPending {
		return false
	}
	return next == InterceptStatusApproved || next == InterceptStatusBlocked
}

// RuleToolWildcard matches any tool name.
const RuleToolWildcard = "*"

// HITLRule gates tool invocations: Tool is a literal tool name or the
// wildcard, Pattern a regular expression tested case-insensitively against
// the command string. Rules live in process memory only; restarts drop them.
type HITLRule struct {
	ID      uuid.UUID `json:"id"`
	Tool    string    `json:"tool"`
	Pattern string    `json:"pattern"`
	Message string    `json:"message"`
}

// HITLIntercept is a pending human-approval gate created when a tool
// invocation matched a rule. It mutates exactly once, pending to a terminal
// status, and is retrievable by id for the process lifetime.
type HITLIntercept struct {
	ID        uuid.UUID       `json:"id"`
	SessionID string          `json:"session_id"`
	ToolName  string          `json:"tool_name"`
	Command   string          `json:"command"`
	RuleID    uuid.UUID       `json:"rule_id"`
	Status    InterceptStatus `json:"status"`
	CreatedAt int64           `json:"created_at"` // epoch milliseconds
}
