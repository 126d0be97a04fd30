package view

import "github.com/gosuda/pulse/internal/domain"

// AgentNode is one session in the spawn hierarchy.
type AgentNode struct {
	SessionID       string       `json:"session_id"`
	TraceID         string       `json:"trace_id"`
	ParentSessionID string       `json:"parent_session_id,omitempty"`
	Children        []*AgentNode `json:"children"`
	StartTime       int64        `json:"start_time"`
	Stopped         bool         `json:"stopped"`
	AgentType       string       `json:"agent_type"`
}

// AgentTree builds the session hierarchy from SessionStart/SubagentStart
// events. A node whose parent was never observed (arrived after pruning, or
// a producer bug) is attached as a root; that graceful degradation is the
// contract, not an error. Roots and children keep first-seen order so two
// evaluations of the same snapshot agree.
func AgentTree(events []*domain.Event) []*AgentNode {
	nodes := make(map[string]*AgentNode)
	var order []string
	stopped := make(map[string]bool)

	for _, e := range events {
		switch e.EventType {
		case domain.EventSessionStart, domain.EventSubagentStart:
			if _, seen := nodes[e.SessionID]; !seen {
				parent := ""
				if e.ParentSessionID != nil {
					parent = *e.ParentSessionID
				}
				nodes[e.SessionID] = &AgentNode{
					SessionID:       e.SessionID,
					TraceID:         e.TraceID,
					ParentSessionID: parent,
					Children:        []*AgentNode{},
					StartTime:       e.Timestamp,
					AgentType:       payloadString(e.Payload, "agent_type", "unknown"),
				}
				order = append(order, e.SessionID)
			}
		case domain.EventStop, domain.EventSubagentStop, domain.EventSessionEnd:
			stopped[e.SessionID] = true
		}
	}

	for sid := range stopped {
		if n, ok := nodes[sid]; ok {
			n.Stopped = true
		}
	}

	roots := []*AgentNode{}
	for _, sid := range order {
		n := nodes[sid]
		parent, ok := nodes[n.ParentSessionID]
		if n.ParentSessionID == "" || !ok {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	return roots
}
