package view

import (
	"encoding/json"
	"strings"

	"github.com/gosuda/pulse/internal/domain"
)

// phaseOrder is the workflow vocabulary from least to most advanced. Phase
// inference checks it in reverse so the most advanced phase mentioned in the
// recent window wins.
var phaseOrder = []string{"brainstorm", "write-plan", "execute-plan", "finish"}

// PhaseIdle is reported when no phase keyword appears in the window.
const PhaseIdle = "idle"

// phaseScanLimit bounds how many of the most recent events are searched.
const phaseScanLimit = 200

type ActiveSubagent struct {
	SessionID       string `json:"session_id"`
	AgentType       string `json:"agent_type"`
	ParentSessionID string `json:"parent_session_id,omitempty"`
}

// ReviewGate tracks implementer / spec-reviewer / quality-reviewer progress
// for one implementation session. Empty fields mean the stage has not been
// observed.
type ReviewGate struct {
	Implementer string `json:"implementer,omitempty"`
	Spec        string `json:"spec,omitempty"`
	Quality     string `json:"quality,omitempty"`
}

type OrchestrationState struct {
	Phase           string                 `json:"phase"`
	ActiveSubagents []ActiveSubagent       `json:"active_subagents"`
	ReviewGates     map[string]*ReviewGate `json:"review_gates"`
}

// Orchestration infers the current workflow phase, the set of running
// subagents, and per-session review-gate state. The event slice is expected
// newest-first, as Query returns it.
func Orchestration(events []*domain.Event) *OrchestrationState {
	return &OrchestrationState{
		Phase:           currentPhase(events),
		ActiveSubagents: activeSubagents(events),
		ReviewGates:     reviewGates(events),
	}
}

func currentPhase(events []*domain.Event) string {
	recent := events
	if len(recent) > phaseScanLimit {
		recent = recent[:phaseScanLimit]
	}

	// Lower each payload once; the scan tries every phase against it.
	lowered := make([]string, len(recent))
	for i, e := range recent {
		raw, err := json.Marshal(e.Payload)
		if err != nil {
			continue
		}
		lowered[i] = strings.ToLower(string(raw))
	}

	for i := len(phaseOrder) - 1; i >= 0; i-- {
		phase := phaseOrder[i]
		for _, p := range lowered {
			if strings.Contains(p, phase) {
				return phase
			}
		}
	}
	return PhaseIdle
}

func activeSubagents(events []*domain.Event) []ActiveSubagent {
	stopped := make(map[string]bool)
	for _, e := range events {
		if e.EventType == domain.EventSubagentStop {
			stopped[e.SessionID] = true
		}
	}

	active := []ActiveSubagent{}
	seen := make(map[string]bool)
	for _, e := range events {
		if e.EventType != domain.EventSubagentStart || seen[e.SessionID] || stopped[e.SessionID] {
			continue
		}
		seen[e.SessionID] = true

		parent := ""
		if e.ParentSessionID != nil {
			parent = *e.ParentSessionID
		}
		active = append(active, ActiveSubagent{
			SessionID:       e.SessionID,
			AgentType:       payloadString(e.Payload, "agent_type", "unknown"),
			ParentSessionID: parent,
		})
	}

	return active
}

func reviewGates(events []*domain.Event) map[string]*ReviewGate {
	gates := make(map[string]*ReviewGate)

	// Reviewers reviewing someone else's session carry an explicit
	// target_session in the payload; otherwise the gate keys on their own
	// session.
	target := func(e *domain.Event) string {
		return payloadString(e.Payload, "target_session", e.SessionID)
	}

	for _, e := range events {
		switch e.EventType {
		case domain.EventSessionStart:
			switch payloadString(e.Payload, "agent_type", "") {
			case "implementer":
				gates[e.SessionID] = &ReviewGate{Implementer: "in-progress"}
			case "spec-reviewer":
				t := target(e)
				if gates[t] == nil {
					gates[t] = &ReviewGate{}
				}
				gates[t].Spec = "in-progress"
			case "quality-reviewer":
				t := target(e)
				if gates[t] == nil {
					gates[t] = &ReviewGate{}
				}
				gates[t].Quality = "in-progress"
			}
		case domain.EventSubagentStop:
			if g, ok := gates[e.SessionID]; ok {
				g.Implementer = payloadString(e.Payload, "outcome", "complete")
			}
		}
	}

	return gates
}
