package ws

import (
	"github.com/google/uuid"

	"github.com/gosuda/pulse/internal/domain"
)

// Two message kinds ride the stream: newly stored events and HITL signals.
// Every frame carries a type discriminator so clients can dispatch without
// sniffing fields.

type EventMessage struct {
	Type  string        `json:"type"`
	Event *domain.Event `json:"event"`
}

func NewEventMessage(e *domain.Event) EventMessage {
	return EventMessage{Type: "event", Event: e}
}

type InterceptMessage struct {
	Type      string                `json:"type"`
	Intercept *domain.HITLIntercept `json:"intercept"`
	Rule      *domain.HITLRule      `json:"rule"`
}

func NewInterceptMessage(i *domain.HITLIntercept, r *domain.HITLRule) InterceptMessage {
	return InterceptMessage{Type: "hitl_intercept", Intercept: i, Rule: r}
}

type DecisionMessage struct {
	Type        string                 `json:"type"`
	InterceptID uuid.UUID              `json:"intercept_id"`
	Decision    domain.InterceptStatus `json:"decision"`
}

func NewDecisionMessage(id uuid.UUID, decision domain.InterceptStatus) DecisionMessage {
	return DecisionMessage{Type: "hitl_decision", InterceptID: id, Decision: decision}
}
