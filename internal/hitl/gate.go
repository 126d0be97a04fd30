// Package hitl implements the human-in-the-loop approval gate: an ordered
// rule registry matched before risky tool invocations, and the intercept
// state machine resolved by dashboard decisions. Rules and intercepts live in
// process memory only; loss across restarts is a deliberate scope boundary,
// not an oversight.
package hitl

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/pulse/internal/api/ws"
	"github.com/gosuda/pulse/internal/domain"
)

// Publisher is the broadcast side-channel intercepts and decisions ride.
// *ws.Hub satisfies it.
type Publisher interface {
	Publish(v any)
}

const (
	ActionNoIntercept = "no_intercept"
	ActionIntercept   = "intercept"

	defaultRuleMessage = "Approval required"

	DecisionApprove = "approve"
)

// CheckResult is returned to the producer-side hook before it executes a
// tool. On an intercept the hook polls the intercept id for the decision.
type CheckResult struct {
	Action      string    `json:"action"`
	InterceptID uuid.UUID `json:"intercept_id,omitzero"`
	Message     string    `json:"message,omitempty"`
}

type compiledRule struct {
	rule *domain.HITLRule
	// re is nil when the pattern failed to compile; a malformed pattern
	// never matches, it never crashes a check.
	re *regexp.Regexp
}

type Gate struct {
	mu         sync.Mutex
	rules      []*compiledRule
	intercepts map[uuid.UUID]*domain.HITLIntercept
	publisher  Publisher
	now        func() time.Time
}

func NewGate(publisher Publisher) *Gate {
	return &Gate{
		intercepts: make(map[uuid.UUID]*domain.HITLIntercept),
		publisher:  publisher,
		now:        time.Now,
	}
}

// AddRule registers a rule at the end of the evaluation order. An empty tool
// means the wildcard; an empty message gets the default advisory text.
func (g *Gate) AddRule(tool, pattern, message string) *domain.HITLRule {
	if tool == "" {
		tool = domain.RuleToolWildcard
	}
	if message == "" {
		message = defaultRuleMessage
	}

	rule := &domain.HITLRule{
		ID:      uuid.New(),
		Tool:    tool,
		Pattern: pattern,
		Message: message,
	}

	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		re = nil
	}

	g.mu.Lock()
	g.rules = append(g.rules, &compiledRule{rule: rule, re: re})
	g.mu.Unlock()

	return rule
}

// Rules lists rules in registration order.
func (g *Gate) Rules() []*domain.HITLRule {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*domain.HITLRule, 0, len(g.rules))
	for _, cr := range g.rules {
		r := *cr.rule
		out = append(out, &r)
	}
	return out
}

func (g *Gate) DeleteRule(id uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, cr := range g.rules {
		if cr.rule.ID == id {
			g.rules = append(g.rules[:i], g.rules[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("hitl.DeleteRule: rule %s: %w", id, domain.ErrNotFound)
}

// Check evaluates rules in registration order and returns the first match.
// A match creates a pending intercept and publishes it on the stream.
func (g *Gate) Check(toolName, sessionID, command string) CheckResult {
	g.mu.Lock()

	var matched *domain.HITLRule
	for _, cr := range g.rules {
		if cr.rule.Tool != toolName && cr.rule.Tool != domain.RuleToolWildcard {
			continue
		}
		if cr.re != nil && cr.re.MatchString(command) {
			matched = cr.rule
			break
		}
	}

	if matched == nil {
		g.mu.Unlock()
		return CheckResult{Action: ActionNoIntercept}
	}

	intercept := &domain.HITLIntercept{
		ID:        uuid.New(),
		SessionID: sessionID,
		ToolName:  toolName,
		Command:   command,
		RuleID:    matched.ID,
		Status:    domain.InterceptStatusPending,
		CreatedAt: g.now().UnixMilli(),
	}
	g.intercepts[intercept.ID] = intercept

	published := *intercept
	rule := *matched
	g.mu.Unlock()

	g.publisher.Publish(ws.NewInterceptMessage(&published, &rule))

	return CheckResult{
		Action:      ActionIntercept,
		InterceptID: intercept.ID,
		Message:     matched.Message,
	}
}

// Decide resolves a pending intercept. "approve" approves, anything else
// blocks. Terminal intercepts cannot be re-decided.
func (g *Gate) Decide(id uuid.UUID, decision string) (*domain.HITLIntercept, error) {
	g.mu.Lock()

	intercept, ok := g.intercepts[id]
	if !ok {
		g.mu.Unlock()
		return nil, fmt.Errorf("hitl.Decide: intercept %s: %w", id, domain.ErrNotFound)
	}

	next := domain.InterceptStatusBlocked
	if decision == DecisionApprove {
		next = domain.InterceptStatusApproved
	}

	if !intercept.Status.ValidTransition(next) {
		g.mu.Unlock()
		return nil, fmt.Errorf("hitl.Decide: intercept %s already %s: %w", id, intercept.Status, domain.ErrValidation)
	}

	intercept.Status = next
	resolved := *intercept
	g.mu.Unlock()

	g.publisher.Publish(ws.NewDecisionMessage(resolved.ID, resolved.Status))

	return &resolved, nil
}

// Get returns a copy of the intercept with the given id.
func (g *Gate) Get(id uuid.UUID) (*domain.HITLIntercept, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	intercept, ok := g.intercepts[id]
	if !ok {
		return nil, fmt.Errorf("hitl.Get: intercept %s: %w", id, domain.ErrNotFound)
	}

	c := *intercept
	return &c, nil
}

// ListPending returns pending intercepts ordered by creation time.
func (g *Gate) ListPending() []*domain.HITLIntercept {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := []*domain.HITLIntercept{}
	for _, intercept := range g.intercepts {
		if intercept.Status == domain.InterceptStatusPending {
			c := *intercept
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
