package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/pulse/internal/domain"
	"github.com/gosuda/pulse/internal/hitl"
)

type CreateRuleInput struct {
	Body struct {
		Tool    string `json:"tool,omitempty" doc:"Tool name to match, or * for any (default)"`
		Pattern string `json:"pattern" doc:"Case-insensitive regex tested against the command"`
		Message string `json:"message,omitempty" doc:"Advisory text shown to the producer"`
	}
}

type CreateRuleOutput struct {
	Body *domain.HITLRule
}

type ListRulesOutput struct {
	Body []*domain.HITLRule
}

type DeleteRuleInput struct {
	ID uuid.UUID `path:"id" doc:"Rule ID"`
}

type DeleteRuleOutput struct {
	Body struct {
		Deleted uuid.UUID `json:"deleted"`
	}
}

type CheckInput struct {
	ToolName  string `query:"tool_name" doc:"Tool about to run"`
	SessionID string `query:"session_id" doc:"Session attempting the tool"`
	Command   string `query:"command" doc:"Command string about to execute"`
}

type CheckOutput struct {
	Body hitl.CheckResult
}

type DecisionInput struct {
	Body struct {
		InterceptID uuid.UUID `json:"intercept_id" doc:"Pending intercept to resolve"`
		Decision    string    `json:"decision" doc:"approve approves; anything else blocks"`
	}
}

type DecisionOutput struct {
	Body struct {
		InterceptID uuid.UUID              `json:"intercept_id"`
		Decision    domain.InterceptStatus `json:"decision"`
	}
}

type GetInterceptInput struct {
	ID uuid.UUID `path:"id" doc:"Intercept ID"`
}

type GetInterceptOutput struct {
	Body *domain.HITLIntercept
}

type ListPendingOutput struct {
	Body []*domain.HITLIntercept
}

func RegisterHITLRoutes(api huma.API, gate *hitl.Gate) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-hitl-rule",
		Method:        http.MethodPost,
		Path:          "/hitl/rules",
		Summary:       "Create an approval rule",
		Tags:          []string{"HITL"},
		DefaultStatus: http.StatusCreated,
	}, func(_ context.Context, input *CreateRuleInput) (*CreateRuleOutput, error) {
		rule := gate.AddRule(input.Body.Tool, input.Body.Pattern, input.Body.Message)
		return &CreateRuleOutput{Body: rule}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-hitl-rules",
		Method:      http.MethodGet,
		Path:        "/hitl/rules",
		Summary:     "List approval rules in evaluation order",
		Tags:        []string{"HITL"},
	}, func(_ context.Context, _ *struct{}) (*ListRulesOutput, error) {
		return &ListRulesOutput{Body: gate.Rules()}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-hitl-rule",
		Method:      http.MethodDelete,
		Path:        "/hitl/rules/{id}",
		Summary:     "Delete an approval rule",
		Tags:        []string{"HITL"},
	}, func(_ context.Context, input *DeleteRuleInput) (*DeleteRuleOutput, error) {
		if err := gate.DeleteRule(input.ID); err != nil {
			return nil, huma.Error404NotFound("rule not found")
		}
		out := &DeleteRuleOutput{}
		out.Body.Deleted = input.ID
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "hitl-check",
		Method:      http.MethodGet,
		Path:        "/hitl/check",
		Summary:     "Producer-side gate check before executing a tool",
		Tags:        []string{"HITL"},
	}, func(_ context.Context, input *CheckInput) (*CheckOutput, error) {
		result := gate.Check(input.ToolName, input.SessionID, input.Command)
		return &CheckOutput{Body: result}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "hitl-decision",
		Method:      http.MethodPost,
		Path:        "/hitl/decision",
		Summary:     "Resolve a pending intercept",
		Tags:        []string{"HITL"},
	}, func(_ context.Context, input *DecisionInput) (*DecisionOutput, error) {
		resolved, err := gate.Decide(input.Body.InterceptID, input.Body.Decision)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("intercept not found")
			}
			return nil, huma.Error400BadRequest("intercept already decided")
		}

		out := &DecisionOutput{}
		out.Body.InterceptID = resolved.ID
		out.Body.Decision = resolved.Status
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-hitl-intercept",
		Method:      http.MethodGet,
		Path:        "/hitl/intercepts/{id}",
		Summary:     "Look up an intercept by ID",
		Tags:        []string{"HITL"},
	}, func(_ context.Context, input *GetInterceptInput) (*GetInterceptOutput, error) {
		intercept, err := gate.Get(input.ID)
		if err != nil {
			return nil, huma.Error404NotFound("intercept not found")
		}
		return &GetInterceptOutput{Body: intercept}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-pending-intercepts",
		Method:      http.MethodGet,
		Path:        "/hitl/pending",
		Summary:     "List intercepts awaiting a decision",
		Tags:        []string{"HITL"},
	}, func(_ context.Context, _ *struct{}) (*ListPendingOutput, error) {
		return &ListPendingOutput{Body: gate.ListPending()}, nil
	})
}
