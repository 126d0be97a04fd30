package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/pulse/internal/domain"
	"github.com/gosuda/pulse/internal/view"
)

// viewSnapshotLimit bounds how many of the most recent events each derived
// view reads. Retention already bounds the log; this bounds one evaluation.
const viewSnapshotLimit = 500

// ViewInput carries the optional time bound shared by all view endpoints.
type ViewInput struct {
	Since int64 `query:"since" minimum:"0" default:"0" doc:"Exclusive epoch-ms lower bound on the snapshot"`
}

type AgentTreeOutput struct {
	Body struct {
		Roots []*view.AgentNode `json:"roots"`
	}
}

type StallsOutput struct {
	Body struct {
		Stalled map[string]view.StallInfo `json:"stalled"`
	}
}

type ContextPressureOutput struct {
	Body struct {
		Sessions map[string]view.SessionPressure `json:"sessions"`
	}
}

type TokenBurnOutput struct {
	Body *view.BurnReport
}

type MCPOutput struct {
	Body struct {
		Servers []*view.MCPServer `json:"servers"`
	}
}

type OrchestrationOutput struct {
	Body *view.OrchestrationState
}

// RegisterViewRoutes exposes the derived views read-only. Each request takes
// a fresh snapshot from the store and recomputes; there is no cached state
// to invalidate.
func RegisterViewRoutes(api huma.API, store DataStore) {
	snapshot := func(ctx context.Context, since int64) ([]*domain.Event, error) {
		events, _, err := store.Events().Query(ctx, domain.EventFilter{Since: since}, viewSnapshotLimit, 0)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to load event snapshot", err)
		}
		return events, nil
	}

	huma.Register(api, huma.Operation{
		OperationID: "view-agent-tree",
		Method:      http.MethodGet,
		Path:        "/views/agent-tree",
		Summary:     "Session spawn hierarchy",
		Tags:        []string{"Views"},
	}, func(ctx context.Context, input *ViewInput) (*AgentTreeOutput, error) {
		events, err := snapshot(ctx, input.Since)
		if err != nil {
			return nil, err
		}
		out := &AgentTreeOutput{}
		out.Body.Roots = view.AgentTree(events)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "view-stalls",
		Method:      http.MethodGet,
		Path:        "/views/stalls",
		Summary:     "Sessions silent beyond the stall threshold",
		Tags:        []string{"Views"},
	}, func(ctx context.Context, input *ViewInput) (*StallsOutput, error) {
		events, err := snapshot(ctx, input.Since)
		if err != nil {
			return nil, err
		}
		out := &StallsOutput{}
		out.Body.Stalled = view.StalledSessions(events, time.Now())
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "view-context-pressure",
		Method:      http.MethodGet,
		Path:        "/views/context-pressure",
		Summary:     "Compaction pressure per session",
		Tags:        []string{"Views"},
	}, func(ctx context.Context, input *ViewInput) (*ContextPressureOutput, error) {
		events, err := snapshot(ctx, input.Since)
		if err != nil {
			return nil, err
		}
		out := &ContextPressureOutput{}
		out.Body.Sessions = view.ContextPressure(events, time.Now())
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "view-token-burn",
		Method:      http.MethodGet,
		Path:        "/views/token-burn",
		Summary:     "Token cost totals and burn rate",
		Tags:        []string{"Views"},
	}, func(ctx context.Context, input *ViewInput) (*TokenBurnOutput, error) {
		events, err := snapshot(ctx, input.Since)
		if err != nil {
			return nil, err
		}
		return &TokenBurnOutput{Body: view.TokenBurn(events, time.Now())}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "view-mcp",
		Method:      http.MethodGet,
		Path:        "/views/mcp",
		Summary:     "MCP tool-server health",
		Tags:        []string{"Views"},
	}, func(ctx context.Context, input *ViewInput) (*MCPOutput, error) {
		events, err := snapshot(ctx, input.Since)
		if err != nil {
			return nil, err
		}
		out := &MCPOutput{}
		out.Body.Servers = view.MCPServers(events)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "view-orchestration",
		Method:      http.MethodGet,
		Path:        "/views/orchestration",
		Summary:     "Workflow phase, active subagents, review gates",
		Tags:        []string{"Views"},
	}, func(ctx context.Context, input *ViewInput) (*OrchestrationOutput, error) {
		events, err := snapshot(ctx, input.Since)
		if err != nil {
			return nil, err
		}
		return &OrchestrationOutput{Body: view.Orchestration(events)}, nil
	})
}
