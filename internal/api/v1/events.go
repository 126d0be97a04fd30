package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/pulse/internal/api/ws"
	"github.com/gosuda/pulse/internal/domain"
	"github.com/gosuda/pulse/internal/ingest"
)

// IngestEventInput takes the raw body bytes so the ingest validator owns the
// whole contract; a schema on this struct would reject before normalization
// rules (tag filtering, timestamp coercion) get a chance to run.
type IngestEventInput struct {
	RawBody []byte
}

type IngestEventOutput struct {
	Body struct {
		ID        int64 `json:"id"`
		Timestamp int64 `json:"timestamp"`
	}
}

type ListEventsInput struct {
	SourceApp string `query:"source_app" doc:"Exact producer identity match"`
	SessionID string `query:"session_id" doc:"Exact session match"`
	EventType string `query:"event_type" doc:"Exact event type match"`
	Tag       string `query:"tag" doc:"Events whose tag set contains this tag"`
	Since     int64  `query:"since" minimum:"0" default:"0" doc:"Exclusive epoch-ms lower bound"`
	Limit     int    `query:"limit" minimum:"1" maximum:"500" default:"200" doc:"Max results"`
	Offset    int    `query:"offset" minimum:"0" default:"0" doc:"Offset for pagination"`
}

type ListEventsOutput struct {
	Body struct {
		Events []*domain.Event `json:"events"`
		Total  int64           `json:"total"`
	}
}

type FilterOptionsOutput struct {
	Body *domain.FilterOptions
}

func RegisterEventRoutes(api huma.API, store DataStore, hub Broadcaster) {
	huma.Register(api, huma.Operation{
		OperationID:   "ingest-event",
		Method:        http.MethodPost,
		Path:          "/events",
		Summary:       "Ingest one agent lifecycle event",
		Tags:          []string{"Events"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *IngestEventInput) (*IngestEventOutput, error) {
		var raw map[string]any
		if err := json.Unmarshal(input.RawBody, &raw); err != nil {
			return nil, huma.Error400BadRequest("request body must be a JSON object")
		}

		event, err := ingest.Validate(raw, time.Now())
		if err != nil {
			return nil, huma.Error400BadRequest(err.Error())
		}

		id, err := store.Events().Append(ctx, event)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to store event", err)
		}

		// Live viewers get the stored event pushed; a publish failure for
		// one subscriber never fails the write.
		hub.Publish(ws.NewEventMessage(event))

		out := &IngestEventOutput{}
		out.Body.ID = id
		out.Body.Timestamp = event.Timestamp
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "Query stored events, newest first",
		Tags:        []string{"Events"},
	}, func(ctx context.Context, input *ListEventsInput) (*ListEventsOutput, error) {
		filter := domain.EventFilter{
			SourceApp: input.SourceApp,
			SessionID: input.SessionID,
			EventType: input.EventType,
			Tag:       input.Tag,
			Since:     input.Since,
		}

		events, total, err := store.Events().Query(ctx, filter, input.Limit, input.Offset)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to query events", err)
		}

		out := &ListEventsOutput{}
		out.Body.Events = events
		out.Body.Total = total
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "event-filter-options",
		Method:      http.MethodGet,
		Path:        "/events/filter-options",
		Summary:     "Distinct filter values for dashboard dropdowns",
		Tags:        []string{"Events"},
	}, func(ctx context.Context, _ *struct{}) (*FilterOptionsOutput, error) {
		opts, err := store.Events().DistinctValues(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list filter options", err)
		}
		return &FilterOptionsOutput{Body: opts}, nil
	})
}
