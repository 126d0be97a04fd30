package view

import (
	"sort"

	"github.com/gosuda/pulse/internal/domain"
)

// MCPServer aggregates health for one MCP tool server.
type MCPServer struct {
	Name     string   `json:"name"`
	Tools    []string `json:"tools"`
	LastSeen int64    `json:"last_seen"`
	Calls    int      `json:"calls"`
	Failures int      `json:"failures"`
}

// MCPServers scans events flagged is_mcp_tool and groups them by server
// name. Calls count PostToolUse, failures count PostToolUseFailure. Result
// is ordered most-recently-seen first.
func MCPServers(events []*domain.Event) []*MCPServer {
	registry := make(map[string]*MCPServer)

	for _, e := range events {
		if !payloadBool(e.Payload, "is_mcp_tool") {
			continue
		}

		name := payloadString(e.Payload, "mcp_server", "unknown")
		server, ok := registry[name]
		if !ok {
			server = &MCPServer{Name: name, Tools: []string{}, LastSeen: e.Timestamp}
			registry[name] = server
		}

		if e.Timestamp > server.LastSeen {
			server.LastSeen = e.Timestamp
		}
		// An absent tool_name still counts toward calls/failures but adds
		// no tool-list entry.
		if tool := payloadString(e.Payload, "tool_name", ""); tool != "" && !contains(server.Tools, tool) {
			server.Tools = append(server.Tools, tool)
		}
		switch e.EventType {
		case domain.EventPostToolUse:
			server.Calls++
		case domain.EventPostToolUseFailure:
			server.Failures++
		}
	}

	servers := make([]*MCPServer, 0, len(registry))
	for _, s := range registry {
		servers = append(servers, s)
	}
	sort.Slice(servers, func(i, j int) bool {
		if servers[i].LastSeen != servers[j].LastSeen {
			return servers[i].LastSeen > servers[j].LastSeen
		}
		return servers[i].Name < servers[j].Name
	})

	return servers
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
