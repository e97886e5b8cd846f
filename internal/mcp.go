package internal

import (
	"context"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/albertogferrario/ferro/pkg/queue"
)

const defaultMCPPath = "/_mcp"

// mcpConfig holds the MCP endpoint setup.
type mcpConfig struct {
	path string
}

type mcpEmptyInput struct{}

type mcpRoutesOutput struct {
	Routes []RouteInfo `json:"routes"`
}

type mcpTasksOutput struct {
	Tasks []queue.TaskDetail `json:"tasks"`
}

type mcpQueueStatsOutput struct {
	queue.Stats
}

type mcpAppInfoOutput struct {
	Name   string `json:"name"`
	Env    string `json:"env"`
	Uptime string `json:"uptime"`
	Routes int    `json:"routes"`
}

// newMCPHandler exposes read-only introspection tools over the MCP
// streamable HTTP transport. Nothing here mutates the app.
func newMCPHandler(a *App, cfg *mcpConfig) http.Handler {
	name := a.name
	if name == "" {
		name = "ferro"
	}

	server := mcp.NewServer(&mcp.Implementation{Name: name, Version: "1.0.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_routes",
		Description: "List every registered HTTP route with its method and pattern.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ mcpEmptyInput) (*mcp.CallToolResult, mcpRoutesOutput, error) {
		return nil, mcpRoutesOutput{Routes: a.Routes()}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tasks",
		Description: "List registered background tasks with their queue and cron schedule.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ mcpEmptyInput) (*mcp.CallToolResult, mcpTasksOutput, error) {
		if a.queueWorker == nil {
			return nil, mcpTasksOutput{Tasks: []queue.TaskDetail{}}, nil
		}
		return nil, mcpTasksOutput{Tasks: a.queueWorker.TaskDetails()}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "queue_stats",
		Description: "Report queue depths: ready, processing, delayed, retry, and dead counts.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ mcpEmptyInput) (*mcp.CallToolResult, mcpQueueStatsOutput, error) {
		if a.queueWorker == nil {
			return nil, mcpQueueStatsOutput{}, queue.ErrNotConfigured
		}
		stats, err := a.queueWorker.Stats(ctx)
		if err != nil {
			return nil, mcpQueueStatsOutput{}, err
		}
		return nil, mcpQueueStatsOutput{Stats: stats}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "app_info",
		Description: "Report the app name, environment, uptime, and route count.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ mcpEmptyInput) (*mcp.CallToolResult, mcpAppInfoOutput, error) {
		return nil, mcpAppInfoOutput{
			Name:   name,
			Env:    a.env,
			Uptime: time.Since(a.startedAt).Round(time.Second).String(),
			Routes: len(a.routes),
		}, nil
	})

	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
}
