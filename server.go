package loansight

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/loansight/loansight/common/logger"
)

// NewMCPServer exposes the resolution pipeline as MCP tools so agent runtimes
// can query the loan portfolio.
func NewMCPServer(app *App) *server.MCPServer {
	s := server.NewMCPServer("loansight", Version, server.WithToolCapabilities(false))

	queryTool := mcp.NewTool("query-loan-insights",
		mcp.WithDescription("Answer a natural-language question about loan applications: decisions, similar cases, risk factors and portfolio aggregates."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The question to answer")),
		mcp.WithString("session_id", mcp.Description("Conversation session identifier; omit to start a fresh session")),
	)
	s.AddTool(queryTool, app.handleQuery)

	clearTool := mcp.NewTool("clear-history",
		mcp.WithDescription("Forget the conversation history of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to clear")),
	)
	s.AddTool(clearTool, app.handleClearHistory)

	schemaTool := mcp.NewTool("dataset-schema",
		mcp.WithDescription("Describe the loaded loan dataset: columns, types and value ranges."),
	)
	s.AddTool(schemaTool, app.handleSchema)

	return s
}

func (a *App) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sessionID := req.GetString("session_id", "")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	resp, err := a.Orchestrator.Resolve(ctx, sessionID, query)
	if err != nil {
		logger.Errorf("query-loan-insights: %v", err)
		return mcp.NewToolResultError(fmt.Sprintf("resolve failed: %v", err)), nil
	}

	payload := struct {
		SessionID string `json:"session_id"`
		Response  any    `json:"response"`
	}{SessionID: sessionID, Response: resp}

	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

func (a *App) handleClearHistory(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a.Orchestrator.ClearHistory(sessionID)
	return mcp.NewToolResultText(fmt.Sprintf("history cleared for session %s", sessionID)), nil
}

func (a *App) handleSchema(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(a.Frame.Describe()), nil
}
