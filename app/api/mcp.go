package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const mcpSessionID = "mcp"

// MCP exposes the chat engine as a tool for MCP clients.
func (s *Server) MCP() *server.MCPServer {
	srv := server.NewMCPServer("agencychat", "1.0.0", server.WithToolCapabilities(false))

	srv.AddTool(
		mcp.NewTool("chat",
			mcp.WithDescription(fmt.Sprintf("Ask the %s support assistant a question, the same way a website visitor would.", s.cfg.Chat.AgencyName)),
			mcp.WithString("message", mcp.Required(), mcp.Description("Visitor message")),
			mcp.WithString("session_id", mcp.Description("Conversation id; turns with the same id share state")),
		),
		s.handleChatTool,
	)

	return srv
}

func (s *Server) ServeMCP(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.MCP()).Listen(ctx, in, out)
}

func (s *Server) handleChatTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sessionID := request.GetString("session_id", mcpSessionID)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Chat.ReplyTimeout)
	defer cancel()

	result := s.sessions.Get(sessionID, "mcp client").Respond(ctx, message, nil)

	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return mcp.NewToolResultText(string(data)), nil
}
