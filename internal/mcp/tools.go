package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools adds the episode tools to the MCP server.
func RegisterTools(s *server.MCPServer, ep *Episode) {
	s.AddTool(startEpisodeTool(), ep.handleStartEpisode)
	s.AddTool(takeActionTool(), ep.handleTakeAction)
	s.AddTool(getObservationTool(), ep.handleGetObservation)
}

// --- Tool definitions ---

func startEpisodeTool() mcp.Tool {
	return mcp.NewTool("start_episode",
		mcp.WithDescription("Start a new duel episode, abandoning any running one. Returns the opening events, "+
			"the board and the first pending decision with its options."),
	)
}

func takeActionTool() mcp.Tool {
	return mcp.NewTool("take_action",
		mcp.WithDescription("Answer the pending decision. Returns the events that followed, the new board and the next "+
			"decision, or the reward and result once the episode is over."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into the pending options list")),
	)
}

func getObservationTool() mcp.Tool {
	return mcp.NewTool("get_observation",
		mcp.WithDescription("Get the current board and pending decision without acting. Read-only."),
		mcp.WithBoolean("tensors", mcp.Description("Also return the encoded observation tensors")),
	)
}

// --- Tool handlers ---

func (ep *Episode) handleStartEpisode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := ep.Start(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start episode: %v", err), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (ep *Episode) handleTakeAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index := request.GetInt("index", -1)
	resp, err := ep.Act(ctx, index)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func (ep *Episode) handleGetObservation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := ep.Observe(ctx, request.GetBool("tensors", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}
