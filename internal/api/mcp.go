package api

import (
	"context"
	"encoding/json"
	"fmt"

	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tripd/tripd/internal/destinations"
	"github.com/tripd/tripd/internal/search"
	"github.com/tripd/tripd/internal/weather"
)

// MCPSearcher abstracts web search for the MCP layer.
type MCPSearcher interface {
	Search(ctx context.Context, query, platform string) []search.Result
}

// MCPWeather abstracts weather lookup for the MCP layer.
type MCPWeather interface {
	Current(ctx context.Context, city string) (*weather.Snapshot, error)
}

// MCPRates abstracts exchange rate lookup for the MCP layer.
type MCPRates interface {
	Convert(ctx context.Context, amount float64, from, to string) (float64, error)
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Searcher MCPSearcher
	Weather  MCPWeather
	Rates    MCPRates
}

// NewMCPServer creates an MCP server exposing the travel tools over any
// MCP transport. The same search path backs the in-band LLM tool calls.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"tripd",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("tripd — travel planning tools: web search, weather, and destination lookup."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("search_travel_info",
			mcp.WithDescription("Search the web for travel information such as attractions, guides, and tips."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
			mcp.WithString("platform", mcp.Description("Search platform: xiaohongshu or general"), mcp.Enum("xiaohongshu", "general")),
		),
		mcpSearchTravelInfo(deps),
	)

	s.AddTool(
		mcp.NewTool("get_current_weather",
			mcp.WithDescription("Get current weather and a 7-day forecast for a city."),
			mcp.WithString("city", mcp.Description("City name, e.g. 北京 or Beijing"), mcp.Required()),
		),
		mcpGetCurrentWeather(deps),
	)

	s.AddTool(
		mcp.NewTool("search_destinations",
			mcp.WithDescription("Search the curated destination catalog by name or description."),
			mcp.WithString("query", mcp.Description("Substring to match; empty returns the whole catalog")),
		),
		mcpSearchDestinations(),
	)

	s.AddTool(
		mcp.NewTool("convert_currency",
			mcp.WithDescription("Convert an amount between currencies at the latest exchange rate."),
			mcp.WithNumber("amount", mcp.Description("Amount to convert"), mcp.Required()),
			mcp.WithString("from", mcp.Description("Source currency code, e.g. CNY"), mcp.Required()),
			mcp.WithString("to", mcp.Description("Target currency code, e.g. USD"), mcp.Required()),
		),
		mcpConvertCurrency(deps),
	)

	s.AddTool(
		mcp.NewTool("get_current_time",
			mcp.WithDescription("Get the current date and time in a timezone."),
			mcp.WithString("timezone", mcp.Description("IANA timezone name, e.g. Asia/Shanghai")),
		),
		mcpGetCurrentTime(time.Now),
	)

	return s
}

func mcpSearchTravelInfo(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}
		platform := req.GetString("platform", "general")

		results := deps.Searcher.Search(ctx, query, platform)
		b, err := json.Marshal(results)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpGetCurrentWeather(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		city, err := req.RequireString("city")
		if err != nil {
			return mcpError("city is required"), nil
		}

		snap, err := deps.Weather.Current(ctx, city)
		if err != nil {
			return mcpError(fmt.Sprintf("weather lookup failed: %v", err)), nil
		}
		if snap == nil {
			return mcpError(fmt.Sprintf("unknown city: %s", city)), nil
		}

		b, err := json.Marshal(snap)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal weather: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpSearchDestinations() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")

		b, err := json.Marshal(destinations.Search(query))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal destinations: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpConvertCurrency(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		amount, err := req.RequireFloat("amount")
		if err != nil {
			return mcpError("amount is required"), nil
		}
		from, err := req.RequireString("from")
		if err != nil {
			return mcpError("from is required"), nil
		}
		to, err := req.RequireString("to")
		if err != nil {
			return mcpError("to is required"), nil
		}

		converted, err := deps.Rates.Convert(ctx, amount, from, to)
		if err != nil {
			return mcpError(fmt.Sprintf("conversion failed: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("%.2f %s = %.2f %s", amount, from, converted, to)), nil
	}
}

var weekdaysZh = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

func mcpGetCurrentTime(now func() time.Time) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tz := req.GetString("timezone", "Asia/Shanghai")

		loc, err := time.LoadLocation(tz)
		if err != nil {
			return mcpError(fmt.Sprintf("unknown timezone: %s", tz)), nil
		}

		t := now().In(loc)
		return mcpText(fmt.Sprintf("%s %s %s",
			t.Format("2006年01月02日"), weekdaysZh[t.Weekday()], t.Format("15:04:05"))), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
