// Command koans-mcp exposes the koans HTTP API as MCP tools over stdio.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// apiError mirrors the koans API error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type step struct {
	Rule   string `json:"rule"`
	Face   int    `json:"face"`
	Dice   int    `json:"dice"`
	Points int    `json:"points"`
}

type roleCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// scoreResponse mirrors both greed endpoints.
type scoreResponse struct {
	Success  bool      `json:"success"`
	Dice     []int     `json:"dice"`
	Score    int       `json:"score"`
	Steps    []step    `json:"steps"`
	Unscored []int     `json:"unscored"`
	Error    *apiError `json:"error"`
}

type triangleResponse struct {
	Success bool      `json:"success"`
	Kind    string    `json:"kind"`
	Error   *apiError `json:"error"`
}

type scenesResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Scenes  []struct {
		Name  string      `json:"name"`
		Roles []roleCount `json:"roles"`
	} `json:"scenes"`
	Total int       `json:"total"`
	Error *apiError `json:"error"`
}

type rolesResponse struct {
	Success bool        `json:"success"`
	URL     string      `json:"url"`
	Roles   []roleCount `json:"roles"`
	Error   *apiError   `json:"error"`
}

// client is the koans API endpoint the tools call.
type client struct {
	http   *http.Client
	apiURL string
	apiKey string
}

func main() {
	apiURL := os.Getenv("KOANS_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}

	s := newServer(&client{
		http:   &http.Client{Timeout: 120 * time.Second},
		apiURL: strings.TrimRight(apiURL, "/"),
		apiKey: os.Getenv("KOANS_API_KEY"),
	})

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(c *client) *server.MCPServer {
	s := server.NewMCPServer(
		"koans",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("score_dice",
		mcp.WithDescription("Score a roll of up to five dice with the Greed rules and explain every award."),
		mcp.WithArray("dice",
			mcp.Required(),
			mcp.Description("The rolled faces, each 1-6, at most five"),
		),
	), c.handleScoreDice)

	s.AddTool(mcp.NewTool("roll_dice",
		mcp.WithDescription("Roll Greed dice with a reproducible seed and score the result."),
		mcp.WithNumber("count",
			mcp.Required(),
			mcp.Description("Number of dice to roll (1-5)"),
		),
		mcp.WithNumber("seed",
			mcp.Description("Random seed; the same seed and count always roll the same dice (default: 0)"),
		),
	), c.handleRollDice)

	s.AddTool(mcp.NewTool("classify_triangle",
		mcp.WithDescription("Classify a triangle as equilateral, isosceles or scalene from its side lengths."),
		mcp.WithNumber("a", mcp.Required(), mcp.Description("First side length")),
		mcp.WithNumber("b", mcp.Required(), mcp.Description("Second side length")),
		mcp.WithNumber("c", mcp.Required(), mcp.Description("Third side length")),
	), c.handleClassifyTriangle)

	s.AddTool(mcp.NewTool("script_scenes",
		mcp.WithDescription("List the scenes of a screenplay page with the phrases each role speaks per scene."),
		mcp.WithString("url",
			mcp.Description("Screenplay page in imsdb.com layout (default: Star Wars: A New Hope)"),
		),
		mcp.WithString("source",
			mcp.Description("'lines' (default) matches role names in the raw script; 'bold' uses only bold cue lines"),
			mcp.Enum("lines", "bold"),
		),
	), c.handleScriptScenes)

	s.AddTool(mcp.NewTool("script_top_roles",
		mcp.WithDescription("Rank the roles of a screenplay by the number of phrases they speak."),
		mcp.WithString("url",
			mcp.Description("Screenplay page in imsdb.com layout (default: Star Wars: A New Hope)"),
		),
		mcp.WithNumber("top",
			mcp.Description("Number of roles to return (default: 3)"),
		),
	), c.handleScriptTopRoles)

	return s
}

// post sends payload to path and decodes the JSON reply into out.
func (c *client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// failure renders an unsuccessful API reply as a tool error.
func failure(what string, e *apiError) *mcp.CallToolResult {
	if e == nil {
		return mcp.NewToolResultError(what + " failed")
	}
	return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", e.Code, e.Message))
}

// pick copies the named arguments that are present into a payload.
func pick(request mcp.CallToolRequest, keys ...string) map[string]any {
	args := request.GetArguments()
	payload := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := args[k]; ok && v != nil {
			payload[k] = v
		}
	}
	return payload
}

func formatScore(r *scoreResponse) string {
	var sb strings.Builder
	if len(r.Dice) > 0 {
		fmt.Fprintf(&sb, "Dice: %v\n", r.Dice)
	}
	for _, s := range r.Steps {
		fmt.Fprintf(&sb, "- %s: %d x %d = %d points\n", s.Rule, s.Dice, s.Face, s.Points)
	}
	if len(r.Unscored) > 0 {
		fmt.Fprintf(&sb, "Unscored: %v\n", r.Unscored)
	}
	fmt.Fprintf(&sb, "Score: %d", r.Score)
	return sb.String()
}

func (c *client) handleScoreDice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload := pick(request, "dice")
	if _, ok := payload["dice"]; !ok {
		return mcp.NewToolResultError("dice is required"), nil
	}

	var resp scoreResponse
	if err := c.post(ctx, "/api/v1/greed/score", payload, &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("score request failed: %v", err)), nil
	}
	if !resp.Success {
		return failure("score", resp.Error), nil
	}
	return mcp.NewToolResultText(formatScore(&resp)), nil
}

func (c *client) handleRollDice(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload := pick(request, "count", "seed")
	if _, ok := payload["count"]; !ok {
		return mcp.NewToolResultError("count is required"), nil
	}

	var resp scoreResponse
	if err := c.post(ctx, "/api/v1/greed/roll", payload, &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("roll request failed: %v", err)), nil
	}
	if !resp.Success {
		return failure("roll", resp.Error), nil
	}
	return mcp.NewToolResultText(formatScore(&resp)), nil
}

func (c *client) handleClassifyTriangle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload := pick(request, "a", "b", "c")
	if len(payload) != 3 {
		return mcp.NewToolResultError("a, b and c are required"), nil
	}

	var resp triangleResponse
	if err := c.post(ctx, "/api/v1/triangle", payload, &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("triangle request failed: %v", err)), nil
	}
	if !resp.Success {
		return failure("triangle", resp.Error), nil
	}
	return mcp.NewToolResultText(resp.Kind), nil
}

func (c *client) handleScriptScenes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp scenesResponse
	if err := c.post(ctx, "/api/v1/script/scenes", pick(request, "url", "source"), &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scenes request failed: %v", err)), nil
	}
	if !resp.Success {
		return failure("scenes", resp.Error), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Source: %s\nScenes: %d\n", resp.URL, resp.Total)
	for _, sc := range resp.Scenes {
		fmt.Fprintf(&sb, "\n%s\n", sc.Name)
		for _, rc := range sc.Roles {
			fmt.Fprintf(&sb, "  %s: %d\n", rc.Name, rc.Count)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (c *client) handleScriptTopRoles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp rolesResponse
	if err := c.post(ctx, "/api/v1/script/roles", pick(request, "url", "top"), &resp); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("roles request failed: %v", err)), nil
	}
	if !resp.Success {
		return failure("roles", resp.Error), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Source: %s\n", resp.URL)
	for i, rc := range resp.Roles {
		fmt.Fprintf(&sb, "%d. %s (%d phrases)\n", i+1, rc.Name, rc.Count)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
