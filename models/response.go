package models

import (
	"github.com/use-agent/koans/greed"
	"github.com/use-agent/koans/script"
	"github.com/use-agent/koans/triangle"
)

// ScoreResponse is the response for POST /api/v1/greed/score.
type ScoreResponse struct {
	Success  bool         `json:"success"`
	Score    int          `json:"score"`
	Steps    []greed.Step `json:"steps"`
	Unscored []int        `json:"unscored"`
}

// RollResponse is the response for POST /api/v1/greed/roll.
type RollResponse struct {
	Success bool         `json:"success"`
	Dice    []int        `json:"dice"`
	Score   int          `json:"score"`
	Steps   []greed.Step `json:"steps"`
}

// TriangleResponse is the response for POST /api/v1/triangle.
type TriangleResponse struct {
	Success bool          `json:"success"`
	Kind    triangle.Kind `json:"kind"`
}

// ScenesResponse is the response for POST /api/v1/script/scenes.
type ScenesResponse struct {
	Success bool           `json:"success"`
	URL     string         `json:"url"`
	Scenes  []script.Scene `json:"scenes"`
	Total   int            `json:"total"`
}

// RolesResponse is the response for POST /api/v1/script/roles.
type RolesResponse struct {
	Success bool               `json:"success"`
	URL     string             `json:"url"`
	Roles   []script.RoleCount `json:"roles"`
}

// DiffResponse is the response for POST /api/v1/script/diff. Difference
// lists the scenes found by only one of the two extraction methods.
type DiffResponse struct {
	Success    bool     `json:"success"`
	URL        string   `json:"url"`
	Difference []string `json:"difference"`
}

// MarkdownResponse is the response for POST /api/v1/script/markdown.
type MarkdownResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string     `json:"status"` // "healthy" or "degraded"
	Uptime    string     `json:"uptime"`
	PoolStats *PoolStats `json:"pool_stats,omitempty"`
	Version   string     `json:"version"`
}

// PoolStats reports the state of the browser page pool.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}
