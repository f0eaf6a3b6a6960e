package models

// Script line sources.
const (
	SourceLines = "lines"
	SourceBold  = "bold"
)

// ScoreRequest is the payload for POST /api/v1/greed/score.
type ScoreRequest struct {
	// Dice are the rolled faces. At most five; values outside 1..6 never
	// score.
	Dice []int `json:"dice" binding:"max=5"`
}

// RollRequest is the payload for POST /api/v1/greed/roll.
type RollRequest struct {
	// Count is the number of dice to roll. Required, 1..5.
	Count int `json:"count" binding:"required,min=1,max=5"`

	// Seed makes the roll reproducible. Default: 0.
	Seed int64 `json:"seed,omitempty"`
}

// TriangleRequest is the payload for POST /api/v1/triangle.
type TriangleRequest struct {
	A int `json:"a"`
	B int `json:"b"`
	C int `json:"c"`
}

// ScenesRequest is the payload for POST /api/v1/script/scenes.
type ScenesRequest struct {
	// URL is the screenplay page. Default: the configured script URL.
	URL string `json:"url,omitempty" binding:"omitempty,url"`

	// Source selects the raw script lines ("lines", default) or the bold
	// cue lines ("bold").
	Source string `json:"source,omitempty" binding:"omitempty,oneof=lines bold"`

	// ScenePattern and RolePattern override the default regexes. With
	// Source "bold" the role pattern defaults to any non-empty line.
	ScenePattern string `json:"scene_pattern,omitempty"`
	RolePattern  string `json:"role_pattern,omitempty"`
}

// Defaults fills in zero-valued fields.
func (r *ScenesRequest) Defaults() {
	if r.Source == "" {
		r.Source = SourceLines
	}
}

// RolesRequest is the payload for POST /api/v1/script/roles.
type RolesRequest struct {
	URL string `json:"url,omitempty" binding:"omitempty,url"`

	// Top is the number of roles to return. Default: 3.
	Top int `json:"top,omitempty" binding:"omitempty,min=1,max=1000"`
}

// Defaults fills in zero-valued fields.
func (r *RolesRequest) Defaults() {
	if r.Top == 0 {
		r.Top = 3
	}
}

// ScriptRequest is the payload for POST /api/v1/script/diff and
// POST /api/v1/script/markdown.
type ScriptRequest struct {
	URL string `json:"url,omitempty" binding:"omitempty,url"`
}
