package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"

	"github.com/use-agent/koans/models"
	"github.com/use-agent/koans/script"
)

// ScriptLoader loads parsed screenplay pages. *script.Loader implements it.
type ScriptLoader interface {
	Load(ctx context.Context, url string) (*goquery.Document, error)
	DefaultURL() string
}

// Patterns are the configured extraction regexes. Empty fields fall back
// to the script package defaults.
type Patterns struct {
	Scene string
	Role  string
}

func (p Patterns) scene(override string) string {
	switch {
	case override != "":
		return override
	case p.Scene != "":
		return p.Scene
	default:
		return script.SceneHeading
	}
}

func (p Patterns) role(override string) string {
	switch {
	case override != "":
		return override
	case p.Role != "":
		return p.Role
	default:
		return script.RoleName
	}
}

// ScriptScenes returns a handler for POST /api/v1/script/scenes.
func ScriptScenes(sl ScriptLoader, p Patterns) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScenesRequest
		if err := bindOptionalJSON(c, &req); err != nil {
			badRequest(c, err)
			return
		}
		req.Defaults()

		doc, url, err := load(c, sl, req.URL)
		if err != nil {
			respondError(c, err)
			return
		}

		var lines []string
		role := p.role(req.RolePattern)
		if req.Source == models.SourceBold {
			lines = script.BoldLines(doc)
			if req.RolePattern == "" {
				role = script.AnyLine
			}
		} else {
			lines = script.Lines(doc)
		}

		scenes, err := script.Extract(lines, p.scene(req.ScenePattern), role)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.ScenesResponse{
			Success: true,
			URL:     url,
			Scenes:  scenes.All(),
			Total:   scenes.Len(),
		})
	}
}

// ScriptRoles returns a handler for POST /api/v1/script/roles.
func ScriptRoles(sl ScriptLoader, p Patterns) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RolesRequest
		if err := bindOptionalJSON(c, &req); err != nil {
			badRequest(c, err)
			return
		}
		req.Defaults()

		doc, url, err := load(c, sl, req.URL)
		if err != nil {
			respondError(c, err)
			return
		}

		scenes, err := script.Extract(script.Lines(doc), p.scene(""), p.role(""))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.RolesResponse{
			Success: true,
			URL:     url,
			Roles:   script.TopRoles(scenes, req.Top),
		})
	}
}

// ScriptDiff returns a handler for POST /api/v1/script/diff. It compares
// the scenes found in the raw lines with those found in the bold cues.
func ScriptDiff(sl ScriptLoader, p Patterns) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScriptRequest
		if err := bindOptionalJSON(c, &req); err != nil {
			badRequest(c, err)
			return
		}

		doc, url, err := load(c, sl, req.URL)
		if err != nil {
			respondError(c, err)
			return
		}

		raw, err := script.Extract(script.Lines(doc), p.scene(""), p.role(""))
		if err != nil {
			respondError(c, err)
			return
		}
		bold, err := script.Extract(script.BoldLines(doc), p.scene(""), script.AnyLine)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.DiffResponse{
			Success:    true,
			URL:        url,
			Difference: script.Diff(raw, bold),
		})
	}
}

// ScriptMarkdown returns a handler for POST /api/v1/script/markdown.
func ScriptMarkdown(sl ScriptLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScriptRequest
		if err := bindOptionalJSON(c, &req); err != nil {
			badRequest(c, err)
			return
		}

		doc, url, err := load(c, sl, req.URL)
		if err != nil {
			respondError(c, err)
			return
		}

		content, err := script.Markdown(doc)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.MarkdownResponse{Success: true, URL: url, Content: content})
	}
}

// load resolves the effective URL and loads it.
func load(c *gin.Context, sl ScriptLoader, url string) (*goquery.Document, string, error) {
	if url == "" {
		url = sl.DefaultURL()
	}
	doc, err := sl.Load(c.Request.Context(), url)
	return doc, url, err
}

// bindOptionalJSON binds like ShouldBindJSON but accepts an empty body,
// leaving obj at its zero value.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
