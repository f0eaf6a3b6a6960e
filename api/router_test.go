package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/koans/config"
	"github.com/use-agent/koans/decorate"
	"github.com/use-agent/koans/engine"
	"github.com/use-agent/koans/greed"
	"github.com/use-agent/koans/models"
	"github.com/use-agent/koans/script"
)

const screenplay = `<html><body><table><tr><td class="scrtext"><pre>
<b>INT. DEATH STAR - CORRIDOR</b>
<b>VADER</b>
  Where are those transmissions?
<b>OFFICER</b>
  We intercepted no transmissions.
<b>VADER</b>
  Commander, tear this ship apart.
<b>EXT. TATOOINE - DAY</b>
<b>LUKE</b>
  But I was going into Tosche Station.
</pre></td></tr></table></body></html>`

const defaultURL = "http://scripts.test/default"

type fakeLoader struct {
	html string
	err  error
	urls []string
}

func (f *fakeLoader) DefaultURL() string { return defaultURL }

func (f *fakeLoader) Load(_ context.Context, url string) (*goquery.Document, error) {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return nil, f.err
	}
	return script.Parse(f.html)
}

type fakePool struct{ max, active int }

func (p fakePool) MaxPages() int    { return p.max }
func (p fakePool) ActivePages() int { return p.active }

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Mode: "test"},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
}

func newTestRouter(cfg *config.Config, loader *fakeLoader) http.Handler {
	if loader == nil {
		loader = &fakeLoader{html: screenplay}
	}
	return NewRouter(cfg, Deps{Loader: loader, StartTime: time.Now()})
}

func do(t *testing.T, h http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	h := NewRouter(testConfig(), Deps{Loader: &fakeLoader{}, Pool: fakePool{max: 4, active: 4}, StartTime: time.Now()})

	w := do(t, h, http.MethodGet, "/api/v1/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decode[models.HealthResponse](t, w)
	if resp.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", resp.Status)
	}
	if resp.PoolStats == nil || resp.PoolStats.MaxPages != 4 {
		t.Errorf("PoolStats = %+v, want max 4", resp.PoolStats)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	h := newTestRouter(testConfig(), nil)
	w := do(t, h, http.MethodGet, "/api/v1/health", "", "X-Request-ID", "req-123")
	if got := w.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("X-Request-ID = %q, want req-123", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestRouter(testConfig(), nil)
	do(t, h, http.MethodPost, "/api/v1/greed/score", `{"dice":[5]}`)

	w := do(t, h, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "koans_scores_total") {
		t.Error("metrics output missing koans_scores_total")
	}
}

func TestGreedScore(t *testing.T) {
	h := newTestRouter(testConfig(), nil)

	tests := []struct {
		body      string
		wantCode  int
		wantScore int
	}{
		{`{"dice":[1,1,1,5,1]}`, http.StatusOK, 1150},
		{`{"dice":[2,3,4,6]}`, http.StatusOK, 0},
		{`{"dice":[]}`, http.StatusOK, 0},
		{`{"dice":[1,1,1,1,1,1]}`, http.StatusBadRequest, 0},
		{`{"dice":"nope"}`, http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/v1/greed/score", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				if resp := decode[models.ErrorResponse](t, w); resp.Error.Code != models.ErrCodeInvalidInput {
					t.Errorf("code = %q, want INVALID_INPUT", resp.Error.Code)
				}
				return
			}
			if resp := decode[models.ScoreResponse](t, w); resp.Score != tt.wantScore || !resp.Success {
				t.Errorf("score = %d success = %v, want %d", resp.Score, resp.Success, tt.wantScore)
			}
		})
	}
}

func TestGreedRoll(t *testing.T) {
	h := newTestRouter(testConfig(), nil)

	w := do(t, h, http.MethodPost, "/api/v1/greed/roll", `{"count":5,"seed":42}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}
	resp := decode[models.RollResponse](t, w)
	if len(resp.Dice) != 5 {
		t.Fatalf("len(Dice) = %d, want 5", len(resp.Dice))
	}
	if want := greed.Score(resp.Dice); resp.Score != want {
		t.Errorf("Score = %d, want %d", resp.Score, want)
	}

	again := decode[models.RollResponse](t, do(t, h, http.MethodPost, "/api/v1/greed/roll", `{"count":5,"seed":42}`))
	if fmt.Sprint(again.Dice) != fmt.Sprint(resp.Dice) {
		t.Errorf("same seed rolled %v then %v", resp.Dice, again.Dice)
	}

	for _, body := range []string{`{"count":0}`, `{"count":6}`, `{}`} {
		if w := do(t, h, http.MethodPost, "/api/v1/greed/roll", body); w.Code != http.StatusBadRequest {
			t.Errorf("roll %s status = %d, want 400", body, w.Code)
		}
	}
}

func TestTriangle(t *testing.T) {
	h := newTestRouter(testConfig(), nil)

	tests := []struct {
		body     string
		wantCode int
		want     string
	}{
		{`{"a":2,"b":2,"c":2}`, http.StatusOK, "equilateral"},
		{`{"a":3,"b":4,"c":4}`, http.StatusOK, "isosceles"},
		{`{"a":3,"b":4,"c":5}`, http.StatusOK, "scalene"},
		{`{"a":0,"b":0,"c":0}`, http.StatusUnprocessableEntity, models.ErrCodeInvalidTriangle},
		{`{"a":1,"b":1,"c":3}`, http.StatusUnprocessableEntity, models.ErrCodeInvalidTriangle},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/v1/triangle", tt.body)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusOK {
				if resp := decode[models.TriangleResponse](t, w); string(resp.Kind) != tt.want {
					t.Errorf("Kind = %q, want %q", resp.Kind, tt.want)
				}
				return
			}
			if resp := decode[models.ErrorResponse](t, w); resp.Error.Code != tt.want {
				t.Errorf("code = %q, want %q", resp.Error.Code, tt.want)
			}
		})
	}
}

func TestAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{Enabled: true, APIKeys: []string{"secret"}}
	h := newTestRouter(cfg, nil)
	body := `{"dice":[5]}`

	if w := do(t, h, http.MethodPost, "/api/v1/greed/score", body); w.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/api/v1/greed/score", body, "X-API-Key", "wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: status = %d, want 401", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/api/v1/greed/score", body, "X-API-Key", "secret"); w.Code != http.StatusOK {
		t.Errorf("X-API-Key: status = %d, want 200", w.Code)
	}
	if w := do(t, h, http.MethodPost, "/api/v1/greed/score", body, "Authorization", "Bearer secret"); w.Code != http.StatusOK {
		t.Errorf("Bearer: status = %d, want 200", w.Code)
	}
	if w := do(t, h, http.MethodGet, "/api/v1/health", ""); w.Code != http.StatusOK {
		t.Errorf("health should skip auth, status = %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1}
	h := newTestRouter(cfg, nil)

	if w := do(t, h, http.MethodPost, "/api/v1/greed/score", `{"dice":[5]}`); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", w.Code)
	}
	w := do(t, h, http.MethodPost, "/api/v1/greed/score", `{"dice":[5]}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", w.Code)
	}
	if resp := decode[models.ErrorResponse](t, w); resp.Error.Code != models.ErrCodeRateLimited {
		t.Errorf("code = %q, want RATE_LIMITED", resp.Error.Code)
	}
}

func TestScriptScenes(t *testing.T) {
	loader := &fakeLoader{html: screenplay}
	h := newTestRouter(testConfig(), loader)

	want := []script.Scene{
		{Name: "INT. DEATH STAR - CORRIDOR", Roles: []script.RoleCount{{Name: "VADER", Count: 2}, {Name: "OFFICER", Count: 1}}},
		{Name: "EXT. TATOOINE - DAY", Roles: []script.RoleCount{{Name: "LUKE", Count: 1}}},
	}

	for _, body := range []string{"", `{}`, `{"source":"bold"}`} {
		t.Run("body "+body, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/v1/script/scenes", body)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
			}
			resp := decode[models.ScenesResponse](t, w)
			if resp.Total != 2 || resp.URL != defaultURL {
				t.Errorf("Total = %d URL = %q", resp.Total, resp.URL)
			}
			if fmt.Sprint(resp.Scenes) != fmt.Sprint(want) {
				t.Errorf("Scenes = %v, want %v", resp.Scenes, want)
			}
		})
	}

	if loader.urls[0] != defaultURL {
		t.Errorf("loaded %q, want default URL", loader.urls[0])
	}
}

func TestScriptScenes_BadInput(t *testing.T) {
	h := newTestRouter(testConfig(), nil)

	for _, body := range []string{
		`{"scene_pattern":"("}`,
		`{"source":"italic"}`,
		`{"url":"not a url"}`,
	} {
		w := do(t, h, http.MethodPost, "/api/v1/script/scenes", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestScriptRoles(t *testing.T) {
	h := newTestRouter(testConfig(), nil)

	w := do(t, h, http.MethodPost, "/api/v1/script/roles", `{"top":1}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decode[models.RolesResponse](t, w)
	if len(resp.Roles) != 1 || resp.Roles[0] != (script.RoleCount{Name: "VADER", Count: 2}) {
		t.Errorf("Roles = %v, want [VADER 2]", resp.Roles)
	}

	resp = decode[models.RolesResponse](t, do(t, h, http.MethodPost, "/api/v1/script/roles", `{}`))
	if len(resp.Roles) != 3 {
		t.Errorf("default top: len(Roles) = %d, want 3", len(resp.Roles))
	}
}

func TestScriptDiffAndMarkdown(t *testing.T) {
	h := newTestRouter(testConfig(), nil)

	diff := decode[models.DiffResponse](t, do(t, h, http.MethodPost, "/api/v1/script/diff", `{}`))
	if !diff.Success || len(diff.Difference) != 0 {
		t.Errorf("Difference = %v, want empty", diff.Difference)
	}

	md := decode[models.MarkdownResponse](t, do(t, h, http.MethodPost, "/api/v1/script/markdown", `{}`))
	if !strings.Contains(md.Content, "VADER") {
		t.Errorf("Content missing VADER: %q", md.Content)
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		want     string
	}{
		{"no script", fmt.Errorf("%w: http://x", script.ErrNoScript), http.StatusUnprocessableEntity, models.ErrCodeNoScript},
		{"permanent fetch", &engine.FetchError{Engine: "http", StatusCode: 404, Err: errors.New("Not Found")}, http.StatusBadGateway, models.ErrCodeFetchFailed},
		{"retries exhausted", &decorate.RetriesExhaustedError{Name: "script.fetch", Attempts: 3}, http.StatusBadGateway, models.ErrCodeFetchFailed},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, models.ErrCodeTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, models.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(testConfig(), &fakeLoader{err: tt.err})
			w := do(t, h, http.MethodPost, "/api/v1/script/scenes", `{}`)
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			resp := decode[models.ErrorResponse](t, w)
			if resp.Success || resp.Error.Code != tt.want {
				t.Errorf("error = %+v, want code %q", resp.Error, tt.want)
			}
		})
	}
}
