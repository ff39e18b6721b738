package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"rxprev/domain/prevalence"
	"rxprev/internal"
	"rxprev/internal/config"
	"rxprev/internal/container"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const observationsBody = `[
  {"gene": "PR", "position": 10, "aa": "F", "rx_type": "naive", "subtype": "All", "count": 1, "total": 10, "percent": 0.1},
  {"gene": "PR", "position": 10, "aa": "F", "rx_type": "art", "subtype": "All", "count": 11, "total": 14, "percent": 0.7857142857142857},
  {"gene": "PR", "position": 10, "aa": "F", "rx_type": "naive", "subtype": "B", "count": 1, "total": 10, "percent": 0.1},
  {"gene": "RT", "position": 184, "aa": "V", "rx_type": "art", "subtype": "All", "count": 5, "total": 10, "percent": 0.5}
]`

func newTestServer(t *testing.T, dbURL string) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Report: config.ReportConfig{
			MajorSubtypes: []string{"B", "C"},
			Test:          config.TestFisher,
		},
		Database: config.DatabaseConfig{URL: dbURL},
		Server:   config.ServerConfig{Port: "0"},
		LogLevel: internal.LogLevelError,
	}
	c, err := container.New(cfg, internal.Discard)
	require.NoError(t, err)
	require.NoError(t, c.InitWithDatabase(context.Background()))
	t.Cleanup(func() { c.Shutdown(context.Background()) })
	return NewServer(c)
}

func do(s *Server, method, target, body, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := do(newTestServer(t, ""), http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok", "database": false}`, w.Body.String())
}

func TestGenes(t *testing.T) {
	w := do(newTestServer(t, ""), http.MethodGet, "/api/genes", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "PR", got[0]["name"])
}

func TestPrevalence_TSV(t *testing.T) {
	w := do(newTestServer(t, ""), http.MethodPost, "/api/prevalence/pr", observationsBody, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, tsvContentType, w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Run-Id"))

	lines := strings.Split(strings.TrimRight(w.Body.String(), "\r\n"), "\r\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Position\tAA\t# Naive (All)"))
	assert.Contains(t, lines[0], "Naive Prev (B)")

	cells := strings.Split(lines[1], "\t")
	assert.Equal(t, []string{"10", "F", "10", "1", "10.0%"}, cells[:5])
	assert.Equal(t, []string{"0", "0", "0%", "-"}, cells[len(cells)-6:len(cells)-2])
	p, err := strconv.ParseFloat(cells[len(cells)-2], 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.0027594561852200836, p, 1e-15)
}

func TestPrevalence_JSON(t *testing.T) {
	w := do(newTestServer(t, ""), http.MethodPost, "/api/prevalence/PR?no_subtype=true&flag_selection", observationsBody, "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got struct {
		RunID   string     `json:"run_id"`
		Gene    string     `json:"gene"`
		Test    string     `json:"test"`
		Header  []string   `json:"header"`
		Rows    [][]string `json:"rows"`
		Summary struct {
			Rows int `json:"rows"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))

	assert.Equal(t, "PR", got.Gene)
	assert.Equal(t, "fisher", got.Test)
	assert.NotContains(t, got.Header, "Max Naive Subtype")
	assert.Equal(t, prevalence.ColSelected, got.Header[len(got.Header)-1])
	require.Len(t, got.Rows, 1)
	assert.Equal(t, 1, got.Summary.Rows)
}

func TestPrevalence_Chi2(t *testing.T) {
	w := do(newTestServer(t, ""), http.MethodPost, "/api/prevalence/PR?test=chi2", observationsBody, "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"test":"chi2"`)
}

func TestPrevalence_BadRequests(t *testing.T) {
	s := newTestServer(t, "")
	tests := []struct {
		name   string
		target string
		body   string
	}{
		{"unknown gene", "/api/prevalence/GAG", observationsBody},
		{"unknown test", "/api/prevalence/PR?test=anova", observationsBody},
		{"bad boolean", "/api/prevalence/PR?no_subtype=maybe", observationsBody},
		{"aggregate subtype", "/api/prevalence/PR?subtypes=B,All", observationsBody},
		{"malformed body", "/api/prevalence/PR", `[{"gene": "PR"}]`},
		{"not json", "/api/prevalence/PR", `gene,position`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(s, http.MethodPost, tt.target, tt.body, "")
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestRuns_WithoutStore(t *testing.T) {
	s := newTestServer(t, "")
	w := do(s, http.MethodGet, "/api/runs", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRuns_WithStore(t *testing.T) {
	s := newTestServer(t, "sqlite3://:memory:")

	created := do(s, http.MethodPost, "/api/prevalence/PR", observationsBody, "")
	require.Equal(t, http.StatusOK, created.Code, created.Body.String())
	runID := created.Header().Get("X-Run-Id")

	w := do(s, http.MethodGet, "/api/runs?gene=pr", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var runs []prevalence.RunInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID.String())
	assert.Equal(t, 1, runs[0].RowCount)

	got := do(s, http.MethodGet, "/api/runs/"+runID, "", "")
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, created.Body.String(), got.Body.String())

	missing := do(s, http.MethodGet, "/api/runs/01890a5d-ac96-774b-bcce-b302099a8057", "", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(missing.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body["code"])

	bad := do(s, http.MethodGet, "/api/runs/not-a-uuid", "", "")
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	badLimit := do(s, http.MethodGet, "/api/runs?limit=-1", "", "")
	assert.Equal(t, http.StatusBadRequest, badLimit.Code)
}
