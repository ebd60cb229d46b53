package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/wellcheck/internal/assessment"
	"github.com/dshills/wellcheck/internal/history"
	"github.com/dshills/wellcheck/internal/profile"
	"github.com/dshills/wellcheck/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestRouter(t *testing.T, withHistory bool) http.Handler {
	t.Helper()
	p, err := profile.LoadBuiltin("standard")
	require.NoError(t, err)

	var opts []assessment.Option
	if withHistory {
		h, err := history.Open(filepath.Join(t.TempDir(), "h.db"))
		require.NoError(t, err)
		t.Cleanup(func() { h.Close() })
		opts = append(opts, assessment.WithHistory(h))
	}
	svc, err := assessment.Load(p, "", opts...)
	require.NoError(t, err)
	return NewRouter(svc, Options{Logger: quiet})
}

const highBody = `{
  "name": "Kai",
  "answers": {
    "family_history": "Yes",
    "treatment": "No",
    "Growing_Stress": "Overwhelming",
    "Changes_Habits": "Significant changes",
    "Mood_Swings": "Often",
    "Coping_Struggles": "Struggling most of the time",
    "Work_Interest": "Not engaged",
    "Social_Weakness": "Much less connected"
  }
}`

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t, false), "GET", "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestQuestions(t *testing.T) {
	rec := do(t, newTestRouter(t, false), "GET", "/v1/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got questionnaire
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "standard", got.Profile)
	assert.Len(t, got.Questions, 8)
}

func TestAssessJSON(t *testing.T) {
	rec := do(t, newTestRouter(t, false), "POST", "/v1/assessments", highBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		PreparedFor string `json:"prepared_for"`
		Result      struct {
			SeverityIndex int    `json:"severity_index"`
			RiskBand      string `json:"risk_band"`
			ClusterID     int    `json:"cluster_id"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Kai", got.PreparedFor)
	assert.Equal(t, 12, got.Result.SeverityIndex)
	assert.Equal(t, "High", got.Result.RiskBand)
	assert.Equal(t, 0, got.Result.ClusterID)
}

func TestAssessFormats(t *testing.T) {
	h := newTestRouter(t, false)

	rec := do(t, h, "POST", "/v1/assessments?format=md", highBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Body.String(), "## Risk Level: High")

	rec = do(t, h, "POST", "/v1/assessments?format=pdf", highBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = do(t, h, "POST", "/v1/assessments?format=html", highBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssessErrors(t *testing.T) {
	h := newTestRouter(t, false)

	rec := do(t, h, "POST", "/v1/assessments", `{"answers": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, "POST", "/v1/assessments", `{"answers": {"Growing_Stress": "Elevated"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing answer")
}

func TestAssessBodyTooLarge(t *testing.T) {
	body := `{"answers": {"Growing_Stress": "` + strings.Repeat("x", maxBodyBytes) + `"}}`
	rec := do(t, newTestRouter(t, false), "POST", "/v1/assessments", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAssessProfileMismatchWarns(t *testing.T) {
	body := strings.Replace(highBody, `"name": "Kai",`, `"name": "Kai", "profile": "extended",`, 1)
	rec := do(t, newTestRouter(t, false), "POST", "/v1/assessments", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"profile: answers were written for profile extended, assessed with standard"}, got.Warnings)
}

func TestAssessPDFRenderFailure(t *testing.T) {
	orig := renderPDF
	t.Cleanup(func() { renderPDF = orig })
	renderPDF = func(io.Writer, *report.Report) error { return errors.New("font missing") }

	rec := do(t, newTestRouter(t, false), "POST", "/v1/assessments?format=pdf", highBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	assert.JSONEq(t, `{"error":"failed to render report"}`, rec.Body.String())
}

func TestContent(t *testing.T) {
	h := newTestRouter(t, false)

	rec := do(t, h, "GET", "/v1/content/moderate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ongoing stress")

	rec = do(t, h, "GET", "/v1/content/severe", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryDisabled(t *testing.T) {
	h := newTestRouter(t, false)
	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/v1/history/summary", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "GET", "/v1/history", "").Code)
}

func TestHistory(t *testing.T) {
	h := newTestRouter(t, true)
	require.Equal(t, http.StatusOK, do(t, h, "POST", "/v1/assessments", highBody).Code)
	require.Equal(t, http.StatusOK, do(t, h, "POST", "/v1/assessments", highBody).Code)

	rec := do(t, h, "GET", "/v1/history/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sum history.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, int64(2), sum.Total)
	assert.Equal(t, int64(2), sum.Bands["High"])

	rec = do(t, h, "GET", "/v1/history?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []history.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)
	assert.NotContains(t, rec.Body.String(), "Kai")

	assert.Equal(t, http.StatusBadRequest, do(t, h, "GET", "/v1/history?limit=x", "").Code)
}

func TestCORSPreflight(t *testing.T) {
	rec := do(t, newTestRouter(t, false), "OPTIONS", "/v1/assessments", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServeShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serveListener(ctx, ln, newTestRouter(t, false), time.Second, quiet)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
