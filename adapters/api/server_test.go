package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gridstat/adapters/stats/engine"
	"gridstat/domain/core"
	"gridstat/domain/dataset"
	"gridstat/domain/stats"
	"gridstat/internal/errors"
	"gridstat/internal/testkit"
)

// memoryRepo is a map-backed stand-in for the result store
type memoryRepo struct {
	results map[core.AnalysisID]*stats.AnalysisResult
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{results: make(map[core.AnalysisID]*stats.AnalysisResult)}
}

func (m *memoryRepo) Save(_ context.Context, result *stats.AnalysisResult) error {
	m.results[result.ID] = result
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id core.AnalysisID) (*stats.AnalysisResult, error) {
	result, ok := m.results[id]
	if !ok {
		return nil, errors.NotFound("analysis " + id.String())
	}
	return result, nil
}

func (m *memoryRepo) List(_ context.Context, limit int) ([]*stats.AnalysisResult, error) {
	out := make([]*stats.AnalysisResult, 0, len(m.results))
	for _, r := range m.results {
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryRepo) Delete(_ context.Context, id core.AnalysisID) error {
	if _, ok := m.results[id]; !ok {
		return errors.NotFound("analysis " + id.String())
	}
	delete(m.results, id)
	return nil
}

func newTestServer(t *testing.T) (*httptest.Server, *memoryRepo) {
	t.Helper()
	table := dataset.NewTable("test")
	src := testkit.NewSource(3)
	x := testkit.Sequence(40)
	if err := table.AddColumn("x", x); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}
	if err := table.AddColumn("y", src.Linear(x, 1.2, 0, 0.5)); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}
	if err := table.AddColumn("z", src.Normal(40, 0, 1)); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}

	repo := newMemoryRepo()
	ts := httptest.NewServer(NewServer(table, engine.NewStatsEngine(), repo).Router())
	t.Cleanup(ts.Close)
	return ts, repo
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("encoding request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["variables"] != float64(3) || body["cases"] != float64(40) {
		t.Errorf("health = %v, want 3 variables over 40 cases", body)
	}
}

func TestDescriptiveEndpoint_StoresResult(t *testing.T) {
	ts, repo := newTestServer(t)

	resp := postJSON(t, ts.URL+"/analyses/descriptive", map[string]any{"variable": "x"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var result stats.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if result.Kind != stats.KindDescriptive {
		t.Errorf("kind = %s, want %s", result.Kind, stats.KindDescriptive)
	}
	if result.Descriptive.Count != 40 {
		t.Errorf("count = %d, want 40", result.Descriptive.Count)
	}
	if _, ok := repo.results[result.ID]; !ok {
		t.Error("computed result was not stored")
	}
}

func TestDescriptiveEndpoint_Extras(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/analyses/descriptive", map[string]any{
		"variable": "x", "percentiles": []float64{0.25, 0.75}, "bins": 4,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Result      *stats.AnalysisResult `json:"result"`
		Percentiles []float64             `json:"percentiles"`
		Frequencies []stats.FrequencyBin  `json:"frequencies"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Result == nil || body.Result.Kind != stats.KindDescriptive {
		t.Error("composite response missing the descriptive envelope")
	}
	if len(body.Percentiles) != 2 {
		t.Errorf("got %d percentiles, want 2", len(body.Percentiles))
	}
	if len(body.Frequencies) != 4 {
		t.Errorf("got %d bins, want 4", len(body.Frequencies))
	}
}

func TestCorrelationEndpoint_Defaults(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/analyses/correlation", map[string]any{
		"variables": []string{"x", "y"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var result stats.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	m := result.Correlation
	if m.Method != stats.MethodPearson || m.Tail != stats.TailTwo {
		t.Errorf("defaults = %s/%s, want pearson/two", m.Method, m.Tail)
	}
	if m.Coefficients[0][1] < 0.9 {
		t.Errorf("r(x,y) = %f, want strong positive", m.Coefficients[0][1])
	}
}

func TestRegressionEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/analyses/regression", map[string]any{
		"dependent":    "y",
		"independents": []string{"x"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var result stats.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if result.Regression.RSquared < 0.9 {
		t.Errorf("R^2 = %f, want > 0.9", result.Regression.RSquared)
	}
}

func TestErrorMapping(t *testing.T) {
	ts, _ := newTestServer(t)

	// Unknown variable surfaces as a 400 with a taxonomy code.
	resp := postJSON(t, ts.URL+"/analyses/descriptive", map[string]any{"variable": "nope"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown variable: status = %d, want 400", resp.StatusCode)
	}
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body.Code != errors.CodeDimensionMismatch {
		t.Errorf("code = %s, want %s", body.Code, errors.CodeDimensionMismatch)
	}

	// Bad enum value in the correlation options.
	resp = postJSON(t, ts.URL+"/analyses/correlation", map[string]any{
		"variables": []string{"x", "y"}, "method": "kendall",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown method: status = %d, want 400", resp.StatusCode)
	}

	// Unknown analysis ID.
	getResp, err := http.Get(ts.URL + "/analyses/does-not-exist")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", getResp.StatusCode)
	}
}

func TestReportEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/analyses/descriptive", map[string]any{"variable": "x"})
	var result stats.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}

	reportResp, err := http.Get(ts.URL + "/analyses/" + result.ID.String() + "/report")
	if err != nil {
		t.Fatalf("GET report failed: %v", err)
	}
	defer reportResp.Body.Close()
	if reportResp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", reportResp.StatusCode)
	}
	if ct := reportResp.Header.Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("content type = %s, want text/html", ct)
	}
}

func TestDeleteEndpoint(t *testing.T) {
	ts, repo := newTestServer(t)

	resp := postJSON(t, ts.URL+"/analyses/descriptive", map[string]any{"variable": "x"})
	var result stats.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding result: %v", err)
	}

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/analyses/"+result.ID.String(), nil)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	defer delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", delResp.StatusCode)
	}
	if len(repo.results) != 0 {
		t.Error("result still present after delete")
	}
}
