package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/BrennerSpear/clarity/pkg/pipeline"
	"github.com/BrennerSpear/clarity/pkg/store"
)

const composeFixture = `
services:
  web:
    image: nginx:1.27
    depends_on:
      - api
  api:
    image: myorg/api:latest
    depends_on:
      - postgres
  postgres:
    image: postgres:16
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	fs, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	ts := httptest.NewServer(New(runner, fs, logger).Router())
	t.Cleanup(ts.Close)
	return ts
}

func postDiagram(t *testing.T, ts *httptest.Server, body map[string]any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+"/api/diagram", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST /api/diagram failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestDiagramEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := postDiagram(t, ts, map[string]any{
		"source_data": []byte(composeFixture),
		"parser":      "compose",
		"formats":     []string{"svg", "json"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		GraphHash string            `json:"graph_hash"`
		NodeCount int               `json:"node_count"`
		Artifacts map[string][]byte `json:"artifacts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.NodeCount != 3 {
		t.Errorf("node_count = %d, want 3", body.NodeCount)
	}
	if body.GraphHash == "" {
		t.Error("graph_hash missing")
	}
	if !bytes.Contains(body.Artifacts["svg"], []byte("<svg")) {
		t.Error("svg artifact missing <svg element")
	}
}

func TestDiagramEndpointRejectsMissingSource(t *testing.T) {
	ts := newTestServer(t)

	resp := postDiagram(t, ts, map[string]any{"parser": "compose"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Code != "INVALID_INPUT" {
		t.Errorf("code = %q, want INVALID_INPUT", body.Code)
	}
}

func TestDiagramEndpointIgnoresServerPaths(t *testing.T) {
	ts := newTestServer(t)

	// A client-supplied source path must not make the server read files.
	resp := postDiagram(t, ts, map[string]any{
		"source": "/etc/passwd",
		"parser": "compose",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRunLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp := postDiagram(t, ts, map[string]any{
		"source_data": []byte(composeFixture),
		"parser":      "compose",
		"save":        true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var created struct {
		RunID string `json:"run_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.RunID == "" {
		t.Fatal("run_id missing")
	}

	// List includes the run without its layout.
	listResp, err := http.Get(ts.URL + "/api/runs")
	if err != nil {
		t.Fatal(err)
	}
	defer listResp.Body.Close()
	var runs []map[string]any
	if err := json.NewDecoder(listResp.Body).Decode(&runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}

	// Get returns the full run.
	getResp, err := http.Get(ts.URL + "/api/runs/" + created.RunID)
	if err != nil {
		t.Fatal(err)
	}
	defer getResp.Body.Close()
	if getResp.StatusCode != http.StatusOK {
		t.Errorf("get status = %d, want 200", getResp.StatusCode)
	}

	// Delete removes it.
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/runs/"+created.RunID, nil)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", delResp.StatusCode)
	}

	missing, err := http.Get(ts.URL + "/api/runs/" + created.RunID)
	if err != nil {
		t.Fatal(err)
	}
	defer missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", missing.StatusCode)
	}
}

func TestListRunsInvalidLimit(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/runs?limit=bogus")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRunEndpointsWithoutStore(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	ts := httptest.NewServer(New(runner, nil, logger).Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/runs")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}
