package mcpserver_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"sift/internal/classify"
	"sift/internal/fetch"
	"sift/internal/history"
	"sift/internal/mcpserver"
)

// fakePipeline serves canned candidates and classifies everything as a
// network failure.
type fakePipeline struct {
	cands []fetch.Candidate
}

func (p *fakePipeline) Fetch(_ context.Context, _ fetch.Criteria) ([]fetch.Candidate, error) {
	return p.cands, nil
}

func (p *fakePipeline) Classify(_ context.Context, cands []fetch.Candidate) ([]classify.Failure, error) {
	out := make([]classify.Failure, len(cands))
	for i, c := range cands {
		out[i] = classify.Failure{
			ItemID:     c.ID,
			Name:       c.Name,
			Category:   classify.Network,
			Confidence: 0.9,
			Priority:   classify.PriorityHigh,
		}
	}
	return out, nil
}

func testCandidates() []fetch.Candidate {
	return []fetch.Candidate{
		{ID: 1, Name: "TestDNS", LaunchName: "nightly 4.17", Status: "FAILED", Message: "lookup failed"},
		{ID: 2, Name: "TestRoutes", LaunchName: "nightly 4.17", Status: "FAILED", DefectType: "pb001"},
	}
}

func newSession(t *testing.T, srv *mcpserver.Server) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	t1, t2 := sdkmcp.NewInMemoryTransports()
	serverSession, err := srv.MCPServer.Connect(ctx, t1, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if res.IsError {
		for _, c := range res.Content {
			if tc, ok := c.(*sdkmcp.TextContent); ok {
				t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
			}
		}
		t.Fatalf("CallTool(%s) returned error", name)
	}
	result := make(map[string]any)
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			if err := json.Unmarshal([]byte(tc.Text), &result); err != nil {
				t.Fatalf("unmarshal tool result: %v (text: %s)", err, tc.Text)
			}
			return result
		}
	}
	t.Fatal("no text content in tool result")
	return nil
}

func TestToolDiscovery(t *testing.T) {
	srv := mcpserver.NewServer(&fakePipeline{}, nil, "proj")
	session := newSession(t, srv)

	tools, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	want := map[string]bool{
		"list_candidates":  false,
		"analyze_failures": false,
		"get_run":          false,
	}
	for _, tool := range tools.Tools {
		if _, ok := want[tool.Name]; ok {
			want[tool.Name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("tool %q not found in ListTools", name)
		}
	}
}

func TestListCandidates(t *testing.T) {
	srv := mcpserver.NewServer(&fakePipeline{cands: testCandidates()}, nil, "proj")
	session := newSession(t, srv)

	result := callTool(t, session, "list_candidates", map[string]any{"hours_back": 24})
	if total, _ := result["total"].(float64); total != 2 {
		t.Errorf("total = %v, want 2", result["total"])
	}
}

func TestAnalyzeFailuresRecordsRun(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	srv := mcpserver.NewServer(&fakePipeline{cands: testCandidates()}, store, "proj")
	session := newSession(t, srv)

	result := callTool(t, session, "analyze_failures", map[string]any{"max_tests": 10})
	if total, _ := result["total"].(float64); total != 2 {
		t.Errorf("total = %v, want 2", result["total"])
	}
	if high, _ := result["high_priority"].(float64); high != 2 {
		t.Errorf("high_priority = %v, want 2", result["high_priority"])
	}
	if rpt, _ := result["report"].(string); rpt == "" {
		t.Error("report is empty")
	}

	runID, _ := result["run_id"].(float64)
	if runID == 0 {
		t.Fatal("run_id not set despite configured store")
	}

	got := callTool(t, session, "get_run", map[string]any{"run_id": runID})
	run, _ := got["run"].(map[string]any)
	if run == nil {
		t.Fatalf("get_run returned no run: %v", got)
	}
	if proj, _ := run["Project"].(string); proj != "proj" {
		t.Errorf("recalled project = %v", run["Project"])
	}
}
