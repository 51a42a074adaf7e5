// Package mcpserver exposes the analysis pipeline over the Model Context
// Protocol so coding agents can list candidates, run analyses, and recall
// past runs without shelling out to the CLI.
package mcpserver

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"sift/internal/classify"
	"sift/internal/fetch"
	"sift/internal/history"
	"sift/internal/logging"
	"sift/internal/report"
	"sift/internal/schedule"
)

// Pipeline is the slice of the analysis flow the server drives. It is
// satisfied by the wiring in cmd/sift and faked in tests.
type Pipeline interface {
	Fetch(ctx context.Context, criteria fetch.Criteria) ([]fetch.Candidate, error)
	Classify(ctx context.Context, cands []fetch.Candidate) ([]classify.Failure, error)
}

// Server wraps the MCP SDK server around a pipeline and a history store.
type Server struct {
	MCPServer *sdkmcp.Server

	pipeline Pipeline
	store    *history.Store // may be nil; get_run then reports unavailable
	project  string
}

// NewServer builds the MCP server and registers its tools. store may be
// nil when history persistence is disabled.
func NewServer(pipeline Pipeline, store *history.Store, project string) *Server {
	s := &Server{pipeline: pipeline, store: store, project: project}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "sift", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves MCP over the given transport until ctx is canceled.
func (s *Server) Run(ctx context.Context, transport sdkmcp.Transport) error {
	logging.New("mcpserver").Info("serving MCP", "project", s.project)
	return s.MCPServer.Run(ctx, transport)
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_candidates",
		Description: "List failing tests matching the filter criteria without classifying them.",
	}, s.handleListCandidates)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "analyze_failures",
		Description: "Fetch, filter, and classify failing tests; returns aggregate counts and the markdown report.",
	}, s.handleAnalyzeFailures)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_run",
		Description: "Recall a recorded analysis run by ID from the local history database.",
	}, s.handleGetRun)
}

// --- Tool input/output types ---

type criteriaInput struct {
	HoursBack   int      `json:"hours_back,omitempty" jsonschema:"how far back to look in hours (default 24)"`
	Components  []string `json:"components,omitempty" jsonschema:"component substrings to match"`
	Versions    []string `json:"versions,omitempty" jsonschema:"version substrings to match"`
	Statuses    []string `json:"statuses,omitempty" jsonschema:"test statuses to include"`
	DefectTypes []string `json:"defect_types,omitempty" jsonschema:"defect type substrings to match"`
	MaxTests    int      `json:"max_tests,omitempty" jsonschema:"cap on analyzed tests (default 50)"`
}

type candidateSummary struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	LaunchName string `json:"launch_name"`
	Status     string `json:"status"`
	DefectType string `json:"defect_type,omitempty"`
	Message    string `json:"message,omitempty"`
}

type listCandidatesOutput struct {
	Total      int                `json:"total"`
	Candidates []candidateSummary `json:"candidates"`
}

type analyzeFailuresOutput struct {
	Total          int            `json:"total"`
	HighPriority   int            `json:"high_priority"`
	SystemIssues   int            `json:"system_issues"`
	ProductionBugs int            `json:"production_bugs"`
	ByCategory     map[string]int `json:"by_category"`
	Report         string         `json:"report"`
	RunID          int64          `json:"run_id,omitempty"`
}

type getRunInput struct {
	RunID int64 `json:"run_id" jsonschema:"run ID from a previous analyze_failures call or the history list"`
}

type getRunOutput struct {
	Run      *history.Run         `json:"run"`
	Failures []history.RunFailure `json:"failures"`
}

// --- Tool handlers ---

func (in criteriaInput) criteria() fetch.Criteria {
	c := fetch.Criteria{
		HoursBack:   in.HoursBack,
		Components:  in.Components,
		Versions:    in.Versions,
		Statuses:    in.Statuses,
		DefectTypes: in.DefectTypes,
		MaxTests:    in.MaxTests,
	}
	if c.HoursBack <= 0 {
		c.HoursBack = 24
	}
	if c.MaxTests <= 0 {
		c.MaxTests = 50
	}
	return c
}

func (s *Server) handleListCandidates(ctx context.Context, _ *sdkmcp.CallToolRequest, input criteriaInput) (*sdkmcp.CallToolResult, listCandidatesOutput, error) {
	criteria := input.criteria()
	cands, err := s.pipeline.Fetch(ctx, criteria)
	if err != nil {
		return nil, listCandidatesOutput{}, fmt.Errorf("list_candidates: %w", err)
	}
	cands = fetch.Truncate(fetch.Filter(cands, criteria), criteria.MaxTests)

	out := listCandidatesOutput{Total: len(cands)}
	for _, c := range cands {
		out.Candidates = append(out.Candidates, candidateSummary{
			ID:         c.ID,
			Name:       c.Name,
			LaunchName: c.LaunchName,
			Status:     c.Status,
			DefectType: c.DefectType,
			Message:    c.Message,
		})
	}
	return nil, out, nil
}

func (s *Server) handleAnalyzeFailures(ctx context.Context, _ *sdkmcp.CallToolRequest, input criteriaInput) (*sdkmcp.CallToolResult, analyzeFailuresOutput, error) {
	criteria := input.criteria()
	started := time.Now()

	runCtx, cancel := context.WithTimeout(ctx, schedule.RunDeadline(criteria.MaxTests, criteria.HoursBack))
	defer cancel()

	cands, err := s.pipeline.Fetch(runCtx, criteria)
	if err != nil {
		return nil, analyzeFailuresOutput{}, fmt.Errorf("analyze_failures: %w", err)
	}
	cands = fetch.Truncate(fetch.Filter(cands, criteria), criteria.MaxTests)

	failures, err := s.pipeline.Classify(runCtx, cands)
	if err != nil && len(failures) == 0 {
		return nil, analyzeFailuresOutput{}, fmt.Errorf("analyze_failures: %w", err)
	}

	agg := report.Aggregate(failures)
	rendered := report.Render(agg, time.Now())

	out := analyzeFailuresOutput{
		Total:          agg.Total,
		HighPriority:   agg.HighPriority,
		SystemIssues:   agg.SystemIssues,
		ProductionBugs: agg.ProductionBugs,
		ByCategory:     make(map[string]int, len(agg.ByCategory)),
		Report:         rendered,
	}
	for cat, fs := range agg.ByCategory {
		out.ByCategory[string(cat)] = len(fs)
	}

	if s.store != nil {
		run := history.Summarize(s.project, criteria.HoursBack, started, failures, rendered)
		if id, err := s.store.RecordRun(run, failures); err == nil {
			out.RunID = id
		} else {
			logging.New("mcpserver").Warn("history record failed", "error", err)
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetRun(_ context.Context, _ *sdkmcp.CallToolRequest, input getRunInput) (*sdkmcp.CallToolResult, getRunOutput, error) {
	if s.store == nil {
		return nil, getRunOutput{}, fmt.Errorf("get_run: history store not configured")
	}
	run, failures, err := s.store.GetRun(input.RunID)
	if err != nil {
		return nil, getRunOutput{}, fmt.Errorf("get_run: %w", err)
	}
	return nil, getRunOutput{Run: run, Failures: failures}, nil
}
