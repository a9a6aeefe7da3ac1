package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/searchsync/internal/core/domain"
	"github.com/custodia-labs/searchsync/internal/core/ports/driving"
	"github.com/custodia-labs/searchsync/internal/logger"
)

// ErrConfigureUnavailable is returned by the configure tool when no
// configure service was provided.
var ErrConfigureUnavailable = errors.New("mcp: configure service not available")

// ReindexInput is the input schema for the reindex tool.
type ReindexInput struct {
	Classes   []string `json:"classes,omitempty" jsonschema:"record classes to reindex (default all searchable base classes)"`
	BatchSize *int     `json:"batch_size,omitempty" jsonschema:"documents per batch (default the configured batch size)"`
	Wait      bool     `json:"wait,omitempty" jsonschema:"run the job to completion before returning"`
}

// JobStatusInput is the input schema for the job_status tool.
type JobStatusInput struct {
	JobID string `json:"job_id" jsonschema:"the id of the reindex job"`
}

// ListJobsInput is the input schema for the list_jobs tool.
type ListJobsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of jobs to return (default 20)"`
}

// ConfigureInput is the input schema for the configure tool.
type ConfigureInput struct{}

// JobOutput describes a reindex job.
type JobOutput struct {
	JobID       string   `json:"job_id"`
	Title       string   `json:"title"`
	Status      string   `json:"status"`
	Classes     []string `json:"classes,omitempty"`
	CurrentStep int      `json:"current_step"`
	TotalSteps  int      `json:"total_steps"`
	Progress    float64  `json:"progress"`
	IsComplete  bool     `json:"is_complete"`
	LastError   string   `json:"last_error,omitempty"`
}

// ListJobsOutput is the output schema for the list_jobs tool.
type ListJobsOutput struct {
	Jobs  []JobOutput `json:"jobs"`
	Count int         `json:"count"`
}

// ConfigureOutput is the output schema for the configure tool.
type ConfigureOutput struct {
	Message string `json:"message"`
}

func jobOutput(s domain.ReindexState) JobOutput {
	return JobOutput{
		JobID:       s.JobID,
		Title:       domain.ReindexTitle(s.OnlyClasses),
		Status:      string(s.Status),
		Classes:     s.OnlyClasses,
		CurrentStep: s.CurrentStep,
		TotalSteps:  s.TotalSteps,
		Progress:    s.Progress(),
		IsComplete:  s.IsComplete,
		LastError:   s.LastError,
	}
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reindex",
		Description: "Queue a batch reindex of searchable records",
	}, s.handleReindex)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "job_status",
		Description: "Show the progress of a reindex job",
	}, s.handleJobStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_jobs",
		Description: "List reindex jobs, most recent first",
	}, s.handleListJobs)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "configure",
		Description: "Push the index configuration to the search backend",
	}, s.handleConfigure)
}

// handleReindex queues a job. Unless Wait is set it runs in the background.
func (s *Server) handleReindex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReindexInput,
) (*mcp.CallToolResult, JobOutput, error) {
	opts := driving.ReindexOptions{Classes: input.Classes, BatchSize: input.BatchSize}

	if input.Wait {
		state, err := s.ports.Reindex.Start(ctx, opts)
		if err != nil {
			return nil, JobOutput{}, err
		}
		return nil, jobOutput(*state), nil
	}

	state, err := s.ports.Reindex.Enqueue(ctx, opts)
	if err != nil {
		return nil, JobOutput{}, err
	}

	s.jobs.Add(1)
	go func(jobID string) {
		defer s.jobs.Done()
		if _, err := s.ports.Reindex.Resume(s.base, jobID); err != nil {
			logger.Error("reindex job %s failed: %v", jobID, err)
		}
	}(state.JobID)

	return nil, jobOutput(*state), nil
}

// handleJobStatus returns the persisted state of a job.
func (s *Server) handleJobStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input JobStatusInput,
) (*mcp.CallToolResult, JobOutput, error) {
	state, err := s.ports.Reindex.Status(ctx, input.JobID)
	if err != nil {
		return nil, JobOutput{}, err
	}
	return nil, jobOutput(*state), nil
}

// handleListJobs returns the most recent jobs.
func (s *Server) handleListJobs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListJobsInput,
) (*mcp.CallToolResult, ListJobsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	states, err := s.ports.Reindex.List(ctx)
	if err != nil {
		return nil, ListJobsOutput{}, err
	}
	if len(states) > limit {
		states = states[:limit]
	}

	output := ListJobsOutput{Jobs: make([]JobOutput, len(states)), Count: len(states)}
	for i := range states {
		output.Jobs[i] = jobOutput(states[i])
	}
	return nil, output, nil
}

// handleConfigure pushes the index configuration.
func (s *Server) handleConfigure(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ConfigureInput,
) (*mcp.CallToolResult, ConfigureOutput, error) {
	if s.ports.Configure == nil {
		return nil, ConfigureOutput{}, ErrConfigureUnavailable
	}
	if err := s.ports.Configure.Configure(ctx); err != nil {
		return nil, ConfigureOutput{}, err
	}
	return nil, ConfigureOutput{Message: "Done."}, nil
}
