// Package batchmatchinvestors fans one startup profile out over the active
// investor pool and returns the best-fit candidates.
package batchmatchinvestors

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"github.com/Ayush1216/Frictionless/internal/common/camunda"
	"github.com/Ayush1216/Frictionless/internal/common/config"
	"github.com/Ayush1216/Frictionless/internal/common/errors"
	"github.com/Ayush1216/Frictionless/internal/common/logger"
	"github.com/Ayush1216/Frictionless/internal/common/metrics"
	"github.com/Ayush1216/Frictionless/internal/matching/batch"
	"github.com/Ayush1216/Frictionless/internal/matching/engine"
	"github.com/Ayush1216/Frictionless/internal/store"
)

const TaskType = "matching.batch"

type listFunc func(ctx context.Context, sectors, geos []string, limit int) ([]store.Candidate, error)

type Handler struct {
	config    *Config
	logger    logger.Logger
	camunda   *camunda.Client
	matcher   *batch.Matcher
	investors *store.InvestorStore
	cache     *store.Cache
	list      listFunc
}

type HandlerOptions struct {
	AppConfig    *config.Config
	Camunda      *camunda.Client
	CustomConfig *Config
	Logger       logger.Logger
	Investors    *store.InvestorStore
	Search       *store.SearchStore
	Cache        *store.Cache
}

// NewHandler prefers the search index for candidate selection and falls back
// to the relational store when no index is configured.
func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for batch-match-investors: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	h := &Handler{
		config:    workerConfig,
		logger:    log,
		camunda:   opts.Camunda,
		matcher:   batch.NewMatcher(log),
		investors: opts.Investors,
		cache:     opts.Cache,
	}
	switch {
	case opts.Search != nil:
		h.list = opts.Search.SearchCandidates
	case opts.Investors != nil:
		h.list = opts.Investors.ListActiveCandidates
	}
	return h, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing batch investor matching", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"worker":             TaskType,
	})

	if !h.config.Enabled {
		h.completeJob(ctx, client, job, &Output{
			Success: false,
			Message: "batch matcher disabled",
		})
		return
	}

	input, err := h.parseInput(job)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, extractErrorCode(err)).Inc()
		h.failJob(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, extractErrorCode(err)).Inc()
		h.failJob(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

// Execute fetches the candidate pool, scores every candidate concurrently
// and keeps the best N. Interim standings are written to the cache after
// every completed candidate so callers can poll long batches.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if h.list == nil {
		return nil, errors.New(errors.ErrCodeCandidateQueryFailed, "No candidate source configured", "batch matching requires a database or search index", false)
	}

	batchID := input.BatchID
	if batchID == "" {
		batchID = uuid.NewString()
	}

	limit := input.Limit
	if limit <= 0 || limit > h.config.CandidateCap {
		limit = h.config.CandidateCap
	}
	bestN := input.BestN
	if bestN <= 0 {
		bestN = h.config.BestN
	}

	candidates, err := h.list(ctx, input.Sectors, input.Geos, limit)
	if err != nil {
		return nil, err
	}

	rubric, err := engine.LoadRubric(h.config.RubricPath)
	if err != nil {
		h.logger.Warn("rubric unavailable, scoring with built-in defaults", map[string]interface{}{
			"rubricPath": h.config.RubricPath,
			"error":      err.Error(),
		})
		rubric = nil
	}

	results := h.matcher.Run(ctx, input.StartupProfile, candidates, batch.Options{
		Concurrency: h.config.Concurrency,
		Rubric:      rubric,
		BestN:       bestN,
		OnProgress: func(best []batch.Result) {
			if h.cache == nil {
				return
			}
			if err := h.cache.SetBatchProgress(ctx, batchID, best); err != nil {
				h.logger.Warn("failed to write batch progress", map[string]interface{}{
					"batchId": batchID,
					"error":   err.Error(),
				})
			}
		},
	})

	if len(results) > bestN {
		results = results[:bestN]
	}

	if h.investors != nil {
		for _, r := range results {
			if err := h.investors.SaveMatchResult(ctx, uuid.NewString(), input.StartupID, r.InvestorID, r.Match.Eligible, r.Match.FitScore, r.Match); err != nil {
				h.logger.Warn("failed to persist batch match result", map[string]interface{}{
					"batchId":    batchID,
					"investorId": r.InvestorID,
					"error":      err.Error(),
				})
			}
		}
	}

	h.logger.Info("Batch matching complete", map[string]interface{}{
		"batchId":        batchID,
		"candidateCount": len(candidates),
		"resultCount":    len(results),
	})

	return &Output{
		Success:        true,
		BatchID:        batchID,
		CandidateCount: len(candidates),
		Results:        results,
	}, nil
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.New(errors.ErrCodeInputParsingFailed, "Failed to parse job variables", err.Error(), false)
	}

	raw, err := json.Marshal(variables)
	if err != nil {
		return nil, errors.New(errors.ErrCodeInputParsingFailed, "Failed to encode job variables", err.Error(), false)
	}

	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, errors.New(errors.ErrCodeInputParsingFailed, "Failed to decode job variables", err.Error(), false)
	}

	if input.StartupProfile == nil {
		return nil, errors.New(errors.ErrCodeValidationFailed, "Input validation failed", "startupProfile is required", false)
	}
	return &input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	variables := map[string]interface{}{
		"batchMatched":   output.Success,
		"batchId":        output.BatchID,
		"candidateCount": output.CandidateCount,
		"batchResults":   output.Results,
	}
	if output.Message != "" {
		variables["batchMessage"] = output.Message
	}

	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(variables)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
			"worker": TaskType,
		})
		return
	}

	if _, err = request.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
			"worker": TaskType,
		})
	}
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := convertToStandardError(err)
	bpmnErr := stdErr.ToBPMN(int(job.GetRetries()) - 1)

	h.logger.Error("Batch investor matching failed", map[string]interface{}{
		"jobKey":       job.GetKey(),
		"errorCode":    bpmnErr.Code,
		"errorMessage": bpmnErr.Message,
		"retryable":    bpmnErr.Retryable,
		"worker":       TaskType,
	})

	failCmd := client.NewFailJobCommand().
		JobKey(job.GetKey()).
		Retries(int32(bpmnErr.Retries)).
		ErrorMessage(bpmnErr.Message)

	if _, sendErr := failCmd.Send(ctx); sendErr != nil {
		h.logger.Error("Failed to fail job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  sendErr.Error(),
			"worker": TaskType,
		})
	}
}

func convertToStandardError(err error) *errors.StandardError {
	if stdErr, ok := err.(*errors.StandardError); ok {
		return stdErr
	}
	return errors.New(errors.ErrCodeBatchMatchFailed, "Batch investor matching failed", err.Error(), false)
}

func extractErrorCode(err error) string {
	if stdErr, ok := err.(*errors.StandardError); ok {
		return string(stdErr.Code)
	}
	return "UNKNOWN"
}
