// Package scorethesisfit runs the deterministic thesis-fit engine for a
// single startup/investor pair: hard gates, category scoring, improvement
// tasks and the reasoning summary.
package scorethesisfit

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
	"github.com/Ayush1216/Frictionless/internal/matching/engine"
	"github.com/Ayush1216/Frictionless/internal/store"
)

const TaskType = "matching.score"

type Handler struct {
	config    *Config
	logger    logger.Logger
	camunda   *camunda.Client
	refiner   engine.Refiner
	investors *store.InvestorStore
}

type HandlerOptions struct {
	AppConfig    *config.Config
	Camunda      *camunda.Client
	CustomConfig *Config
	Logger       logger.Logger
	Refiner      engine.Refiner
	Investors    *store.InvestorStore
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for score-thesis-fit: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:    workerConfig,
		logger:    log,
		camunda:   opts.Camunda,
		refiner:   opts.Refiner,
		investors: opts.Investors,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing thesis-fit scoring", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"worker":             TaskType,
	})

	if !h.config.Enabled {
		h.completeJob(ctx, client, job, &Output{
			Success: false,
			Message: "thesis-fit scorer disabled",
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

// Execute scores one pair. Completed-task overrides are applied first so a
// re-score reflects remediation work, then the rubric (when configured)
// overrides point values before gates and categories run.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	startupObj := input.StartupProfile
	investorObj := input.InvestorProfile

	var applied []string
	if input.CompletedTasks != nil {
		startupObj, investorObj, applied = engine.ApplyCompletedTaskOverrides(startupObj, investorObj, input.CompletedTasks)
	}

	rubric, err := engine.LoadRubric(h.config.RubricPath)
	if err != nil {
		h.logger.Warn("rubric unavailable, scoring with built-in defaults", map[string]interface{}{
			"rubricPath": h.config.RubricPath,
			"error":      err.Error(),
		})
		rubric = nil
	}
	if sum, ok := engine.WeightSum(rubric); !ok {
		h.logger.Warn("rubric category weights do not sum to 100", map[string]interface{}{
			"weightSum": sum,
		})
	}

	result := engine.Match(startupObj, investorObj, rubric)
	result.Tasks = engine.GenerateImprovementTasks(result, investorObj, h.config.MaxTasks)
	result.TaskEngineVersion = engine.TaskEngineVersion
	if len(applied) > 0 {
		result.CompletedTaskUpdatesApplied = applied
	}

	if h.config.ReasoningEnabled && h.refiner != nil {
		result.Reasoning = engine.LLMReasoning(ctx, h.refiner, result, startupObj, investorObj, result.Tasks, h.config.ReasoningProvider)
	} else {
		result.Reasoning = engine.DeterministicReasoning(result, investorObj, result.Tasks)
	}

	matchID := input.MatchID
	if matchID == "" {
		matchID = uuid.NewString()
	}

	if h.investors != nil {
		if err := h.investors.SaveMatchResult(ctx, matchID, input.StartupID, input.InvestorID, result.Eligible, result.FitScore, result); err != nil {
			h.logger.Warn("failed to persist match result", map[string]interface{}{
				"matchId": matchID,
				"error":   err.Error(),
			})
		}
	}

	return &Output{
		Success: true,
		MatchID: matchID,
		Result:  result,
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
	if input.InvestorProfile == nil {
		return nil, errors.New(errors.ErrCodeValidationFailed, "Input validation failed", "investorProfile is required", false)
	}
	return &input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	variables := map[string]interface{}{
		"matchScored": output.Success,
		"matchId":     output.MatchID,
		"matchResult": output.Result,
	}
	if output.Message != "" {
		variables["matchMessage"] = output.Message
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

	h.logger.Error("Thesis-fit scoring failed", map[string]interface{}{
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
	return errors.NewMatchScoreError(err.Error())
}

func extractErrorCode(err error) string {
	if stdErr, ok := err.(*errors.StandardError); ok {
		return string(stdErr.Code)
	}
	return "UNKNOWN"
}
