// Package buildstartupprofile normalizes raw startup source documents into
// the canonical startup thesis profile.
package buildstartupprofile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"github.com/Ayush1216/Frictionless/internal/common/camunda"
	"github.com/Ayush1216/Frictionless/internal/common/config"
	"github.com/Ayush1216/Frictionless/internal/common/errors"
	"github.com/Ayush1216/Frictionless/internal/common/logger"
	"github.com/Ayush1216/Frictionless/internal/common/metrics"
	"github.com/Ayush1216/Frictionless/internal/matching/profile"
	"github.com/Ayush1216/Frictionless/internal/store"
)

const TaskType = "profile.startup.build"

type Handler struct {
	config  *Config
	logger  logger.Logger
	camunda *camunda.Client
	refiner profile.Refiner
	cache   *store.Cache
}

type HandlerOptions struct {
	AppConfig    *config.Config
	Camunda      *camunda.Client
	CustomConfig *Config
	Logger       logger.Logger
	Refiner      profile.Refiner
	Cache        *store.Cache
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for build-startup-profile: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:  workerConfig,
		logger:  log,
		camunda: opts.Camunda,
		refiner: opts.Refiner,
		cache:   opts.Cache,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing startup profile build", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"worker":             TaskType,
	})

	if !h.config.Enabled {
		h.completeJob(ctx, client, job, &Output{
			Success: false,
			Message: "startup profile builder disabled",
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

// Execute builds the heuristic profile and optionally refines it through the
// LLM provider chain. Refinement failures fall back to the heuristic draft;
// they never fail the job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	base := profile.FillStartupDefaults(profile.InferStartupHeuristic(input.Apollo, input.StartupKV, input.Readiness))

	useLLM := h.config.UseLLM
	if input.UseLLM != nil {
		useLLM = *input.UseLLM
	}

	final := base
	llmRefined := false
	if useLLM && h.refiner != nil {
		refined, err := profile.RefineStartup(ctx, h.refiner, base, input.Apollo, input.StartupKV, input.Readiness, profile.RefineOptions{
			Provider:         h.config.Provider,
			SecondPass:       h.config.SecondPass,
			MissingThreshold: h.config.MissingThreshold,
		})
		if err != nil {
			h.logger.Warn("startup LLM refinement failed, keeping heuristic draft", map[string]interface{}{
				"startupId": input.StartupID,
				"error":     err.Error(),
			})
			meta, _ := final["metadata"].(map[string]interface{})
			if meta == nil {
				meta = map[string]interface{}{}
				final["metadata"] = meta
			}
			meta["llm_refined"] = false
			meta["llm_error"] = err.Error()
		} else {
			final = refined
			llmRefined = true
		}
	} else {
		meta, _ := final["metadata"].(map[string]interface{})
		if meta == nil {
			meta = map[string]interface{}{}
			final["metadata"] = meta
		}
		meta["llm_refined"] = false
	}

	if h.cache != nil && input.StartupID != "" {
		if err := h.cache.SetProfile(ctx, "startup", input.StartupID, final); err != nil {
			h.logger.Warn("failed to cache startup profile", map[string]interface{}{
				"startupId": input.StartupID,
				"error":     err.Error(),
			})
		}
	}

	return &Output{
		Success:    true,
		Profile:    final,
		LLMRefined: llmRefined,
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

	if input.Apollo == nil && input.StartupKV == nil && input.Readiness == nil {
		return nil, errors.New(errors.ErrCodeValidationFailed, "Input validation failed", "at least one source document (apollo, startupKv, readiness) is required", false)
	}
	return &input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	variables := map[string]interface{}{
		"startupProfileBuilt": output.Success,
		"startupProfile":      output.Profile,
		"llmRefined":          output.LLMRefined,
	}
	if output.Message != "" {
		variables["profileMessage"] = output.Message
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

	h.logger.Error("Startup profile build failed", map[string]interface{}{
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
	return errors.New(errors.ErrCodeProfileBuildFailed, "Startup profile build failed", err.Error(), false)
}

func extractErrorCode(err error) string {
	if stdErr, ok := err.(*errors.StandardError); ok {
		return string(stdErr.Code)
	}
	return "UNKNOWN"
}
