// Package sendmatchnotification delivers match outcomes to founders over
// SES email, with an optional SNS fan-out for downstream consumers.
package sendmatchnotification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"github.com/Ayush1216/Frictionless/internal/common/camunda"
	"github.com/Ayush1216/Frictionless/internal/common/config"
	"github.com/Ayush1216/Frictionless/internal/common/errors"
	"github.com/Ayush1216/Frictionless/internal/common/logger"
	"github.com/Ayush1216/Frictionless/internal/common/metrics"
)

const TaskType = "notification.match.send"

type emailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type topicPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	logger    logger.Logger
	camunda   *camunda.Client
	email     emailSender
	publisher topicPublisher
}

type HandlerOptions struct {
	AppConfig    *config.Config
	Camunda      *camunda.Client
	CustomConfig *Config
	Logger       logger.Logger
	Email        emailSender
	Publisher    topicPublisher
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for send-match-notification: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:    workerConfig,
		logger:    log,
		camunda:   opts.Camunda,
		email:     opts.Email,
		publisher: opts.Publisher,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing match notification", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"worker":             TaskType,
	})

	if !h.config.Enabled {
		h.completeJob(ctx, client, job, &Output{
			Success: false,
			Message: "match notifications disabled",
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

// Execute sends the founder email and, when a topic is configured, publishes
// the outcome event. A failed SNS publish does not fail the job; the email
// is the contractual delivery.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if h.email == nil {
		return nil, errors.New(errors.ErrCodeNotificationSendFailed, "No email client configured", "SES client is required for match notifications", false)
	}

	subject, body := renderEmail(input)
	sendOut, err := h.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: sdkaws.String(h.config.SenderEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{input.RecipientEmail},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: sdkaws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: sdkaws.String(body)},
			},
		},
	})
	if err != nil {
		return nil, errors.New(errors.ErrCodeNotificationSendFailed, "Failed to send match notification email", err.Error(), true)
	}

	output := &Output{Success: true}
	if sendOut.MessageId != nil {
		output.EmailMessageID = *sendOut.MessageId
	}

	if h.publisher != nil && h.config.SNSTopicARN != "" {
		event, _ := json.Marshal(map[string]interface{}{
			"event":        "match.notified",
			"startupName":  input.StartupName,
			"investorName": input.InvestorName,
			"fitScore":     input.FitScore,
			"eligible":     input.Eligible,
			"batchId":      input.BatchID,
		})
		pubOut, pubErr := h.publisher.Publish(ctx, &sns.PublishInput{
			TopicArn: sdkaws.String(h.config.SNSTopicARN),
			Message:  sdkaws.String(string(event)),
		})
		if pubErr != nil {
			h.logger.Warn("failed to publish match event", map[string]interface{}{
				"topicArn": h.config.SNSTopicARN,
				"error":    pubErr.Error(),
			})
		} else if pubOut.MessageId != nil {
			output.SNSMessageID = *pubOut.MessageId
		}
	}

	return output, nil
}

func renderEmail(input *Input) (subject, body string) {
	if input.Eligible {
		subject = fmt.Sprintf("Investor match: %s scored %.1f/100 for %s", input.StartupName, input.FitScore, input.InvestorName)
		body = fmt.Sprintf(
			"Hi,\n\n%s matched %s with a fit score of %.1f/100.\n\n%s\n\nFull breakdown and improvement tasks are available in your dashboard.\n",
			input.StartupName, input.InvestorName, input.FitScore, input.Summary)
		return subject, body
	}
	subject = fmt.Sprintf("Investor match: %s is not yet eligible for %s", input.StartupName, input.InvestorName)
	body = fmt.Sprintf(
		"Hi,\n\n%s did not pass %s's hard requirements, so the fit score is 0. The estimated score after resolving the blockers is %.1f/100.\n\n%s\n\nThe blocking items and unlock tasks are listed in your dashboard.\n",
		input.StartupName, input.InvestorName, input.FitScore, input.Summary)
	return subject, body
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

	if input.RecipientEmail == "" {
		return nil, errors.New(errors.ErrCodeValidationFailed, "Input validation failed", "recipientEmail is required", false)
	}
	return &input, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	variables := map[string]interface{}{
		"notificationSent": output.Success,
		"emailMessageId":   output.EmailMessageID,
	}
	if output.SNSMessageID != "" {
		variables["snsMessageId"] = output.SNSMessageID
	}
	if output.Message != "" {
		variables["notificationMessage"] = output.Message
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

	h.logger.Error("Match notification failed", map[string]interface{}{
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
	return errors.New(errors.ErrCodeNotificationSendFailed, "Match notification failed", err.Error(), true)
}

func extractErrorCode(err error) string {
	if stdErr, ok := err.(*errors.StandardError); ok {
		return string(stdErr.Code)
	}
	return "UNKNOWN"
}
