package sendmatchnotification

import (
	"context"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayush1216/Frictionless/internal/common/errors"
	"github.com/Ayush1216/Frictionless/internal/common/logger"
)

type stubEmailSender struct {
	input *ses.SendEmailInput
	err   error
}

func (s *stubEmailSender) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return &ses.SendEmailOutput{MessageId: sdkaws.String("ses-msg-1")}, nil
}

type stubPublisher struct {
	input *sns.PublishInput
	err   error
}

func (s *stubPublisher) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return &sns.PublishOutput{MessageId: sdkaws.String("sns-msg-1")}, nil
}

func newTestHandler(t *testing.T, email emailSender, publisher topicPublisher, cfg *Config) *Handler {
	t.Helper()
	if cfg == nil {
		cfg = DefaultConfig()
		cfg.SenderEmail = "matches@frictionless.example"
	}
	h, err := NewHandler(HandlerOptions{
		CustomConfig: cfg,
		Logger:       logger.NewTestLogger(t),
		Email:        email,
		Publisher:    publisher,
	})
	require.NoError(t, err)
	return h
}

func sampleInput() *Input {
	return &Input{
		RecipientEmail: "founder@flowmetrics.example",
		StartupName:    "Flowmetrics",
		InvestorName:   "Meridian Capital",
		FitScore:       82.5,
		Eligible:       true,
		Summary:        "Strong fit on stage, sector and check size.",
	}
}

func TestExecuteSendsEmail(t *testing.T) {
	email := &stubEmailSender{}
	h := newTestHandler(t, email, nil, nil)

	output, err := h.Execute(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.True(t, output.Success)
	assert.Equal(t, "ses-msg-1", output.EmailMessageID)
	assert.Empty(t, output.SNSMessageID)

	require.NotNil(t, email.input)
	assert.Equal(t, "matches@frictionless.example", *email.input.Source)
	assert.Equal(t, []string{"founder@flowmetrics.example"}, email.input.Destination.ToAddresses)
	assert.Contains(t, *email.input.Message.Subject.Data, "82.5/100")
	assert.Contains(t, *email.input.Message.Body.Text.Data, "Meridian Capital")
}

func TestExecuteIneligibleEmailBody(t *testing.T) {
	email := &stubEmailSender{}
	h := newTestHandler(t, email, nil, nil)

	input := sampleInput()
	input.Eligible = false
	input.FitScore = 71.0

	_, err := h.Execute(context.Background(), input)
	require.NoError(t, err)

	assert.Contains(t, *email.input.Message.Subject.Data, "not yet eligible")
	assert.Contains(t, *email.input.Message.Body.Text.Data, "fit score is 0")
}

func TestExecutePublishesEvent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SenderEmail = "matches@frictionless.example"
	cfg.SNSTopicARN = "arn:aws:sns:ap-south-1:123456789012:match-events"

	email := &stubEmailSender{}
	publisher := &stubPublisher{}
	h := newTestHandler(t, email, publisher, cfg)

	output, err := h.Execute(context.Background(), sampleInput())
	require.NoError(t, err)

	assert.Equal(t, "sns-msg-1", output.SNSMessageID)
	require.NotNil(t, publisher.input)
	assert.Equal(t, cfg.SNSTopicARN, *publisher.input.TopicArn)
	assert.Contains(t, *publisher.input.Message, `"event":"match.notified"`)
}

func TestExecutePublishFailureDoesNotFailJob(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SenderEmail = "matches@frictionless.example"
	cfg.SNSTopicARN = "arn:aws:sns:ap-south-1:123456789012:match-events"

	email := &stubEmailSender{}
	publisher := &stubPublisher{err: errors.New(errors.ErrCodeNotificationSendFailed, "publish failed", "throttled", true)}
	h := newTestHandler(t, email, publisher, cfg)

	output, err := h.Execute(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.True(t, output.Success)
	assert.Empty(t, output.SNSMessageID)
}

func TestExecuteEmailFailure(t *testing.T) {
	email := &stubEmailSender{err: errors.New(errors.ErrCodeNotificationSendFailed, "send failed", "mailbox unavailable", true)}
	h := newTestHandler(t, email, nil, nil)

	_, err := h.Execute(context.Background(), sampleInput())
	require.Error(t, err)

	stdErr, ok := err.(*errors.StandardError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeNotificationSendFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestExecuteNoEmailClient(t *testing.T) {
	h := newTestHandler(t, nil, nil, nil)

	_, err := h.Execute(context.Background(), sampleInput())
	require.Error(t, err)
}
