package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
	"github.com/google/uuid"

	"tenantops/lib/tenant"
)

// ProvisionJob is the queued handoff between the synchronous modal
// submission and the provisioning worker. The correlation id ties the
// worker's log lines back to the submission that produced them.
type ProvisionJob struct {
	CorrelationID string            `json:"correlationId"`
	Submission    tenant.Submission `json:"submission"`
}

// Publisher enqueues provisioning jobs.
type Publisher struct {
	api      sqsiface.SQSAPI
	queueURL string
}

func NewPublisher(api sqsiface.SQSAPI, queueURL string) *Publisher {
	return &Publisher{api: api, queueURL: queueURL}
}

// Publish enqueues one job, assigning a correlation id when the caller
// did not provide one. It returns the correlation id used.
func (p *Publisher) Publish(ctx context.Context, job ProvisionJob) (string, error) {
	if job.CorrelationID == "" {
		job.CorrelationID = uuid.NewString()
	}
	body, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("encoding provision job: %w", err)
	}
	_, err = p.api.SendMessageWithContext(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return "", fmt.Errorf("%w: enqueue provision job: %s", tenant.ErrExternalService, err.Error())
	}
	return job.CorrelationID, nil
}

// DecodeJob parses a queued message body.
func DecodeJob(body string) (ProvisionJob, error) {
	var job ProvisionJob
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		return job, fmt.Errorf("%w: decoding provision job: %s", tenant.ErrValidation, err.Error())
	}
	return job, nil
}
