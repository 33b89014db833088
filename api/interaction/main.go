package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"tenantops/lib/queue"
	"tenantops/lib/slackform"
	"tenantops/lib/tenant"
	"tenantops/lib/utils"
)

var handler utils.Handler

type Config struct {
	SlackVerificationToken string `envconfig:"SLACK_VERIFICATION_TOKEN" required:"true"`
	ProvisionQueueURL      string `envconfig:"PROVISION_QUEUE_URL" required:"true"`
}

type ActionContext struct {
	Publisher         *queue.Publisher
	Validate          *validator.Validate
	Catalog           *tenant.Catalog
	VerificationToken string
}

// HandleSubmission validates a modal submission and hands it to the
// provisioning queue. The slow work happens in the worker so Slack's
// synchronous callback returns immediately.
func HandleSubmission(req *events.APIGatewayProxyRequest, ac *ActionContext) error {
	body, err := utils.RequestBody(req)
	if err != nil {
		return err
	}
	payload, err := slackform.ParseInteraction(body)
	if err != nil {
		return err
	}
	if err := slackform.ValidateToken(payload.Token, ac.VerificationToken); err != nil {
		return err
	}

	sub, err := payload.Submission(ac.Validate)
	if err != nil {
		return err
	}
	// Reject unsupported provider/scope pairs before anything is queued.
	if _, _, err := ac.Catalog.Lookup(sub.Provider, sub.Scope); err != nil {
		return err
	}

	correlationID, err := ac.Publisher.Publish(context.Background(), queue.ProvisionJob{Submission: sub})
	if err != nil {
		return err
	}
	log.Printf("queued onboarding of %s as %s", sub.Subdomain, correlationID)
	return nil
}

func InitializeHandler(ac *ActionContext) utils.Handler {
	return utils.HandleProxy(func(req *events.APIGatewayProxyRequest) error {
		return HandleSubmission(req, ac)
	})
}

func init() {
	log.Printf("cold start")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("invalid environment: %s", err.Error())
	}

	sess := session.Must(session.NewSession())

	ac := ActionContext{
		Publisher:         queue.NewPublisher(sqs.New(sess), cfg.ProvisionQueueURL),
		Validate:          validator.New(),
		Catalog:           tenant.DefaultCatalog(),
		VerificationToken: cfg.SlackVerificationToken,
	}

	handler = InitializeHandler(&ac)
}

func main() {
	lambda.Start(handler)
}
