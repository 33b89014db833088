package main

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/kelseyhightower/envconfig"
	"github.com/slack-go/slack"

	"tenantops/lib/slackform"
	"tenantops/lib/utils"
)

var handler utils.Handler

type Config struct {
	SlackBotToken          string `envconfig:"SLACK_BOT_TOKEN" required:"true"`
	SlackVerificationToken string `envconfig:"SLACK_VERIFICATION_TOKEN" required:"true"`
}

type ActionContext struct {
	Slack             *slack.Client
	VerificationToken string
}

// OpenOnboardModal answers the /onboard slash command by opening the
// onboarding modal for the triggering user.
func OpenOnboardModal(req *events.APIGatewayProxyRequest, ac *ActionContext) error {
	body, err := utils.RequestBody(req)
	if err != nil {
		return err
	}
	cmd, err := slackform.ParseSlashCommand(body)
	if err != nil {
		return err
	}
	if err := slackform.ValidateToken(cmd.Token, ac.VerificationToken); err != nil {
		return err
	}

	_, err = ac.Slack.OpenViewContext(context.Background(), cmd.TriggerID, slackform.OnboardModal())
	if err != nil {
		return fmt.Errorf("opening onboard modal: %w", err)
	}
	log.Printf("opened onboard modal for user %s", cmd.UserID)
	return nil
}

func InitializeHandler(ac *ActionContext) utils.Handler {
	return utils.HandleProxy(func(req *events.APIGatewayProxyRequest) error {
		return OpenOnboardModal(req, ac)
	})
}

func init() {
	log.Printf("cold start")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("invalid environment: %s", err.Error())
	}

	ac := ActionContext{
		Slack:             slack.New(cfg.SlackBotToken),
		VerificationToken: cfg.SlackVerificationToken,
	}

	handler = InitializeHandler(&ac)
}

func main() {
	lambda.Start(handler)
}
