package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/rdsdataservice"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/kelseyhightower/envconfig"
	"github.com/slack-go/slack"

	"tenantops/lib/cidispatch"
	"tenantops/lib/dashboard"
	"tenantops/lib/notify"
	"tenantops/lib/rds"
	"tenantops/lib/slackform"
	"tenantops/lib/storage"
	"tenantops/lib/tenant"
	"tenantops/lib/utils"
)

var handler utils.Handler

type Config struct {
	RDSClusterArn string `envconfig:"RDS_CLUSTER_ARN" required:"true"`
	RDSSecretArn  string `envconfig:"RDS_SECRET_ARN" required:"true"`
	RDSDatabase   string `envconfig:"RDS_DATABASE" required:"true"`

	BucketName string `envconfig:"BUCKET_NAME" required:"true"`

	SlackBotToken          string `envconfig:"SLACK_BOT_TOKEN" required:"true"`
	SlackVerificationToken string `envconfig:"SLACK_VERIFICATION_TOKEN" required:"true"`
	SlackChannel           string `envconfig:"SLACK_CHANNEL" default:"onboard"`

	GithubToken      string `envconfig:"GITHUB_TOKEN" required:"true"`
	GithubRepository string `envconfig:"GITHUB_REPOSITORY" required:"true"`
	GithubRef        string `envconfig:"GITHUB_REF" default:"main"`
	OffboardWorkflow string `envconfig:"GITHUB_OFFBOARD_WORKFLOW" default:"offboard.yml"`

	DashboardURL    string `envconfig:"DASHBOARD_URL"`
	DashboardAPIKey string `envconfig:"DASHBOARD_API_KEY"`
	DashboardUID    string `envconfig:"DASHBOARD_UID"`
}

type ActionContext struct {
	Offboarder        *tenant.Offboarder
	VerificationToken string
}

// HandleOffboard answers the /offboard slash command. The command text
// is the tenant name.
func HandleOffboard(req *events.APIGatewayProxyRequest, ac *ActionContext) error {
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

	return ac.Offboarder.Offboard(context.Background(), cmd.Text)
}

func InitializeHandler(ac *ActionContext) utils.Handler {
	return utils.HandleProxy(func(req *events.APIGatewayProxyRequest) error {
		return HandleOffboard(req, ac)
	})
}

func init() {
	log.Printf("cold start")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("invalid environment: %s", err.Error())
	}

	sess := session.Must(session.NewSession())
	slackClient := slack.New(cfg.SlackBotToken)

	dispatcher, err := cidispatch.New(context.Background(), cfg.GithubToken, cfg.GithubRepository, cfg.GithubRef)
	if err != nil {
		log.Fatalf("building dispatcher: %s", err.Error())
	}

	var dash tenant.DashboardUpdater
	if cfg.DashboardURL != "" {
		dash = dashboard.New(nil, cfg.DashboardURL, cfg.DashboardAPIKey, cfg.DashboardUID)
	}

	ac := ActionContext{
		Offboarder: &tenant.Offboarder{
			Store: rds.NewStore(rds.New(rdsdataservice.New(sess), rds.Config{
				ResourceArn: cfg.RDSClusterArn,
				SecretArn:   cfg.RDSSecretArn,
				Database:    cfg.RDSDatabase,
			})),
			Objects:   storage.New(s3.New(sess), s3manager.NewUploader(sess), cfg.BucketName),
			CI:        dispatcher,
			Dashboard: dash,
			Reporter:  notify.NewReporter(slackClient, cfg.SlackChannel),
			Config: tenant.OffboarderConfig{
				Workflow: cfg.OffboardWorkflow,
			},
		},
		VerificationToken: cfg.SlackVerificationToken,
	}

	handler = InitializeHandler(&ac)
}

func main() {
	lambda.Start(handler)
}
