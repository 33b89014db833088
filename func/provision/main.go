package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go/service/rdsdataservice"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/hashicorp/go-multierror"
	"github.com/kelseyhightower/envconfig"
	"github.com/slack-go/slack"

	"tenantops/lib/cidispatch"
	"tenantops/lib/dashboard"
	"tenantops/lib/idp"
	"tenantops/lib/notify"
	"tenantops/lib/queue"
	"tenantops/lib/rds"
	"tenantops/lib/slackform"
	"tenantops/lib/storage"
	"tenantops/lib/tenant"
	"tenantops/lib/utils"
)

var onboarder *tenant.Onboarder

type Config struct {
	RDSClusterArn string `envconfig:"RDS_CLUSTER_ARN" required:"true"`
	RDSSecretArn  string `envconfig:"RDS_SECRET_ARN" required:"true"`
	RDSDatabase   string `envconfig:"RDS_DATABASE" required:"true"`

	BucketName string `envconfig:"BUCKET_NAME" required:"true"`
	UserPoolID string `envconfig:"USER_POOL_ID" required:"true"`
	SeedDir    string `envconfig:"SEED_DIR"`

	SlackBotToken string `envconfig:"SLACK_BOT_TOKEN" required:"true"`
	SlackChannel  string `envconfig:"SLACK_CHANNEL" default:"onboard"`

	GithubToken      string `envconfig:"GITHUB_TOKEN" required:"true"`
	GithubRepository string `envconfig:"GITHUB_REPOSITORY" required:"true"`
	GithubRef        string `envconfig:"GITHUB_REF" default:"main"`
	OnboardWorkflow  string `envconfig:"GITHUB_ONBOARD_WORKFLOW" default:"onboard.yml"`

	AccessDomain  string `envconfig:"ACCESS_DOMAIN" required:"true"`
	CognitoRegion string `envconfig:"COGNITO_REGION" default:"eu-west-1"`

	DashboardURL    string `envconfig:"DASHBOARD_URL"`
	DashboardAPIKey string `envconfig:"DASHBOARD_API_KEY"`
	DashboardUID    string `envconfig:"DASHBOARD_UID"`
}

// HandleQueue runs the onboarding orchestration for each queued job.
// One bad job does not block the rest of the batch.
func HandleQueue(ctx context.Context, event events.SQSEvent) error {
	utils.LogUsageForLambda()

	var resultErr error
	for _, record := range event.Records {
		job, err := queue.DecodeJob(record.Body)
		if err != nil {
			log.Printf("dropping undecodable job %s: %s", record.MessageId, err.Error())
			continue
		}
		log.Printf("provisioning %s (correlation %s)", job.Submission.Subdomain, job.CorrelationID)
		if _, err := onboarder.Onboard(ctx, job.Submission); err != nil {
			resultErr = multierror.Append(resultErr, err)
		}
	}
	return resultErr
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

	onboarder = &tenant.Onboarder{
		Store: rds.NewStore(rds.New(rdsdataservice.New(sess), rds.Config{
			ResourceArn: cfg.RDSClusterArn,
			SecretArn:   cfg.RDSSecretArn,
			Database:    cfg.RDSDatabase,
		})),
		Objects:   storage.New(s3.New(sess), s3manager.NewUploader(sess), cfg.BucketName),
		Identity:  idp.New(cognitoidentityprovider.New(sess)),
		Files:     slackform.NewFileClient(slackClient),
		CI:        dispatcher,
		Dashboard: dash,
		Reporter:  notify.NewReporter(slackClient, cfg.SlackChannel),
		Catalog:   tenant.DefaultCatalog(),
		Config: tenant.OnboarderConfig{
			UserPoolID:    cfg.UserPoolID,
			SeedDir:       cfg.SeedDir,
			Workflow:      cfg.OnboardWorkflow,
			AccessDomain:  cfg.AccessDomain,
			CognitoRegion: cfg.CognitoRegion,
		},
	}
}

func main() {
	lambda.Start(HandleQueue)
}
