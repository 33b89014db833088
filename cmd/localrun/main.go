package main

import (
	"context"
	"flag"
	"log"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go/service/rdsdataservice"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/slack-go/slack"

	"tenantops/lib/cidispatch"
	"tenantops/lib/idp"
	"tenantops/lib/notify"
	"tenantops/lib/rds"
	"tenantops/lib/slackform"
	"tenantops/lib/storage"
	"tenantops/lib/tenant"
)

// localrun drives one orchestration against real services from a
// developer machine, reading credentials from .env.

type Config struct {
	RDSClusterArn string `envconfig:"RDS_CLUSTER_ARN" required:"true"`
	RDSSecretArn  string `envconfig:"RDS_SECRET_ARN" required:"true"`
	RDSDatabase   string `envconfig:"RDS_DATABASE" required:"true"`

	BucketName string `envconfig:"BUCKET_NAME" required:"true"`
	UserPoolID string `envconfig:"USER_POOL_ID"`
	SeedDir    string `envconfig:"SEED_DIR"`

	SlackBotToken string `envconfig:"SLACK_BOT_TOKEN" required:"true"`
	SlackChannel  string `envconfig:"SLACK_CHANNEL" default:"onboard"`

	GithubToken      string `envconfig:"GITHUB_TOKEN" required:"true"`
	GithubRepository string `envconfig:"GITHUB_REPOSITORY" required:"true"`
	GithubRef        string `envconfig:"GITHUB_REF" default:"main"`
	OnboardWorkflow  string `envconfig:"GITHUB_ONBOARD_WORKFLOW" default:"onboard.yml"`
	OffboardWorkflow string `envconfig:"GITHUB_OFFBOARD_WORKFLOW" default:"offboard.yml"`

	AccessDomain  string `envconfig:"ACCESS_DOMAIN" required:"true"`
	CognitoRegion string `envconfig:"COGNITO_REGION" default:"eu-west-1"`
}

func main() {
	action := flag.String("action", "", "onboard or offboard")
	name := flag.String("name", "", "tenant subdomain")
	provider := flag.String("provider", "wyscout", "data provider")
	scope := flag.String("scope", "all", "competition scope")
	logoURL := flag.String("logo", "", "private logo download URL")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file: %s", err.Error())
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("invalid environment: %s", err.Error())
	}

	ctx := context.Background()
	sess := session.Must(session.NewSession())
	slackClient := slack.New(cfg.SlackBotToken)

	store := rds.NewStore(rds.New(rdsdataservice.New(sess), rds.Config{
		ResourceArn: cfg.RDSClusterArn,
		SecretArn:   cfg.RDSSecretArn,
		Database:    cfg.RDSDatabase,
	}))
	objects := storage.New(s3.New(sess), s3manager.NewUploader(sess), cfg.BucketName)
	reporter := notify.NewReporter(slackClient, cfg.SlackChannel)

	switch *action {
	case "onboard":
		dispatcher, err := cidispatch.New(ctx, cfg.GithubToken, cfg.GithubRepository, cfg.GithubRef)
		if err != nil {
			log.Fatal(err.Error())
		}
		onboarder := &tenant.Onboarder{
			Store:    store,
			Objects:  objects,
			Identity: idp.New(cognitoidentityprovider.New(sess)),
			Files:    slackform.NewFileClient(slackClient),
			CI:       dispatcher,
			Reporter: reporter,
			Catalog:  tenant.DefaultCatalog(),
			Config: tenant.OnboarderConfig{
				UserPoolID:    cfg.UserPoolID,
				SeedDir:       cfg.SeedDir,
				Workflow:      cfg.OnboardWorkflow,
				AccessDomain:  cfg.AccessDomain,
				CognitoRegion: cfg.CognitoRegion,
			},
		}
		t, err := onboarder.Onboard(ctx, tenant.Submission{
			Provider:  *provider,
			Scope:     *scope,
			Subdomain: *name,
			LogoURL:   *logoURL,
		})
		if err != nil {
			log.Fatal(err.Error())
		}
		log.Printf("onboarded %s with id %d", t.Name, t.ID)
	case "offboard":
		dispatcher, err := cidispatch.New(ctx, cfg.GithubToken, cfg.GithubRepository, cfg.GithubRef)
		if err != nil {
			log.Fatal(err.Error())
		}
		offboarder := &tenant.Offboarder{
			Store:    store,
			Objects:  objects,
			CI:       dispatcher,
			Reporter: reporter,
			Config: tenant.OffboarderConfig{
				Workflow: cfg.OffboardWorkflow,
			},
		}
		if err := offboarder.Offboard(ctx, *name); err != nil {
			log.Fatal(err.Error())
		}
	default:
		log.Fatal("action must be onboard or offboard")
	}
}
