// Package boot holds the process start up shared by services: flag and
// environment parsing, log configuration, and lazily created AWS clients.
package boot

import (
	"flag"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/sprucehealth/casedata/libs/awsutil"
	"github.com/sprucehealth/casedata/libs/errors"
	"github.com/sprucehealth/casedata/libs/golog"
)

type App struct {
	flags struct {
		debug            bool
		jsonLogs         bool
		awsAccessKey     string
		awsSecretKey     string
		awsToken         string
		awsRegion        string
		dynamoDBEndpoint string
	}
	awsSessionOnce sync.Once
	awsSession     *session.Session
	awsSessionErr  error
	dynamoDBOnce   sync.Once
	dynamoDB       dynamodbiface.DynamoDBAPI
}

// NewApp registers the shared flags on the default flag set. It should be
// called at the start of main before any service specific flags are parsed.
func NewApp() *App {
	app := &App{}
	flag.BoolVar(&app.flags.debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&app.flags.jsonLogs, "json_logs", false, "Enable JSON formatted logs")
	flag.StringVar(&app.flags.awsAccessKey, "aws_access_key", "", "Access `key` for AWS")
	flag.StringVar(&app.flags.awsSecretKey, "aws_secret_key", "", "Secret `key` for AWS")
	flag.StringVar(&app.flags.awsToken, "aws_token", "", "Temporary access `token` for AWS")
	flag.StringVar(&app.flags.awsRegion, "aws_region", regionFromEnv(), "AWS `region`")
	flag.StringVar(&app.flags.dynamoDBEndpoint, "dynamodb_endpoint", "", "DynamoDB API `endpoint` override (e.g. DynamoDB Local)")
	return app
}

// Init parses flags (with environment fallback under envPrefix) and configures the default logger.
func (app *App) Init(envPrefix string) {
	ParseFlags(envPrefix)
	if app.flags.jsonLogs {
		golog.Default().SetHandler(golog.WriterHandler(os.Stderr, golog.JSONFormatter()))
	}
	if app.flags.debug {
		golog.Default().SetLevel(golog.DEBUG)
	}
}

// AWSSession returns the process wide AWS session, creating it on first use.
func (app *App) AWSSession() (*session.Session, error) {
	app.awsSessionOnce.Do(func() {
		cfg := awsutil.Config(app.flags.awsRegion, app.flags.awsAccessKey, app.flags.awsSecretKey, app.flags.awsToken)
		app.awsSession, app.awsSessionErr = session.NewSession(cfg)
		app.awsSessionErr = errors.Trace(app.awsSessionErr)
	})
	return app.awsSession, app.awsSessionErr
}

// DynamoDB returns the process wide DynamoDB client, creating it on first use.
func (app *App) DynamoDB() (dynamodbiface.DynamoDBAPI, error) {
	sess, err := app.AWSSession()
	if err != nil {
		return nil, err
	}
	app.dynamoDBOnce.Do(func() {
		cfg := &aws.Config{}
		if app.flags.dynamoDBEndpoint != "" {
			cfg.Endpoint = aws.String(app.flags.dynamoDBEndpoint)
		}
		app.dynamoDB = dynamodb.New(sess, cfg)
	})
	return app.dynamoDB, nil
}

// regionFromEnv defaults the region to what the Lambda runtime provides.
func regionFromEnv() string {
	if r := os.Getenv("AWS_REGION"); r != "" {
		return r
	}
	return "us-east-1"
}
