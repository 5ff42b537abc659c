package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"github.com/sprucehealth/casedata/boot"
	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/dal"
	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/handlers"
	"github.com/sprucehealth/casedata/cmd/svc/casedata/internal/localserver"
	"github.com/sprucehealth/casedata/libs/clock"
	"github.com/sprucehealth/casedata/libs/golog"
)

const (
	envPrefix   = "CASEDATA_"
	envFileName = ".env"
	// tableNameEnv is the variable the deployment template sets on the function.
	tableNameEnv = "TableName"
)

var config struct {
	tableName     string
	route         string
	notFoundAs404 bool
	localHTTP     string
}

func init() {
	flag.StringVar(&config.tableName, "table", "", "DynamoDB `table` holding case data (defaults to $"+tableNameEnv+")")
	flag.StringVar(&config.route, "route", "auto", "Requests served: auto (by HTTP method), read, or write")
	flag.BoolVar(&config.notFoundAs404, "notfound_404", false, "Answer DataNotFound with 404 instead of 400")
	flag.StringVar(&config.localHTTP, "local_http", "", "Serve over HTTP on `host:port` instead of running as a Lambda function")
}

func main() {
	// Local mode reads a .env before flags so its values act as environment defaults.
	if os.Getenv(boot.EnvName(envPrefix, "local_http")) != "" || hasFlag("local_http") {
		loadEnvFile()
	}

	app := boot.NewApp()
	app.Init(envPrefix)

	if config.tableName == "" {
		config.tableName = os.Getenv(tableNameEnv)
	}

	var dl dal.DAL
	switch {
	case config.tableName != "":
		db, err := app.DynamoDB()
		if err != nil {
			golog.Fatalf("Failed to create DynamoDB client: %s", err)
		}
		dl = dal.New(db, config.tableName)
	case config.localHTTP != "":
		golog.Warningf("No table configured, using in-memory storage")
		dl = dal.NewMemory()
	default:
		golog.Fatalf("-table or $%s is required", tableNameEnv)
	}

	h := handlers.New(dl, clock.New(), config.notFoundAs404)
	var fn handlers.Func
	switch config.route {
	case "auto":
		fn = h.Route
	case "read":
		fn = h.Read
	case "write":
		fn = h.Write
	default:
		golog.Fatalf("Unknown -route %q", config.route)
	}

	if config.localHTTP != "" {
		golog.Infof("Serving case data on %s (table %q)", config.localHTTP, config.tableName)
		if err := http.ListenAndServe(config.localHTTP, localserver.New(fn)); err != nil {
			golog.Fatalf("Local server stopped: %s", err)
		}
		return
	}

	golog.Infof("Starting case data function (table %q, route %s)", config.tableName, config.route)
	lambda.Start(fn)
}

func loadEnvFile() {
	file := envFileName
	if v := os.Getenv(boot.EnvName(envPrefix, "env_file")); v != "" {
		file = v
	}
	// A missing file is fine, godotenv never overrides variables that are already set.
	if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
		golog.Warningf("Failed to load %s: %s", file, err)
	}
}

// hasFlag reports whether name was passed on the command line, before flags are parsed.
func hasFlag(name string) bool {
	for _, a := range os.Args[1:] {
		for _, p := range []string{"-" + name, "--" + name} {
			if a == p || len(a) > len(p) && a[:len(p)+1] == p+"=" {
				return true
			}
		}
	}
	return false
}
