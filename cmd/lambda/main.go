// Command lambda runs the file vault as a function. LAMBDA_ROLE selects the
// deployment: "api" serves proxy events through the HTTP router, "resources"
// serves direct content-fetch invocations.
package main

import (
	"context"
	"os"
	"strings"

	"github.com/abduss/filevault/internal/app"
	"github.com/abduss/filevault/internal/config"
	"github.com/abduss/filevault/internal/lambdaproxy"
	"github.com/abduss/filevault/internal/logger"
	"github.com/abduss/filevault/internal/metrics"
	"github.com/abduss/filevault/internal/resource"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	roleAPI       = "api"
	roleResources = "resources"
)

func main() {
	log, err := logger.Init()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	metrics.InitMetrics()
	gin.SetMode(gin.ReleaseMode)

	application, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("wire application", zap.Error(err))
	}
	defer application.Close()

	role := strings.ToLower(strings.TrimSpace(os.Getenv("LAMBDA_ROLE")))
	if role == "" {
		role = roleAPI
	}
	log.Info("function starting", zap.String("role", role))

	switch role {
	case roleAPI:
		lambda.Start(lambdaproxy.New(application.Router()).Proxy)
	case roleResources:
		lambda.Start(resource.NewInvocationHandler(application.Resources).Handle)
	default:
		log.Fatal("unknown LAMBDA_ROLE", zap.String("role", role))
	}
}
