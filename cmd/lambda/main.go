// cmd/lambda/main.go
package main

import (
	"context"

	"github.com/andresuchdata/sitedeploy/internal/config"
	"github.com/andresuchdata/sitedeploy/internal/deploy"
	"github.com/andresuchdata/sitedeploy/internal/domain"
	"github.com/andresuchdata/sitedeploy/pkg/logger"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
)

func main() {
	logCfg := config.LoadLogging("json")
	logger.SetFormat(logCfg.Format)
	logger.SetLevel(logCfg.Level)

	handler := deploy.NewHandler()

	lambda.Start(func(ctx context.Context, event domain.Event) (domain.Result, error) {
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			logger.Log.Info().Str("request_id", lc.AwsRequestID).Msg("invocation started")
		}
		return handler.Run(ctx, event)
	})
}
