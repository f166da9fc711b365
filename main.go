package main

import (
	"context"
	"fmt"

	"github.com/locvowork/convexhub/apigateway/internal/bootstrap"
	"github.com/locvowork/convexhub/apigateway/internal/logger"
)

func main() {
	ctx := context.Background()

	app := bootstrap.NewApp()
	if err := app.Initialize(ctx); err != nil {
		logger.ErrorLog(ctx, fmt.Sprintf("Failed to initialize application: %v", err))
		panic(err)
	}

	if err := app.Run(ctx); err != nil {
		logger.ErrorLog(ctx, fmt.Sprintf("Application failed: %v", err))
		panic(err)
	}
}
