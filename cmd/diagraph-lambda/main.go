// Command diagraph-lambda serves dialog turns from AWS Lambda behind an API
// Gateway HTTP API. The graph source and Redis settings come from DIAGRAPH_*
// environment variables.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/diagraph/internal/cli"
	lambdaAdapter "github.com/aretw0/diagraph/pkg/adapters/lambda"
	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	app, err := cli.Setup(context.Background(), cli.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer app.Close()

	h := lambdaAdapter.NewHandler(app.Engine,
		lambdaAdapter.WithLogger(app.Logger),
		lambdaAdapter.WithMaxInputSize(app.Config.MaxInputSize),
	)
	lambda.Start(h.Turn)
}
