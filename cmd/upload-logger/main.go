package main

import (
	"context"
	"fmt"
	"os"

	"jobportal-ops/internal/config"
	"jobportal-ops/internal/logger"
	"jobportal-ops/internal/metrics"
	"jobportal-ops/internal/server"

	"github.com/aws/aws-lambda-go/lambda"
	json "github.com/goccy/go-json"
)

func main() {
	cfg := config.Load()
	log := logger.Init(cfg, "upload-logger")

	m := metrics.New()
	h := server.NewHandler(cfg, log, m)

	// LOCAL_EVENT points at an event JSON file; when set, run the
	// handler once and print the response instead of entering the
	// Lambda runtime loop. Useful for trying the function locally:
	//
	//	LOCAL_EVENT=testdata/sample_event.json go run ./cmd/upload-logger
	if path := os.Getenv("LOCAL_EVENT"); path != "" {
		payload, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("read local event file")
		}

		resp, err := h.Handle(context.Background(), payload)
		if err != nil {
			log.Fatal().Err(err).Msg("handle local event")
		}

		out, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			log.Fatal().Err(err).Msg("encode response")
		}
		fmt.Println(string(out))
		return
	}

	lambda.Start(h.Handle)
}
