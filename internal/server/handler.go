package server

import (
	"context"
	"net/http"

	"jobportal-ops/internal/config"
	"jobportal-ops/internal/metrics"
	"jobportal-ops/internal/model"
	"jobportal-ops/internal/processor"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Handler is the invocation surface of the upload logger. It owns the
// processor and translates between the raw invocation payload and the
// response envelope.
type Handler struct {
	cfg     config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics
	proc    *processor.Processor
}

func NewHandler(cfg config.Config, log zerolog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		cfg:     cfg,
		log:     log,
		metrics: m,
		proc:    processor.New(cfg.ProjectName, cfg.Environment, log, m),
	}
}

// Handle processes one upload-notification batch.
//
// The payload is decoded leniently: a missing or malformed Records
// array degrades to an empty batch instead of failing the invocation.
// Per-record failures are logged and skipped inside the processor, so
// the response status is always 200; partial failure is observable
// only through the logs and counters.
func (h *Handler) Handle(_ context.Context, payload json.RawMessage) (model.Response, error) {
	h.log.Info().
		Str("function", h.cfg.FunctionName()).
		Msg("s3 upload event received")

	if json.Valid(payload) {
		h.log.Debug().RawJSON("event", payload).Msg("full event")
	}

	var event model.UploadEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.log.Warn().Err(err).Msg("event envelope not decodable, treating as empty batch")
	}

	result := h.proc.Process(event.Records)

	body, err := json.Marshal(result)
	if err != nil {
		return model.Response{}, err
	}
	resp := model.Response{
		StatusCode: http.StatusOK,
		Body:       string(body),
	}

	h.log.Info().
		Int("status_code", resp.StatusCode).
		Int("records_processed", result.RecordsProcessed).
		Msg("lambda response")
	h.log.Debug().Str("counters", h.metrics.String()).Msg("invocation counters")

	return resp, nil
}
