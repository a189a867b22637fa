package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/authdocflow/internal/config"
	"github.com/Lllllllleong/authdocflow/internal/logging"
	"github.com/Lllllllleong/authdocflow/internal/models"
	"github.com/Lllllllleong/authdocflow/internal/services"
)

var (
	extractionInstance *services.ExtractionFunction
	once               sync.Once
	initErr            error
)

// messagePublishedData is the payload of a Pub/Sub CloudEvent, as sent by a
// Cloud Scheduler job publishing to the trigger topic.
type messagePublishedData struct {
	Message struct {
		Data []byte `json:"data"`
	} `json:"message"`
}

func init() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	functions.CloudEvent("ExtractOnSchedule", extractOnSchedule)
}

func main() {}

func extractOnSchedule(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		cfg, err := config.Load("")
		if err != nil {
			initErr = err
			return
		}
		slog.SetDefault(logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout))
		extractionInstance, initErr = services.NewExtraction(context.Background(), cfg)
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	req, err := decodeRequest(e)
	if err != nil {
		slog.Error("Failed to decode event", "error", err, "eventId", e.ID())
		return err
	}

	// Error is already logged with context in the Process method.
	_, err = extractionInstance.Process(ctx, req)
	return err
}

func decodeRequest(e cloudevents.Event) (*models.ExtractRequest, error) {
	var msg messagePublishedData
	if err := json.Unmarshal(e.Data(), &msg); err != nil {
		return nil, fmt.Errorf("json.Unmarshal event: %w", err)
	}
	var req models.ExtractRequest
	if err := json.Unmarshal(msg.Message.Data, &req); err != nil {
		return nil, fmt.Errorf("json.Unmarshal message: %w", err)
	}
	return &req, nil
}
