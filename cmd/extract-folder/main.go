package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

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

func init() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	functions.HTTP("HandleExtractFolder", handleExtractFolder)
}

func main() {}

func initialize() {
	cfg, err := config.Load("")
	if err != nil {
		initErr = err
		return
	}
	slog.SetDefault(logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout))
	extractionInstance, initErr = services.NewExtraction(context.Background(), cfg)
}

// handleExtractFolder runs one extraction per request and answers with the
// destination spreadsheet.
func handleExtractFolder(w http.ResponseWriter, r *http.Request) {
	once.Do(initialize)
	if initErr != nil {
		slog.Error("Critical: Extraction initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	var req models.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Could not decode request body", "error", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}

	res, err := extractionInstance.Process(r.Context(), &req)
	if errors.Is(err, services.ErrInvalidRequest) {
		http.Error(w, "Bad Request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		// Error is already logged with context in the Process method.
		http.Error(w, "Internal Server Error: processing failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err, "runId", res.RunID)
		http.Error(w, "Internal Server Error: failed to encode response", http.StatusInternalServerError)
	}
}
