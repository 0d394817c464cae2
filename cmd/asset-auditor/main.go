package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/achievementflow/internal/gcp"
	"github.com/Lllllllleong/achievementflow/internal/services"
)

var auditor *services.AuditorFunction

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	auditor = services.NewAuditor()

	// Triggered by google.cloud.storage.object.v1.finalized on the achievements bucket.
	functions.CloudEvent("AuditAsset", auditAsset)
}

// main starts the function locally.
func main() {
	port := gcp.GetEnv("PORT", "8080")
	if err := funcframework.Start(port); err != nil {
		slog.Error("Function framework exited", "error", err)
		os.Exit(1)
	}
}

// auditAsset logs one line per finalized object. Only a malformed payload is
// reported back as a failure.
func auditAsset(ctx context.Context, e cloudevents.Event) error {
	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "eventId", e.ID(), "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	finding := auditor.Process(ctx, gcsEvent)
	slog.Debug("Audit finished.", "eventId", e.ID(), "finding", finding)
	return nil
}
