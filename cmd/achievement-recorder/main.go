package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/achievementflow/internal/gcp"
	"github.com/Lllllllleong/achievementflow/internal/httpapi"
	"github.com/Lllllllleong/achievementflow/internal/services"
)

var (
	router  http.Handler
	once    sync.Once
	initErr error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// "HandleAchievements" is the entry point name configured in GCP.
	functions.HTTP("HandleAchievements", handleAchievements)
}

// main starts the function locally. In Cloud Functions the framework
// invokes the registered entry point directly.
func main() {
	port := gcp.GetEnv("PORT", "8080")
	if err := funcframework.Start(port); err != nil {
		slog.Error("Function framework exited", "error", err)
		os.Exit(1)
	}
}

func handleAchievements(w http.ResponseWriter, r *http.Request) {
	// Clients are built once per instance and shared by every request.
	once.Do(func() {
		var recorder *services.RecorderFunction
		recorder, initErr = services.NewRecorder(context.Background())
		if initErr != nil {
			return
		}
		router = httpapi.NewRouter(httpapi.NewHandler(recorder, recorder.Config().MaxUploadBytes))
	})
	if initErr != nil {
		slog.Error("Critical: recorder initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	router.ServeHTTP(w, r)
}
