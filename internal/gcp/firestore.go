package gcp

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// EmulatorProjectID is used when FIRESTORE_EMULATOR_HOST is set and no
// project was configured. The emulator accepts any "demo-" project.
const EmulatorProjectID = "demo-achievementflow"

// NewFirestoreClient creates a Firestore client for projectID. Against the
// emulator an empty projectID falls back to EmulatorProjectID.
func NewFirestoreClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*firestore.Client, error) {
	if projectID == "" {
		if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
			return nil, fmt.Errorf("projectID must be provided to create a firestore client")
		}
		projectID = EmulatorProjectID
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client for %s: %w", projectID, err)
	}
	return client, nil
}
