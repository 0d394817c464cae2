package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"
)

// Clients bundles the process-wide store connections. They are built once at
// startup and injected into the repository and the uploader.
type Clients struct {
	Firestore *firestore.Client
	Storage   *storage.Client
}

// NewClients dials Firestore and Cloud Storage concurrently.
func NewClients(ctx context.Context, projectID string) (*Clients, error) {
	var c Clients
	// The clients outlive this call, so they are dialed with ctx rather than a
	// group context that is canceled once Wait returns.
	var eg errgroup.Group
	eg.Go(func() error {
		client, err := NewFirestoreClient(ctx, projectID)
		if err != nil {
			return err
		}
		c.Firestore = client
		return nil
	})
	eg.Go(func() error {
		client, err := NewStorageClient(ctx)
		if err != nil {
			return err
		}
		c.Storage = client
		return nil
	})
	if err := eg.Wait(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize GCP clients: %w", err)
	}
	return &c, nil
}

// Close releases both clients. It is safe on a partially built value.
func (c *Clients) Close() error {
	var firstErr error
	if c.Firestore != nil {
		if err := c.Firestore.Close(); err != nil {
			firstErr = err
		}
	}
	if c.Storage != nil {
		if err := c.Storage.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
