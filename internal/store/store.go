// Package store keeps rendered output documents addressable by id.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("document not found")

// Store persists output PDFs. Ids are UUIDs assigned by the pipeline.
type Store interface {
	Name() string
	Put(ctx context.Context, id string, pdf []byte) error
	Get(ctx context.Context, id string) ([]byte, error)
}

// Config selects and configures a backend.
type Config struct {
	Backend   string // "fs" or "minio"
	OutputDir string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOSecure    bool
}

// New builds the configured store. The MinIO backend creates its bucket
// if it does not exist.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case "", "fs":
		return NewFS(cfg.OutputDir)
	case "minio":
		return NewMinIO(ctx, cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOSecure)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// objectName maps an id to its stored name, rejecting anything that is not
// a UUID so ids can never address outside the store.
func objectName(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("invalid document id %q", id)
	}
	return u.String() + ".pdf", nil
}
