// Package store is the Postgres data access layer: tenants, API keys,
// uploaded datasets and async job bookkeeping. Profile results are not
// stored here by design; they live in the cache with a TTL.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/arjunks/datahound/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error
	GetDefaultTenant(ctx context.Context) (*models.Tenant, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error

	CreateDataset(ctx context.Context, ds *models.Dataset) error
	GetDataset(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Dataset, error)
	ListDatasets(ctx context.Context, filter DatasetFilter) ([]*models.Dataset, int, error)
	DeleteDataset(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error
}

// DatasetFilter narrows and paginates dataset listings.
type DatasetFilter struct {
	TenantID uuid.UUID
	Page     int
	Limit    int
}

type jobUpdateParams struct {
	ErrorMessage *string
	DatasetID    *uuid.UUID
}

type JobUpdateOption func(*jobUpdateParams)

func WithErrorMessage(msg string) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.ErrorMessage = &msg
	}
}

func WithDatasetID(id uuid.UUID) JobUpdateOption {
	return func(p *jobUpdateParams) {
		p.DatasetID = &id
	}
}
