package repository

import (
	"context"

	"github.com/cockroachdb/errors"

	"giftguard-backend/internal/model"
)

// ErrNotFound is returned when no voucher has the requested id.
var ErrNotFound = errors.New("giftcon not found")

// Repository defines the persistence operations behind the voucher store.
type Repository interface {
	Save(ctx context.Context, giftcon model.Giftcon) error
	FetchAll(ctx context.Context) ([]model.Giftcon, error)
	FetchByID(ctx context.Context, id string) (*model.Giftcon, error)
	Delete(ctx context.Context, id string) error
}

// stub is the placeholder data source. It performs no I/O, so the voucher
// store falls back to its seed data on every start.
type stub struct{}

// NewStub creates a repository that stores nothing.
func NewStub() Repository {
	return stub{}
}

func (stub) Save(context.Context, model.Giftcon) error { return nil }

func (stub) FetchAll(context.Context) ([]model.Giftcon, error) { return nil, nil }

func (stub) FetchByID(_ context.Context, id string) (*model.Giftcon, error) {
	return nil, errors.Wrapf(ErrNotFound, "id %q", id)
}

func (stub) Delete(context.Context, string) error { return nil }
