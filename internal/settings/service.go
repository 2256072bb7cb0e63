package settings

import (
	"context"
	"fmt"

	"github.com/invoiceflow/invoiceflow/internal/store"
)

// Service manages the company settings singleton.
type Service struct {
	settings *store.Store[*CompanySettings]
}

// NewService builds a Service instance.
func NewService(settings *store.Store[*CompanySettings]) *Service {
	return &Service{settings: settings}
}

// Get returns the settings record, or nil when the store has never been
// initialized.
func (s *Service) Get(ctx context.Context) (*CompanySettings, error) {
	return s.settings.FindByID(ctx, SingletonID)
}

// Update applies partial updates to the settings record.
func (s *Service) Update(ctx context.Context, updates map[string]any) (*CompanySettings, error) {
	delete(updates, "id")
	updated, err := s.settings.Update(ctx, SingletonID, updates)
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return updated, nil
}

// EnsureDefaults creates the settings singleton on first run. Safe to
// call repeatedly.
func (s *Service) EnsureDefaults(ctx context.Context) (*CompanySettings, error) {
	existing, err := s.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if existing != nil {
		return existing, nil
	}
	created, err := s.settings.Create(ctx, New(Input{}))
	if err != nil {
		return nil, fmt.Errorf("create settings: %w", err)
	}
	return created, nil
}
