package customers

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/invoiceflow/invoiceflow/internal/shared"
	"github.com/invoiceflow/invoiceflow/internal/store"
)

// Service handles customer business logic and ownership checks.
type Service struct {
	customers *store.Store[*Customer]
	validate  *validator.Validate
}

// NewService builds a Service instance.
func NewService(customers *store.Store[*Customer]) *Service {
	return &Service{customers: customers, validate: validator.New()}
}

// Create validates the input and persists a new customer for the actor.
func (s *Service) Create(ctx context.Context, actorID string, input Input) (*Customer, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	input.UserID = actorID
	customer, err := s.customers.Create(ctx, New(input))
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

// Get returns a customer after verifying ownership.
func (s *Service) Get(ctx context.Context, actorID, id string) (*Customer, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if customer == nil {
		return nil, fmt.Errorf("customer %q: %w", id, shared.ErrNotFound)
	}
	if err := shared.Authorize(actorID, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// UpdateInput carries partial updates for a customer. Nil fields are left
// unchanged. Ownership and timestamps are not reassignable through
// updates.
type UpdateInput struct {
	Name           *string `validate:"omitnil,min=1"`
	Email          *string `validate:"omitnil,email"`
	Phone          *string
	Company        *string
	Website        *string
	TaxNumber      *string
	Address        *shared.Address
	BillingAddress *shared.Address
	Notes          *string
	Tags           []string
	IsActive       *bool
}

// Update applies partial updates to a customer the actor owns.
func (s *Service) Update(ctx context.Context, actorID, id string, input UpdateInput) (*Customer, error) {
	customer, err := s.Get(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	updates := make(map[string]any)
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Company != nil {
		updates["company"] = *input.Company
	}
	if input.Website != nil {
		updates["website"] = *input.Website
	}
	if input.TaxNumber != nil {
		updates["taxNumber"] = *input.TaxNumber
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.BillingAddress != nil {
		updates["billingAddress"] = *input.BillingAddress
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.Tags != nil {
		updates["tags"] = input.Tags
	}
	if input.IsActive != nil {
		updates["isActive"] = *input.IsActive
	}
	if len(updates) == 0 {
		return customer, nil
	}

	updated, err := s.customers.Update(ctx, id, updates)
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return updated, nil
}

// Delete removes a customer the actor owns.
func (s *Service) Delete(ctx context.Context, actorID, id string) (*Customer, error) {
	if _, err := s.Get(ctx, actorID, id); err != nil {
		return nil, err
	}
	customer, err := s.customers.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete customer: %w", err)
	}
	return customer, nil
}

// List returns the actor's customers, newest first, with pagination
// metadata.
func (s *Service) List(ctx context.Context, actorID string, page, perPage int) ([]*Customer, shared.Pagination, error) {
	where := store.Where{"userId": actorID}
	total, err := s.customers.Count(ctx, where)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("count customers: %w", err)
	}
	pagination := shared.NewPagination(page, perPage, total)
	listed, err := s.customers.FindAll(ctx, store.Options{
		Where:   where,
		OrderBy: &store.OrderBy{Field: "createdAt", Direction: store.Descending},
		Limit:   pagination.PerPage,
		Offset:  pagination.Offset(),
	})
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list customers: %w", err)
	}
	return listed, pagination, nil
}
