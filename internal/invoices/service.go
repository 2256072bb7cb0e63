package invoices

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/invoiceflow/invoiceflow/internal/customers"
	"github.com/invoiceflow/invoiceflow/internal/shared"
	"github.com/invoiceflow/invoiceflow/internal/store"
)

// Service handles invoice business logic: numbering, totals, ownership
// and the draft-only deletion rule. The store itself enforces none of
// these.
type Service struct {
	invoices  *store.Store[*Invoice]
	customers *store.Store[*customers.Customer]
	validate  *validator.Validate
	prefix    string
}

// NewService builds a Service instance. prefix is the invoice number
// prefix used when callers do not supply one.
func NewService(invoices *store.Store[*Invoice], custs *store.Store[*customers.Customer], prefix string) *Service {
	if prefix == "" {
		prefix = "INV"
	}
	return &Service{invoices: invoices, customers: custs, validate: validator.New(), prefix: prefix}
}

// Create validates the input, verifies the customer belongs to the actor,
// computes totals and assigns the next invoice number. Numbering and the
// write happen in one critical section so concurrent creates cannot
// derive the same number.
func (s *Service) Create(ctx context.Context, actorID string, input Input) (*Invoice, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	customer, err := s.customers.FindByID(ctx, input.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if customer == nil {
		return nil, fmt.Errorf("customer %q: %w", input.CustomerID, shared.ErrNotFound)
	}
	if err := shared.Authorize(actorID, customer); err != nil {
		return nil, err
	}

	input.UserID = actorID
	invoice := New(input)
	totals := CalculateTotals(invoice.Items)
	invoice.Subtotal = totals.Subtotal
	invoice.TaxTotal = totals.TaxTotal
	invoice.Total = totals.Total
	invoice.AmountDue = totals.Total

	err = s.invoices.Locked(ctx, func(tx store.Tx[*Invoice]) error {
		if invoice.InvoiceNumber == "" {
			existing, err := tx.Read()
			if err != nil {
				return err
			}
			invoice.InvoiceNumber = nextNumber(existing, s.prefix)
		}
		created, err := tx.Create(invoice)
		if err != nil {
			return err
		}
		invoice = created
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create invoice: %w", err)
	}
	return invoice, nil
}

// NextNumber returns the next sequential invoice number for a prefix.
// The number is only reserved once an invoice is created with it.
func (s *Service) NextNumber(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		prefix = s.prefix
	}
	var number string
	err := s.invoices.Locked(ctx, func(tx store.Tx[*Invoice]) error {
		existing, err := tx.Read()
		if err != nil {
			return err
		}
		number = nextNumber(existing, prefix)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("next invoice number: %w", err)
	}
	return number, nil
}

// Get returns an invoice after verifying ownership.
func (s *Service) Get(ctx context.Context, actorID, id string) (*Invoice, error) {
	invoice, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if invoice == nil {
		return nil, fmt.Errorf("invoice %q: %w", id, shared.ErrNotFound)
	}
	if err := shared.Authorize(actorID, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// UpdateInput carries partial updates for an invoice. Nil fields are left
// unchanged. When Items is non-nil the items are rebuilt and totals
// recomputed.
type UpdateInput struct {
	CustomerID *string
	IssueDate  *string
	DueDate    *string
	Status     *Status
	Items      []ItemInput `validate:"omitempty,dive"`
	Currency   *string
	Notes      *string
	Terms      *string
	Footer     *string
}

// Update applies partial updates to an invoice the actor owns, keeping
// totals and amount due consistent with the items and amount paid.
func (s *Service) Update(ctx context.Context, actorID, id string, input UpdateInput) (*Invoice, error) {
	invoice, err := s.Get(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	updates := make(map[string]any)
	if input.CustomerID != nil && *input.CustomerID != invoice.CustomerID {
		customer, err := s.customers.FindByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("get customer: %w", err)
		}
		if customer == nil {
			return nil, fmt.Errorf("customer %q: %w", *input.CustomerID, shared.ErrNotFound)
		}
		if err := shared.Authorize(actorID, customer); err != nil {
			return nil, err
		}
		updates["customerId"] = *input.CustomerID
	}
	if input.IssueDate != nil {
		updates["issueDate"] = *input.IssueDate
	}
	if input.DueDate != nil {
		updates["dueDate"] = *input.DueDate
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.Currency != nil {
		updates["currency"] = *input.Currency
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.Terms != nil {
		updates["terms"] = *input.Terms
	}
	if input.Footer != nil {
		updates["footer"] = *input.Footer
	}
	if input.Items != nil {
		items := make([]Item, 0, len(input.Items))
		for _, item := range input.Items {
			items = append(items, NewItem(item))
		}
		totals := CalculateTotals(items)
		updates["items"] = items
		updates["subtotal"] = totals.Subtotal
		updates["taxTotal"] = totals.TaxTotal
		updates["total"] = totals.Total
		updates["amountDue"] = shared.RoundCents(totals.Total - invoice.AmountPaid)
	}
	if len(updates) == 0 {
		return invoice, nil
	}

	updated, err := s.invoices.Update(ctx, id, updates)
	if err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}
	return updated, nil
}

// Delete removes an invoice the actor owns. Only draft invoices may be
// deleted; this guard lives here, above the store.
func (s *Service) Delete(ctx context.Context, actorID, id string) (*Invoice, error) {
	invoice, err := s.Get(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only draft invoices can be deleted", shared.ErrValidation)
	}
	deleted, err := s.invoices.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete invoice: %w", err)
	}
	return deleted, nil
}

// List returns the actor's invoices, newest first, with pagination
// metadata. where narrows the listing with additional criteria.
func (s *Service) List(ctx context.Context, actorID string, where store.Where, page, perPage int) ([]*Invoice, shared.Pagination, error) {
	criteria := store.Where{"userId": actorID}
	for path, value := range where {
		criteria[path] = value
	}
	total, err := s.invoices.Count(ctx, criteria)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("count invoices: %w", err)
	}
	pagination := shared.NewPagination(page, perPage, total)
	listed, err := s.invoices.FindAll(ctx, store.Options{
		Where:   criteria,
		OrderBy: &store.OrderBy{Field: "createdAt", Direction: store.Descending},
		Limit:   pagination.PerPage,
		Offset:  pagination.Offset(),
	})
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list invoices: %w", err)
	}
	return listed, pagination, nil
}
