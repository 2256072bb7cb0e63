package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/invoiceflow/invoiceflow/internal/invoices"
	"github.com/invoiceflow/invoiceflow/internal/shared"
	"github.com/invoiceflow/invoiceflow/internal/store"
)

// Service records payments and keeps invoice financial state consistent
// with payment history. Reconcile is the single source of truth for an
// invoice's amountPaid, amountDue and payment-driven status; it runs
// after every payment mutation that can change the completed sum.
type Service struct {
	payments *store.Store[*Payment]
	invoices *store.Store[*invoices.Invoice]
	validate *validator.Validate
}

// NewService builds a Service instance.
func NewService(payments *store.Store[*Payment], invs *store.Store[*invoices.Invoice]) *Service {
	return &Service{payments: payments, invoices: invs, validate: validator.New()}
}

// Create validates and records a payment against an invoice the actor
// owns. The amount must not exceed the invoice's amount due; Update
// enforces the same cap when a payment becomes completed, so the sum of
// completed payments never exceeds the invoice total.
//
// When reconciliation fails after the payment has been written, the
// created payment is returned together with an error wrapping
// shared.ErrReconcileFailed: the payment stands and the caller should
// retry reconciliation.
func (s *Service) Create(ctx context.Context, actorID string, input Input) (*Payment, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}
	invoice, err := s.invoices.FindByID(ctx, input.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if invoice == nil {
		return nil, fmt.Errorf("invoice %q: %w", input.InvoiceID, shared.ErrNotFound)
	}
	if err := shared.Authorize(actorID, invoice); err != nil {
		return nil, err
	}
	if input.Amount > invoice.AmountDue {
		return nil, fmt.Errorf("%w: payment amount cannot exceed amount due", shared.ErrValidation)
	}

	input.CustomerID = invoice.CustomerID
	input.UserID = actorID
	if input.Status == StatusCompleted && input.ProcessedAt == nil {
		now := shared.NowStamp()
		input.ProcessedAt = &now
	}
	payment, err := s.payments.Create(ctx, New(input))
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	if payment.Status == StatusCompleted {
		if _, err := s.Reconcile(ctx, payment.InvoiceID); err != nil {
			return payment, fmt.Errorf("%w: %v", shared.ErrReconcileFailed, err)
		}
	}
	return payment, nil
}

// Get returns a payment after verifying ownership.
func (s *Service) Get(ctx context.Context, actorID, id string) (*Payment, error) {
	payment, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if payment == nil {
		return nil, fmt.Errorf("payment %q: %w", id, shared.ErrNotFound)
	}
	if err := shared.Authorize(actorID, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// UpdateInput carries partial updates for a payment. Nil fields are left
// unchanged.
type UpdateInput struct {
	Amount        *float64 `validate:"omitnil,gt=0"`
	Method        *Method
	Status        *Status
	Reference     *string
	Notes         *string
	TransactionID *string
}

// Update applies partial updates to a payment the actor owns and
// reconciles the invoice afterwards. A status transition to completed
// stamps processedAt. When the update would leave the payment completed,
// the completed sum across the invoice (with this payment's new amount)
// must not exceed the invoice total; pending payments are not counted at
// creation, so this is where they meet the cap. Reconciliation failure is
// reported like Create's.
func (s *Service) Update(ctx context.Context, actorID, id string, input UpdateInput) (*Payment, error) {
	payment, err := s.Get(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrValidation, err)
	}

	amount := payment.Amount
	if input.Amount != nil {
		amount = *input.Amount
	}
	status := payment.Status
	if input.Status != nil {
		status = *input.Status
	}
	if status == StatusCompleted {
		invoice, err := s.invoices.FindByID(ctx, payment.InvoiceID)
		if err != nil {
			return nil, fmt.Errorf("get invoice: %w", err)
		}
		if invoice != nil {
			others, err := s.completedSum(ctx, payment.InvoiceID, payment.ID)
			if err != nil {
				return nil, err
			}
			if others+amount > invoice.Total {
				return nil, fmt.Errorf("%w: completed payments cannot exceed invoice total", shared.ErrValidation)
			}
		}
	}

	updates := make(map[string]any)
	if input.Amount != nil {
		updates["amount"] = *input.Amount
	}
	if input.Method != nil {
		updates["method"] = *input.Method
	}
	if input.Status != nil {
		updates["status"] = *input.Status
		if *input.Status == StatusCompleted && payment.ProcessedAt == nil {
			updates["processedAt"] = shared.NowStamp()
		}
	}
	if input.Reference != nil {
		updates["reference"] = *input.Reference
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.TransactionID != nil {
		updates["transactionId"] = *input.TransactionID
	}
	if len(updates) == 0 {
		return payment, nil
	}

	updated, err := s.payments.Update(ctx, id, updates)
	if err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}
	if _, err := s.Reconcile(ctx, updated.InvoiceID); err != nil {
		return updated, fmt.Errorf("%w: %v", shared.ErrReconcileFailed, err)
	}
	return updated, nil
}

// Delete removes a payment the actor owns and reconciles the invoice
// afterwards. Reconciliation failure is reported like Create's.
func (s *Service) Delete(ctx context.Context, actorID, id string) (*Payment, error) {
	if _, err := s.Get(ctx, actorID, id); err != nil {
		return nil, err
	}
	deleted, err := s.payments.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete payment: %w", err)
	}
	if _, err := s.Reconcile(ctx, deleted.InvoiceID); err != nil {
		return deleted, fmt.Errorf("%w: %v", shared.ErrReconcileFailed, err)
	}
	return deleted, nil
}

// List returns the actor's payments, newest first, with pagination
// metadata. where narrows the listing with additional criteria.
func (s *Service) List(ctx context.Context, actorID string, where store.Where, page, perPage int) ([]*Payment, shared.Pagination, error) {
	criteria := store.Where{"userId": actorID}
	for path, value := range where {
		criteria[path] = value
	}
	total, err := s.payments.Count(ctx, criteria)
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("count payments: %w", err)
	}
	pagination := shared.NewPagination(page, perPage, total)
	listed, err := s.payments.FindAll(ctx, store.Options{
		Where:   criteria,
		OrderBy: &store.OrderBy{Field: "createdAt", Direction: store.Descending},
		Limit:   pagination.PerPage,
		Offset:  pagination.Offset(),
	})
	if err != nil {
		return nil, shared.Pagination{}, fmt.Errorf("list payments: %w", err)
	}
	return listed, pagination, nil
}

// Reconcile recomputes an invoice's paid amount, amount due and status
// from its payment history and persists the result. Returns the updated
// invoice, or nil when the invoice does not exist.
//
// Status transitions: fully paid invoices become paid with zero due; a
// positive partial sum makes them partial; an unpaid invoice past its due
// date that is not already paid becomes overdue; otherwise the status is
// left unchanged.
func (s *Service) Reconcile(ctx context.Context, invoiceID string) (*invoices.Invoice, error) {
	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if invoice == nil {
		return nil, nil
	}

	totalPaid, err := s.completedSum(ctx, invoiceID, "")
	if err != nil {
		return nil, err
	}

	status := invoice.Status
	amountDue := invoice.Total - totalPaid
	switch {
	case totalPaid >= invoice.Total:
		status = invoices.StatusPaid
		amountDue = 0
	case totalPaid > 0:
		status = invoices.StatusPartial
	case dueDatePast(invoice.DueDate) && status != invoices.StatusPaid:
		status = invoices.StatusOverdue
	}

	updated, err := s.invoices.Update(ctx, invoiceID, map[string]any{
		"status":     status,
		"amountPaid": shared.RoundCents(totalPaid),
		"amountDue":  shared.RoundCents(amountDue),
	})
	if err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}
	return updated, nil
}

// completedSum totals the completed payments recorded against an invoice,
// skipping the payment with excludeID when set.
func (s *Service) completedSum(ctx context.Context, invoiceID, excludeID string) (float64, error) {
	related, err := s.payments.FindBy(ctx, store.Where{"invoiceId": invoiceID})
	if err != nil {
		return 0, fmt.Errorf("list payments: %w", err)
	}
	var sum float64
	for _, payment := range related {
		if payment.ID == excludeID {
			continue
		}
		if payment.Status == StatusCompleted {
			sum += payment.Amount
		}
	}
	return sum, nil
}

func dueDatePast(dueDate string) bool {
	due, err := time.Parse(shared.DateLayout, dueDate)
	if err != nil {
		return false
	}
	return due.Before(time.Now().UTC())
}
