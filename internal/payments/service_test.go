package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/invoiceflow/invoiceflow/internal/customers"
	"github.com/invoiceflow/invoiceflow/internal/invoices"
	"github.com/invoiceflow/invoiceflow/internal/shared"
	"github.com/invoiceflow/invoiceflow/internal/store"
)

const actor = "user-1"

type fixture struct {
	payments *Service
	invoices *invoices.Service
	invStore *store.Store[*invoices.Invoice]
	customer *customers.Customer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	invoicesStore := store.New[*invoices.Invoice](dir, "invoices")
	paymentsStore := store.New[*Payment](dir, "payments")
	customersStore := store.New[*customers.Customer](dir, "customers")

	customer, err := customersStore.Create(ctx, customers.New(customers.Input{
		Name:   "TechStart Solutions",
		UserID: actor,
	}))
	require.NoError(t, err)

	return &fixture{
		payments: NewService(paymentsStore, invoicesStore),
		invoices: invoices.NewService(invoicesStore, customersStore, "INV"),
		invStore: invoicesStore,
		customer: customer,
	}
}

// newInvoice creates a sent invoice with total 100.00.
func (f *fixture) newInvoice(t *testing.T, dueDate string) *invoices.Invoice {
	t.Helper()
	invoice, err := f.invoices.Create(context.Background(), actor, invoices.Input{
		CustomerID: f.customer.ID,
		Status:     invoices.StatusSent,
		DueDate:    dueDate,
		Items:      []invoices.ItemInput{{Description: "Development", Quantity: 1, Rate: 100}},
	})
	require.NoError(t, err)
	require.Equal(t, 100.0, invoice.Total)
	return invoice
}

func futureDate() string {
	return time.Now().UTC().AddDate(0, 0, 14).Format(shared.DateLayout)
}

func pastDate() string {
	return time.Now().UTC().AddDate(0, 0, -14).Format(shared.DateLayout)
}

func TestFullPaymentMarksInvoicePaid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	invoice := f.newInvoice(t, futureDate())

	for _, amount := range []float64{40, 60} {
		payment, err := f.payments.Create(ctx, actor, Input{
			InvoiceID: invoice.ID,
			Amount:    amount,
			Status:    StatusCompleted,
		})
		require.NoError(t, err)
		require.Equal(t, invoice.CustomerID, payment.CustomerID)
		require.NotNil(t, payment.ProcessedAt)
	}

	updated, err := f.invStore.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	require.Equal(t, invoices.StatusPaid, updated.Status)
	require.Equal(t, 100.0, updated.AmountPaid)
	require.Equal(t, 0.0, updated.AmountDue)
}

func TestPartialPaymentMarksInvoicePartial(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	invoice := f.newInvoice(t, futureDate())

	_, err := f.payments.Create(ctx, actor, Input{
		InvoiceID: invoice.ID,
		Amount:    30,
		Status:    StatusCompleted,
	})
	require.NoError(t, err)

	updated, err := f.invStore.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	require.Equal(t, invoices.StatusPartial, updated.Status)
	require.Equal(t, 30.0, updated.AmountPaid)
	require.Equal(t, 70.0, updated.AmountDue)
}

func TestReconcileMarksOverdue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	invoice := f.newInvoice(t, pastDate())

	updated, err := f.payments.Reconcile(ctx, invoice.ID)
	require.NoError(t, err)
	require.Equal(t, invoices.StatusOverdue, updated.Status)
	require.Equal(t, 0.0, updated.AmountPaid)
	require.Equal(t, updated.Total, updated.AmountDue)
}

func TestReconcileLeavesCurrentInvoiceUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	invoice := f.newInvoice(t, futureDate())

	updated, err := f.payments.Reconcile(ctx, invoice.ID)
	require.NoError(t, err)
	require.Equal(t, invoices.StatusSent, updated.Status)
	require.Equal(t, 0.0, updated.AmountPaid)
	require.Equal(t, 100.0, updated.AmountDue)
}

func TestReconcileMissingInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	updated, err := f.payments.Reconcile(ctx, "no-such-invoice")
	require.NoError(t, err)
	require.Nil(t, updated)
}

func TestPendingPaymentDoesNotReconcile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	invoice := f.newInvoice(t, futureDate())

	payment, err := f.payments.Create(ctx, actor, Input{
		InvoiceID: invoice.ID,
		Amount:    50,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, payment.Status)
	require.Equal(t, MethodCash, payment.Method)
	require.Nil(t, payment.ProcessedAt)

	untouched, err := f.invStore.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	require.Equal(t, invoices.StatusSent, untouched.Status)
	require.Zero(t, untouched.AmountPaid)
}

func TestCompletingPendingPaymentStampsAndReconciles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	invoice := f.newInvoice(t, futureDate())

	payment, err := f.payments.Create(ctx, actor, Input{
		InvoiceID: invoice.ID,
		Amount:    100,
	})
	require.NoError(t, err)

	completed := StatusCompleted
	updated, err := f.payments.Update(ctx, actor, payment.ID, UpdateInput{Status: &completed})
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, updated.Status)
	require.NotNil(t, updated.ProcessedAt)

	reconciled, err := f.invStore.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	require.Equal(t, invoices.StatusPaid, reconciled.Status)
	require.Equal(t, 0.0, reconciled.AmountDue)
}

func TestDeletePaymentReconcilesInvoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	invoice := f.newInvoice(t, futureDate())

	payment, err := f.payments.Create(ctx, actor, Input{
		InvoiceID: invoice.ID,
		Amount:    30,
		Status:    StatusCompleted,
	})
	require.NoError(t, err)

	_, err = f.payments.Delete(ctx, actor, payment.ID)
	require.NoError(t, err)

	updated, err := f.invStore.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	require.Equal(t, 0.0, updated.AmountPaid)
	require.Equal(t, 100.0, updated.AmountDue)
	// With no completed payments and a future due date the status is left
	// as-is, so the invoice keeps the partial marker from the earlier
	// reconciliation.
	require.Equal(t, invoices.StatusPartial, updated.Status)
}

func TestPaymentCannotExceedAmountDue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	invoice := f.newInvoice(t, futureDate())

	_, err := f.payments.Create(ctx, actor, Input{
		InvoiceID: invoice.ID,
		Amount:    150,
		Status:    StatusCompleted,
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	// Completed payments can never sum past the invoice total.
	_, err = f.payments.Create(ctx, actor, Input{InvoiceID: invoice.ID, Amount: 80, Status: StatusCompleted})
	require.NoError(t, err)
	_, err = f.payments.Create(ctx, actor, Input{InvoiceID: invoice.ID, Amount: 30, Status: StatusCompleted})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCompletingPaymentsCannotExceedTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	invoice := f.newInvoice(t, futureDate())

	// Pending payments do not count toward the invoice, so two of 80.00
	// each pass the creation guard against a 100.00 total.
	first, err := f.payments.Create(ctx, actor, Input{InvoiceID: invoice.ID, Amount: 80})
	require.NoError(t, err)
	second, err := f.payments.Create(ctx, actor, Input{InvoiceID: invoice.ID, Amount: 80})
	require.NoError(t, err)

	completed := StatusCompleted
	_, err = f.payments.Update(ctx, actor, first.ID, UpdateInput{Status: &completed})
	require.NoError(t, err)

	// Completing the second would put the completed sum at 160.
	_, err = f.payments.Update(ctx, actor, second.ID, UpdateInput{Status: &completed})
	require.ErrorIs(t, err, shared.ErrValidation)

	updated, err := f.invStore.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	require.LessOrEqual(t, updated.AmountPaid, updated.Total)
	require.Equal(t, invoices.StatusPartial, updated.Status)
	require.Equal(t, 80.0, updated.AmountPaid)
}

func TestRaisingCompletedAmountCannotExceedTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	invoice := f.newInvoice(t, futureDate())

	payment, err := f.payments.Create(ctx, actor, Input{
		InvoiceID: invoice.ID,
		Amount:    60,
		Status:    StatusCompleted,
	})
	require.NoError(t, err)

	over := 120.0
	_, err = f.payments.Update(ctx, actor, payment.ID, UpdateInput{Amount: &over})
	require.ErrorIs(t, err, shared.ErrValidation)

	// Raising within the total still works and reconciles.
	full := 100.0
	_, err = f.payments.Update(ctx, actor, payment.ID, UpdateInput{Amount: &full})
	require.NoError(t, err)
	updated, err := f.invStore.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	require.Equal(t, invoices.StatusPaid, updated.Status)
	require.Equal(t, 0.0, updated.AmountDue)
}

func TestPaymentOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	invoice := f.newInvoice(t, futureDate())

	_, err := f.payments.Create(ctx, "intruder", Input{
		InvoiceID: invoice.ID,
		Amount:    10,
	})
	require.ErrorIs(t, err, shared.ErrForbidden)

	payment, err := f.payments.Create(ctx, actor, Input{InvoiceID: invoice.ID, Amount: 10})
	require.NoError(t, err)
	_, err = f.payments.Get(ctx, "intruder", payment.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestRoundingAtCents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	invoice := f.newInvoice(t, futureDate())

	// Three thirds of 100 accumulate binary float error; reconciliation
	// must land exactly on cents.
	for _, amount := range []float64{33.33, 33.33, 33.34} {
		_, err := f.payments.Create(ctx, actor, Input{
			InvoiceID: invoice.ID,
			Amount:    amount,
			Status:    StatusCompleted,
		})
		require.NoError(t, err)
	}

	updated, err := f.invStore.FindByID(ctx, invoice.ID)
	require.NoError(t, err)
	require.Equal(t, invoices.StatusPaid, updated.Status)
	require.Equal(t, 100.0, updated.AmountPaid)
	require.Equal(t, 0.0, updated.AmountDue)
}
