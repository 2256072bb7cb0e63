package invoices

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/invoiceflow/invoiceflow/internal/customers"
	"github.com/invoiceflow/invoiceflow/internal/shared"
	"github.com/invoiceflow/invoiceflow/internal/store"
)

const actor = "user-1"

func newFixture(t *testing.T) (*Service, *store.Store[*Invoice], *customers.Customer) {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	invoicesStore := store.New[*Invoice](dir, "invoices")
	customersStore := store.New[*customers.Customer](dir, "customers")

	customer, err := customersStore.Create(ctx, customers.New(customers.Input{
		Name:   "TechStart Solutions",
		UserID: actor,
	}))
	require.NoError(t, err)

	return NewService(invoicesStore, customersStore, "INV"), invoicesStore, customer
}

func TestCreateAssignsNumberAndTotals(t *testing.T) {
	ctx := context.Background()
	svc, _, customer := newFixture(t)

	invoice, err := svc.Create(ctx, actor, Input{
		CustomerID: customer.ID,
		Items: []ItemInput{
			{Description: "Development", Quantity: 10, Rate: 150, TaxRate: 8.5},
			{Description: "Design", Quantity: 2, Rate: 120, TaxRate: 8.5},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "INV-1000", invoice.InvoiceNumber)
	require.Equal(t, StatusDraft, invoice.Status)
	require.Equal(t, 1740.0, invoice.Subtotal)
	require.Equal(t, 147.9, invoice.TaxTotal)
	require.Equal(t, 1887.9, invoice.Total)
	require.Equal(t, invoice.Total, invoice.AmountDue)
	require.Zero(t, invoice.AmountPaid)
	require.Equal(t, "USD", invoice.Currency)
	require.NotEmpty(t, invoice.IssueDate)
	require.NotEmpty(t, invoice.DueDate)

	second, err := svc.Create(ctx, actor, Input{
		CustomerID: customer.ID,
		Items:      []ItemInput{{Description: "Consulting", Rate: 200}},
	})
	require.NoError(t, err)
	require.Equal(t, "INV-1001", second.InvoiceNumber)
}

func TestCreateRejectsForeignCustomer(t *testing.T) {
	ctx := context.Background()
	svc, _, customer := newFixture(t)

	_, err := svc.Create(ctx, "someone-else", Input{
		CustomerID: customer.ID,
		Items:      []ItemInput{{Description: "Development", Rate: 100}},
	})
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.Create(ctx, actor, Input{
		CustomerID: "no-such-customer",
		Items:      []ItemInput{{Description: "Development", Rate: 100}},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc, _, customer := newFixture(t)

	_, err := svc.Create(ctx, actor, Input{})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(ctx, actor, Input{
		CustomerID: customer.ID,
		Items:      []ItemInput{{Description: "", Rate: 100}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestNextNumberPreviewDoesNotReserve(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newFixture(t)

	first, err := svc.NextNumber(ctx, "")
	require.NoError(t, err)
	second, err := svc.NextNumber(ctx, "")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestNumberPrefixIsolation(t *testing.T) {
	ctx := context.Background()
	svc, _, customer := newFixture(t)

	_, err := svc.Create(ctx, actor, Input{
		CustomerID:    customer.ID,
		InvoiceNumber: "ACME-2000",
		Items:         []ItemInput{{Description: "Development", Rate: 100}},
	})
	require.NoError(t, err)

	number, err := svc.NextNumber(ctx, "INV")
	require.NoError(t, err)
	require.Equal(t, "INV-1000", number)

	number, err = svc.NextNumber(ctx, "ACME")
	require.NoError(t, err)
	require.Equal(t, "ACME-2001", number)
}

// The key regression test for the numbering fix: concurrent creates must
// never derive the same invoice number from a shared snapshot.
func TestConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	ctx := context.Background()
	svc, invoicesStore, customer := newFixture(t)

	const writers = 10
	var mu sync.Mutex
	numbers := make(map[string]bool, writers)

	var g errgroup.Group
	for i := 0; i < writers; i++ {
		i := i
		g.Go(func() error {
			invoice, err := svc.Create(ctx, actor, Input{
				CustomerID: customer.ID,
				Items:      []ItemInput{{Description: fmt.Sprintf("job %d", i), Rate: 100}},
			})
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if numbers[invoice.InvoiceNumber] {
				return fmt.Errorf("duplicate invoice number %s", invoice.InvoiceNumber)
			}
			numbers[invoice.InvoiceNumber] = true
			return nil
		})
	}
	require.NoError(t, g.Wait())

	all, err := invoicesStore.Read(ctx)
	require.NoError(t, err)
	require.Len(t, all, writers)
}

func TestUpdateItemsRecomputesTotals(t *testing.T) {
	ctx := context.Background()
	svc, _, customer := newFixture(t)

	invoice, err := svc.Create(ctx, actor, Input{
		CustomerID: customer.ID,
		Items:      []ItemInput{{Description: "Development", Quantity: 1, Rate: 100}},
	})
	require.NoError(t, err)
	require.Equal(t, 100.0, invoice.Total)

	updated, err := svc.Update(ctx, actor, invoice.ID, UpdateInput{
		Items: []ItemInput{{Description: "Development", Quantity: 2, Rate: 100, TaxRate: 10}},
	})
	require.NoError(t, err)
	require.Equal(t, 200.0, updated.Subtotal)
	require.Equal(t, 20.0, updated.TaxTotal)
	require.Equal(t, 220.0, updated.Total)
	require.Equal(t, 220.0, updated.AmountDue)
	require.Equal(t, invoice.InvoiceNumber, updated.InvoiceNumber)
}

func TestUpdateStatusOnly(t *testing.T) {
	ctx := context.Background()
	svc, _, customer := newFixture(t)

	invoice, err := svc.Create(ctx, actor, Input{
		CustomerID: customer.ID,
		Items:      []ItemInput{{Description: "Development", Rate: 100}},
	})
	require.NoError(t, err)

	sent := StatusSent
	updated, err := svc.Update(ctx, actor, invoice.ID, UpdateInput{Status: &sent})
	require.NoError(t, err)
	require.Equal(t, StatusSent, updated.Status)
	require.Equal(t, invoice.Total, updated.Total)
}

func TestDeleteOnlyDrafts(t *testing.T) {
	ctx := context.Background()
	svc, invoicesStore, customer := newFixture(t)

	draft, err := svc.Create(ctx, actor, Input{
		CustomerID: customer.ID,
		Items:      []ItemInput{{Description: "Development", Rate: 100}},
	})
	require.NoError(t, err)
	_, err = svc.Delete(ctx, actor, draft.ID)
	require.NoError(t, err)

	sent, err := svc.Create(ctx, actor, Input{
		CustomerID: customer.ID,
		Status:     StatusSent,
		Items:      []ItemInput{{Description: "Development", Rate: 100}},
	})
	require.NoError(t, err)
	_, err = svc.Delete(ctx, actor, sent.ID)
	require.ErrorIs(t, err, shared.ErrValidation)

	// The guard lives in the service; the store itself will happily
	// delete a non-draft invoice.
	removed, err := invoicesStore.Delete(ctx, sent.ID)
	require.NoError(t, err)
	require.Equal(t, StatusSent, removed.Status)
}

func TestGetEnforcesOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _, customer := newFixture(t)

	invoice, err := svc.Create(ctx, actor, Input{
		CustomerID: customer.ID,
		Items:      []ItemInput{{Description: "Development", Rate: 100}},
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "intruder", invoice.ID)
	require.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.Get(ctx, actor, "missing")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListFiltersByOwnerAndStatus(t *testing.T) {
	ctx := context.Background()
	svc, invoicesStore, customer := newFixture(t)

	for _, status := range []Status{StatusDraft, StatusSent, StatusSent} {
		_, err := svc.Create(ctx, actor, Input{
			CustomerID: customer.ID,
			Status:     status,
			Items:      []ItemInput{{Description: "Development", Rate: 100}},
		})
		require.NoError(t, err)
	}
	foreign := New(Input{CustomerID: customer.ID, UserID: "someone-else"})
	_, err := invoicesStore.Create(ctx, foreign)
	require.NoError(t, err)

	all, pagination, err := svc.List(ctx, actor, nil, 1, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, 3, pagination.Total)

	sent, _, err := svc.List(ctx, actor, store.Where{"status": StatusSent}, 1, 10)
	require.NoError(t, err)
	require.Len(t, sent, 2)
}
