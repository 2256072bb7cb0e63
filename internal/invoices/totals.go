package invoices

import "github.com/invoiceflow/invoiceflow/internal/shared"

// Totals aggregates the money fields derived from line items.
type Totals struct {
	Subtotal float64
	TaxTotal float64
	Total    float64
}

// CalculateTotals sums line amounts and tax amounts and rounds all three
// results to cents, half away from zero. It trusts each item's stored
// Amount and TaxAmount and does not re-derive them.
func CalculateTotals(items []Item) Totals {
	var subtotal, taxTotal float64
	for _, item := range items {
		subtotal += item.Amount
		taxTotal += item.TaxAmount
	}
	return Totals{
		Subtotal: shared.RoundCents(subtotal),
		TaxTotal: shared.RoundCents(taxTotal),
		Total:    shared.RoundCents(subtotal + taxTotal),
	}
}
