package invoices

import (
	"github.com/invoiceflow/invoiceflow/internal/shared"
	"github.com/invoiceflow/invoiceflow/internal/store"
)

// Status enumerates invoice statuses.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusViewed    Status = "viewed"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
	StatusPartial   Status = "partial"
)

// Item is a single invoice line. Amount and TaxAmount are derived from
// quantity, rate and tax rate when the item is built; the totals
// calculator trusts them as stored.
type Item struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
	TaxRate     float64 `json:"taxRate"`
	TaxAmount   float64 `json:"taxAmount"`
}

// Invoice represents an invoice with embedded line items. Total always
// equals Subtotal+TaxTotal and AmountDue always equals Total-AmountPaid;
// both are recomputed, never hand-edited independently.
type Invoice struct {
	store.Meta
	InvoiceNumber   string   `json:"invoiceNumber"`
	CustomerID      string   `json:"customerId"`
	IssueDate       string   `json:"issueDate"`
	DueDate         string   `json:"dueDate"`
	Status          Status   `json:"status"`
	Items           []Item   `json:"items"`
	Subtotal        float64  `json:"subtotal"`
	TaxTotal        float64  `json:"taxTotal"`
	DiscountAmount  float64  `json:"discountAmount"`
	DiscountPercent float64  `json:"discountPercent"`
	Total           float64  `json:"total"`
	AmountPaid      float64  `json:"amountPaid"`
	AmountDue       float64  `json:"amountDue"`
	Currency        string   `json:"currency"`
	Notes           string   `json:"notes"`
	Terms           string   `json:"terms"`
	Footer          string   `json:"footer"`
	Attachments     []string `json:"attachments"`
	SentAt          *string  `json:"sentAt"`
	ViewedAt        *string  `json:"viewedAt"`
	PaidAt          *string  `json:"paidAt"`
	UserID          string   `json:"userId"`
}

// OwnerID implements shared.Owned.
func (i *Invoice) OwnerID() string { return i.UserID }

// ItemInput carries the caller-supplied fields for one invoice line.
type ItemInput struct {
	ID          string
	Description string  `validate:"required"`
	Quantity    float64 `validate:"gte=0"`
	Rate        float64 `validate:"gte=0"`
	Amount      float64
	TaxRate     float64 `validate:"gte=0,lte=100"`
	TaxAmount   float64
}

// NewItem builds a line item, defaulting quantity to 1 and deriving
// amount and tax amount when they were not supplied.
func NewItem(input ItemInput) Item {
	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	amount := input.Amount
	if amount == 0 {
		amount = quantity * input.Rate
	}
	taxAmount := input.TaxAmount
	if taxAmount == 0 {
		taxAmount = amount * input.TaxRate / 100
	}
	return Item{
		ID:          input.ID,
		Description: input.Description,
		Quantity:    quantity,
		Rate:        input.Rate,
		Amount:      amount,
		TaxRate:     input.TaxRate,
		TaxAmount:   taxAmount,
	}
}

// Input carries the caller-supplied fields for a new invoice.
type Input struct {
	ID              string
	InvoiceNumber   string
	CustomerID      string `validate:"required"`
	IssueDate       string
	DueDate         string
	Status          Status
	Items           []ItemInput `validate:"dive"`
	DiscountAmount  float64     `validate:"gte=0"`
	DiscountPercent float64     `validate:"gte=0,lte=100"`
	Currency        string
	Notes           string
	Terms           string
	Footer          string
	UserID          string
}

// New builds a fully defaulted invoice record: status draft, issue date
// today, due date thirty days out, currency USD. Items, totals and the
// invoice number are filled in by the service.
func New(input Input) *Invoice {
	invoice := &Invoice{
		InvoiceNumber: input.InvoiceNumber,
		CustomerID:    input.CustomerID,
		IssueDate:     input.IssueDate,
		DueDate:       input.DueDate,
		Status:        StatusDraft,
		Items:         []Item{},
		Currency:      "USD",
		Notes:         input.Notes,
		Terms:         input.Terms,
		Footer:        input.Footer,
		Attachments:   []string{},

		DiscountAmount:  input.DiscountAmount,
		DiscountPercent: input.DiscountPercent,
		UserID:          input.UserID,
	}
	invoice.ID = input.ID
	if invoice.IssueDate == "" {
		invoice.IssueDate = shared.Today()
	}
	if invoice.DueDate == "" {
		invoice.DueDate = shared.DaysFromToday(30)
	}
	if input.Status != "" {
		invoice.Status = input.Status
	}
	if input.Currency != "" {
		invoice.Currency = input.Currency
	}
	for _, item := range input.Items {
		invoice.Items = append(invoice.Items, NewItem(item))
	}
	return invoice
}
