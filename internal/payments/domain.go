package payments

import "github.com/invoiceflow/invoiceflow/internal/store"

// Status enumerates payment statuses. Only completed payments count
// toward an invoice's paid amount.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
)

// Method enumerates payment methods.
type Method string

const (
	MethodCash         Method = "cash"
	MethodCheck        Method = "check"
	MethodBankTransfer Method = "bank_transfer"
	MethodCreditCard   Method = "credit_card"
	MethodPayPal       Method = "paypal"
	MethodCrypto       Method = "crypto"
)

// Payment represents a payment recorded against an invoice. ProcessedAt
// is set only when the status becomes completed.
type Payment struct {
	store.Meta
	InvoiceID     string  `json:"invoiceId"`
	CustomerID    string  `json:"customerId"`
	Amount        float64 `json:"amount"`
	Method        Method  `json:"method"`
	Status        Status  `json:"status"`
	Reference     string  `json:"reference"`
	Notes         string  `json:"notes"`
	TransactionID string  `json:"transactionId"`
	ProcessedAt   *string `json:"processedAt"`
	UserID        string  `json:"userId"`
}

// OwnerID implements shared.Owned.
func (p *Payment) OwnerID() string { return p.UserID }

// Input carries the caller-supplied fields for a new payment.
type Input struct {
	ID            string
	InvoiceID     string  `validate:"required"`
	CustomerID    string
	Amount        float64 `validate:"required,gt=0"`
	Method        Method
	Status        Status
	Reference     string
	Notes         string
	TransactionID string
	ProcessedAt   *string
	UserID        string
}

// New builds a fully defaulted payment record: method cash, status
// pending, processedAt unset.
func New(input Input) *Payment {
	payment := &Payment{
		InvoiceID:     input.InvoiceID,
		CustomerID:    input.CustomerID,
		Amount:        input.Amount,
		Method:        MethodCash,
		Status:        StatusPending,
		Reference:     input.Reference,
		Notes:         input.Notes,
		TransactionID: input.TransactionID,
		ProcessedAt:   input.ProcessedAt,
		UserID:        input.UserID,
	}
	payment.ID = input.ID
	if input.Method != "" {
		payment.Method = input.Method
	}
	if input.Status != "" {
		payment.Status = input.Status
	}
	return payment
}
