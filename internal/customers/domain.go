package customers

import (
	"github.com/invoiceflow/invoiceflow/internal/shared"
	"github.com/invoiceflow/invoiceflow/internal/store"
)

// Customer represents a billable customer owned by one user.
type Customer struct {
	store.Meta
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	Company        string         `json:"company"`
	Website        string         `json:"website"`
	TaxNumber      string         `json:"taxNumber"`
	Address        shared.Address `json:"address"`
	BillingAddress shared.Address `json:"billingAddress"`
	Notes          string         `json:"notes"`
	Tags           []string       `json:"tags"`
	IsActive       bool           `json:"isActive"`
	UserID         string         `json:"userId"`
}

// OwnerID implements shared.Owned.
func (c *Customer) OwnerID() string { return c.UserID }

// Input carries the caller-supplied fields for a new customer.
type Input struct {
	ID             string
	Name           string `validate:"required"`
	Email          string `validate:"omitempty,email"`
	Phone          string
	Company        string
	Website        string
	TaxNumber      string
	Address        shared.Address
	BillingAddress shared.Address
	Notes          string
	Tags           []string
	IsActive       *bool
	UserID         string
}

// New builds a fully defaulted customer record. The billing address falls
// back field by field to the main address, and country defaults to US.
func New(input Input) *Customer {
	address := input.Address
	if address.Country == "" {
		address.Country = "US"
	}
	customer := &Customer{
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.Phone,
		Company:        input.Company,
		Website:        input.Website,
		TaxNumber:      input.TaxNumber,
		Address:        address,
		BillingAddress: billingFallback(input.BillingAddress, address),
		Notes:          input.Notes,
		Tags:           input.Tags,
		IsActive:       true,
		UserID:         input.UserID,
	}
	customer.ID = input.ID
	if customer.Tags == nil {
		customer.Tags = []string{}
	}
	if input.IsActive != nil {
		customer.IsActive = *input.IsActive
	}
	return customer
}

func billingFallback(billing, main shared.Address) shared.Address {
	pick := func(primary, fallback string) string {
		if primary != "" {
			return primary
		}
		return fallback
	}
	return shared.Address{
		Street:  pick(billing.Street, main.Street),
		City:    pick(billing.City, main.City),
		State:   pick(billing.State, main.State),
		ZipCode: pick(billing.ZipCode, main.ZipCode),
		Country: pick(billing.Country, main.Country),
	}
}
