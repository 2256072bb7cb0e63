package settings

import (
	"github.com/invoiceflow/invoiceflow/internal/shared"
	"github.com/invoiceflow/invoiceflow/internal/store"
)

// SingletonID is the fixed id of the one company settings record.
const SingletonID = "company-settings"

// Theme holds branding colors used on rendered invoices.
type Theme struct {
	PrimaryColor string `json:"primaryColor"`
	AccentColor  string `json:"accentColor"`
}

// CompanySettings is the singleton record holding company-wide billing
// defaults.
type CompanySettings struct {
	store.Meta
	Name               string         `json:"name"`
	Email              string         `json:"email"`
	Phone              string         `json:"phone"`
	Website            string         `json:"website"`
	TaxNumber          string         `json:"taxNumber"`
	Address            shared.Address `json:"address"`
	Logo               string         `json:"logo"`
	Currency           string         `json:"currency"`
	TaxRate            float64        `json:"taxRate"`
	InvoicePrefix      string         `json:"invoicePrefix"`
	InvoiceNumberStart int            `json:"invoiceNumberStart"`
	PaymentTerms       string         `json:"paymentTerms"`
	Notes              string         `json:"notes"`
	Footer             string         `json:"footer"`
	Theme              Theme          `json:"theme"`
}

// Input carries the caller-supplied fields for the settings record.
type Input struct {
	Name               string
	Email              string
	Phone              string
	Website            string
	TaxNumber          string
	Address            shared.Address
	Logo               string
	Currency           string
	TaxRate            float64
	InvoicePrefix      string
	InvoiceNumberStart int
	PaymentTerms       string
	Notes              string
	Footer             string
	Theme              *Theme
}

// New builds a fully defaulted company settings record.
func New(input Input) *CompanySettings {
	address := input.Address
	if address.Country == "" {
		address.Country = "US"
	}
	settings := &CompanySettings{
		Name:               "Your Company Name",
		Email:              "hello@yourcompany.com",
		Phone:              input.Phone,
		Website:            input.Website,
		TaxNumber:          input.TaxNumber,
		Address:            address,
		Logo:               input.Logo,
		Currency:           "USD",
		TaxRate:            input.TaxRate,
		InvoicePrefix:      "INV",
		InvoiceNumberStart: 1000,
		PaymentTerms:       "Net 30",
		Notes:              "Thank you for your business!",
		Footer:             input.Footer,
		Theme:              Theme{PrimaryColor: "#9333ea", AccentColor: "#a855f7"},
	}
	settings.ID = SingletonID
	if input.Name != "" {
		settings.Name = input.Name
	}
	if input.Email != "" {
		settings.Email = input.Email
	}
	if input.Currency != "" {
		settings.Currency = input.Currency
	}
	if input.InvoicePrefix != "" {
		settings.InvoicePrefix = input.InvoicePrefix
	}
	if input.InvoiceNumberStart != 0 {
		settings.InvoiceNumberStart = input.InvoiceNumberStart
	}
	if input.PaymentTerms != "" {
		settings.PaymentTerms = input.PaymentTerms
	}
	if input.Notes != "" {
		settings.Notes = input.Notes
	}
	if input.Theme != nil {
		settings.Theme = *input.Theme
	}
	return settings
}
