// Demo-data generator: a bulk client of the storage API that fills the
// data directory with customers, numbered invoices and payments for the
// demo account. Customers are seeded concurrently, which exercises the
// per-kind single-writer stores.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/invoiceflow/invoiceflow/internal/app"
	"github.com/invoiceflow/invoiceflow/internal/customers"
	"github.com/invoiceflow/invoiceflow/internal/invoices"
	"github.com/invoiceflow/invoiceflow/internal/payments"
	"github.com/invoiceflow/invoiceflow/internal/settings"
	"github.com/invoiceflow/invoiceflow/internal/shared"
	"github.com/invoiceflow/invoiceflow/internal/store"
	"github.com/invoiceflow/invoiceflow/internal/users"
)

type demoCustomer struct {
	name    string
	company string
	email   string
	phone   string
	website string
	address shared.Address
}

var demoCustomers = []demoCustomer{
	{
		name: "Sarah Johnson", company: "TechStart Solutions",
		email: "sarah@techstart.com", phone: "+1 (555) 123-4567",
		website: "https://techstart.com",
		address: shared.Address{Street: "123 Innovation Drive", City: "San Francisco", State: "CA", ZipCode: "94105", Country: "US"},
	},
	{
		name: "Michael Chen", company: "Digital Marketing Pro",
		email: "mike@digitalmarketingpro.com", phone: "+1 (555) 234-5678",
		website: "https://digitalmarketingpro.com",
		address: shared.Address{Street: "456 Market Street", City: "Austin", State: "TX", ZipCode: "78701", Country: "US"},
	},
	{
		name: "Emma Rodriguez", company: "Creative Design Studio",
		email: "emma@creativedesign.co", phone: "+1 (555) 345-6789",
		website: "https://creativedesign.co",
		address: shared.Address{Street: "789 Art District Blvd", City: "Portland", State: "OR", ZipCode: "97205", Country: "US"},
	},
	{
		name: "David Kim", company: "CloudOps Engineering",
		email: "david@cloudops.io", phone: "+1 (555) 456-7890",
		website: "https://cloudops.io",
		address: shared.Address{Street: "321 Tech Park Way", City: "Seattle", State: "WA", ZipCode: "98101", Country: "US"},
	},
	{
		name: "Lisa Wang", company: "E-commerce Boost",
		email: "lisa@ecommerceboost.com", phone: "+1 (555) 567-8901",
		website: "https://ecommerceboost.com",
		address: shared.Address{Street: "654 Commerce Ave", City: "New York", State: "NY", ZipCode: "10001", Country: "US"},
	},
	{
		name: "James Thompson", company: "Legal Consulting Group",
		email: "james@legalconsulting.com", phone: "+1 (555) 678-9012",
		website: "https://legalconsulting.com",
		address: shared.Address{Street: "987 Law Plaza", City: "Chicago", State: "IL", ZipCode: "60601", Country: "US"},
	},
}

var demoServices = []struct {
	description string
	rate        float64
}{
	{"Web application development", 150},
	{"UI/UX design and prototyping", 120},
	{"Cloud infrastructure setup", 175},
	{"Monthly maintenance retainer", 95},
	{"SEO audit and optimization", 110},
	{"Technical consulting", 200},
}

func main() {
	ctx := context.Background()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	usersStore := store.New[*users.User](cfg.DataDir, "users")
	customersStore := store.New[*customers.Customer](cfg.DataDir, "customers")
	invoicesStore := store.New[*invoices.Invoice](cfg.DataDir, "invoices")
	paymentsStore := store.New[*payments.Payment](cfg.DataDir, "payments")
	settingsStore := store.New[*settings.CompanySettings](cfg.DataDir, "settings")

	customersService := customers.NewService(customersStore)
	invoicesService := invoices.NewService(invoicesStore, customersStore, cfg.InvoicePrefix)
	paymentsService := payments.NewService(paymentsStore, invoicesStore)

	fmt.Println("→ Seeding company settings...")
	if _, err := settings.NewService(settingsStore).EnsureDefaults(ctx); err != nil {
		log.Fatalf("seed settings: %v", err)
	}

	fmt.Println("→ Seeding demo user...")
	user, err := seedDemoUser(ctx, usersStore, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("seed demo user: %v", err)
	}

	fmt.Println("→ Seeding customers, invoices and payments...")
	g, gctx := errgroup.WithContext(ctx)
	for _, demo := range demoCustomers {
		demo := demo
		g.Go(func() error {
			return seedCustomer(gctx, demo, user.ID, customersService, invoicesService, paymentsService)
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("seed demo data: %v", err)
	}

	for _, c := range []struct {
		kind  string
		store interface {
			Count(context.Context, store.Where) (int, error)
		}
	}{
		{"customers", customersStore},
		{"invoices", invoicesStore},
		{"payments", paymentsStore},
	} {
		n, err := c.store.Count(ctx, nil)
		if err != nil {
			log.Fatalf("count %s: %v", c.kind, err)
		}
		fmt.Printf("  %s: %d\n", c.kind, n)
	}
	fmt.Println("✓ Seed complete")
}

func seedDemoUser(ctx context.Context, usersStore *store.Store[*users.User], cost int) (*users.User, error) {
	existing, err := usersStore.FindOneBy(ctx, store.Where{"email": "demo@invoiceflow.com"})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("demo123"), cost)
	if err != nil {
		return nil, err
	}
	return usersStore.Create(ctx, users.New(users.Input{
		ID:        "demo-user",
		Email:     "demo@invoiceflow.com",
		Password:  string(hash),
		FirstName: "Demo",
		LastName:  "User",
		Company:   "InvoiceFlow Demo",
		Role:      users.RoleAdmin,
	}))
}

func seedCustomer(ctx context.Context, demo demoCustomer, userID string,
	customersService *customers.Service, invoicesService *invoices.Service, paymentsService *payments.Service) error {

	customer, err := customersService.Create(ctx, userID, customers.Input{
		Name:    demo.name,
		Email:   demo.email,
		Phone:   demo.phone,
		Company: demo.company,
		Website: demo.website,
		Address: demo.address,
		Tags:    []string{"demo"},
	})
	if err != nil {
		return fmt.Errorf("customer %s: %w", demo.company, err)
	}

	for i := 0; i < 2+rand.Intn(2); i++ {
		items := make([]invoices.ItemInput, 0, 2)
		for j := 0; j < 1+rand.Intn(2); j++ {
			service := demoServices[rand.Intn(len(demoServices))]
			items = append(items, invoices.ItemInput{
				Description: service.description,
				Quantity:    float64(1 + rand.Intn(20)),
				Rate:        service.rate,
				TaxRate:     8.5,
			})
		}
		status := invoices.StatusDraft
		if rand.Intn(3) > 0 {
			status = invoices.StatusSent
		}
		invoice, err := invoicesService.Create(ctx, userID, invoices.Input{
			CustomerID: customer.ID,
			Status:     status,
			Items:      items,
			Notes:      "Thank you for your business!",
			Terms:      "Net 30",
		})
		if err != nil {
			return fmt.Errorf("invoice for %s: %w", demo.company, err)
		}

		if status == invoices.StatusSent && rand.Intn(2) == 0 {
			amount := invoice.Total
			if rand.Intn(2) == 0 {
				amount = shared.RoundCents(invoice.Total / 2)
			}
			if _, err := paymentsService.Create(ctx, userID, payments.Input{
				InvoiceID: invoice.ID,
				Amount:    amount,
				Method:    payments.MethodBankTransfer,
				Status:    payments.StatusCompleted,
				Reference: fmt.Sprintf("SEED-%s", invoice.InvoiceNumber),
			}); err != nil {
				return fmt.Errorf("payment for %s: %w", invoice.InvoiceNumber, err)
			}
		}
	}
	return nil
}
