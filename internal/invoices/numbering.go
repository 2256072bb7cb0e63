package invoices

import (
	"fmt"
	"strconv"
	"strings"
)

// nextNumber computes the next sequential invoice number for a prefix from
// a snapshot of existing invoices: the highest numeric suffix among
// "<prefix>-NNNN" numbers plus one, zero-padded to four digits. When no
// invoice carries the prefix the sequence starts at 1000.
//
// Callers must hold the invoice store's lock between reading the snapshot
// and writing the numbered invoice, otherwise two writers can derive the
// same number from the same snapshot.
func nextNumber(existing []*Invoice, prefix string) string {
	last := -1
	for _, invoice := range existing {
		suffix, ok := strings.CutPrefix(invoice.InvoiceNumber, prefix+"-")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > last {
			last = n
		}
	}
	if last < 0 {
		last = 999
	}
	return fmt.Sprintf("%s-%04d", prefix, last+1)
}
