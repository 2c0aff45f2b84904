package sales

import (
	"github.com/shopspring/decimal"

	"github.com/cupoftea4/retail-pos/models"
)

// Receipt is the outcome of a completed checkout.
type Receipt struct {
	Sale models.Sale
	// SettlementErrors lists stock decrements that failed after the sale
	// was committed.
	SettlementErrors []error
}

func (r *Receipt) Total() decimal.Decimal { return r.Sale.Total() }

func (r *Receipt) Settled() bool { return len(r.SettlementErrors) == 0 }
