// Package sales runs checkout sessions: it collects line items against live
// stock, persists the sale atomically and settles stock afterwards.
package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cupoftea4/retail-pos/models"
	"github.com/cupoftea4/retail-pos/store"
)

// SettlementMode selects when sold quantities leave the stock.
type SettlementMode string

const (
	// SettleReserve holds requested quantities inside the session and
	// decrements stock once, after the sale is committed.
	SettleReserve SettlementMode = "reserve"
	// SettleProvisional decrements stock as each item is accepted and skips
	// settlement. A failed sale leaves those decrements in place.
	SettleProvisional SettlementMode = "provisional"
)

func ParseSettlementMode(s string) (SettlementMode, error) {
	switch m := SettlementMode(s); m {
	case SettleReserve, SettleProvisional:
		return m, nil
	}
	return "", models.Invalidf("unknown settlement mode %q", s)
}

// Catalog is the slice of the catalog service a checkout needs.
type Catalog interface {
	GetProduct(ctx context.Context, productID int64) (*models.Product, error)
	AdjustStock(ctx context.Context, productID int64, delta int) (int, error)
}

type Engine struct {
	store   *store.Store
	catalog Catalog
	logger  *zap.Logger
	mode    SettlementMode
	now     func() time.Time
}

type Option func(*Engine)

func WithSettlementMode(m SettlementMode) Option {
	return func(e *Engine) { e.mode = m }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(s *store.Store, catalog Catalog, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:   s,
		catalog: catalog,
		logger:  logger.Named("sales"),
		mode:    SettleReserve,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Mode() SettlementMode { return e.mode }

// Begin opens a checkout session for customer.
func (e *Engine) Begin(customer models.Customer) *Checkout {
	id := uuid.New()
	c := &Checkout{
		ID:       id,
		Customer: customer,
		engine:   e,
		state:    StateCollecting,
		reserved: make(map[int64]int),
		logger: e.logger.With(
			zap.String("checkout_id", id.String()),
			zap.Int64("customer_id", customer.ID)),
	}
	c.logger.Info("checkout started", zap.String("mode", string(e.mode)))
	return c
}

// persist writes the sale and its lines as one unit of work.
func (e *Engine) persist(ctx context.Context, customerID int64, lines []models.SaleLine) (*models.Sale, error) {
	soldAt := e.now().UTC().Truncate(time.Second)

	var sale *models.Sale
	err := e.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		sale, err = tx.InsertSale(ctx, customerID, soldAt, lines)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("recording sale: %w", err)
	}
	return sale, nil
}
