package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cupoftea4/retail-pos/models"
)

// ErrCheckoutClosed is returned when a finished or cancelled session is used.
var ErrCheckoutClosed = errors.New("checkout is closed")

type State int

const (
	StateCollecting State = iota
	StateFinalizing
	StateSettling
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateCollecting:
		return "collecting"
	case StateFinalizing:
		return "finalizing"
	case StateSettling:
		return "settling"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Item is one accepted entry, with name and price frozen at acceptance.
type Item struct {
	ProductID int64
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Offer is a product as seen by the session: Available already excludes
// what this session holds.
type Offer struct {
	Product   models.Product
	Available int
}

// Checkout is one customer's session. It is not safe for concurrent use.
type Checkout struct {
	ID       uuid.UUID
	Customer models.Customer

	engine   *Engine
	state    State
	items    []Item
	reserved map[int64]int
	logger   *zap.Logger
}

func (c *Checkout) State() State { return c.state }

func (c *Checkout) Items() []Item {
	return append([]Item(nil), c.items...)
}

// Lookup fetches a product and how much of it this session can still take.
// An out-of-stock product yields an *models.InsufficientStockError.
func (c *Checkout) Lookup(ctx context.Context, productID int64) (*Offer, error) {
	if c.state != StateCollecting {
		return nil, ErrCheckoutClosed
	}
	p, err := c.engine.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	offer := &Offer{Product: *p, Available: p.Quantity}
	if c.engine.mode == SettleReserve {
		offer.Available -= c.reserved[productID]
	}
	if offer.Available <= 0 {
		return offer, &models.InsufficientStockError{ProductID: productID, Available: 0}
	}
	return offer, nil
}

// Add accepts quantity units of a product. Rejections leave the session
// collecting and the stock untouched.
func (c *Checkout) Add(ctx context.Context, productID int64, quantity int) (Item, error) {
	if quantity <= 0 {
		return Item{}, models.Invalidf("quantity must be positive, got %d", quantity)
	}
	offer, err := c.Lookup(ctx, productID)
	if err != nil {
		c.logger.Info("item rejected", zap.Int64("product_id", productID), zap.Error(err))
		return Item{}, err
	}
	if quantity > offer.Available {
		err := &models.InsufficientStockError{ProductID: productID, Requested: quantity, Available: offer.Available}
		c.logger.Info("item rejected", zap.Int64("product_id", productID), zap.Error(err))
		return Item{}, err
	}

	switch c.engine.mode {
	case SettleProvisional:
		if _, err := c.engine.catalog.AdjustStock(ctx, productID, -quantity); err != nil {
			return Item{}, fmt.Errorf("reserving stock: %w", err)
		}
	default:
		c.reserved[productID] += quantity
	}

	item := Item{
		ProductID: productID,
		Name:      offer.Product.Name,
		Quantity:  quantity,
		UnitPrice: offer.Product.Price,
	}
	c.items = append(c.items, item)
	c.logger.Info("item accepted",
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity),
		zap.String("unit_price", item.UnitPrice.StringFixed(2)))
	return item, nil
}

// Finish closes the session. With no accepted items it returns ErrNoSale and
// writes nothing. Otherwise the grouped lines are persisted atomically, stock
// is settled and the receipt returned.
func (c *Checkout) Finish(ctx context.Context) (*Receipt, error) {
	if c.state != StateCollecting {
		return nil, ErrCheckoutClosed
	}
	if len(c.items) == 0 {
		c.state = StateCancelled
		c.logger.Info("checkout ended without items")
		return nil, models.ErrNoSale
	}

	c.state = StateFinalizing
	lines := GroupItems(c.items)
	sale, err := c.engine.persist(ctx, c.Customer.ID, lines)
	if err != nil {
		c.state = StateCancelled
		c.reserved = make(map[int64]int)
		c.logger.Error("sale aborted", zap.Error(err))
		if c.engine.mode == SettleProvisional {
			c.logger.Warn("provisional stock decrements remain applied after failed sale",
				zap.String("condition", "partial_consistency"),
				zap.Int("items", len(c.items)))
		}
		return nil, err
	}
	sale.Customer = c.Customer.Name

	receipt := &Receipt{Sale: *sale}
	if c.engine.mode == SettleReserve {
		c.state = StateSettling
		receipt.SettlementErrors = c.settle(ctx, sale.Lines)
	}
	c.state = StateCompleted
	c.logger.Info("sale completed",
		zap.Int64("sale_id", sale.ID),
		zap.Int("lines", len(sale.Lines)),
		zap.String("total", sale.Total().StringFixed(2)))
	return receipt, nil
}

// settle decrements stock for each committed line. Failures are reported but
// the sale stays committed.
func (c *Checkout) settle(ctx context.Context, lines []models.SaleLine) []error {
	var errs []error
	for _, l := range lines {
		if _, err := c.engine.catalog.AdjustStock(ctx, l.ProductID, -l.Quantity); err != nil {
			c.logger.Warn("stock settlement failed after sale commit",
				zap.String("condition", "partial_consistency"),
				zap.Int64("product_id", l.ProductID),
				zap.Int("quantity", l.Quantity),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("settling product %d: %w", l.ProductID, err))
		}
	}
	c.reserved = make(map[int64]int)
	return errs
}

// Cancel abandons the session. Provisional decrements are given back.
func (c *Checkout) Cancel(ctx context.Context) error {
	if c.state != StateCollecting {
		return ErrCheckoutClosed
	}
	c.state = StateCancelled
	c.reserved = make(map[int64]int)

	var errs []error
	if c.engine.mode == SettleProvisional {
		for _, item := range c.items {
			if _, err := c.engine.catalog.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
				errs = append(errs, fmt.Errorf("restoring product %d: %w", item.ProductID, err))
			}
		}
	}
	c.logger.Info("checkout cancelled", zap.Int("items", len(c.items)))
	return errors.Join(errs...)
}

// GroupItems merges items sharing product and unit price, keeping the order
// in which each group first appeared.
func GroupItems(items []Item) []models.SaleLine {
	type key struct {
		product int64
		cents   int64
	}
	index := make(map[key]int)
	var lines []models.SaleLine
	for _, it := range items {
		k := key{it.ProductID, models.ToCents(it.UnitPrice)}
		if i, ok := index[k]; ok {
			lines[i].Quantity += it.Quantity
			continue
		}
		index[k] = len(lines)
		lines = append(lines, models.SaleLine{
			ProductID:   it.ProductID,
			ProductName: it.Name,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return lines
}
