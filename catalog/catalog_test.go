package catalog_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cupoftea4/retail-pos/catalog"
	"github.com/cupoftea4/retail-pos/models"
	"github.com/cupoftea4/retail-pos/store"
	"github.com/cupoftea4/retail-pos/store/storetest"
)

func newService(t *testing.T) (*catalog.Service, *store.Store, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	s := storetest.New(t)
	return catalog.NewService(s, zap.New(core)), s, logs
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateProductDropsUnknownSuppliers(t *testing.T) {
	svc, _, logs := newService(t)
	ctx := context.Background()

	acme, err := svc.CreateSupplier(ctx, "Acme")
	require.NoError(t, err)

	p, err := svc.CreateProduct(ctx, models.ProductCreate{
		Name:        "  Coffee ",
		Quantity:    4,
		Price:       price("12.90"),
		SupplierIDs: []int64{acme.ID, 77, acme.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, "Coffee", p.Name)
	assert.Equal(t, []models.Supplier{*acme}, p.Suppliers)
	assert.Equal(t, 1, logs.FilterMessage("ignoring unknown supplier ids").Len())
}

func TestCreateProductValidation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   models.ProductCreate
	}{
		{"blank name", models.ProductCreate{Name: " ", Price: price("1")}},
		{"negative quantity", models.ProductCreate{Name: "Tea", Quantity: -1, Price: price("1")}},
		{"negative price", models.ProductCreate{Name: "Tea", Price: price("-0.01")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tt.in)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestUpdateProductPartial(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	a, err := svc.CreateSupplier(ctx, "A")
	require.NoError(t, err)
	b, err := svc.CreateSupplier(ctx, "B")
	require.NoError(t, err)
	p, err := svc.CreateProduct(ctx, models.ProductCreate{Name: "Milk", Quantity: 5, Price: price("4.20"), SupplierIDs: []int64{a.ID}})
	require.NoError(t, err)

	qty := -3
	updated, err := svc.UpdateProduct(ctx, p.ID, models.ProductUpdate{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, "Milk", updated.Name)
	assert.Equal(t, 0, updated.Quantity)
	assert.True(t, updated.Price.Equal(price("4.20")))
	assert.Equal(t, []models.Supplier{*a}, updated.Suppliers)

	ids := []int64{b.ID}
	updated, err = svc.UpdateProduct(ctx, p.ID, models.ProductUpdate{SupplierIDs: &ids})
	require.NoError(t, err)
	assert.Equal(t, []models.Supplier{*b}, updated.Suppliers)

	none := []int64{}
	updated, err = svc.UpdateProduct(ctx, p.ID, models.ProductUpdate{SupplierIDs: &none})
	require.NoError(t, err)
	assert.Empty(t, updated.Suppliers)

	_, err = svc.UpdateProduct(ctx, 999, models.ProductUpdate{Quantity: &qty})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAdjustStockClampsAtZero(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, models.ProductCreate{Name: "Salt", Quantity: 3, Price: price("1")})
	require.NoError(t, err)

	for _, step := range []struct{ delta, want int }{
		{-2, 1}, {-5, 0}, {-1, 0}, {4, 4}, {-4, 0},
	} {
		got, err := svc.AdjustStock(ctx, p.ID, step.delta)
		require.NoError(t, err)
		assert.Equal(t, step.want, got)
		assert.GreaterOrEqual(t, got, 0)
	}

	_, err = svc.AdjustStock(ctx, 404, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAdjustStockConcurrentUpdates(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, models.ProductCreate{Name: "Flour", Quantity: 50, Price: price("3")})
	require.NoError(t, err)

	deltas := []int{10, -10, -5, 3, -8, 7, -2, 1}
	var wg sync.WaitGroup
	for _, delta := range deltas {
		wg.Add(1)
		go func(delta int) {
			defer wg.Done()
			_, err := svc.AdjustStock(ctx, p.ID, delta)
			assert.NoError(t, err)
		}(delta)
	}
	wg.Wait()

	got, err := svc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 46, got.Quantity)
}

func TestDeleteProductRefusedWhenSold(t *testing.T) {
	svc, s, _ := newService(t)
	ctx := context.Background()

	sold, err := svc.CreateProduct(ctx, models.ProductCreate{Name: "Bread", Quantity: 3, Price: price("2")})
	require.NoError(t, err)
	unsold, err := svc.CreateProduct(ctx, models.ProductCreate{Name: "Jam", Quantity: 3, Price: price("2")})
	require.NoError(t, err)

	require.NoError(t, s.WithTx(ctx, func(tx *store.Tx) error {
		cid, err := tx.InsertCustomer(ctx, models.Customer{Name: "Bia"})
		if err != nil {
			return err
		}
		_, err = tx.InsertSale(ctx, cid, time.Now(), []models.SaleLine{{ProductID: sold.ID, Quantity: 1, UnitPrice: price("2")}})
		return err
	}))

	assert.ErrorIs(t, svc.DeleteProduct(ctx, sold.ID), models.ErrIntegrity)
	_, err = svc.GetProduct(ctx, sold.ID)
	assert.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, unsold.ID))
	_, err = svc.GetProduct(ctx, unsold.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteProduct(ctx, unsold.ID), models.ErrNotFound)
}

func TestCreateSupplierDuplicateName(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateSupplier(ctx, "Acme")
	require.NoError(t, err)
	_, err = svc.CreateSupplier(ctx, "Acme")
	assert.ErrorIs(t, err, models.ErrDuplicateName)

	suppliers, err := svc.ListSuppliers(ctx)
	require.NoError(t, err)
	assert.Len(t, suppliers, 1)
}
