package customers_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cupoftea4/retail-pos/customers"
	"github.com/cupoftea4/retail-pos/models"
	"github.com/cupoftea4/retail-pos/store"
	"github.com/cupoftea4/retail-pos/store/storetest"
)

func newService(t *testing.T) (*customers.Service, *store.Store) {
	s := storetest.New(t)
	return customers.NewService(s, zaptest.NewLogger(t)), s
}

func TestCreateGeneratesNameWhenBlank(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Customer 1", first.Name)

	_, err = svc.Create(ctx, "Dora")
	require.NoError(t, err)

	third, err := svc.Create(ctx, "   ")
	require.NoError(t, err)
	assert.Equal(t, "Customer 3", third.Name)
}

func TestCreateDuplicateNameAddsNoRow(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Eva")
	require.NoError(t, err)

	c, err := svc.Create(ctx, "Eva")
	assert.ErrorIs(t, err, models.ErrDuplicateName)
	assert.Nil(t, c)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdate(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	eva, err := svc.Create(ctx, "Eva")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Fabio")
	require.NoError(t, err)

	_, err = svc.Update(ctx, eva.ID, "Fabio")
	assert.ErrorIs(t, err, models.ErrDuplicateName)

	_, err = svc.Update(ctx, eva.ID, " ")
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Update(ctx, 99, "Gil")
	assert.ErrorIs(t, err, models.ErrNotFound)

	updated, err := svc.Update(ctx, eva.ID, "Evelyn")
	require.NoError(t, err)
	got, err := svc.Get(ctx, eva.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestDeleteCascadesToSales(t *testing.T) {
	svc, s := newService(t)
	ctx := context.Background()

	c, err := svc.Create(ctx, "Hugo")
	require.NoError(t, err)
	require.NoError(t, s.WithTx(ctx, func(tx *store.Tx) error {
		pid, err := tx.InsertProduct(ctx, models.Product{Name: "Tea", Quantity: 5, Price: decimal.NewFromInt(3)})
		if err != nil {
			return err
		}
		for range 2 {
			if _, err := tx.InsertSale(ctx, c.ID, time.Now(), []models.SaleLine{
				{ProductID: pid, Quantity: 1, UnitPrice: decimal.NewFromInt(3)},
			}); err != nil {
				return err
			}
		}
		return nil
	}))

	has, err := svc.HasSales(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, has)

	removed, err := svc.Delete(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	require.NoError(t, s.WithTx(ctx, func(tx *store.Tx) error {
		sales, err := tx.CountSales(ctx)
		assert.Zero(t, sales)
		if err != nil {
			return err
		}
		lines, err := tx.CountSaleLines(ctx)
		assert.Zero(t, lines)
		return err
	}))

	_, err = svc.Delete(ctx, c.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLoadInitialOnlyWhenEmpty(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	records := []models.CustomerRecord{{ID: 7, Name: "Ivo"}, {Name: "Julia"}, {Name: " "}}
	n, err := svc.LoadInitial(ctx, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ivo, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Ivo", ivo.Name)

	n, err = svc.LoadInitial(ctx, records)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
