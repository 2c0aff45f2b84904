package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupoftea4/retail-pos/models"
	"github.com/cupoftea4/retail-pos/store"
	"github.com/cupoftea4/retail-pos/store/storetest"
)

func TestMigrateIsIdempotent(t *testing.T) {
	s := storetest.New(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx *store.Tx) error {
		if _, err := tx.InsertCustomer(ctx, models.Customer{Name: "Ana"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, s.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		count, err = tx.CountCustomers(ctx)
		return err
	}))
	assert.Zero(t, count)
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = s.WithTx(ctx, func(tx *store.Tx) error {
			if _, err := tx.InsertCustomer(ctx, models.Customer{Name: "Ana"}); err != nil {
				return err
			}
			panic("unexpected")
		})
	})

	require.NoError(t, s.WithTx(ctx, func(tx *store.Tx) error {
		n, err := tx.CountCustomers(ctx)
		assert.Zero(t, n)
		return err
	}))
}

func TestDuplicateNameIsClassified(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *store.Tx) error {
		if _, err := tx.InsertSupplier(ctx, "Acme"); err != nil {
			return err
		}
		_, err := tx.InsertSupplier(ctx, "Acme")
		return err
	})
	assert.ErrorIs(t, err, models.ErrDuplicateName)
}

func TestForeignKeyViolationIsClassified(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *store.Tx) error {
		_, err := tx.InsertSale(ctx, 999, time.Now(), []models.SaleLine{
			{ProductID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(1)},
		})
		return err
	})
	assert.ErrorIs(t, err, models.ErrIntegrity)
}

func TestInsertSaleRequiresLines(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *store.Tx) error {
		_, err := tx.InsertSale(ctx, 1, time.Now(), nil)
		return err
	})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSaleRoundTripKeepsSnapshotPrice(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	soldAt := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	var saleID int64
	require.NoError(t, s.WithTx(ctx, func(tx *store.Tx) error {
		cid, err := tx.InsertCustomer(ctx, models.Customer{Name: "Ana"})
		if err != nil {
			return err
		}
		pid, err := tx.InsertProduct(ctx, models.Product{Name: "Rice", Quantity: 3, Price: decimal.RequireFromString("10.50")})
		if err != nil {
			return err
		}
		sale, err := tx.InsertSale(ctx, cid, soldAt, []models.SaleLine{
			{ProductID: pid, Quantity: 2, UnitPrice: decimal.RequireFromString("10.50")},
		})
		if err != nil {
			return err
		}
		saleID = sale.ID
		return tx.UpdateProduct(ctx, models.Product{ID: pid, Name: "Rice", Quantity: 3, Price: decimal.RequireFromString("99")})
	}))

	var sale *models.Sale
	require.NoError(t, s.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		sale, err = tx.GetSale(ctx, saleID)
		return err
	}))
	require.Len(t, sale.Lines, 1)
	assert.Equal(t, "Ana", sale.Customer)
	assert.Equal(t, "Rice", sale.Lines[0].ProductName)
	assert.True(t, sale.Lines[0].UnitPrice.Equal(decimal.RequireFromString("10.50")))
	assert.True(t, sale.Total().Equal(decimal.RequireFromString("21")))
	assert.True(t, sale.SoldAt.Equal(soldAt))
}

func TestGetMissingRowsReturnNotFound(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	require.NoError(t, s.WithTx(ctx, func(tx *store.Tx) error {
		_, err := tx.GetProduct(ctx, 42)
		assert.ErrorIs(t, err, models.ErrNotFound)
		_, err = tx.GetCustomer(ctx, 42)
		assert.ErrorIs(t, err, models.ErrNotFound)
		_, err = tx.GetSale(ctx, 42)
		assert.ErrorIs(t, err, models.ErrNotFound)
		return nil
	}))
}

func TestSetProductQuantityDetectsStaleRead(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	var pid int64
	require.NoError(t, s.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		pid, err = tx.InsertProduct(ctx, models.Product{Name: "Oil", Quantity: 5, Price: decimal.NewFromInt(7)})
		return err
	}))

	err := s.WithTx(ctx, func(tx *store.Tx) error {
		return tx.SetProductQuantity(ctx, pid, 4, 1)
	})
	assert.ErrorIs(t, err, store.ErrStaleRow)

	require.NoError(t, s.WithTx(ctx, func(tx *store.Tx) error {
		// writing the unchanged value still counts as a match
		return tx.SetProductQuantity(ctx, pid, 5, 5)
	}))
}

func TestWithTxRetriesStaleRowImmediately(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	calls := 0
	start := time.Now()
	err := s.WithTx(ctx, func(tx *store.Tx) error {
		calls++
		if calls == 1 {
			return store.ErrStaleRow
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Less(t, time.Since(start), time.Second)

	calls = 0
	err = s.WithTx(ctx, func(tx *store.Tx) error {
		calls++
		return store.ErrStaleRow
	})
	assert.ErrorIs(t, err, store.ErrStaleRow)
	assert.Equal(t, 3, calls)
}
