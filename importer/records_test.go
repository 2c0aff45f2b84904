package importer_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupoftea4/retail-pos/importer"
	"github.com/cupoftea4/retail-pos/models"
)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestReadCustomersJSONAcceptsBothKeySets(t *testing.T) {
	in := `[{"id": 3, "name": "Ana"}, {"id_cliente": 4, "nome": "Bruno"}, {"nome": "Carla"}]`

	records, err := importer.ReadCustomersJSON(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []models.CustomerRecord{
		{ID: 3, Name: "Ana"},
		{ID: 4, Name: "Bruno"},
		{Name: "Carla"},
	}, records)

	_, err = importer.ReadCustomersJSON(strings.NewReader(`{"name": "not a list"}`))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestProductsCSVRoundTrip(t *testing.T) {
	records := []models.ProductRecord{
		{Name: "Arroz 5kg", Quantity: 12, Price: price("24.90")},
		{Name: "Feijão, preto", Quantity: 0, Price: price("8.5")},
	}

	path := filepath.Join(t.TempDir(), "out", "products.csv")
	require.NoError(t, importer.WriteProductsFile(path, records))

	got, err := importer.ReadProductsFile(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for i := range records {
		assert.Equal(t, records[i].Name, got[i].Name)
		assert.Equal(t, records[i].Quantity, got[i].Quantity)
		assert.True(t, records[i].Price.Equal(got[i].Price))
	}
}

func TestReadProductsCSVPortugueseHeaderAndCommaDecimal(t *testing.T) {
	in := "quantidade,nome,preco\n3,Café,\"12,50\"\n"

	got, err := importer.ReadProductsCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Café", got[0].Name)
	assert.Equal(t, 3, got[0].Quantity)
	assert.True(t, price("12.50").Equal(got[0].Price))
}

func TestReadProductsCSVErrors(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"missing column": "name,quantity\nA,1\n",
		"bad quantity":   "name,quantity,price\nA,lots,1.00\n",
		"bad price":      "name,quantity,price\nA,1,cheap\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := importer.ReadProductsCSV(strings.NewReader(in))
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestWriteProductsCSVFormatsPrices(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, importer.WriteProductsCSV(&buf, []models.ProductRecord{{Name: "Sal", Quantity: 1, Price: price("2")}}))
	assert.Equal(t, "name,quantity,price\nSal,1,2.00\n", buf.String())
}
