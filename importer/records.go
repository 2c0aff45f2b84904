// Package importer reads the bulk sources used to seed the store: a JSON
// customer list, a product CSV, a supplier workbook and the public catalog
// page that the product CSV is scraped from.
package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cupoftea4/retail-pos/models"
)

type customerJSON struct {
	ID        int64  `json:"id"`
	IDCliente int64  `json:"id_cliente"`
	Name      string `json:"name"`
	Nome      string `json:"nome"`
}

// ReadCustomersJSON decodes an array of customers. Both English and
// Portuguese keys are accepted.
func ReadCustomersJSON(r io.Reader) ([]models.CustomerRecord, error) {
	var rows []customerJSON
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, models.Invalidf("decoding customers: %v", err)
	}
	records := make([]models.CustomerRecord, 0, len(rows))
	for _, row := range rows {
		rec := models.CustomerRecord{ID: row.ID, Name: row.Name}
		if rec.ID == 0 {
			rec.ID = row.IDCliente
		}
		if rec.Name == "" {
			rec.Name = row.Nome
		}
		records = append(records, rec)
	}
	return records, nil
}

func ReadCustomersFile(path string) ([]models.CustomerRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCustomersJSON(f)
}

var productHeader = []string{"name", "quantity", "price"}

var productColumns = map[string]string{
	"name": "name", "nome": "name",
	"quantity": "quantity", "quantidade": "quantity",
	"price": "price", "preco": "price", "preço": "price",
}

// ReadProductsCSV parses a header row followed by name, quantity and price
// columns in any order. Prices may use a decimal comma.
func ReadProductsCSV(r io.Reader) ([]models.ProductRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, models.Invalidf("product CSV is empty")
		}
		return nil, models.Invalidf("reading product CSV header: %v", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		if col, ok := productColumns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))]; ok {
			idx[col] = i
		}
	}
	for _, col := range productHeader {
		if _, ok := idx[col]; !ok {
			return nil, models.Invalidf("product CSV has no %s column", col)
		}
	}

	var records []models.ProductRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, models.Invalidf("product CSV line %d: %v", line, err)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(row[idx["quantity"]]))
		if err != nil {
			return nil, models.Invalidf("product CSV line %d: quantity %q", line, row[idx["quantity"]])
		}
		price, err := parsePrice(row[idx["price"]])
		if err != nil {
			return nil, models.Invalidf("product CSV line %d: price %q", line, row[idx["price"]])
		}
		records = append(records, models.ProductRecord{
			Name:     strings.TrimSpace(row[idx["name"]]),
			Quantity: qty,
			Price:    price,
		})
	}
	return records, nil
}

func ReadProductsFile(path string) ([]models.ProductRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadProductsCSV(f)
}

// WriteProductsCSV writes records with a name,quantity,price header and
// two-decimal prices.
func WriteProductsCSV(w io.Writer, records []models.ProductRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(productHeader); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Name, strconv.Itoa(r.Quantity), r.Price.StringFixed(2)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteProductsFile replaces path atomically.
func WriteProductsFile(path string, records []models.ProductRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".products-*.csv")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := WriteProductsCSV(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(strings.TrimSpace(s))
}
