package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cupoftea4/retail-pos/models"
)

var (
	supplierSheets = []string{"suppliers", "fornecedores"}
	linkSheets     = []string{"product_suppliers", "produto_fornecedor"}
)

// ReadSuppliersWorkbook reads a supplier sheet (id, name) and a link sheet
// (product_id, supplier_id). Portuguese sheet and column names are accepted.
// Rows with blank or non-numeric ids are skipped.
func ReadSuppliersWorkbook(r io.Reader) ([]models.SupplierRecord, []models.SupplierLink, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, models.Invalidf("opening supplier workbook: %v", err)
	}
	defer f.Close()
	return readWorkbook(f)
}

func ReadSuppliersFile(path string) ([]models.SupplierRecord, []models.SupplierLink, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return readWorkbook(f)
}

func readWorkbook(f *excelize.File) ([]models.SupplierRecord, []models.SupplierLink, error) {
	rows, err := sheetRows(f, supplierSheets)
	if err != nil {
		return nil, nil, err
	}
	cols, err := columns(rows, map[string][]string{
		"id":   {"supplier_id", "id_fornecedor", "id"},
		"name": {"name", "nome"},
	})
	if err != nil {
		return nil, nil, err
	}
	var suppliers []models.SupplierRecord
	for _, row := range rows[1:] {
		id, ok := intCell(row, cols["id"])
		if !ok {
			continue
		}
		suppliers = append(suppliers, models.SupplierRecord{ExternalID: id, Name: strings.TrimSpace(cell(row, cols["name"]))})
	}

	rows, err = sheetRows(f, linkSheets)
	if err != nil {
		return nil, nil, err
	}
	cols, err = columns(rows, map[string][]string{
		"product":  {"product_id", "id_produto"},
		"supplier": {"supplier_id", "id_fornecedor"},
	})
	if err != nil {
		return nil, nil, err
	}
	var links []models.SupplierLink
	for _, row := range rows[1:] {
		pid, ok := intCell(row, cols["product"])
		if !ok {
			continue
		}
		sid, ok := intCell(row, cols["supplier"])
		if !ok {
			continue
		}
		links = append(links, models.SupplierLink{ProductID: pid, ExternalSupplierID: sid})
	}
	return suppliers, links, nil
}

func sheetRows(f *excelize.File, names []string) ([][]string, error) {
	for _, sheet := range f.GetSheetList() {
		for _, name := range names {
			if !strings.EqualFold(sheet, name) {
				continue
			}
			rows, err := f.GetRows(sheet)
			if err != nil {
				return nil, fmt.Errorf("reading sheet %s: %w", sheet, err)
			}
			if len(rows) == 0 {
				return nil, models.Invalidf("sheet %s has no header row", sheet)
			}
			return rows, nil
		}
	}
	return nil, models.Invalidf("workbook has no %s sheet", names[0])
}

// columns resolves each wanted column to its index in the header row. The
// first alias present wins.
func columns(rows [][]string, want map[string][]string) (map[string]int, error) {
	header := map[string]int{}
	for i, h := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(h))] = i
	}
	idx := map[string]int{}
	for key, aliases := range want {
		for _, alias := range aliases {
			if i, ok := header[alias]; ok {
				idx[key] = i
				break
			}
		}
		if _, ok := idx[key]; !ok {
			return nil, models.Invalidf("header has no %s column", aliases[0])
		}
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// intCell accepts whole numbers written as floats, which spreadsheets
// often produce.
func intCell(row []string, i int) (int64, bool) {
	s := strings.TrimSpace(cell(row, i))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil || fl != float64(int64(fl)) {
		return 0, false
	}
	return int64(fl), true
}
