package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"freshcart/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CategoryResolver turns a category name into its id, creating the category
// if needed.
type CategoryResolver func(ctx context.Context, name string) (string, error)

// CSVImporter reads a grocery catalog CSV and inserts/updates products.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	resolve    CategoryResolver
	categories map[string]string
}

func NewCSVImporter(r io.Reader, products ProductWriter, resolve CategoryResolver) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:     csvr,
		products:   products,
		resolve:    resolve,
		categories: make(map[string]string),
	}
}

type csvRow struct {
	Name        string
	Description string
	Category    string
	Cents       int64
	Currency    string
	Image       string
	Unit        string
	Stock       int
	Active      bool
}

// Run parses CSV rows and upserts one product per row. Rows without a name
// are skipped.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var imported int
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row, err := parseRow(record, index)
		if err != nil {
			return imported, err
		}
		if row == nil {
			continue
		}
		if err := i.save(ctx, row); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	var categoryID *string
	if row.Category != "" {
		id, err := i.categoryID(ctx, row.Category)
		if err != nil {
			return fmt.Errorf("resolve category %q: %w", row.Category, err)
		}
		categoryID = &id
	}

	p := domain.Product{
		CategoryID:  categoryID,
		Name:        row.Name,
		Description: row.Description,
		PriceCents:  row.Cents,
		Currency:    row.Currency,
		Image:       row.Image,
		Unit:        row.Unit,
		Stock:       row.Stock,
		IsActive:    row.Active,
	}
	if _, err := i.products.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Name, err)
	}
	return nil
}

func (i *CSVImporter) categoryID(ctx context.Context, name string) (string, error) {
	if id, ok := i.categories[name]; ok {
		return id, nil
	}
	id, err := i.resolve(ctx, name)
	if err != nil {
		return "", err
	}
	i.categories[name] = id
	return id, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	name := pick(record, index, "name")
	if name == "" {
		return nil, nil
	}

	centStr := pick(record, index, "price_cents")
	cents, err := strconv.ParseInt(centStr, 10, 64)
	if err != nil || cents <= 0 {
		return nil, fmt.Errorf("invalid price_cents %q for product %q", centStr, name)
	}

	stock := 0
	if s := pick(record, index, "stock"); s != "" {
		stock, err = strconv.Atoi(s)
		if err != nil || stock < 0 {
			return nil, fmt.Errorf("invalid stock %q for product %q", s, name)
		}
	}

	active := true
	if a := pick(record, index, "active"); a != "" {
		active, err = strconv.ParseBool(a)
		if err != nil {
			return nil, fmt.Errorf("invalid active flag %q for product %q", a, name)
		}
	}

	currency := pick(record, index, "currency")
	if currency == "" {
		currency = "usd"
	}

	return &csvRow{
		Name:        name,
		Description: pick(record, index, "description"),
		Category:    pick(record, index, "category"),
		Cents:       cents,
		Currency:    currency,
		Image:       pick(record, index, "image"),
		Unit:        pick(record, index, "unit"),
		Stock:       stock,
		Active:      active,
	}, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
