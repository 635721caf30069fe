package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"printshop-storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads apparel catalog CSV files and inserts/updates products.
//
// Expected columns: id, key, name, description, sku, price, currency, sizes,
// colors, image. price is a decimal amount ("19.99"); sizes and colors are
// "|" separated. A row without key continues the previous product and may add
// images, sizes or colors.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
	logger      zerolog.Logger
}

func NewCSVImporter(r io.Reader, repo ProductWriter, logger zerolog.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
		logger:      logger,
	}
}

type csvRow struct {
	ID        string
	Key       string
	Name      string
	Desc      string
	SKU       string
	Price     string
	Currency  string
	Sizes     []string
	Colors    []string
	ImageURLs []string
}

func (r *csvRow) merge(cont *csvRow) {
	r.ImageURLs = appendUnique(r.ImageURLs, cont.ImageURLs...)
	r.Sizes = appendUnique(r.Sizes, cont.Sizes...)
	r.Colors = appendUnique(r.Colors, cont.Colors...)
}

// Run parses CSV rows and upserts products grouped by product key.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *csvRow
		imported int
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}

		if row.Key != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		if current == nil {
			i.logger.Warn().Strs("record", record).Msg("continuation row before any product, skipped")
			continue
		}
		current.merge(row)
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.Key == "" || row.Name == "" || row.SKU == "" || row.Price == "" || row.Currency == "" {
		return fmt.Errorf("invalid product row (missing required fields) for key %q", row.Key)
	}
	if row.ID != "" {
		if _, err := uuid.Parse(row.ID); err != nil {
			return fmt.Errorf("invalid id for key %q: %s", row.Key, row.ID)
		}
	}
	cents, err := priceCents(row.Price)
	if err != nil {
		return fmt.Errorf("invalid price for key %q: %w", row.Key, err)
	}

	attrs := map[string]interface{}{}
	if len(row.ImageURLs) > 0 {
		attrs["images"] = row.ImageURLs
	}
	if len(row.Sizes) > 0 {
		attrs["sizes"] = row.Sizes
	}
	if len(row.Colors) > 0 {
		attrs["colors"] = row.Colors
	}

	p := domain.Product{
		ID:          row.ID,
		Key:         row.Key,
		SKU:         row.SKU,
		Name:        row.Name,
		Description: row.Desc,
		PriceCents:  cents,
		Currency:    strings.ToUpper(row.Currency),
		Attributes:  attrs,
	}

	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Key, err)
	}
	i.logger.Debug().Str("key", row.Key).Int64("price_cents", cents).Msg("product imported")
	return nil
}

// priceCents converts a decimal amount to cents. Sub-cent precision is
// rejected rather than rounded.
func priceCents(raw string) (int64, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, err
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("price must be positive, got %s", raw)
	}
	cents := d.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("price %s has more than two decimals", raw)
	}
	return cents.IntPart(), nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	row := &csvRow{
		ID:       pick(record, index, "id"),
		Key:      pick(record, index, "key"),
		Name:     pick(record, index, "name"),
		Desc:     pick(record, index, "description"),
		SKU:      pick(record, index, "sku"),
		Price:    pick(record, index, "price"),
		Currency: pick(record, index, "currency"),
		Sizes:    splitList(pick(record, index, "sizes")),
		Colors:   splitList(pick(record, index, "colors")),
	}
	if img := pick(record, index, "image"); img != "" {
		row.ImageURLs = []string{img}
	}
	if row.Key == "" && len(row.ImageURLs) == 0 && len(row.Sizes) == 0 && len(row.Colors) == 0 {
		return nil
	}
	return row
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, "|") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		seen := false
		for _, d := range dst {
			if d == v {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, v)
		}
	}
	return dst
}
