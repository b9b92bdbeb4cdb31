package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"storefront/internal/domain"
	productsvc "storefront/internal/service/product"
)

type ProductWriter interface {
	List(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, in productsvc.Input) (*domain.Product, error)
	Update(ctx context.Context, id int64, in productsvc.Input) (*domain.Product, error)
}

type CategoryEnsurer interface {
	Ensure(ctx context.Context, name string) (*domain.Category, error)
}

// CSVImporter reads catalog CSV files (name, description, price, stock,
// image, category) and creates or updates products matched by name.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryEnsurer
	logger     zerolog.Logger
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryEnsurer, logger zerolog.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:     csvr,
		products:   products,
		categories: categories,
		logger:     logger,
	}
}

type csvRow struct {
	Line        int
	Name        string
	Description string
	Price       string
	Stock       string
	Image       string
	Category    string
}

// Run imports every row and returns the number of products written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{"name", "price", "category"} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("missing %q column", required)
		}
	}

	existing, err := i.products.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}
	byName := make(map[string]int64, len(existing))
	for _, p := range existing {
		byName[strings.ToLower(p.Name)] = p.ID
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index, line)
		if row == nil {
			continue
		}
		id, err := i.save(ctx, row, byName)
		if err != nil {
			return imported, err
		}
		byName[strings.ToLower(row.Name)] = id
		imported++
	}

	i.logger.Info().Int("products", imported).Msg("catalog import finished")
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow, byName map[string]int64) (int64, error) {
	if row.Name == "" || row.Price == "" || row.Category == "" {
		return 0, fmt.Errorf("line %d: name, price and category are required", row.Line)
	}
	price, err := strconv.ParseFloat(row.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid price %q", row.Line, row.Price)
	}
	stock := 0
	if row.Stock != "" {
		if stock, err = strconv.Atoi(row.Stock); err != nil {
			return 0, fmt.Errorf("line %d: invalid stock %q", row.Line, row.Stock)
		}
	}

	cat, err := i.categories.Ensure(ctx, row.Category)
	if err != nil {
		return 0, fmt.Errorf("line %d: category %q: %w", row.Line, row.Category, err)
	}

	in := productsvc.Input{
		Name:        row.Name,
		Description: row.Description,
		Price:       &price,
		Stock:       stock,
		Image:       row.Image,
		CategoryID:  &cat.ID,
	}

	var p *domain.Product
	if id, ok := byName[strings.ToLower(row.Name)]; ok {
		p, err = i.products.Update(ctx, id, in)
	} else {
		p, err = i.products.Create(ctx, in)
	}
	if err != nil {
		return 0, fmt.Errorf("line %d: save product %q: %w", row.Line, row.Name, err)
	}
	return p.ID, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int, line int) *csvRow {
	row := &csvRow{
		Line:        line,
		Name:        pick(record, index, "name"),
		Description: pick(record, index, "description"),
		Price:       pick(record, index, "price"),
		Stock:       pick(record, index, "stock"),
		Image:       pick(record, index, "image"),
		Category:    pick(record, index, "category"),
	}
	if *row == (csvRow{Line: line}) {
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
