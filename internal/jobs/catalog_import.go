package jobs

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

var importColumns = []string{"name", "sku", "price", "stock"}

type productCreator interface {
	Create(ctx context.Context, storeID uuid.UUID, input products.CreateInput) (*products.ProductDTO, error)
}

// CatalogImportHandler creates products from an uploaded CSV. Rows that fail
// validation are skipped and reported; any other failure fails the job.
type CatalogImportHandler struct {
	products productCreator
	logg     *logger.Logger
}

func NewCatalogImportHandler(svc productCreator, logg *logger.Logger) (*CatalogImportHandler, error) {
	if svc == nil {
		return nil, fmt.Errorf("product service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &CatalogImportHandler{products: svc, logg: logg}, nil
}

func (h *CatalogImportHandler) Type() string {
	return TypeCatalogImport
}

func (h *CatalogImportHandler) Handle(ctx context.Context, env Envelope) error {
	var payload CatalogImport
	if err := env.Decode(&payload); err != nil {
		return err
	}
	rows, err := ParseCatalogCSV(strings.NewReader(payload.CSV))
	if err != nil {
		return err
	}

	var skipped error
	created := 0
	for _, row := range rows {
		if row.Err != nil {
			skipped = multierr.Append(skipped, row.Err)
			continue
		}
		if _, err := h.products.Create(ctx, payload.StoreID, row.Input); err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeValidation) || pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
				skipped = multierr.Append(skipped, fmt.Errorf("line %d: %w", row.Line, err))
				continue
			}
			return fmt.Errorf("line %d: %w", row.Line, err)
		}
		created++
	}

	logCtx := h.logg.WithFields(ctx, map[string]any{
		"store_id": payload.StoreID.String(),
		"created":  created,
		"skipped":  len(multierr.Errors(skipped)),
	})
	if skipped != nil {
		h.logg.Warn(h.logg.WithField(logCtx, "row_errors", skipped.Error()), "jobs.catalog_import.partial")
		return nil
	}
	h.logg.Info(logCtx, "jobs.catalog_import.complete")
	return nil
}

// CatalogRow is one parsed data line. Err is set when the line is unusable.
type CatalogRow struct {
	Line  int
	Input products.CreateInput
	Err   error
}

// ParseCatalogCSV reads a header row followed by product rows. Column order is
// taken from the header.
func ParseCatalogCSV(r io.Reader) ([]CatalogRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("catalog csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range importColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("catalog csv missing %q column", col)
		}
	}

	var rows []CatalogRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read catalog line %d: %w", line, err)
		}
		rows = append(rows, parseCatalogRecord(line, record, index))
	}
	return rows, nil
}

func parseCatalogRecord(line int, record []string, index map[string]int) CatalogRow {
	field := func(col string) string {
		i := index[col]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	row := CatalogRow{Line: line}
	price, err := decimal.NewFromString(field("price"))
	if err != nil {
		row.Err = fmt.Errorf("line %d: invalid price %q", line, field("price"))
		return row
	}
	stock := 0
	if raw := field("stock"); raw != "" {
		if stock, err = strconv.Atoi(raw); err != nil {
			row.Err = fmt.Errorf("line %d: invalid stock %q", line, raw)
			return row
		}
	}
	row.Input = products.CreateInput{
		Name:  field("name"),
		SKU:   field("sku"),
		Price: price,
		Stock: stock,
	}
	return row
}
