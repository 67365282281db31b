package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"saleslens/domain/table"
	"saleslens/internal"
	"saleslens/internal/errors"
)

// FactTable is the name of the fact table of the star schema
const FactTable = "FactOnlineSales"

// StarSchema lists the expected input tables in load order, keyed to their
// CSV file names
var StarSchema = []TableSource{
	{Name: "DimCustomer", File: "DimCustomer.csv"},
	{Name: "DimDate", File: "DimDate.csv"},
	{Name: "DimDeliveryMethod", File: "DimDeliveryMethod.csv"},
	{Name: "DimGeography", File: "DimGeography.csv"},
	{Name: "DimOrderChannel", File: "DimOrderChannel.csv"},
	{Name: "DimPaymentMethod", File: "DimPaymentMethod.csv"},
	{Name: "DimProduct", File: "DimProduct.csv"},
	{Name: "DimSalesTerritory", File: "DimSalesterritory.csv"},
	{Name: FactTable, File: "FactOnlineSales.csv"},
}

// TableSource pairs a store table name with its input file
type TableSource struct {
	Name string
	File string
}

// Fact-table columns that must convert to float64 and int64 respectively.
// Lookups are case-insensitive; a missing column aborts the fact-table load.
var (
	factFloatColumns = []string{
		"CatalogPrice", "DiscountAmount", "DiscountPctg",
		"TransactionPrice", "DeliveryCost", "ProductCost",
	}
	factIntColumns = []string{
		"Quantity", "OrderLineNumber", "CustomerKey", "ProductKey",
		"SalesTerritoryKey", "ChannelKey", "PaymentMethodKey",
		"DeliveryMethodKey", "OrderDateKey", "ShipDateKey",
	}
)

// Options control how the delimited input files are read
type Options struct {
	Separator rune   // column separator
	Decimal   string // decimal mark used inside numeric text ("." or ",")
	Encoding  string // utf-8, latin1, cp1250 or iso-8859-2
	HasHeader bool
}

// DefaultOptions returns the reader settings the source files ship with
func DefaultOptions() Options {
	return Options{Separator: ';', Decimal: ",", Encoding: "utf-8", HasHeader: true}
}

// Loader reads the star-schema CSV files into typed in-memory tables
type Loader struct {
	opts   Options
	logger *internal.Logger
}

// NewLoader creates a loader with the given reader options
func NewLoader(opts Options) *Loader {
	if opts.Separator == 0 {
		opts.Separator = ';'
	}
	if opts.Decimal == "" {
		opts.Decimal = ","
	}
	return &Loader{opts: opts, logger: internal.DefaultLogger}
}

// LoadedTable is one parsed input table ready for the store
type LoadedTable struct {
	Name  string
	Table *table.Table
}

// LoadDir parses every star-schema file present under dir. Files are parsed
// concurrently; the result keeps StarSchema order so the store write pass
// stays single-writer and deterministic. Absent files are skipped.
func (l *Loader) LoadDir(ctx context.Context, dir string) ([]LoadedTable, error) {
	results := make([]*table.Table, len(StarSchema))
	g, ctx := errgroup.WithContext(ctx)

	for i, src := range StarSchema {
		path := filepath.Join(dir, src.File)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			l.logger.Warn("input file %s not found, skipping table %s", path, src.Name)
			continue
		}
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			tbl, err := l.LoadFile(path, src.Name)
			if err != nil {
				return errors.Wrapf(err, "loading table %s", src.Name)
			}
			results[i] = tbl
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var loaded []LoadedTable
	for i, src := range StarSchema {
		if results[i] != nil {
			l.logger.Info("loaded table %s (%d records)", src.Name, results[i].NumRows())
			loaded = append(loaded, LoadedTable{Name: src.Name, Table: results[i]})
		}
	}
	return loaded, nil
}

// LoadFile parses a single delimited file into a table. The fact table gets
// its required numeric conversions applied; dimension tables stay textual.
func (l *Loader) LoadFile(path, tableName string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	reader, err := l.decodedReader(f)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(reader)
	cr.Comma = l.opts.Separator
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if len(records) == 0 {
		return table.New(), nil
	}

	var header []string
	var rows [][]string
	if l.opts.HasHeader {
		header = records[0]
		rows = records[1:]
	} else {
		header = make([]string, len(records[0]))
		for i := range header {
			header[i] = fmt.Sprintf("column_%d", i)
		}
		rows = records
	}

	tbl := table.New()
	for c, name := range header {
		values := make([]table.Value, len(rows))
		for r, row := range rows {
			if c < len(row) {
				values[r] = table.String(strings.TrimSpace(row[c]))
			} else {
				values[r] = table.Null()
			}
		}
		if err := tbl.AddColumn(table.Column{Name: name, Type: table.TypeString, Values: values}); err != nil {
			return nil, errors.Wrapf(err, "building table %s", tableName)
		}
	}

	if tableName == FactTable {
		if err := l.convertFactColumns(tbl); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

// decodedReader wraps the file in a charset decoder when needed
func (l *Loader) decodedReader(r io.Reader) (io.Reader, error) {
	var enc encoding.Encoding
	switch strings.ToLower(l.opts.Encoding) {
	case "", "utf-8", "utf8":
		return r, nil
	case "latin1", "iso-8859-1":
		enc = charmap.ISO8859_1
	case "cp1250", "windows-1250":
		enc = charmap.Windows1250
	case "iso-8859-2":
		enc = charmap.ISO8859_2
	default:
		return nil, errors.InvalidArgument(fmt.Sprintf("unsupported encoding %q", l.opts.Encoding))
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// convertFactColumns applies the required float and int conversions in place
func (l *Loader) convertFactColumns(tbl *table.Table) error {
	for _, name := range factFloatColumns {
		col, ok := tbl.ColumnFold(name)
		if !ok {
			return errors.MissingColumn(FactTable, name)
		}
		if err := l.toFloatColumn(col); err != nil {
			return err
		}
	}
	for _, name := range factIntColumns {
		col, ok := tbl.ColumnFold(name)
		if !ok {
			return errors.MissingColumn(FactTable, name)
		}
		if err := l.toIntColumn(col); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) toFloatColumn(col *table.Column) error {
	for i, v := range col.Values {
		if v.Missing {
			continue
		}
		text := v.Str
		if l.opts.Decimal == "," {
			text = strings.ReplaceAll(text, ",", ".")
		}
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return errors.ParseError(col.Name, err)
		}
		col.Values[i] = table.Float(f)
	}
	col.Type = table.TypeFloat
	return nil
}

func (l *Loader) toIntColumn(col *table.Column) error {
	for i, v := range col.Values {
		if v.Missing {
			continue
		}
		n, err := strconv.ParseInt(v.Str, 10, 64)
		if err != nil {
			return errors.ParseError(col.Name, err)
		}
		col.Values[i] = table.Int(n)
	}
	col.Type = table.TypeInt
	return nil
}
