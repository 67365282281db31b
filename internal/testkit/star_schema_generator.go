package testkit

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// GeneratorConfig configures the star-schema fixture generator
type GeneratorConfig struct {
	CustomerCount int
	ProductCount  int
	OrderCount    int
	StartDate     time.Time
	Seed          int64
	Separator     rune   // column separator used in the generated CSVs
	Decimal       string // decimal mark used in the generated CSVs
}

// DefaultGeneratorConfig returns sensible defaults for fixture generation
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		CustomerCount: 50,
		ProductCount:  25,
		OrderCount:    200,
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:          42,
		Separator:     ';',
		Decimal:       ",",
	}
}

// StarSchemaGenerator produces the nine retail star-schema CSV files with
// deterministic, realistic values
type StarSchemaGenerator struct {
	config GeneratorConfig
	rng    *rand.Rand
}

// NewStarSchemaGenerator creates a generator seeded from the config
func NewStarSchemaGenerator(config GeneratorConfig) *StarSchemaGenerator {
	return &StarSchemaGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

var (
	firstNames     = []string{"Anna", "Jan", "Maria", "Piotr", "Ewa", "Tomasz", "Kasia", "Marek", "Ola", "Pawel"}
	lastNames      = []string{"Nowak", "Kowalski", "Wisniewska", "Wojcik", "Kaminska", "Lewandowski", "Zielinska", "Szymanski"}
	countries      = []string{"Poland", "Germany", "France", "Spain", "Italy"}
	channels       = []string{"Web", "Mobile App", "Call Center"}
	paymentMethods = []string{"Credit Card", "Bank Transfer", "Cash On Delivery", "PayPal"}
	deliveries     = []string{"Courier", "Parcel Locker", "Post"}
	categories     = []string{"Electronics", "Home", "Sports"}
	subcategories  = map[string][]string{
		"Electronics": {"Phones", "Laptops", "Audio"},
		"Home":        {"Kitchen", "Furniture"},
		"Sports":      {"Fitness", "Outdoor"},
	}
)

// WriteCSVDir writes all nine star-schema files into dir
func (g *StarSchemaGenerator) WriteCSVDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create fixture directory: %w", err)
	}

	files := map[string][][]string{
		"DimCustomer.csv":       g.customers(),
		"DimDate.csv":           g.dates(),
		"DimDeliveryMethod.csv": keyedNames("DeliveryMethodKey", "DeliveryMethodName", deliveries),
		"DimGeography.csv":      g.geography(),
		"DimOrderChannel.csv":   keyedNames("ChannelKey", "ChannelName", channels),
		"DimPaymentMethod.csv":  keyedNames("PaymentMethodKey", "PaymentMethodName", paymentMethods),
		"DimProduct.csv":        g.products(),
		"DimSalesterritory.csv": keyedNames("SALESTERRITORYKEY", "COUNTRYNAME", countries),
		"FactOnlineSales.csv":   g.facts(),
	}
	for name, rows := range files {
		if err := g.writeCSV(filepath.Join(dir, name), rows); err != nil {
			return err
		}
	}
	return nil
}

// FactRows returns the generated fact rows (header included) for callers
// that need to assert against the raw values
func (g *StarSchemaGenerator) FactRows() [][]string {
	return g.facts()
}

func keyedNames(keyCol, nameCol string, names []string) [][]string {
	rows := [][]string{{keyCol, nameCol}}
	for i, name := range names {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), name})
	}
	return rows
}

func (g *StarSchemaGenerator) customers() [][]string {
	rows := [][]string{{"CUSTOMERKEY", "FIRSTNAME", "LASTNAME", "EMAIL", "PHONE"}}
	for i := 1; i <= g.config.CustomerCount; i++ {
		first := firstNames[g.rng.Intn(len(firstNames))]
		last := lastNames[g.rng.Intn(len(lastNames))]
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			first,
			last,
			fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
			fmt.Sprintf("+48 600 %03d %03d", g.rng.Intn(1000), g.rng.Intn(1000)),
		})
	}
	return rows
}

func (g *StarSchemaGenerator) dates() [][]string {
	rows := [][]string{{"DATEKEY", "DATE", "YEAR", "MONTH"}}
	for d := 0; d < 120; d++ {
		day := g.config.StartDate.AddDate(0, 0, d)
		rows = append(rows, []string{
			day.Format("20060102"),
			day.Format("2006-01-02"),
			day.Format("2006"),
			day.Format("1"),
		})
	}
	return rows
}

func (g *StarSchemaGenerator) geography() [][]string {
	cities := []string{"Warsaw", "Berlin", "Paris", "Madrid", "Rome"}
	rows := [][]string{{"GEOGRAPHYKEY", "CITYNAME", "COUNTRYNAME"}}
	for i, city := range cities {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), city, countries[i]})
	}
	return rows
}

func (g *StarSchemaGenerator) products() [][]string {
	rows := [][]string{{"ProductKey", "ProductName", "ProductSubcategoryName", "ProductCategoryName"}}
	for i := 1; i <= g.config.ProductCount; i++ {
		category := categories[g.rng.Intn(len(categories))]
		subs := subcategories[category]
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%s Item %03d", category, i),
			subs[g.rng.Intn(len(subs))],
			category,
		})
	}
	return rows
}

func (g *StarSchemaGenerator) facts() [][]string {
	rows := [][]string{{
		"ORDERKEY", "ORDERLINENUMBER", "CUSTOMERKEY", "PRODUCTKEY",
		"SALESTERRITORYKEY", "CHANNELKEY", "PAYMENTMETHODKEY", "DELIVERYMETHODKEY",
		"ORDERDATEKEY", "SHIPDATEKEY", "QUANTITY",
		"CATALOGPRICE", "DISCOUNTAMOUNT", "DISCOUNTPCTG",
		"TRANSACTIONPRICE", "DELIVERYCOST", "PRODUCTCOST",
	}}
	// Fresh deterministic stream so facts don't depend on how many dimension
	// rows were generated first
	rng := rand.New(rand.NewSource(g.config.Seed + 1))
	for i := 1; i <= g.config.OrderCount; i++ {
		orderDay := rng.Intn(90)
		catalog := 20 + rng.Float64()*480
		discountPct := float64(rng.Intn(5)) * 5
		discount := catalog * discountPct / 100
		transaction := catalog - discount
		rows = append(rows, []string{
			fmt.Sprintf("%d", 1000+i),
			fmt.Sprintf("%d", 1+rng.Intn(3)),
			fmt.Sprintf("%d", 1+rng.Intn(g.config.CustomerCount)),
			fmt.Sprintf("%d", 1+rng.Intn(g.config.ProductCount)),
			fmt.Sprintf("%d", 1+rng.Intn(len(countries))),
			fmt.Sprintf("%d", 1+rng.Intn(len(channels))),
			fmt.Sprintf("%d", 1+rng.Intn(len(paymentMethods))),
			fmt.Sprintf("%d", 1+rng.Intn(len(deliveries))),
			g.config.StartDate.AddDate(0, 0, orderDay).Format("20060102"),
			g.config.StartDate.AddDate(0, 0, orderDay+2+rng.Intn(5)).Format("20060102"),
			fmt.Sprintf("%d", 1+rng.Intn(4)),
			g.money(catalog),
			g.money(discount),
			g.money(discountPct),
			g.money(transaction),
			g.money(5 + rng.Float64()*20),
			g.money(catalog * 0.6),
		})
	}
	return rows
}

// money formats a float with two decimals using the configured decimal mark
func (g *StarSchemaGenerator) money(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	if g.config.Decimal != "." {
		s = strings.Replace(s, ".", g.config.Decimal, 1)
	}
	return s
}

func (g *StarSchemaGenerator) writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = g.config.Separator
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}
