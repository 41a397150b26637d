/*
dto.go - JSON shapes served to the dashboard frontend

PURPOSE:
  Decouples the internal snapshot types (decimal amounts, pointer
  nullables, time.Time) from the wire contract. Amounts go out as JSON
  numbers; unmatched joins go out as null.

NAMING CONVENTION:
  *DTO: response types. Requests don't exist; the API is read-only.

SEE ALSO:
  - handlers.go: serializes these
  - aggregate/aggregate.go: the source types
*/
package api

import (
	"time"

	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/aggregate"
	"github.com/MohamedARoshdy/Skippy-A-Global-Fashion-Retail-Sales/enrich"
)

// SnapshotDTO is the full aggregate snapshot as served to the dashboard.
type SnapshotDTO struct {
	TotalSalesUSD float64 `json:"total_sales_usd"`
	TotalQuantity float64 `json:"total_quantity"`

	SalesByCity     []CityDTO         `json:"sales_by_city"`
	SalesByCountry  []CountryDTO      `json:"sales_by_country"`
	TopProducts     []ProductDTO      `json:"top_products"`
	TopCashiers     []CashierDTO      `json:"top_cashiers"`
	SalesByPayment  []PaymentDTO      `json:"sales_by_payment"`
	PaymentCounts   []PaymentCountDTO `json:"payment_distribution"`
	SalesByDiscount []DiscountDTO     `json:"sales_by_discount"`
	TopStores       []StoreDTO        `json:"top_stores"`
	SalesOverTime   []TimePointDTO    `json:"sales_over_time"`

	Latest []TransactionDTO `json:"latest_transactions"`

	WindowSize int       `json:"window_size"`
	ComputedAt time.Time `json:"computed_at"`
}

type CityDTO struct {
	City     string  `json:"city"`
	SalesUSD float64 `json:"sales_usd"`
}

type CountryDTO struct {
	Country  string  `json:"country"`
	SalesUSD float64 `json:"sales_usd"`
}

type ProductDTO struct {
	ProductID   string  `json:"product_id"`
	Description *string `json:"description"`
	Quantity    float64 `json:"quantity"`
}

type CashierDTO struct {
	EmployeeID string  `json:"employee_id"`
	Name       *string `json:"name"`
	SalesUSD   float64 `json:"sales_usd"`
}

type PaymentDTO struct {
	Method   string  `json:"payment_method"`
	SalesUSD float64 `json:"sales_usd"`
}

type PaymentCountDTO struct {
	Method string `json:"payment_method"`
	Count  int    `json:"count"`
}

type DiscountDTO struct {
	Discount string  `json:"discount"`
	SalesUSD float64 `json:"sales_usd"`
	Count    int     `json:"count"`
}

type StoreDTO struct {
	StoreID   string  `json:"store_id"`
	StoreName *string `json:"store_name"`
	SalesUSD  float64 `json:"sales_usd"`
}

type TimePointDTO struct {
	Time     string  `json:"time"`
	SalesUSD float64 `json:"sales_usd"`
}

// TransactionDTO is one enriched record in the latest-transactions view.
type TransactionDTO struct {
	StoreID         string  `json:"store_id"`
	StoreName       *string `json:"store_name"`
	Country         *string `json:"country"`
	City            *string `json:"city"`
	ProductID       string  `json:"product_id"`
	EmployeeID      string  `json:"employee_id"`
	Quantity        float64 `json:"quantity"`
	InvoiceTotal    float64 `json:"invoice_total"`
	Currency        string  `json:"currency"`
	InvoiceTotalUSD float64 `json:"invoice_total_usd"`
	Date            *string `json:"date"`
	Time            *string `json:"time"`
	PaymentMethod   string  `json:"payment_method"`
	Discount        string  `json:"discount"`
}

// =============================================================================
// MAPPERS
// =============================================================================

// NewSnapshotDTO maps an aggregate snapshot to its wire shape.
func NewSnapshotDTO(snap *aggregate.Snapshot) SnapshotDTO {
	dto := SnapshotDTO{
		TotalSalesUSD:   snap.TotalSalesUSD.InexactFloat64(),
		TotalQuantity:   snap.TotalQuantity.InexactFloat64(),
		SalesByCity:     make([]CityDTO, 0, len(snap.SalesByCity)),
		SalesByCountry:  make([]CountryDTO, 0, len(snap.SalesByCountry)),
		TopProducts:     make([]ProductDTO, 0, len(snap.TopProducts)),
		TopCashiers:     make([]CashierDTO, 0, len(snap.TopCashiers)),
		SalesByPayment:  make([]PaymentDTO, 0, len(snap.SalesByPayment)),
		PaymentCounts:   make([]PaymentCountDTO, 0, len(snap.PaymentCounts)),
		SalesByDiscount: make([]DiscountDTO, 0, len(snap.SalesByDiscount)),
		TopStores:       make([]StoreDTO, 0, len(snap.TopStores)),
		SalesOverTime:   make([]TimePointDTO, 0, len(snap.SalesOverTime)),
		Latest:          make([]TransactionDTO, 0, len(snap.Latest)),
		WindowSize:      snap.WindowSize,
		ComputedAt:      snap.ComputedAt,
	}

	for _, r := range snap.SalesByCity {
		dto.SalesByCity = append(dto.SalesByCity, CityDTO{r.City, r.SalesUSD.InexactFloat64()})
	}
	for _, r := range snap.SalesByCountry {
		dto.SalesByCountry = append(dto.SalesByCountry, CountryDTO{r.Country, r.SalesUSD.InexactFloat64()})
	}
	for _, r := range snap.TopProducts {
		dto.TopProducts = append(dto.TopProducts, ProductDTO{r.ProductID, r.Description, r.Quantity.InexactFloat64()})
	}
	for _, r := range snap.TopCashiers {
		dto.TopCashiers = append(dto.TopCashiers, CashierDTO{r.EmployeeID, r.Name, r.SalesUSD.InexactFloat64()})
	}
	for _, r := range snap.SalesByPayment {
		dto.SalesByPayment = append(dto.SalesByPayment, PaymentDTO{r.Method, r.SalesUSD.InexactFloat64()})
	}
	for _, r := range snap.PaymentCounts {
		dto.PaymentCounts = append(dto.PaymentCounts, PaymentCountDTO{r.Method, r.Count})
	}
	for _, r := range snap.SalesByDiscount {
		dto.SalesByDiscount = append(dto.SalesByDiscount, DiscountDTO{r.Discount, r.SalesUSD.InexactFloat64(), r.Count})
	}
	for _, r := range snap.TopStores {
		dto.TopStores = append(dto.TopStores, StoreDTO{r.StoreID, r.StoreName, r.SalesUSD.InexactFloat64()})
	}
	for _, p := range snap.SalesOverTime {
		dto.SalesOverTime = append(dto.SalesOverTime, TimePointDTO{p.Time.Format("15:04:05"), p.SalesUSD.InexactFloat64()})
	}
	for _, rec := range snap.Latest {
		dto.Latest = append(dto.Latest, newTransactionDTO(rec))
	}
	return dto
}

func newTransactionDTO(rec enrich.Record) TransactionDTO {
	dto := TransactionDTO{
		StoreID:         rec.StoreID,
		StoreName:       rec.StoreName,
		Country:         rec.Country,
		City:            rec.City,
		ProductID:       rec.ProductID,
		EmployeeID:      rec.EmployeeID,
		Quantity:        rec.Quantity.InexactFloat64(),
		InvoiceTotal:    rec.InvoiceTotal.InexactFloat64(),
		Currency:        rec.Currency,
		InvoiceTotalUSD: rec.InvoiceTotalUSD.InexactFloat64(),
		PaymentMethod:   rec.PaymentMethod,
		Discount:        rec.Discount,
	}
	if rec.Date != nil {
		d := rec.Date.Format("2006-01-02")
		dto.Date = &d
	}
	if rec.TimeOfDay != nil {
		t := rec.TimeOfDay.Format("15:04:05")
		dto.Time = &t
	}
	return dto
}
