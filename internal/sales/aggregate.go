package sales

import "strconv"

// AggregateOptions select the filter predicate and output shape of one
// aggregation run. The endpoint variants all flow through the same pipeline
// with different options.
type AggregateOptions struct {
	// BusinessDate restricts aggregation to orders whose businessDate
	// matches exactly (YYYYMMDD). Zero disables the filter.
	BusinessDate int
	// MinPayments excludes checks carrying fewer payments. The production
	// rule is 1: checks with no payments never reach the totals.
	MinPayments int
	// IncludeSelectionDiscounts also sums discounts attached to each
	// line-item selection under a check.
	IncludeSelectionDiscounts bool
	// CollectRows emits per-check detail rows alongside the totals.
	CollectRows bool
}

// Totals is the running accumulator for one aggregation run. Request-scoped,
// never persisted.
type Totals struct {
	GrossSales           float64 `json:"totalGrossSales"`
	NetSales             float64 `json:"totalNetSales"`
	Tax                  float64 `json:"totalTax"`
	DiscountAmount       float64 `json:"totalDiscountAmount"`
	OrderCount           int     `json:"orderCount"`
	CheckCount           int     `json:"checkCount"`
	PaymentCount         int     `json:"paymentCount"`
	CapturedPaymentCount int     `json:"capturedPaymentCount"`
}

// Add folds another page's totals into t.
func (t *Totals) Add(other Totals) {
	t.GrossSales += other.GrossSales
	t.NetSales += other.NetSales
	t.Tax += other.Tax
	t.DiscountAmount += other.DiscountAmount
	t.OrderCount += other.OrderCount
	t.CheckCount += other.CheckCount
	t.PaymentCount += other.PaymentCount
	t.CapturedPaymentCount += other.CapturedPaymentCount
}

// CheckRow is one per-check detail row for the endpoint variants that return
// row-level output.
type CheckRow struct {
	OrderNumber    string  `json:"orderNumber"`
	CheckNumber    string  `json:"checkNumber"`
	BusinessDate   int     `json:"businessDate"`
	GrossSales     float64 `json:"grossSales"`
	NetSales       float64 `json:"netSales"`
	Tax            float64 `json:"tax"`
	DiscountAmount float64 `json:"discountAmount"`
}

// PageResult is the aggregation outcome of a single page.
type PageResult struct {
	Totals Totals
	Rows   []CheckRow
}

// AggregatePage folds one page of order-shaped values into totals. Elements
// that are not objects (bare ID strings, malformed entries) are skipped
// silently and increment no counter; that tolerance is intentional, not an
// error path.
func AggregatePage(orders []any, opts AggregateOptions) PageResult {
	var res PageResult

	for _, el := range orders {
		order, ok := el.(map[string]any)
		if !ok {
			continue
		}

		businessDate := int(toNumber(order["businessDate"]))
		if opts.BusinessDate != 0 && businessDate != opts.BusinessDate {
			continue
		}

		res.Totals.OrderCount++
		checks, _ := order["checks"].([]any)
		for _, c := range checks {
			check, ok := c.(map[string]any)
			if !ok {
				continue
			}

			m := CalculateCheck(check, opts.IncludeSelectionDiscounts)
			if m.PaymentCount < opts.MinPayments {
				continue
			}

			res.Totals.CheckCount++
			res.Totals.GrossSales += m.GrossSales
			res.Totals.NetSales += m.NetSales
			res.Totals.Tax += m.Tax
			res.Totals.DiscountAmount += m.DiscountAmount
			res.Totals.PaymentCount += m.PaymentCount
			res.Totals.CapturedPaymentCount += m.CapturedPaymentCount

			if opts.CollectRows {
				res.Rows = append(res.Rows, CheckRow{
					OrderNumber:    displayNumber(order),
					CheckNumber:    displayNumber(check),
					BusinessDate:   businessDate,
					GrossSales:     m.GrossSales,
					NetSales:       m.NetSales,
					Tax:            m.Tax,
					DiscountAmount: m.DiscountAmount,
				})
			}
		}
	}

	return res
}

// displayNumber reads a record's displayNumber, which the upstream emits as
// either a string or a number.
func displayNumber(record map[string]any) string {
	switch v := record["displayNumber"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
