package sales

import (
	"math"
	"strconv"
	"strings"
)

const paymentStatusCaptured = "CAPTURED"

// discountAmountKeys are the alternate names under which a discount's amount
// has been observed, tried in order; the first present field wins.
var discountAmountKeys = []string{"discountAmount", "amount", "appliedDiscountAmount"}

// CheckMetrics are the financial metrics of a single check. Gross sales come
// from captured payments; net sales and tax are the check's own recorded
// fields. The two are independently sourced, not derived from each other.
type CheckMetrics struct {
	GrossSales           float64
	NetSales             float64
	Tax                  float64
	DiscountAmount       float64
	PaymentCount         int
	CapturedPaymentCount int
}

// CalculateCheck computes the metrics for one check record. Missing or
// non-numeric fields contribute zero. When includeSelections is set, discounts
// attached to the check's line-item selections are added as well. Pure
// function over its input.
func CalculateCheck(check map[string]any, includeSelections bool) CheckMetrics {
	m := CheckMetrics{
		NetSales: toNumber(check["amount"]),
		Tax:      toNumber(check["taxAmount"]),
	}

	payments, _ := check["payments"].([]any)
	m.PaymentCount = len(payments)
	for _, p := range payments {
		pm, ok := p.(map[string]any)
		if !ok {
			continue
		}
		status, _ := pm["paymentStatus"].(string)
		if status == paymentStatusCaptured {
			m.GrossSales += toNumber(pm["amount"])
			m.CapturedPaymentCount++
		}
	}

	m.DiscountAmount = sumDiscounts(check["appliedDiscounts"])
	if includeSelections {
		selections, _ := check["selections"].([]any)
		for _, s := range selections {
			if sm, ok := s.(map[string]any); ok {
				m.DiscountAmount += sumDiscounts(sm["appliedDiscounts"])
			}
		}
	}

	return m
}

func sumDiscounts(v any) float64 {
	discounts, _ := v.([]any)
	var total float64
	for _, d := range discounts {
		dm, ok := d.(map[string]any)
		if !ok {
			continue
		}
		for _, key := range discountAmountKeys {
			if raw, present := dm[key]; present {
				total += toNumber(raw)
				break
			}
		}
	}
	return total
}

// toNumber coerces an arbitrary decoded JSON value to a finite float64.
// Non-finite and unparseable values collapse to zero rather than poisoning a
// running sum with NaN.
func toNumber(v any) float64 {
	var n float64
	switch value := v.(type) {
	case float64:
		n = value
	case int:
		n = float64(value)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		n = parsed
	default:
		return 0
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}
