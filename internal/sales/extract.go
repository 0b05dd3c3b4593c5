package sales

// PageKind tags what the extractor found in one upstream response. The
// upstream's shape is observed to vary by configuration: a bare array of
// orders, an array of order GUIDs, or a wrapper object around either.
type PageKind int

const (
	// PageEmpty means no order-like array was found, or it was empty. This
	// is the normal end-of-data signal for the pagination driver.
	PageEmpty PageKind = iota
	// PageOrders means full order records are available.
	PageOrders
	// PageIDsOnly means the upstream returned bare identifier strings with
	// no financial detail attached.
	PageIDsOnly
)

// orderArrayKeys are the wrapper fields tried, in order, when the response
// is an object rather than an array.
var orderArrayKeys = []string{"orders", "results", "data", "orderGuids", "guids"}

// Page is the classified content of one upstream response.
type Page struct {
	Kind   PageKind
	Orders []any
	IDs    []string
}

// ExtractOrders locates the order-like array inside an arbitrary decoded
// response and classifies it. Checked in priority order: a wrapper field
// holding an array, the top-level value itself, then a container one level
// down. Absent or unrecognized input yields an empty page.
func ExtractOrders(body any) Page {
	return classify(findOrderArray(body))
}

func findOrderArray(body any) []any {
	switch v := body.(type) {
	case []any:
		return v
	case map[string]any:
		if arr := arrayField(v); arr != nil {
			return arr
		}
		for _, nested := range v {
			if m, ok := nested.(map[string]any); ok {
				if arr := arrayField(m); arr != nil {
					return arr
				}
			}
		}
	}
	return nil
}

func arrayField(m map[string]any) []any {
	for _, key := range orderArrayKeys {
		if arr, ok := m[key].([]any); ok {
			return arr
		}
	}
	return nil
}

func classify(arr []any) Page {
	if len(arr) == 0 {
		return Page{Kind: PageEmpty}
	}

	ids := make([]string, 0, len(arr))
	for _, el := range arr {
		id, ok := el.(string)
		if !ok {
			return Page{Kind: PageOrders, Orders: arr}
		}
		ids = append(ids, id)
	}

	return Page{Kind: PageIDsOnly, IDs: ids}
}
