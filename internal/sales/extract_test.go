package sales

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestExtractOrders(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind PageKind
		wantLen  int
	}{
		{
			name:     "top level array of orders",
			raw:      `[{"businessDate": 20260109}, {"businessDate": 20260110}]`,
			wantKind: PageOrders,
			wantLen:  2,
		},
		{
			name:     "orders wrapper field",
			raw:      `{"orders": [{"businessDate": 20260109}]}`,
			wantKind: PageOrders,
			wantLen:  1,
		},
		{
			name:     "results wrapper field",
			raw:      `{"results": [{"businessDate": 20260109}]}`,
			wantKind: PageOrders,
			wantLen:  1,
		},
		{
			name:     "guid wrapper field",
			raw:      `{"orderGuids": ["a-1", "b-2"]}`,
			wantKind: PageIDsOnly,
			wantLen:  2,
		},
		{
			name:     "bare identifier array",
			raw:      `["a-1", "b-2", "c-3"]`,
			wantKind: PageIDsOnly,
			wantLen:  3,
		},
		{
			name:     "container one level down",
			raw:      `{"response": {"orders": [{"businessDate": 20260109}]}}`,
			wantKind: PageOrders,
			wantLen:  1,
		},
		{
			name:     "mixed elements are records not ids",
			raw:      `[{"businessDate": 20260109}, "stray-guid"]`,
			wantKind: PageOrders,
			wantLen:  2,
		},
		{
			name:     "empty array",
			raw:      `[]`,
			wantKind: PageEmpty,
		},
		{
			name:     "empty wrapper",
			raw:      `{"orders": []}`,
			wantKind: PageEmpty,
		},
		{
			name:     "unrecognized object",
			raw:      `{"message": "nothing here"}`,
			wantKind: PageEmpty,
		},
		{
			name:     "scalar",
			raw:      `42`,
			wantKind: PageEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := ExtractOrders(decode(t, tt.raw))
			assert.Equal(t, tt.wantKind, page.Kind)
			switch tt.wantKind {
			case PageOrders:
				assert.Len(t, page.Orders, tt.wantLen)
			case PageIDsOnly:
				assert.Len(t, page.IDs, tt.wantLen)
			}
		})
	}
}

func TestExtractOrdersNilInput(t *testing.T) {
	page := ExtractOrders(nil)
	assert.Equal(t, PageEmpty, page.Kind)
	assert.Empty(t, page.Orders)
	assert.Empty(t, page.IDs)
}

func TestExtractOrdersIDsPreserved(t *testing.T) {
	page := ExtractOrders(decode(t, `["a-1", "b-2"]`))
	assert.Equal(t, PageIDsOnly, page.Kind)
	assert.Equal(t, []string{"a-1", "b-2"}, page.IDs)
}
