package sales

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fetcherFunc func(ctx context.Context, req PageRequest) (any, error)

func (f fetcherFunc) FetchOrdersPage(ctx context.Context, req PageRequest) (any, error) {
	return f(ctx, req)
}

func pagesFetcher(t *testing.T, pages ...any) (Fetcher, *[]PageRequest) {
	t.Helper()
	var seen []PageRequest
	f := fetcherFunc(func(_ context.Context, req PageRequest) (any, error) {
		seen = append(seen, req)
		require.LessOrEqual(t, req.Page, len(pages), "fetched past the last prepared page")
		return pages[req.Page-1], nil
	})
	return f, &seen
}

func newTestDriver(f Fetcher) *Driver {
	return NewDriver(f, zap.NewNop())
}

func TestDriverStopsOnConfirmingEmptyPage(t *testing.T) {
	page := []any{
		order(20260109, paidCheck(10, 1)),
		order(20260109, paidCheck(20, 2)),
	}
	fetcher, seen := pagesFetcher(t, page, page, []any{})

	res, err := newTestDriver(fetcher).Run(context.Background(), RunParams{
		StartDate:        "2026-01-09T00:00:00.000+0000",
		EndDate:          "2026-01-10T00:00:00.000+0000",
		PageSize:         2,
		AggregateOptions: AggregateOptions{MinPayments: 1},
	})

	require.NoError(t, err)
	// Two full pages plus one confirming empty fetch.
	assert.Equal(t, 3, res.PagesFetched)
	assert.Len(t, *seen, 3)
	assert.Equal(t, TerminalEmptyPage, res.Terminal)
	assert.Equal(t, 4, res.Totals.OrderCount)
	assert.InDelta(t, 60.0, res.Totals.NetSales, 1e-9)

	for i, req := range *seen {
		assert.Equal(t, i+1, req.Page)
		assert.Equal(t, 2, req.PageSize)
	}
}

func TestDriverEmptyFirstPage(t *testing.T) {
	fetcher, _ := pagesFetcher(t, []any{})

	res, err := newTestDriver(fetcher).Run(context.Background(), RunParams{})

	require.NoError(t, err)
	assert.Equal(t, TerminalEmptyPage, res.Terminal)
	assert.Equal(t, 1, res.PagesFetched)
	assert.Zero(t, res.Totals)
}

func TestDriverIDsOnlyDiscardsPartialTotals(t *testing.T) {
	fetcher, _ := pagesFetcher(t,
		[]any{order(20260109, paidCheck(10, 1))},
		[]any{"guid-1", "guid-2", "guid-3", "guid-4", "guid-5", "guid-6", "guid-7"},
	)

	res, err := newTestDriver(fetcher).Run(context.Background(), RunParams{
		AggregateOptions: AggregateOptions{MinPayments: 1},
	})

	require.NoError(t, err)
	assert.Equal(t, TerminalIDsOnly, res.Terminal)
	assert.Zero(t, res.Totals, "partial totals from prior pages are discarded")
	assert.Equal(t, 2, res.PagesFetched)
	assert.Equal(t, []string{"guid-1", "guid-2", "guid-3", "guid-4", "guid-5"}, res.IDSample)
}

func TestDriverUpstreamErrorIsFatal(t *testing.T) {
	boom := errors.New("upstream exploded")
	calls := 0
	fetcher := fetcherFunc(func(_ context.Context, req PageRequest) (any, error) {
		calls++
		if req.Page == 2 {
			return nil, boom
		}
		return []any{order(20260109, paidCheck(10, 1))}, nil
	})

	res, err := newTestDriver(fetcher).Run(context.Background(), RunParams{})

	require.ErrorIs(t, err, boom)
	assert.Zero(t, res, "no partial result on upstream failure")
	assert.Equal(t, 2, calls, "no retry after the failing page")
}

func TestDriverMaxPagesCap(t *testing.T) {
	fetcher := fetcherFunc(func(_ context.Context, _ PageRequest) (any, error) {
		return []any{order(20260109, paidCheck(1, 0))}, nil
	})

	res, err := newTestDriver(fetcher).Run(context.Background(), RunParams{
		MaxPages:         3,
		AggregateOptions: AggregateOptions{MinPayments: 1},
	})

	require.NoError(t, err)
	assert.Equal(t, TerminalMaxPages, res.Terminal)
	assert.Equal(t, 3, res.PagesFetched)
	assert.Equal(t, 3, res.Totals.OrderCount)
}

func TestDriverDefaults(t *testing.T) {
	var first PageRequest
	fetcher := fetcherFunc(func(_ context.Context, req PageRequest) (any, error) {
		first = req
		return []any{}, nil
	})

	_, err := newTestDriver(fetcher).Run(context.Background(), RunParams{})

	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, first.PageSize)
	assert.Equal(t, 1, first.Page)
}

func TestDriverIdempotent(t *testing.T) {
	page := []any{order(20260109, paidCheck(12.34, 1.11))}
	params := RunParams{AggregateOptions: AggregateOptions{MinPayments: 1, CollectRows: true}}

	run := func() RunResult {
		fetcher, _ := pagesFetcher(t, page, []any{})
		res, err := newTestDriver(fetcher).Run(context.Background(), params)
		require.NoError(t, err)
		return res
	}

	assert.Equal(t, run(), run())
}

func TestDriverCollectsTrace(t *testing.T) {
	fetcher, _ := pagesFetcher(t,
		[]any{order(20260109, paidCheck(10, 1)), "stray-guid"},
		[]any{},
	)

	res, err := newTestDriver(fetcher).Run(context.Background(), RunParams{
		AggregateOptions: AggregateOptions{MinPayments: 1},
	})

	require.NoError(t, err)
	require.Len(t, res.Trace, 1)
	assert.Equal(t, PageTrace{Page: 1, Extracted: 2, Orders: 1, Checks: 1}, res.Trace[0])
}
