package sales

import (
	"context"

	"go.uber.org/zap"
)

const (
	DefaultPageSize = 100
	DefaultMaxPages = 50

	idSampleSize = 5
)

// PageRequest identifies one page of the upstream bulk-orders feed. Dates are
// expected in normalized wire format; the token is carried as an opaque
// string acquired by the caller.
type PageRequest struct {
	Token          string
	RestaurantGUID string
	StartDate      string
	EndDate        string
	Page           int
	PageSize       int
}

// Fetcher fetches one raw page from the upstream. The decoded body is left
// untyped because the upstream's response shape varies.
type Fetcher interface {
	FetchOrdersPage(ctx context.Context, req PageRequest) (any, error)
}

// TerminalState records why a traversal stopped.
type TerminalState string

const (
	// TerminalEmptyPage is the normal end of data, confirmed by observing an
	// explicit empty page rather than inferred from a short one: the
	// upstream's last-page size is not guaranteed to match the request.
	TerminalEmptyPage TerminalState = "empty_page"
	// TerminalIDsOnly means the upstream degraded to bare order identifiers.
	// Consuming those would need the order-detail endpoint, which this
	// service does not call, so the run aborts with zeroed totals.
	TerminalIDsOnly TerminalState = "ids_only"
	// TerminalMaxPages means the page cap was reached before an empty page.
	TerminalMaxPages TerminalState = "max_pages"
)

// RunParams parameterize one traversal.
type RunParams struct {
	Token          string
	RestaurantGUID string
	StartDate      string
	EndDate        string
	PageSize       int
	MaxPages       int
	AggregateOptions
}

// PageTrace is one page's diagnostics, surfaced when the caller asks for
// debug output.
type PageTrace struct {
	Page      int `json:"page"`
	Extracted int `json:"extracted"`
	Orders    int `json:"orders"`
	Checks    int `json:"checks"`
}

// RunResult is the outcome of a full traversal.
type RunResult struct {
	Totals       Totals
	Rows         []CheckRow
	PagesFetched int
	Terminal     TerminalState
	IDSample     []string
	Trace        []PageTrace
}

// Driver walks the paginated bulk-orders feed page by page and accumulates
// totals. Pages are fetched strictly sequentially: a page's content decides
// whether the next one is requested at all.
type Driver struct {
	fetcher Fetcher
	logger  *zap.Logger
}

func NewDriver(fetcher Fetcher, logger *zap.Logger) *Driver {
	return &Driver{
		fetcher: fetcher,
		logger:  logger.Named("sales"),
	}
}

// Run fetches pages 1..MaxPages until a terminal condition. An upstream
// failure on any page is fatal for the whole run and discards totals from
// prior pages; no page is retried.
func (d *Driver) Run(ctx context.Context, p RunParams) (RunResult, error) {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.MaxPages <= 0 {
		p.MaxPages = DefaultMaxPages
	}

	var res RunResult

	for page := 1; page <= p.MaxPages; page++ {
		body, err := d.fetcher.FetchOrdersPage(ctx, PageRequest{
			Token:          p.Token,
			RestaurantGUID: p.RestaurantGUID,
			StartDate:      p.StartDate,
			EndDate:        p.EndDate,
			Page:           page,
			PageSize:       p.PageSize,
		})
		if err != nil {
			return RunResult{}, err
		}
		res.PagesFetched++

		extracted := ExtractOrders(body)
		switch extracted.Kind {
		case PageEmpty:
			res.Terminal = TerminalEmptyPage
			d.logger.Debug("empty page, traversal complete",
				zap.Int("page", page),
				zap.Int("orders", res.Totals.OrderCount),
			)
			return res, nil

		case PageIDsOnly:
			sample := extracted.IDs
			if len(sample) > idSampleSize {
				sample = sample[:idSampleSize]
			}
			d.logger.Warn("upstream returned identifiers only, aborting aggregation",
				zap.Int("page", page),
				zap.Int("ids", len(extracted.IDs)),
			)
			return RunResult{
				PagesFetched: res.PagesFetched,
				Terminal:     TerminalIDsOnly,
				IDSample:     sample,
				Trace:        res.Trace,
			}, nil

		case PageOrders:
			pr := AggregatePage(extracted.Orders, p.AggregateOptions)
			res.Totals.Add(pr.Totals)
			if p.CollectRows {
				res.Rows = append(res.Rows, pr.Rows...)
			}
			res.Trace = append(res.Trace, PageTrace{
				Page:      page,
				Extracted: len(extracted.Orders),
				Orders:    pr.Totals.OrderCount,
				Checks:    pr.Totals.CheckCount,
			})
			d.logger.Debug("page aggregated",
				zap.Int("page", page),
				zap.Int("extracted", len(extracted.Orders)),
				zap.Int("checks", pr.Totals.CheckCount),
			)
		}
	}

	res.Terminal = TerminalMaxPages
	return res, nil
}
