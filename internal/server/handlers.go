package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"toast_dashboard/internal/config"
	"toast_dashboard/internal/sales"
	"toast_dashboard/internal/toast"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// fixedBusinessDate is the hardcoded target of the business-date endpoint.
// An acknowledged simplification: the date is not derived from the requested
// range.
const fixedBusinessDate = 20260109

// minPaymentsRule excludes checks with no payments from every aggregation.
const minPaymentsRule = 1

type Handler struct {
	cfg    config.Config
	toast  *toast.Client
	driver *sales.Driver
	logger *zap.Logger
}

func NewHandler(cfg config.Config, client *toast.Client, driver *sales.Driver, logger *zap.Logger) *Handler {
	return &Handler{
		cfg:    cfg,
		toast:  client,
		driver: driver,
		logger: logger.Named("server"),
	}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", h.health)

	api := r.Group("/api")
	{
		api.GET("/sales/summary", h.salesSummary)
		api.GET("/sales/details", h.salesDetails)
		api.GET("/sales/business-date", h.salesFixedBusinessDate)
		api.GET("/restaurants", h.listRestaurants)
		api.GET("/restaurants/:guid", h.getRestaurant)
	}
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// salesQuery is the parsed and normalized query of the sales endpoints.
type salesQuery struct {
	StartDate      string
	EndDate        string
	RestaurantGUID string
	PageSize       int
	MaxPages       int
	BusinessDate   int
	Debug          bool
}

func (h *Handler) parseSalesQuery(c *gin.Context) (salesQuery, bool) {
	start := strings.TrimSpace(c.Query("startDate"))
	end := strings.TrimSpace(c.Query("endDate"))
	if start == "" || end == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate and endDate are required"})
		return salesQuery{}, false
	}

	q := salesQuery{
		StartDate:      sales.NormalizeTimestamp(start),
		EndDate:        sales.NormalizeTimestamp(end),
		RestaurantGUID: strings.TrimSpace(c.Query("restaurantGuid")),
		PageSize:       intQuery(c, "pageSize", sales.DefaultPageSize),
		MaxPages:       intQuery(c, "maxPages", sales.DefaultMaxPages),
		BusinessDate:   intQuery(c, "businessDate", 0),
		Debug:          c.Query("debug") == "1",
	}

	if h.cfg.ToastHostname == "" {
		h.logger.Error("aggregation rejected", zap.Error(toast.ErrMissingHostname))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "service is not configured with an upstream hostname"})
		return salesQuery{}, false
	}
	if q.RestaurantGUID == "" && h.cfg.ToastRestaurantGUID == "" {
		h.logger.Error("aggregation rejected", zap.Error(toast.ErrMissingRestaurantGUID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no restaurant guid configured or supplied"})
		return salesQuery{}, false
	}

	return q, true
}

type salesResponse struct {
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	BusinessDate int    `json:"businessDate,omitempty"`
	sales.Totals
	Checks []sales.CheckRow `json:"checks,omitempty"`
	Debug  *debugInfo       `json:"debug,omitempty"`
}

type debugInfo struct {
	PagesFetched int                 `json:"pagesFetched"`
	PageSize     int                 `json:"pageSize"`
	MaxPages     int                 `json:"maxPages"`
	Terminal     sales.TerminalState `json:"terminal"`
	Pages        []sales.PageTrace   `json:"pages,omitempty"`
}

func (h *Handler) salesSummary(c *gin.Context) {
	q, ok := h.parseSalesQuery(c)
	if !ok {
		return
	}
	h.runAggregation(c, q, sales.AggregateOptions{
		BusinessDate: q.BusinessDate,
		MinPayments:  minPaymentsRule,
	})
}

func (h *Handler) salesDetails(c *gin.Context) {
	q, ok := h.parseSalesQuery(c)
	if !ok {
		return
	}
	h.runAggregation(c, q, sales.AggregateOptions{
		BusinessDate:              q.BusinessDate,
		MinPayments:               minPaymentsRule,
		IncludeSelectionDiscounts: true,
		CollectRows:               true,
	})
}

func (h *Handler) salesFixedBusinessDate(c *gin.Context) {
	q, ok := h.parseSalesQuery(c)
	if !ok {
		return
	}
	q.BusinessDate = fixedBusinessDate
	h.runAggregation(c, q, sales.AggregateOptions{
		BusinessDate: fixedBusinessDate,
		MinPayments:  minPaymentsRule,
	})
}

func (h *Handler) runAggregation(c *gin.Context, q salesQuery, opts sales.AggregateOptions) {
	ctx := c.Request.Context()

	token, err := h.toast.Login(ctx)
	if err != nil {
		h.logger.Error("upstream authentication failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication with upstream failed"})
		return
	}

	result, err := h.driver.Run(ctx, sales.RunParams{
		Token:            token,
		RestaurantGUID:   q.RestaurantGUID,
		StartDate:        q.StartDate,
		EndDate:          q.EndDate,
		PageSize:         q.PageSize,
		MaxPages:         q.MaxPages,
		AggregateOptions: opts,
	})
	if err != nil {
		h.respondUpstreamError(c, err)
		return
	}

	if result.Terminal == sales.TerminalIDsOnly {
		c.JSON(http.StatusOK, gin.H{
			"error":        "upstream returned order identifiers only; order detail lookup is not supported",
			"idSample":     result.IDSample,
			"pagesFetched": result.PagesFetched,
		})
		return
	}

	resp := salesResponse{
		StartDate:    q.StartDate,
		EndDate:      q.EndDate,
		BusinessDate: opts.BusinessDate,
		Totals:       result.Totals,
		Checks:       result.Rows,
	}
	if q.Debug {
		resp.Debug = &debugInfo{
			PagesFetched: result.PagesFetched,
			PageSize:     q.PageSize,
			MaxPages:     q.MaxPages,
			Terminal:     result.Terminal,
			Pages:        result.Trace,
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listRestaurants(c *gin.Context) {
	h.runPassthrough(c, func(token string) (json.RawMessage, error) {
		return h.toast.ListRestaurants(c.Request.Context(), token)
	})
}

func (h *Handler) getRestaurant(c *gin.Context) {
	guid := c.Param("guid")
	h.runPassthrough(c, func(token string) (json.RawMessage, error) {
		return h.toast.GetRestaurant(c.Request.Context(), token, guid)
	})
}

func (h *Handler) runPassthrough(c *gin.Context, call func(token string) (json.RawMessage, error)) {
	token, err := h.toast.Login(c.Request.Context())
	if err != nil {
		h.logger.Error("upstream authentication failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication with upstream failed"})
		return
	}

	body, err := call(token)
	if err != nil {
		h.respondUpstreamError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", body)
}

// respondUpstreamError forwards the upstream's status and body verbatim when
// the failure was an upstream HTTP error, and degrades to a generic 500
// otherwise.
func (h *Handler) respondUpstreamError(c *gin.Context, err error) {
	var apiErr *toast.APIError
	if errors.As(err, &apiErr) {
		h.logger.Warn("upstream call failed",
			zap.Int("status", apiErr.StatusCode),
			zap.String("body", apiErr.Body),
		)
		c.JSON(apiErr.StatusCode, gin.H{
			"error":          "upstream request failed",
			"upstreamStatus": apiErr.StatusCode,
			"upstreamBody":   apiErr.Body,
		})
		return
	}

	h.logger.Error("aggregation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
