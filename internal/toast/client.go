package toast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"toast_dashboard/internal/config"
	"toast_dashboard/internal/sales"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	loginPath       = "/authentication/v1/authentication/login"
	ordersBulkPath  = "/orders/v2/ordersBulk"
	restaurantsPath = "/partners/v1/restaurants"

	restaurantHeader = "Toast-Restaurant-External-ID"
	machineClient    = "TOAST_MACHINE_CLIENT"
)

var (
	ErrMissingHostname       = errors.New("toast hostname is required")
	ErrMissingCredentials    = errors.New("toast client credentials are required")
	ErrMissingRestaurantGUID = errors.New("restaurant guid is required")
)

// APIError carries a non-success upstream response verbatim so the caller
// can forward status and body to its own client.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("toast api error: %s", e.Status)
	}
	return fmt.Sprintf("toast api error: %s: %s", e.Status, e.Body)
}

// Client talks to the Toast REST API. It implements sales.Fetcher for the
// pagination driver.
type Client struct {
	http                  *resty.Client
	clientID              string
	clientSecret          string
	defaultRestaurantGUID string
	logger                *zap.Logger
}

func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.ToastHostname, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	return &Client{
		http:                  httpClient,
		clientID:              strings.TrimSpace(cfg.ToastClientID),
		clientSecret:          strings.TrimSpace(cfg.ToastClientSecret),
		defaultRestaurantGUID: strings.TrimSpace(cfg.ToastRestaurantGUID),
		logger:                logger.Named("toast"),
	}
}

type loginRequest struct {
	ClientID       string `json:"clientId"`
	ClientSecret   string `json:"clientSecret"`
	UserAccessType string `json:"userAccessType"`
}

type loginResponse struct {
	Token struct {
		AccessToken string `json:"accessToken"`
	} `json:"token"`
}

// Login acquires a bearer token via the client-credentials flow. The token
// is returned as an opaque string; expiry and refresh are not managed here.
func (c *Client) Login(ctx context.Context) (string, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return "", ErrMissingCredentials
	}

	var result loginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(loginRequest{
			ClientID:       c.clientID,
			ClientSecret:   c.clientSecret,
			UserAccessType: machineClient,
		}).
		SetResult(&result).
		Post(loginPath)
	if err != nil {
		return "", fmt.Errorf("toast login: %w", err)
	}
	if resp.IsError() {
		return "", apiErrorFromResponse(resp)
	}
	if result.Token.AccessToken == "" {
		return "", errors.New("toast login: response carried no access token")
	}

	return result.Token.AccessToken, nil
}

// FetchOrdersPage requests one page of the bulk-orders feed. The body is
// decoded to an untyped value because the upstream's top-level shape varies:
// an array of orders, an array of GUIDs, or a wrapper object.
func (c *Client) FetchOrdersPage(ctx context.Context, req sales.PageRequest) (any, error) {
	guid, err := c.resolveRestaurantGUID(req.RestaurantGUID)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+req.Token).
		SetHeader(restaurantHeader, guid).
		SetQueryParams(map[string]string{
			"startDate": req.StartDate,
			"endDate":   req.EndDate,
			"page":      strconv.Itoa(req.Page),
			"pageSize":  strconv.Itoa(req.PageSize),
		}).
		Get(ordersBulkPath)
	if err != nil {
		return nil, fmt.Errorf("toast orders page %d: %w", req.Page, err)
	}
	if resp.IsError() {
		return nil, apiErrorFromResponse(resp)
	}

	raw := resp.Body()
	if len(raw) == 0 {
		return nil, nil
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("toast orders page %d: decoding response: %w", req.Page, err)
	}
	return body, nil
}

// ListRestaurants proxies the partner restaurant listing without transforming
// the payload.
func (c *Client) ListRestaurants(ctx context.Context, token string) (json.RawMessage, error) {
	return c.passthrough(ctx, token, restaurantsPath, "")
}

// GetRestaurant proxies a single restaurant's configuration record.
func (c *Client) GetRestaurant(ctx context.Context, token, guid string) (json.RawMessage, error) {
	resolved, err := c.resolveRestaurantGUID(guid)
	if err != nil {
		return nil, err
	}
	path := "/restaurants/v1/restaurants/" + resolved
	return c.passthrough(ctx, token, path, resolved)
}

func (c *Client) passthrough(ctx context.Context, token, path, guid string) (json.RawMessage, error) {
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token)
	if guid != "" {
		req.SetHeader(restaurantHeader, guid)
	}

	resp, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("toast request %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, apiErrorFromResponse(resp)
	}

	return json.RawMessage(resp.Body()), nil
}

func (c *Client) resolveRestaurantGUID(guid string) (string, error) {
	if resolved := strings.TrimSpace(guid); resolved != "" {
		return resolved, nil
	}
	if c.defaultRestaurantGUID == "" {
		return "", ErrMissingRestaurantGUID
	}
	return c.defaultRestaurantGUID, nil
}

func apiErrorFromResponse(resp *resty.Response) error {
	return &APIError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Body:       strings.TrimSpace(resp.String()),
	}
}
