// Package sslcommerz talks to the SSLCommerz hosted payment gateway: session
// creation for the hosted page redirect and the validator API used to confirm
// IPN callbacks.
package sslcommerz

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

const (
	sessionEndpoint    = "/gwprocess/v4/api.php"
	validationEndpoint = "/validator/api/validationserverAPI.php"
)

type Service struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     zerolog.Logger
}

func (s *Service) LoggerComponent() string {
	return "SSLCommerz.Service"
}

func NewService(opts ...ServiceOption) *Service {
	c := &Service{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log.Logger,
	}

	for _, o := range opts {
		o(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "sslcommerz",
		Timeout: 30 * time.Second,
	})
	c.logger = c.logger.With().Str("component", c.LoggerComponent()).Logger()

	return c
}

type ServiceOption func(*Service)

func WithLogger(l zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

func WithHTTPClient(c *http.Client) ServiceOption {
	return func(s *Service) {
		s.httpClient = c
	}
}

// CreateSession registers a payment session for the given store and returns
// the hosted payment page URL the customer must be redirected to.
func (s *Service) CreateSession(ctx context.Context, creds Credentials, in *SessionRequest) (*SessionResponse, error) {
	l := s.logger.With().
		Str("method", "CreateSession").
		Str("tran_id", in.TranID).
		Logger()
	ctx = l.WithContext(ctx)

	form := url.Values{}
	form.Set("store_id", creds.StoreID)
	form.Set("store_passwd", creds.StoreSecret)
	form.Set("total_amount", in.Amount.String())
	form.Set("currency", in.Currency)
	form.Set("tran_id", in.TranID)
	form.Set("success_url", in.SuccessURL)
	form.Set("fail_url", in.FailURL)
	form.Set("cancel_url", in.CancelURL)
	form.Set("ipn_url", in.IPNURL)
	form.Set("shipping_method", "No")
	form.Set("product_name", in.ProductName)
	form.Set("product_category", in.ProductCategory)
	form.Set("product_profile", "general")
	form.Set("cus_name", in.CustomerName)
	form.Set("cus_email", in.CustomerEmail)
	form.Set("cus_add1", "N/A")
	form.Set("cus_city", "N/A")
	form.Set("cus_country", "Bangladesh")
	form.Set("cus_phone", "N/A")

	out := &SessionResponse{}
	if err := s.genericCall(ctx, http.MethodPost, creds.BaseURL+sessionEndpoint, form, out); err != nil {
		return nil, err
	}

	l.Debug().
		Str("session_status", out.Status).
		Str("gateway_page_url", out.GatewayPageURL).
		Msg("CreateSession done")

	return out, nil
}

// ValidatePayment asks the validator API for the authoritative state of a
// payment referenced by the IPN's val_id.
func (s *Service) ValidatePayment(ctx context.Context, creds Credentials, valID string) (*ValidationResponse, error) {
	l := s.logger.With().
		Str("method", "ValidatePayment").
		Str("val_id", valID).
		Logger()
	ctx = l.WithContext(ctx)

	q := url.Values{}
	q.Set("val_id", valID)
	q.Set("store_id", creds.StoreID)
	q.Set("store_passwd", creds.StoreSecret)
	q.Set("format", "json")

	out := &ValidationResponse{}
	if err := s.genericCall(ctx, http.MethodGet, creds.BaseURL+validationEndpoint+"?"+q.Encode(), nil, out); err != nil {
		return nil, err
	}

	l.Debug().Str("validation_status", out.Status).Msg("ValidatePayment done")

	return out, nil
}

type RemoteError struct {
	ResponseBody string
	StatusCode   int
}

func NewRemoteError(responseBody string, statusCode int) *RemoteError {
	return &RemoteError{ResponseBody: responseBody, StatusCode: statusCode}
}

func (e *RemoteError) Error() string {
	return e.ResponseBody
}

func (s *Service) genericCall(ctx context.Context, method, fullURL string, form url.Values, out interface{}) error {
	l := zerolog.Ctx(ctx).With().Str("http_method", method).Logger()
	ctx = l.WithContext(ctx)

	v, err := s.breaker.Execute(func() (interface{}, error) {
		return s.request(ctx, method, fullURL, form)
	})
	if err != nil {
		l.Error().Err(err).Msg("Gateway request failed")
		return fmt.Errorf("request: %w", err)
	}
	res := v.(*http.Response)

	if res.StatusCode >= 400 {
		resBody := readString(res.Body)
		l.Error().
			Int("http_status", res.StatusCode).
			Str("http_body", resBody).
			Msg("Gateway responded with error")
		return NewRemoteError(resBody, res.StatusCode)
	}

	if err := readJSON(res.Body, out); err != nil {
		return fmt.Errorf("body read: %w", err)
	}

	return nil
}

func (s *Service) request(ctx context.Context, method, fullURL string, form url.Values) (*http.Response, error) {
	l := zerolog.Ctx(ctx).With().Str("url", fullURL).Logger()
	l.Debug().Msg("HTTP request")

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req, err := http.NewRequest(method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req = req.WithContext(ctx)

	if form != nil {
		req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Add("Accept", "application/json")

	res, err := s.httpClient.Do(req)
	if err != nil {
		l.Error().Err(err).Msg("Call failed")
		return nil, fmt.Errorf("do request: %w", err)
	}

	return res, nil
}
