package forex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/eapache/go-resiliency/breaker"
	"github.com/eapache/go-resiliency/retrier"
	"github.com/kylycht/fxpad/service"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL string = "https://api.frankfurter.app/" // base URL of the rates API
)

// ErrUnexpectedStatus is returned for any non 200 response
var ErrUnexpectedStatus = errors.New("unexpected status code")

type Response struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// Config tunes the client
type Config struct {
	BaseURL           string
	APIKey            string        // sent as api_key query parameter when set
	RequestsPerSecond float64       // rate limit
	Burst             int           // rate limiter burst
	Retries           int           // retries after the first attempt
	Backoff           time.Duration // initial retry backoff, doubled per retry
	Timeout           time.Duration // per request timeout
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 1
	}
	if c.Burst <= 0 {
		c.Burst = 5
	}
	if c.Retries < 0 {
		c.Retries = 0
	}
	if c.Backoff <= 0 {
		c.Backoff = 200 * time.Millisecond
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return c
}

type client struct {
	baseURL     *url.URL         // Base URL for API requests
	httpClient  *http.Client     // HTTP client used to communicate with the API.
	rateLimiter *rate.Limiter    // Rate limiter for the rates api
	retrier     *retrier.Retrier // Retries transient failures
	breaker     *breaker.Breaker // Stops hammering a failing api
}

func New(cfg Config) (service.Exchange, error) {
	cfg = cfg.withDefaults()

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	apiKey := cfg.APIKey
	c := &client{
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		retrier:     retrier.New(retrier.ExponentialBackoff(cfg.Retries, cfg.Backoff), classifier{}),
		breaker:     breaker.New(3, 1, 30*time.Second),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: roundTripperFn(
				func(req *http.Request) (*http.Response, error) {
					if apiKey != "" {
						params := req.URL.Query()
						params.Set("api_key", apiKey)
						req.URL.RawQuery = params.Encode()
					}

					return http.DefaultTransport.RoundTrip(req)
				},
			),
		},
		baseURL: base,
	}

	return c, nil
}

func (f *client) Do(ctx context.Context, req *http.Request, v interface{}) error {
	err := f.rateLimiter.Wait(ctx)
	if err != nil {
		return err
	}

	log.Debug().Str("url", req.URL.String()).Msg("fetching information from API")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError{code: resp.StatusCode}
	}

	switch v := v.(type) {
	case nil:
	case io.Writer:
		_, err = io.Copy(v, resp.Body)
	default:
		decErr := json.NewDecoder(resp.Body).Decode(v)
		if decErr == io.EOF {
			decErr = nil // ignore EOF errors caused by empty response body
		}
		if decErr != nil {
			err = permanent{decErr}
		}
	}

	return err
}

// FetchRates implements service.Exchange.
// GET /latest?base=EUR
func (f *client) FetchRates(ctx context.Context, pivot string) (service.RateResponse, error) {
	u, err := f.baseURL.Parse("latest")
	if err != nil {
		return service.RateResponse{}, err
	}

	r := &Response{}

	err = f.breaker.Run(func() error {
		return f.retrier.RunCtx(ctx, func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
			if err != nil {
				return permanent{err}
			}

			query := req.URL.Query()
			query.Set("base", pivot)
			req.URL.RawQuery = query.Encode()

			return f.Do(ctx, req, r)
		})
	})
	if err != nil {
		var p permanent
		if errors.As(err, &p) {
			err = p.err
		}
		return service.RateResponse{}, fmt.Errorf("fetch rates for %s: %w", pivot, err)
	}

	if r.Base == "" {
		r.Base = pivot
	}

	log.Debug().Str("base", r.Base).Int("rates", len(r.Rates)).Str("date", r.Date).Msg("fetched rates")

	return service.RateResponse{Pivot: r.Base, Rates: r.Rates}, nil
}

type statusError struct {
	code int
}

func (e statusError) Error() string {
	return fmt.Sprintf("unable to fetch rates due to code: %d", e.code)
}

func (e statusError) Unwrap() error {
	return ErrUnexpectedStatus
}

// permanent marks errors that retrying cannot fix
type permanent struct {
	err error
}

func (p permanent) Error() string { return p.err.Error() }
func (p permanent) Unwrap() error { return p.err }

// classifier retries transport errors and 5xx/429 responses
type classifier struct{}

func (classifier) Classify(err error) retrier.Action {
	if err == nil {
		return retrier.Succeed
	}

	var p permanent
	if errors.As(err, &p) {
		return retrier.Fail
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retrier.Fail
	}

	var se statusError
	if errors.As(err, &se) {
		if se.code >= http.StatusInternalServerError || se.code == http.StatusTooManyRequests {
			return retrier.Retry
		}
		return retrier.Fail
	}

	return retrier.Retry
}

type roundTripperFn func(*http.Request) (*http.Response, error)

func (fn roundTripperFn) RoundTrip(r *http.Request) (*http.Response, error) {
	return fn(r)
}
