package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kylycht/fxpad/model"
	"github.com/kylycht/fxpad/service"
	"github.com/kylycht/fxpad/service/metrics"
	"github.com/kylycht/fxpad/storage"
	"github.com/kylycht/fxpad/storage/codec"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	fetchTimeout = time.Second * 10
)

// ErrPivotMismatch is returned when the source answers for another pivot
var ErrPivotMismatch = errors.New("rates returned for unexpected pivot")

// ErrNotSaved is returned when refreshed rates were applied but could not be persisted
var ErrNotSaved = errors.New("rates refreshed but not saved")

// RateStore owns the pivot-relative rate table. Valid rates are loaded
// eagerly at construction, so a failed refresh never leaves it empty.
type RateStore struct {
	lock    sync.RWMutex    // rw lock guards current and applied
	current model.RateCache // rate table in use
	applied uint64          // generation of the refresh that produced current

	generation     uint64             // last generation handed out, guarded by lock
	group          singleflight.Group // collapses concurrent refreshes
	exchangeClient service.Exchange   // exchange client to fetch information from
	blobs          storage.BlobStore  // durable storage for the cache blob
	metrics        *metrics.Metrics
	maxAge         time.Duration
	now            func() time.Time

	hooksLock sync.Mutex
	hooks     []func(model.RateTable)

	ticker *time.Ticker  // ticker to refresh the cache every X interval
	doneC  chan struct{} // chan to signal ticker stoppage
}

// Option configures a RateStore
type Option func(*RateStore)

// WithMaxAge sets the age after which the cache reports expired
func WithMaxAge(d time.Duration) Option {
	return func(s *RateStore) { s.maxAge = d }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *RateStore) { s.now = now }
}

// WithMetrics records refresh outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *RateStore) { s.metrics = m }
}

// New creates the store and loads the persisted or default rates
func New(ctx context.Context, exchangeClient service.Exchange, blobs storage.BlobStore, opts ...Option) *RateStore {
	s := &RateStore{
		exchangeClient: exchangeClient,
		blobs:          blobs,
		maxAge:         model.DefaultMaxAge,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.current = s.LoadRates(ctx)
	s.metrics.RatesApplied(s.current.Timestamp)

	return s
}

// LoadRates reads the persisted cache. A missing, unreadable or corrupt
// cache, or one for another pivot, yields the built-in default rates.
func (s *RateStore) LoadRates(ctx context.Context) model.RateCache {
	text, err := s.blobs.ReadText(ctx, storage.RatesKey)
	if errors.Is(err, storage.ErrNotFound) {
		log.Debug().Msg("no cached rates, using defaults")
		return model.DefaultRateCache(s.now())
	}
	if err != nil {
		log.Warn().Err(err).Msg("unable to read cached rates, using defaults")
		return model.DefaultRateCache(s.now())
	}

	res := codec.DecodeRates(text)
	if !res.OK() {
		log.Warn().Err(res.Reason).Msg("cached rates are corrupt, using defaults")
		return model.DefaultRateCache(s.now())
	}
	if res.Value.Pivot != model.Pivot {
		log.Warn().Str("pivot", res.Value.Pivot).Msg("cached rates use another pivot, using defaults")
		return model.DefaultRateCache(s.now())
	}

	log.Debug().Int("rates", res.Value.Rates.Len()).Time("timestamp", res.Value.Timestamp).Msg("loaded cached rates")
	return res.Value
}

// SaveRates persists the whole table with its capture time
func (s *RateStore) SaveRates(ctx context.Context, rates model.RateTable, timestamp time.Time) error {
	text, err := codec.EncodeRates(model.RateCache{Rates: rates, Timestamp: timestamp, Pivot: rates.Pivot()})
	if err != nil {
		return err
	}

	if err := s.blobs.WriteText(ctx, storage.RatesKey, text); err != nil {
		s.metrics.PersistFailed(storage.RatesKey)
		return fmt.Errorf("save rates: %w", err)
	}

	return nil
}

// FetchAndUpdate fetches fresh rates for the pivot, merges them into
// the current table, applies and persists the result. On fetch failure
// the current table and the persisted cache stay untouched.
// Concurrent calls share one fetch.
func (s *RateStore) FetchAndUpdate(ctx context.Context) error {
	_, err, _ := s.group.Do("refresh", func() (interface{}, error) {
		return nil, s.refresh(ctx)
	})
	return err
}

func (s *RateStore) refresh(ctx context.Context) error {
	s.lock.Lock()
	s.generation++
	gen := s.generation
	s.lock.Unlock()

	fetchCtx, cancelFn := context.WithTimeout(ctx, fetchTimeout)
	defer cancelFn()

	resp, err := s.exchangeClient.FetchRates(fetchCtx, model.Pivot)
	if err == nil && resp.Pivot != "" && resp.Pivot != model.Pivot {
		err = fmt.Errorf("%w: %s", ErrPivotMismatch, resp.Pivot)
	}
	if err != nil {
		s.metrics.Refresh("failed")
		log.Error().Err(err).Msg("unable to refresh rates, keeping current rates")
		return err
	}

	next, ok := s.apply(gen, resp.Rates)
	if !ok {
		s.metrics.Refresh("stale")
		log.Debug().Uint64("generation", gen).Msg("discarding stale rates")
		return nil
	}

	s.metrics.Refresh("ok")
	s.notify(next.Rates)

	if err := s.SaveRates(ctx, next.Rates, next.Timestamp); err != nil {
		return fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	return nil
}

// apply merges rates into the current table unless a newer refresh
// was already applied
func (s *RateStore) apply(gen uint64, rates map[string]float64) (model.RateCache, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if gen < s.applied {
		return model.RateCache{}, false
	}

	s.current = model.RateCache{
		Rates:     s.current.Rates.Merge(rates),
		Timestamp: s.now(),
		Pivot:     model.Pivot,
	}
	s.applied = gen
	s.metrics.RatesApplied(s.current.Timestamp)

	return s.current, true
}

// Rates returns the rate table in use
func (s *RateStore) Rates() model.RateTable {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.current.Rates
}

// Cache returns the rate table in use with its capture time
func (s *RateStore) Cache() model.RateCache {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.current
}

// Expired reports whether the rates in use are older than the max age
func (s *RateStore) Expired() bool {
	return s.Cache().IsExpired(s.now(), s.maxAge)
}

// IsExpired reports whether cache is older than maxAgeHours
func (s *RateStore) IsExpired(cache model.RateCache, maxAgeHours float64) bool {
	return cache.IsExpired(s.now(), time.Duration(maxAgeHours*float64(time.Hour)))
}

// OnUpdate registers fn to receive every newly applied table
func (s *RateStore) OnUpdate(fn func(model.RateTable)) {
	s.hooksLock.Lock()
	defer s.hooksLock.Unlock()
	s.hooks = append(s.hooks, fn)
}

func (s *RateStore) notify(rates model.RateTable) {
	s.hooksLock.Lock()
	hooks := make([]func(model.RateTable), len(s.hooks))
	copy(hooks, s.hooks)
	s.hooksLock.Unlock()

	for _, fn := range hooks {
		fn(rates)
	}
}

// Start refreshes the rates every interval until Stop
func (s *RateStore) Start(interval time.Duration) {
	if interval <= 0 || s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(interval)
	s.doneC = make(chan struct{})

	go func(ticker *time.Ticker, doneC chan struct{}) {
		for {
			select {
			case <-doneC:
				return

			case t := <-ticker.C:
				if err := s.FetchAndUpdate(context.Background()); err != nil {
					log.Error().Err(err).Str("time", t.String()).Str("retry", interval.String()).Msg("unable to update cache")
				}
			}
		}
	}(s.ticker, s.doneC)
}

// Stop ends the periodic refresh
func (s *RateStore) Stop() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	close(s.doneC)
	s.ticker = nil
}
