package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kylycht/fxpad/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startMachine(t *testing.T, opts ...Option) (*Machine, context.CancelFunc) {
	t.Helper()

	initial := New(model.DefaultCatalog(), testRates(), model.UserPreferences{
		SelectedCodes: []string{"EUR", "USD"},
		ActiveCode:    "EUR",
		InputText:     "100",
	})
	m := NewMachine(initial, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)
	t.Cleanup(cancel)

	return m, cancel
}

func TestMachine_Dispatch(t *testing.T) {
	m, _ := startMachine(t)
	ctx := context.Background()

	s, err := m.Dispatch(ctx, SetActive("EUR"))
	require.NoError(t, err)
	s, err = m.Dispatch(ctx, Digit("7"))
	require.NoError(t, err)

	assert.Equal(t, "7", anchorText(t, s))
	assert.Equal(t, s.Items(), m.Snapshot().Items())
}

func TestMachine_RejectedTransitionKeepsState(t *testing.T) {
	m, _ := startMachine(t)

	s, err := m.Dispatch(context.Background(), AddCurrency("XXX"))

	assert.ErrorIs(t, err, ErrUnknownCurrency)
	assert.Equal(t, []string{"EUR", "USD"}, s.Selected())
}

func TestMachine_SerializesConcurrentDispatch(t *testing.T) {
	m, _ := startMachine(t)
	ctx := context.Background()

	_, err := m.Dispatch(ctx, EditText(""))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Dispatch(ctx, Digit("1"))
		}()
	}
	wg.Wait()

	assert.Len(t, anchorText(t, m.Snapshot()), 50)
}

func TestMachine_PreferencesHook(t *testing.T) {
	var (
		mu    sync.Mutex
		saved []model.UserPreferences
	)
	m, _ := startMachine(t, WithPreferencesHook(func(p model.UserPreferences) {
		mu.Lock()
		defer mu.Unlock()
		saved = append(saved, p)
	}))
	ctx := context.Background()

	_, err := m.Dispatch(ctx, Digit("5"))
	require.NoError(t, err)
	// rates do not change preferences
	_, err = m.Dispatch(ctx, RatesUpdated(model.DefaultRates()))
	require.NoError(t, err)
	_, err = m.Dispatch(ctx, AddCurrency("GBP"))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, saved, 2)
	assert.Equal(t, "5", saved[0].InputText)
	assert.Equal(t, []string{"EUR", "USD", "GBP"}, saved[1].SelectedCodes)
}

func TestMachine_TransitionHook(t *testing.T) {
	var names []string
	m, _ := startMachine(t, WithTransitionHook(func(name string, err error) {
		names = append(names, name)
	}))

	_, _ = m.Dispatch(context.Background(), Backspace())
	_, _ = m.Dispatch(context.Background(), RemoveCurrency("USD"))

	assert.Equal(t, []string{"backspace", "remove_currency"}, names)
}

func TestMachine_Subscribe(t *testing.T) {
	m, _ := startMachine(t)
	updates, cancel := m.Subscribe()
	defer cancel()

	_, err := m.Dispatch(context.Background(), EditText("3"))
	require.NoError(t, err)

	select {
	case s := <-updates:
		assert.Equal(t, "3", anchorText(t, s))
	case <-time.After(time.Second):
		t.Fatal("no state published")
	}
}

func TestMachine_SlowSubscriberGetsLatest(t *testing.T) {
	m, _ := startMachine(t)
	updates, cancel := m.Subscribe()
	defer cancel()

	for _, text := range []string{"1", "2", "3"} {
		_, err := m.Dispatch(context.Background(), EditText(text))
		require.NoError(t, err)
	}

	s := <-updates
	assert.Equal(t, "3", anchorText(t, s))
}

func TestMachine_Stopped(t *testing.T) {
	m, cancel := startMachine(t)
	updates, _ := m.Subscribe()

	cancel()
	<-m.doneC

	_, err := m.Dispatch(context.Background(), Digit("1"))
	assert.ErrorIs(t, err, ErrStopped)

	_, open := <-updates
	assert.False(t, open)
}
