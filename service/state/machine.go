package state

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/kylycht/fxpad/model"
	"github.com/rs/zerolog/log"
)

// ErrStopped is returned by Dispatch once the machine loop has exited
var ErrStopped = errors.New("state machine stopped")

type request struct {
	ev     Event
	replyC chan response // buffered, the loop never blocks on reply
}

type response struct {
	state State
	err   error
}

// Option configures a Machine
type Option func(*Machine)

// WithPreferencesHook registers fn to be called from the loop
// whenever a transition changes the persistable preferences.
// fn must not block.
func WithPreferencesHook(fn func(model.UserPreferences)) Option {
	return func(m *Machine) { m.onPreferences = fn }
}

// WithTransitionHook registers fn to be called after every transition
func WithTransitionHook(fn func(name string, err error)) Option {
	return func(m *Machine) { m.onTransition = fn }
}

// Machine owns the conversion State. All transitions run one at a time
// on the goroutine executing Run, readers get immutable snapshots.
type Machine struct {
	requestC chan request  // serialized transition requests
	doneC    chan struct{} // closed when Run returns

	lock    sync.RWMutex // guards current
	current State

	subsLock sync.Mutex
	subs     map[int]chan State
	nextSub  int

	onPreferences func(model.UserPreferences)
	onTransition  func(string, error)
}

func NewMachine(initial State, opts ...Option) *Machine {
	m := &Machine{
		requestC: make(chan request),
		doneC:    make(chan struct{}),
		current:  initial,
		subs:     make(map[int]chan State),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Run processes transitions until ctx is done
func (m *Machine) Run(ctx context.Context) {
	defer close(m.doneC)

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("state machine stopped")
			m.closeSubscribers()
			return

		case req := <-m.requestC:
			req.replyC <- m.handle(req.ev)
		}
	}
}

func (m *Machine) handle(ev Event) response {
	prev := m.Snapshot()

	next, err := Reduce(prev, ev)
	if m.onTransition != nil {
		m.onTransition(ev.Name, err)
	}
	if err != nil {
		log.Debug().Err(err).Str("event", ev.Name).Msg("transition rejected")
		return response{state: prev, err: err}
	}

	m.lock.Lock()
	m.current = next
	m.lock.Unlock()

	log.Debug().Str("event", ev.Name).Str("anchor", next.Anchor()).Float64("value", next.AnchorValue()).Msg("transition applied")

	if m.onPreferences != nil {
		if p := next.Preferences(); !samePreferences(prev.Preferences(), p) {
			m.onPreferences(p)
		}
	}

	m.publish(next)

	return response{state: next}
}

// Dispatch submits ev and waits for the resulting state
func (m *Machine) Dispatch(ctx context.Context, ev Event) (State, error) {
	req := request{ev: ev, replyC: make(chan response, 1)}

	select {
	case m.requestC <- req:
	case <-m.doneC:
		return m.Snapshot(), ErrStopped
	case <-ctx.Done():
		return m.Snapshot(), ctx.Err()
	}

	select {
	case resp := <-req.replyC:
		return resp.state, resp.err
	case <-ctx.Done():
		return m.Snapshot(), ctx.Err()
	}
}

// Snapshot returns the current state
func (m *Machine) Snapshot() State {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.current
}

// Subscribe returns a channel receiving every new state. A slow
// subscriber only misses intermediate states, it always gets the latest.
// The returned func cancels the subscription.
func (m *Machine) Subscribe() (<-chan State, func()) {
	m.subsLock.Lock()
	defer m.subsLock.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan State, 1)
	m.subs[id] = ch

	return ch, func() {
		m.subsLock.Lock()
		defer m.subsLock.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
}

func (m *Machine) publish(s State) {
	m.subsLock.Lock()
	defer m.subsLock.Unlock()

	for _, ch := range m.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		// drop the stale pending state
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

func (m *Machine) closeSubscribers() {
	m.subsLock.Lock()
	defer m.subsLock.Unlock()

	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
}

func samePreferences(a, b model.UserPreferences) bool {
	return a.ActiveCode == b.ActiveCode &&
		a.InputText == b.InputText &&
		slices.Equal(a.SelectedCodes, b.SelectedCodes)
}
