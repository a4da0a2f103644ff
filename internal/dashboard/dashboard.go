package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// Phase is the request lifecycle of one surface.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
)

// ErrRequestInFlight is returned when a surface's submit control is hit while
// a request is already outstanding. The caller should treat it as "control
// disabled": nothing was started and no state changed.
var ErrRequestInFlight = errors.New("a request is already in flight for this surface")

// LookupView is the UI-visible state of the quick-lookup surface.
type LookupView struct {
	Mode    Mode
	Phase   Phase
	Reading *Reading
	Raw     RawPayload
	Err     *SurfaceError
}

// ChatView is the UI-visible state of the chat surface.
type ChatView struct {
	Phase    Phase
	Exchange *ChatExchange
	Err      *SurfaceError
}

// SchedulesView is the UI-visible mirror of the server's schedule list.
type SchedulesView struct {
	Phase Phase
	Items []Schedule
	Err   *SurfaceError
}

// HistoryView is the UI-visible copy of the server's audit feed.
type HistoryView struct {
	Phase Phase
	Items []FeedItem
	Err   *SurfaceError
}

// Dashboard composes the four surfaces over one backend client and one
// session store. Each surface owns exactly one result slot and one error
// slot; an error on one surface never touches another.
type Dashboard struct {
	api     *Client
	session *SessionStore
	clock   func() time.Time

	mu     sync.Mutex
	lookup LookupView
	chat   ChatView
	sched  SchedulesView
	feed   HistoryView

	// Generation counters: bumped when a surface is reset so a late
	// completion from before the reset is dropped instead of resurrecting
	// stale state. Requests themselves are never cancelled.
	lookupGen int
	chatGen   int
}

func New(api *Client) *Dashboard {
	return &Dashboard{
		api:     api,
		session: NewSessionStore(),
		clock:   time.Now,
	}
}

// WithClock replaces the time source; used by tests.
func (d *Dashboard) WithClock(clock func() time.Time) *Dashboard {
	d.clock = clock
	return d
}

// Session exposes the session history store (read side for charting).
func (d *Dashboard) Session() *SessionStore {
	return d.session
}

// Lookup returns a copy of the lookup surface state.
func (d *Dashboard) Lookup() LookupView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lookup
}

// Chat returns a copy of the chat surface state.
func (d *Dashboard) Chat() ChatView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chat
}

// SetMode switches the active query mode. Switching clears the current
// reading, raw payload and error, but never the session history. An in-flight
// lookup keeps running; its late result is dropped.
func (d *Dashboard) SetMode(mode Mode) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.lookup.Mode == mode {
		return
	}
	d.lookup = LookupView{Mode: mode}
	d.lookupGen++
}

// SubmitLookup runs one lookup in the active mode. Empty input fails with a
// ValidationError before any network call. Only one lookup may be in flight;
// a second submission returns ErrRequestInFlight untouched.
func (d *Dashboard) SubmitLookup(ctx context.Context, rawInput string) error {
	input := strings.TrimSpace(rawInput)

	d.mu.Lock()
	if d.lookup.Phase == PhasePending {
		d.mu.Unlock()
		return ErrRequestInFlight
	}
	mode := d.lookup.Mode

	if input == "" {
		verr := validationError("Please enter a " + mode.inputField() + ".")
		d.lookup.Reading = nil
		d.lookup.Raw = nil
		d.lookup.Err = verr
		d.mu.Unlock()
		return verr
	}

	// Coin ids are canonically lower-case; city names are sent as typed, the
	// server decides their canonical casing.
	if mode == ModeCrypto {
		input = strings.ToLower(input)
	}

	d.lookup.Phase = PhasePending
	gen := d.lookupGen
	d.mu.Unlock()

	var (
		reading Reading
		raw     RawPayload
		err     error
	)
	if mode == ModeCrypto {
		reading, raw, err = d.api.FetchCrypto(ctx, input)
	} else {
		reading, raw, err = d.api.FetchWeather(ctx, input)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.lookupGen {
		// Surface was reset while we were out; this slot no longer exists.
		return nil
	}
	d.lookup.Phase = PhaseIdle

	if err != nil {
		d.lookup.Reading = nil
		d.lookup.Raw = nil
		d.lookup.Err = asSurfaceError(err)
		return d.lookup.Err
	}

	d.lookup.Reading = &reading
	d.lookup.Raw = raw
	d.lookup.Err = nil

	// History is keyed by the identity the server returned, not the raw
	// input (e.g. server-corrected city casing).
	key := reading.EntityKey()
	if key == "" {
		key = input
	}
	d.session.Record(key, reading.ChartValue(), d.clock())
	return nil
}

// CurrentChart projects the session series for the entity of the current
// reading. ok is false when there is no current reading or no points.
func (d *Dashboard) CurrentChart() (ChartSeries, bool) {
	d.mu.Lock()
	reading := d.lookup.Reading
	d.mu.Unlock()

	if reading == nil {
		return ChartSeries{}, false
	}
	return ProjectSeries(d.session, reading.EntityKey())
}

// SubmitChat asks the agent one question. The chat surface is independent of
// the lookup surface: both may be in flight concurrently.
func (d *Dashboard) SubmitChat(ctx context.Context, rawMessage string) error {
	message := strings.TrimSpace(rawMessage)

	d.mu.Lock()
	if d.chat.Phase == PhasePending {
		d.mu.Unlock()
		return ErrRequestInFlight
	}

	if message == "" {
		verr := validationError("Please enter a message.")
		d.chat.Exchange = nil
		d.chat.Err = verr
		d.mu.Unlock()
		return verr
	}

	d.chat.Phase = PhasePending
	gen := d.chatGen
	d.mu.Unlock()

	answer, err := d.api.Chat(ctx, message)

	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.chatGen {
		return nil
	}
	d.chat.Phase = PhaseIdle

	if err != nil {
		d.chat.Exchange = nil
		d.chat.Err = asSurfaceError(err)
		return d.chat.Err
	}

	d.chat.Exchange = &ChatExchange{Question: message, Answer: answer}
	d.chat.Err = nil
	return nil
}

// ResetChat clears the chat surface; a late in-flight answer is dropped.
func (d *Dashboard) ResetChat() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chat = ChatView{}
	d.chatGen++
}
