// Package engine keeps two linked amount fields of a swap form consistent
// while exchange rates arrive asynchronously.
//
// The user edits one field, the driven one; the engine computes the other.
// Every accepted change is stamped with a new version and handled by a task
// running in its own goroutine. A task fetches a quote, converts the driven
// amount and applies the result only if no newer change has happened in the
// meantime, so results are applied in version order rather than completion
// order. The computed field is written directly and never schedules work,
// which rules out update loops between the two fields.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/govalues/fxswap"
)

// State is the stage of the most recent request.
type State int8

const (
	// Idle means no request is in flight: the pair is incomplete or the last request failed.
	Idle State = iota
	// RateFetchPending means a quote for the pair is being fetched.
	RateFetchPending
	// CalculationPending means a quote is held and the conversion is being computed.
	CalculationPending
	// Settled means the computed field and the breakdown reflect the current inputs.
	Settled
)

// String implements the [fmt.Stringer] interface.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RateFetchPending:
		return "rate_fetch_pending"
	case CalculationPending:
		return "calculation_pending"
	case Settled:
		return "settled"
	default:
		return fmt.Sprintf("State(%d)", int8(s))
	}
}

// AssetRegistry resolves asset ids. [*fxswap.Registry] implements it.
type AssetRegistry interface {
	Lookup(id string) (fxswap.Asset, error)
}

// RatesProvider fetches a quote for a pair of assets. It may block and may fail;
// the engine does not retry.
type RatesProvider interface {
	Fetch(ctx context.Context, a, b fxswap.Asset) (fxswap.Quote, error)
}

// Converter converts an amount between two assets. [*fxswap.Calculator] implements it.
type Converter interface {
	Convert(dir fxswap.Direction, a, b fxswap.Asset, q fxswap.Quote, amount *big.Int) (*big.Int, fxswap.Breakdown, error)
}

// Snapshot is a consistent copy of the engine state.
type Snapshot struct {
	TokenAID    string
	TokenBID    string
	TokenAInput string
	TokenBInput string
	Direction   fxswap.Direction
	Version     uint64
	Breakdown   *fxswap.Breakdown // nil when no result is available
	State       State
	Err         error // cause of the last failure, nil unless State is Idle
}

type swapState struct {
	aID, bID     string
	aText, bText string
	dir          fxswap.Direction
	breakdown    *fxswap.Breakdown
	state        State
	err          error
}

// heldQuote is the last quote obtained, reused while the pair stays the same.
type heldQuote struct {
	pair  string
	quote fxswap.Quote
}

type request struct {
	version uint64
	a, b    fxswap.Asset
	pair    string
	dir     fxswap.Direction
	amount  *big.Int     // nil when the driven field is empty
	quote   fxswap.Quote // nil until fetched
}

// Engine owns the state of one swap form.
// Its methods are safe for concurrent use by multiple goroutines.
// Engines are independent: each session constructs its own.
type Engine struct {
	registry AssetRegistry
	rates    RatesProvider
	conv     Converter
	log      *zap.Logger
	metrics  *Metrics
	digits   int
	notify   func(Snapshot)
	parent   context.Context
	ctx      context.Context
	cancel   context.CancelFunc

	mu    sync.Mutex
	st    swapState
	held  *heldQuote
	tasks tracker
}

// New returns an idle engine with empty fields and direction [fxswap.Forward].
func New(registry AssetRegistry, rates RatesProvider, conv Converter, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		rates:    rates,
		conv:     conv,
		log:      zap.NewNop(),
		digits:   fxswap.TrimZeros,
		parent:   context.Background(),
	}
	e.tasks.idle = sync.NewCond(&e.mu)
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.Named("engine")
	e.ctx, e.cancel = context.WithCancel(e.parent)
	return e
}

// SetTokenAInput sets the text of field A and makes it the driven field.
//
// SetTokenAInput returns an error wrapping [fxswap.ErrParse] if the text is
// not a non-negative plain decimal; the previous text is kept.
func (e *Engine) SetTokenAInput(text string) error {
	return e.setInput(fxswap.Forward, text)
}

// SetTokenBInput sets the text of field B and makes it the driven field.
//
// SetTokenBInput returns an error wrapping [fxswap.ErrParse] if the text is
// not a non-negative plain decimal; the previous text is kept.
func (e *Engine) SetTokenBInput(text string) error {
	return e.setInput(fxswap.Backward, text)
}

// SetTokenAID selects the asset of field A. An empty id clears the selection.
func (e *Engine) SetTokenAID(id string) {
	e.setID(&e.st.aID, id)
}

// SetTokenBID selects the asset of field B. An empty id clears the selection.
func (e *Engine) SetTokenBID(id string) {
	e.setID(&e.st.bID, id)
}

// SetDirectionForward makes field A the driven field.
func (e *Engine) SetDirectionForward() {
	e.setDirection(fxswap.Forward)
}

// SetDirectionBackward makes field B the driven field.
func (e *Engine) SetDirectionBackward() {
	e.setDirection(fxswap.Backward)
}

func (e *Engine) setInput(dir fxswap.Direction, text string) error {
	if err := validateInput(text); err != nil {
		return err
	}
	e.mu.Lock()
	field := &e.st.aText
	if dir == fxswap.Backward {
		field = &e.st.bText
	}
	if *field == text && e.st.dir == dir {
		e.mu.Unlock()
		return nil
	}
	*field = text
	e.st.dir = dir
	snap := e.scheduleLocked()
	e.mu.Unlock()
	e.publish(snap)
	return nil
}

func (e *Engine) setID(field *string, id string) {
	e.mu.Lock()
	if *field == id {
		e.mu.Unlock()
		return
	}
	*field = id
	snap := e.scheduleLocked()
	e.mu.Unlock()
	e.publish(snap)
}

func (e *Engine) setDirection(dir fxswap.Direction) {
	e.mu.Lock()
	if e.st.dir == dir {
		e.mu.Unlock()
		return
	}
	e.st.dir = dir
	snap := e.scheduleLocked()
	e.mu.Unlock()
	e.publish(snap)
}

// validateInput accepts an empty string or a non-negative plain decimal.
func validateInput(text string) error {
	if text == "" {
		return nil
	}
	amount, err := fxswap.ParseAtomic(text, fxswap.Scale)
	if err != nil {
		return err
	}
	if amount.Sign() < 0 || strings.HasPrefix(text, "-") {
		return fmt.Errorf("parsing %q: %w: negative amount", text, fxswap.ErrParse)
	}
	return nil
}

// scheduleLocked supersedes outstanding work and starts a task for the
// current state, if there is anything to compute.
// A complete pair without a held quote always starts a task, even when the
// driven field is empty: the quote is fetched and held for the next input.
func (e *Engine) scheduleLocked() Snapshot {
	v := e.tasks.next()
	e.metrics.request()
	st := &e.st
	st.breakdown = nil
	st.err = nil

	if st.aID == "" || st.bID == "" {
		st.state = Idle
		return e.snapshotLocked()
	}
	driven := st.aText
	if st.dir == fxswap.Backward {
		driven = st.bText
	}
	if driven == "" {
		e.setComputedLocked("")
	}

	req, err := e.requestLocked(v, driven)
	if err != nil {
		e.failLocked(v, err)
		return e.snapshotLocked()
	}
	switch {
	case req.amount == nil && req.quote != nil:
		st.state = Settled
		return e.snapshotLocked()
	case req.quote != nil:
		st.state = CalculationPending
	default:
		st.state = RateFetchPending
	}
	e.log.Debug("scheduled conversion",
		zap.Uint64("version", v),
		zap.String("pair", req.pair),
		zap.Stringer("direction", req.dir),
		zap.Bool("quote_held", req.quote != nil),
	)
	e.tasks.goTask(func() { e.run(req) })
	return e.snapshotLocked()
}

func (e *Engine) requestLocked(v uint64, driven string) (request, error) {
	a, err := e.registry.Lookup(e.st.aID)
	if err != nil {
		return request{}, err
	}
	b, err := e.registry.Lookup(e.st.bID)
	if err != nil {
		return request{}, err
	}
	in := a
	if e.st.dir == fxswap.Backward {
		in = b
	}
	var amount *big.Int
	if driven != "" {
		amount, err = in.ParseAmount(driven)
		if err != nil {
			return request{}, err
		}
	}
	req := request{
		version: v,
		a:       a,
		b:       b,
		pair:    fxswap.PairKey(a.ID(), b.ID()),
		dir:     e.st.dir,
		amount:  amount,
	}
	if e.held != nil && e.held.pair == req.pair {
		req.quote = e.held.quote
	}
	return req, nil
}

// run fetches a quote unless one is held, then converts the amount, if any.
// Each step's result is applied only if the request is still current.
func (e *Engine) run(req request) {
	if req.quote == nil {
		q, err := e.fetch(req)
		e.mu.Lock()
		if !e.tasks.current(req.version) {
			e.staleLocked(req, "quote")
			e.mu.Unlock()
			return
		}
		if err != nil {
			e.failLocked(req.version, err)
			snap := e.snapshotLocked()
			e.mu.Unlock()
			e.publish(snap)
			return
		}
		e.held = &heldQuote{pair: req.pair, quote: q}
		if req.amount == nil {
			e.st.state = Settled
			e.log.Debug("holding quote", zap.Uint64("version", req.version), zap.String("pair", req.pair))
			snap := e.snapshotLocked()
			e.mu.Unlock()
			e.publish(snap)
			return
		}
		e.st.state = CalculationPending
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.publish(snap)
		req.quote = q
	}

	out, bd, err := e.conv.Convert(req.dir, req.a, req.b, req.quote, req.amount)

	e.mu.Lock()
	if !e.tasks.current(req.version) {
		e.staleLocked(req, "conversion")
		e.mu.Unlock()
		return
	}
	if err != nil {
		e.failLocked(req.version, err)
	} else {
		e.settleLocked(req, out, bd)
	}
	snap := e.snapshotLocked()
	e.mu.Unlock()
	e.publish(snap)
}

func (e *Engine) fetch(req request) (fxswap.Quote, error) {
	q, err := e.rates.Fetch(e.ctx, req.a, req.b)
	switch {
	case err != nil && !errors.Is(err, fxswap.ErrRateFetch):
		return nil, fmt.Errorf("fetching %v/%v: %w: %w", req.a, req.b, fxswap.ErrRateFetch, err)
	case err != nil:
		return nil, err
	case q == nil:
		return nil, fmt.Errorf("fetching %v/%v: no quote: %w", req.a, req.b, fxswap.ErrRateFetch)
	}
	return q, nil
}

func (e *Engine) settleLocked(req request, out *big.Int, bd fxswap.Breakdown) {
	computed := req.b
	if req.dir == fxswap.Backward {
		computed = req.a
	}
	e.setComputedLocked(computed.FormatAmount(out, e.digits))
	e.st.breakdown = &bd
	e.st.state = Settled
	e.metrics.settled()
	e.log.Debug("settled conversion",
		zap.Uint64("version", req.version),
		zap.String("pair", req.pair),
		zap.Stringer("direction", req.dir),
		zap.Stringer("amount", out),
		zap.Stringer("fee", bd.Fee),
	)
}

// setComputedLocked writes the field that is not driven.
// It never schedules work.
func (e *Engine) setComputedLocked(text string) {
	if e.st.dir == fxswap.Backward {
		e.st.aText = text
	} else {
		e.st.bText = text
	}
}

// failLocked clears the result and keeps both texts.
// A failed quote is not reused.
func (e *Engine) failLocked(v uint64, err error) {
	kind := failureKind(err)
	e.st.breakdown = nil
	e.st.state = Idle
	e.st.err = err
	e.held = nil
	e.metrics.failure(kind)
	e.log.Warn("conversion failed",
		zap.Uint64("version", v),
		zap.String("kind", kind),
		zap.Error(err),
	)
}

func (e *Engine) staleLocked(req request, step string) {
	e.metrics.stale()
	e.log.Info("discarded stale result",
		zap.String("step", step),
		zap.Uint64("version", req.version),
		zap.Uint64("current", e.tasks.version),
		zap.String("pair", req.pair),
	)
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, fxswap.ErrRateFetch):
		return kindRateFetch
	case errors.Is(err, fxswap.ErrUnknownAsset):
		return kindUnknownAsset
	case errors.Is(err, fxswap.ErrDivideByZero):
		return kindDivideByZero
	default:
		return kindOther
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		TokenAID:    e.st.aID,
		TokenBID:    e.st.bID,
		TokenAInput: e.st.aText,
		TokenBInput: e.st.bText,
		Direction:   e.st.dir,
		Version:     e.tasks.version,
		Breakdown:   cloneBreakdown(e.st.breakdown),
		State:       e.st.state,
		Err:         e.st.err,
	}
}

func cloneBreakdown(bd *fxswap.Breakdown) *fxswap.Breakdown {
	if bd == nil {
		return nil
	}
	c := bd.Clone()
	return &c
}

func (e *Engine) publish(snap Snapshot) {
	if e.notify != nil {
		e.notify(snap)
	}
}

// Snapshot returns a consistent copy of the whole state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// TokenAInput returns the text of field A.
func (e *Engine) TokenAInput() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.aText
}

// TokenBInput returns the text of field B.
func (e *Engine) TokenBInput() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.bText
}

// TokenAID returns the asset id selected for field A.
func (e *Engine) TokenAID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.aID
}

// TokenBID returns the asset id selected for field B.
func (e *Engine) TokenBID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.bID
}

// Direction returns [fxswap.Forward] if field A is driven and
// [fxswap.Backward] if field B is.
func (e *Engine) Direction() fxswap.Direction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.dir
}

// Breakdown returns the fee breakdown of the settled result, or nil if no
// result is available.
func (e *Engine) Breakdown() *fxswap.Breakdown {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneBreakdown(e.st.breakdown)
}

// State returns the stage of the most recent request.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.state
}

// Err returns the cause of the last failure, or nil.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.err
}

// Version returns the version of the most recent request.
func (e *Engine) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasks.version
}

// Wait blocks until no task is running, whether its result was applied or
// discarded. It may be called concurrently with the setters; it then returns
// at the first moment no task is in flight.
func (e *Engine) Wait() {
	e.tasks.wait()
}

// Close cancels the context passed to the rates provider.
// With a provider that honors cancellation, requests needing a quote fail
// with [fxswap.ErrRateFetch] after Close.
func (e *Engine) Close() {
	e.cancel()
}
