// Package viewer hosts a live graph session and serves it over HTTP.
package viewer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matsen/bizgraph/internal/graph"
	"github.com/matsen/bizgraph/internal/layout"
	"github.com/matsen/bizgraph/internal/logger"
	"github.com/matsen/bizgraph/internal/palette"
	"github.com/matsen/bizgraph/internal/scene"
	"github.com/matsen/bizgraph/internal/source"
	"github.com/matsen/bizgraph/internal/svg"
)

// Options configures a Session.
type Options struct {
	Width, Height float64
	FullURL       string
	Params        *layout.Params // nil uses layout.DefaultParams
	Measurer      scene.Measurer
}

// Snapshot is an immutable view of the session published after each turn.
type Snapshot struct {
	Scene   *scene.Scene    `json:"scene"`
	Legend  []palette.Entry `json:"legend"`
	Stats   graph.Stats     `json:"stats"`
	State   string          `json:"state"`
	Alpha   float64         `json:"alpha"`
	Ticks   int             `json:"ticks"`
	Turns   int             `json:"turns"`
	Dropped int             `json:"dropped"` // Links dropped for missing endpoints
}

// Session owns a store, color assigner, simulation and binder, and drives
// them one turn at a time. Enqueue may be called from any goroutine; every
// other mutating method must be called from the single loop goroutine.
type Session struct {
	mu      sync.Mutex
	pending []*graph.Batch

	store  *graph.Store
	colors *palette.Assigner
	sim    *layout.Simulation
	binder *scene.Binder
	doc    *svg.Document

	inTurn  bool
	ticks   int
	turns   int
	dropped int
	prev    *scene.Scene

	snapshot atomic.Pointer[Snapshot]
	frame    atomic.Pointer[[]byte]
}

// NewSession creates an empty session and publishes its first snapshot.
func NewSession(opts Options) *Session {
	params := layout.DefaultParams()
	if opts.Params != nil {
		params = *opts.Params
	}
	doc := svg.New(opts.Width, opts.Height)
	colors := palette.NewAssigner()
	s := &Session{
		store:  graph.NewStore(),
		colors: colors,
		sim:    layout.New(params, doc),
		binder: scene.NewBinder(colors, doc, scene.Options{FullURL: opts.FullURL, Measurer: opts.Measurer}),
		doc:    doc,
	}
	s.sim.OnTick(func(layout.Tick) {
		s.ticks++
	})
	s.publish()
	return s
}

// Enqueue hands a batch to the session. It is merged at the start of the
// next turn.
func (s *Session) Enqueue(b *graph.Batch) {
	if b == nil {
		return
	}
	s.mu.Lock()
	s.pending = append(s.pending, b)
	s.mu.Unlock()
}

// Pending returns the number of batches waiting for the next turn.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Session) drain() []*graph.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	batches := s.pending
	s.pending = nil
	return batches
}

// OnTick registers fn to run inside each simulation step. Batches enqueued
// from fn are merged on the following turn.
func (s *Session) OnTick(fn func(layout.Tick)) {
	s.sim.OnTick(fn)
}

// Resize changes the canvas bounds. The simulation picks them up the next
// time it is seeded.
func (s *Session) Resize(width, height float64) {
	s.doc.Resize(width, height)
}

// Turn merges pending batches, advances the layout one step, and publishes
// a snapshot. It reports whether the simulation ticked. A Turn called from
// inside a tick callback does nothing.
func (s *Session) Turn() bool {
	if s.inTurn {
		return false
	}
	s.inTurn = true
	defer func() { s.inTurn = false }()

	for _, b := range s.drain() {
		s.merge(b)
	}

	ticked := s.sim.Tick()
	s.binder.Render(s.store)
	s.turns++

	next := s.binder.Scene().Clone()
	scene.Apply(s.doc, s.prev, next)
	s.prev = next
	s.publish()
	return ticked
}

func (s *Session) merge(b *graph.Batch) {
	res := s.store.Merge(b)
	s.dropped += len(res.Dropped)
	for _, d := range res.Dropped {
		logger.Debug("dropped link", "id", d.ID, "from", d.FromID, "to", d.ToID, "reason", d.Reason)
	}
	if res.Changed() {
		s.binder.Restyle(s.store)
		logger.Debug("batch merged",
			"nodes", len(res.AddedNodes),
			"links", len(res.AddedLinks),
			"dropped", len(res.Dropped),
			"version", s.store.Version())
	}
	s.sim.Seed(s.store.Nodes(), s.store.Links())
	s.sim.Start()
}

func (s *Session) publish() {
	snap := &Snapshot{
		Scene:   s.prev,
		Legend:  s.colors.Legend(),
		Stats:   s.store.Stats(),
		State:   s.sim.State().String(),
		Alpha:   s.sim.Alpha(),
		Ticks:   s.ticks,
		Turns:   s.turns,
		Dropped: s.dropped,
	}
	if snap.Scene == nil {
		snap.Scene = s.binder.Render(s.store).Clone()
	}
	// Encoded here, after Apply has finished, so readers never see a
	// document mid-update.
	frame := s.doc.Bytes()
	s.frame.Store(&frame)
	s.snapshot.Store(snap)
}

// Snapshot returns the most recently published snapshot. It is safe to call
// from any goroutine.
func (s *Session) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// SVG returns the most recently published frame as an SVG document. It is
// safe to call from any goroutine; callers must not modify the result.
func (s *Session) SVG() []byte {
	return *s.frame.Load()
}

// Run drives Turn at ticksPerSecond until ctx is done.
func (s *Session) Run(ctx context.Context, ticksPerSecond float64) error {
	return layout.Run(ctx, ticksPerSecond, func() { s.Turn() })
}

// Poll fetches url once, then again every interval until ctx is done.
// Successful batches are enqueued; failures are logged and retried at the
// next interval. A zero interval fetches once. Poll returns nil when ctx is
// cancelled.
func (s *Session) Poll(ctx context.Context, f source.Fetcher, url string, interval time.Duration) error {
	s.fetchOnce(ctx, f, url)
	if interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.fetchOnce(ctx, f, url)
		}
	}
}

func (s *Session) fetchOnce(ctx context.Context, f source.Fetcher, url string) {
	log := logger.With("url", url)
	b, err := f.Fetch(ctx, url)
	if err != nil {
		switch {
		case ctx.Err() != nil:
		case source.IsRateLimited(err):
			log.Warn("data source rate limited; retrying next interval")
		case source.IsNotFound(err):
			log.Warn("batch not found", "err", err)
		default:
			log.Warn("fetch failed", "err", err)
		}
		return
	}
	log.Info("fetched batch", "nodes", len(b.Nodes), "links", len(b.Links))
	s.Enqueue(b)
}
