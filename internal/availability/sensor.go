package availability

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vigil-network/vigil/internal/domain"
	"github.com/vigil-network/vigil/internal/infra/metrics"
)

// Alert is the severity of an escalation action.
type Alert int

const (
	AlertMild Alert = iota
	AlertMedium
	AlertSevere
)

func (a Alert) String() string {
	switch a {
	case AlertMild:
		return "MILD"
	case AlertMedium:
		return "MEDIUM"
	default:
		return "SEVERE"
	}
}

// Config configures the availability sensor.
type Config struct {
	Interval         time.Duration // time between rounds
	SampleSize       int           // peers probed per round
	Sensitivity      int           // failed probes that flag a round
	Retention        int           // window capacity in rounds
	MaximumAloneTime time.Duration // isolation timeout with zero known peers
	RoundTimeout     time.Duration // ceiling for one round's probes
	ProbeConcurrency int           // bounded probe fan-out per round
}

// DefaultConfig returns the production sensor defaults.
func DefaultConfig() Config {
	return Config{
		Interval:         2 * time.Minute,
		SampleSize:       3,
		Sensitivity:      2,
		Retention:        10,
		MaximumAloneTime: 2 * time.Minute,
		RoundTimeout:     30 * time.Second,
		ProbeConcurrency: 3,
	}
}

type escalation struct {
	threshold int
	alert     Alert
}

// Sensor periodically samples known peers, scores their responsiveness
// over a sliding window, and escalates through alert levels. It owns its
// window and escalation policy; the directory and prober are read-only
// collaborators.
type Sensor struct {
	cfg     Config
	self    string // advertised locator of the owning node
	dir     domain.Directory
	prober  domain.Prober
	archive domain.RoundArchive
	onAlert func(Alert)
	now     func() time.Time

	rnd         *rand.Rand
	window      *Window
	escalations []escalation

	mu        sync.Mutex
	running   bool
	startTime time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

// Option customizes a Sensor.
type Option func(*Sensor)

// WithRand injects a deterministic random source for peer sampling.
func WithRand(rnd *rand.Rand) Option {
	return func(s *Sensor) { s.rnd = rnd }
}

// WithArchive persists each round outcome through the given archive.
func WithArchive(a domain.RoundArchive) Option {
	return func(s *Sensor) { s.archive = a }
}

// WithAlertHook invokes fn for every escalation that fires.
func WithAlertHook(fn func(Alert)) Option {
	return func(s *Sensor) { s.onAlert = fn }
}

// NewSensor creates a stopped sensor for the node advertised at self.
func NewSensor(cfg Config, self string, dir domain.Directory, prober domain.Prober, opts ...Option) (*Sensor, error) {
	if cfg.Interval <= 0 || cfg.SampleSize <= 0 || cfg.Sensitivity <= 0 || cfg.Retention <= 0 || cfg.MaximumAloneTime <= 0 {
		return nil, fmt.Errorf("availability config values must be positive: %+v", cfg)
	}
	if cfg.RoundTimeout <= 0 {
		cfg.RoundTimeout = DefaultConfig().RoundTimeout
	}
	if cfg.ProbeConcurrency <= 0 {
		cfg.ProbeConcurrency = cfg.SampleSize
	}

	s := &Sensor{
		cfg:    cfg,
		self:   self,
		dir:    dir,
		prober: prober,
		now:    time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		window: NewWindow(cfg.Retention),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Later entries win on threshold collision (retention <= 3 collapses
	// the mild and medium thresholds onto 1).
	policy := map[int]Alert{}
	for _, e := range []escalation{
		{1, AlertMild},
		{cfg.Retention / 2, AlertMedium},
		{cfg.Retention, AlertSevere},
	} {
		policy[e.threshold] = e.alert
	}
	for threshold, alert := range policy {
		s.escalations = append(s.escalations, escalation{threshold, alert})
	}
	sort.Slice(s.escalations, func(i, j int) bool {
		return s.escalations[i].threshold < s.escalations[j].threshold
	})

	return s, nil
}

// Running reports whether the periodic task is active.
func (s *Sensor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start transitions Stopped→Running, records the activation instant and
// begins ticking every Interval. When immediately is true the first
// round fires before the first tick. Returns ErrSensorRunning if the
// sensor is already running.
func (s *Sensor) Start(ctx context.Context, immediately bool) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return domain.ErrSensorRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	s.running = true
	s.startTime = s.now()
	s.cancel = cancel
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	go s.run(ctx, immediately, done)
	return nil
}

// Stop cancels future ticks. An in-flight round runs to completion
// under its own round timeout. Returns ErrSensorStopped if the sensor
// is not running.
func (s *Sensor) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return domain.ErrSensorStopped
	}
	s.running = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	return nil
}

func (s *Sensor) run(ctx context.Context, immediately bool, done chan struct{}) {
	defer close(done)

	if immediately {
		s.tick(ctx)
	}

	// time.Ticker drops ticks when a round overruns the interval, so a
	// slow round skips ticks instead of queueing a backlog.
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs one round, containing any error so scheduling continues;
// a severe escalation logs but does not stop the task.
func (s *Sensor) tick(ctx context.Context) {
	roundCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.RoundTimeout)
	defer cancel()

	start := s.now()
	if err := s.Maintain(roundCtx); err != nil {
		log.Printf("[availability] unhandled error during availability check: %v", err)
	}
	metrics.RoundDuration.Observe(s.now().Sub(start).Seconds())
}

// Maintain executes one sampling round.
func (s *Sensor) Maintain(ctx context.Context) error {
	peers := s.dir.KnownPeers()

	if len(peers) == 0 {
		// No known peers: skip the round, but not for longer than the
		// maximum allotted alone time.
		if !s.dir.Lonely() {
			s.mu.Lock()
			started := s.startTime
			s.mu.Unlock()
			if s.now().Sub(started) >= s.cfg.MaximumAloneTime {
				return s.escalate(AlertSevere)
			}
		}
		return nil
	}

	if len(peers) < s.cfg.SampleSize {
		// Too few peers to sample meaningfully.
		return nil
	}

	failed, err := s.Measure(ctx, peers)
	if err != nil {
		return err
	}
	s.record(failed)
	return s.issueAlerts()
}

// Measure probes a random sample of peers and reports whether the round
// counts as failed (failed probes >= sensitivity). The sensitivity
// guard fires synchronously, independent of peer population.
func (s *Sensor) Measure(ctx context.Context, peers []domain.Peer) (bool, error) {
	if s.cfg.Sensitivity > s.cfg.SampleSize {
		return false, fmt.Errorf("sensitivity (%d) vs sample size (%d): %w",
			s.cfg.Sensitivity, s.cfg.SampleSize, domain.ErrSensitivityExceedsSample)
	}
	if len(peers) < s.cfg.SampleSize {
		return false, fmt.Errorf("need %d peers, have %d: %w",
			s.cfg.SampleSize, len(peers), domain.ErrTooFewPeers)
	}

	sampled := s.samplePeers(peers, s.cfg.SampleSize)

	var failures atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.cfg.ProbeConcurrency)
	for _, peer := range sampled {
		peer := peer
		g.Go(func() error {
			if err := s.prober.Probe(ctx, peer); err != nil {
				failures.Add(1)
				metrics.ProbeFailures.Inc()
			}
			return nil
		})
	}
	_ = g.Wait()

	return int(failures.Load()) >= s.cfg.Sensitivity, nil
}

// samplePeers draws k distinct peers uniformly without replacement.
func (s *Sensor) samplePeers(peers []domain.Peer, k int) []domain.Peer {
	out := make([]domain.Peer, 0, k)
	for _, i := range s.rnd.Perm(len(peers))[:k] {
		out = append(out, peers[i])
	}
	return out
}

// record appends the round outcome to the window and archives it.
func (s *Sensor) record(failed bool) {
	now := s.now()
	s.mu.Lock()
	s.window.Append(Record{Time: now, Failed: failed})
	score := s.window.Score()
	s.mu.Unlock()

	result := "ok"
	if failed {
		result = "failed"
	}
	metrics.Rounds.WithLabelValues(result).Inc()
	metrics.Score.Set(score)

	if s.archive != nil {
		rec := domain.RoundRecord{ID: uuid.NewString(), Time: now, Failed: failed, Score: score}
		if err := s.archive.SaveRound(rec); err != nil {
			log.Printf("[availability] archive round: %v", err)
		}
	}
}

// issueAlerts fires every escalation whose threshold the score reaches.
// Thresholds are integers compared against a score in [0,1], so medium
// and severe only trigger at retention 1.
func (s *Sensor) issueAlerts() error {
	score := s.Score()
	for _, e := range s.escalations {
		if score >= float64(e.threshold) {
			if err := s.escalate(e.alert); err != nil {
				return err
			}
		}
	}
	return nil
}

// escalate performs one alert action. Only severe yields an error; the
// run loop decides what to do with it.
func (s *Sensor) escalate(a Alert) error {
	if s.onAlert != nil {
		s.onAlert(a)
	}
	metrics.Escalations.WithLabelValues(a.String()).Inc()

	switch a {
	case AlertMild:
		log.Printf("[availability] %s is unreachable", s.self)
	case AlertMedium:
		log.Printf("[availability] WARNING: %s is unreachable", s.self)
	case AlertSevere:
		log.Printf("[availability] CRITICAL: %s is unreachable", s.self)
		return fmt.Errorf("%s: %w", s.self, domain.ErrUnreachable)
	}
	return nil
}

// Score returns the current window score.
func (s *Sensor) Score() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window.Score()
}

// Status is a snapshot of the sensor for the status API.
type Status struct {
	Running   bool      `json:"running"`
	Score     float64   `json:"score"`
	Rounds    int       `json:"rounds"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

// Status returns a snapshot of the sensor state.
func (s *Sensor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Running: s.running,
		Score:   s.window.Score(),
		Rounds:  s.window.Len(),
	}
	if s.running {
		st.StartedAt = s.startTime
	}
	return st
}
