package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hetulpatel/pairwatch/internal/classifier"
	"github.com/hetulpatel/pairwatch/internal/logging"
	"github.com/hetulpatel/pairwatch/internal/observability"
	"github.com/hetulpatel/pairwatch/internal/pairs"
	"github.com/hetulpatel/pairwatch/internal/report"
)

const defaultFetchTimeout = 10 * time.Second

// Config controls what a tracker watches and how it judges new pairs.
type Config struct {
	Chain        pairs.Chain
	Thresholds   classifier.Thresholds
	FetchTimeout time.Duration
}

// Tracker classifies pairs the first time the provider lists them. One tracker
// watches one chain; trackers share no state.
type Tracker struct {
	cfg      Config
	provider pairs.Provider
	sink     report.Sink
	metrics  *observability.Metrics
	seen     *SeenSet
	now      func() time.Time
}

// New builds a tracker. sink and metrics may be nil.
func New(cfg Config, provider pairs.Provider, sink report.Sink, metrics *observability.Metrics) *Tracker {
	if cfg.Chain == "" {
		cfg.Chain = pairs.ChainEthereum
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	return &Tracker{
		cfg:      cfg,
		provider: provider,
		sink:     sink,
		metrics:  metrics,
		seen:     NewSeenSet(),
		now:      time.Now,
	}
}

func (t *Tracker) Chain() pairs.Chain {
	return t.cfg.Chain
}

// Seen reports whether the pair address has already been evaluated.
func (t *Tracker) Seen(pairAddress string) bool {
	return t.seen.Contains(pairAddress)
}

// SeenCount is the number of pairs evaluated so far.
func (t *Tracker) SeenCount() int {
	return t.seen.Len()
}

// Poll runs one cycle: fetch, drop already seen pairs, classify the rest, record
// them as seen and hand the reports to the sink. A failed cycle returns no
// reports and leaves the seen set untouched.
func (t *Tracker) Poll(ctx context.Context) []report.Report {
	cycleID := uuid.NewString()
	reports, err := t.collect(ctx, cycleID)
	if err != nil {
		logging.Errorf("[tracker] %s cycle %s failed: %v", t.cfg.Chain, cycleID, err)
		return nil
	}
	if len(reports) > 0 {
		t.emit(ctx, reports)
	}
	return reports
}

func (t *Tracker) collect(ctx context.Context, cycleID string) (reports []report.Report, err error) {
	start := time.Now()
	chain := string(t.cfg.Chain)
	defer func() {
		if r := recover(); r != nil {
			reports, err = nil, fmt.Errorf("unexpected panic: %v", r)
			t.metrics.ObservePoll(chain, observability.OutcomeFailed, time.Since(start))
		}
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, t.cfg.FetchTimeout)
	res := t.provider.FetchNewPairs(fetchCtx, t.cfg.Chain)
	cancel()

	if res.Failed() {
		t.metrics.ObservePoll(chain, observability.OutcomeFailed, time.Since(start))
		return nil, fmt.Errorf("%s fetch: %w", t.provider.Name(), res.Err)
	}
	if res.Skipped > 0 {
		logging.Warnf("[tracker] %s cycle %s skipped %d malformed pairs", chain, cycleID, res.Skipped)
		t.metrics.ObserveSkipped(res.Skipped)
	}
	if len(res.Pairs) == 0 {
		logging.Infof("[tracker] %s: no new pairs found", chain)
		t.metrics.ObservePoll(chain, observability.OutcomeEmpty, time.Since(start))
		return nil, nil
	}

	observedAt := t.now()
	staged := make(map[string]struct{}, len(res.Pairs))
	ids := make([]string, 0, len(res.Pairs))
	for _, snap := range res.Pairs {
		if t.seen.Contains(snap.PairAddress) {
			continue
		}
		if _, dup := staged[snap.PairAddress]; dup {
			continue
		}
		staged[snap.PairAddress] = struct{}{}
		ids = append(ids, snap.PairAddress)

		reports = append(reports, report.Report{
			CycleID:    cycleID,
			ObservedAt: observedAt,
			Snapshot:   snap,
			Verdict:    classifier.Classify(snap, t.cfg.Thresholds),
		})
	}

	// Commit only after the whole listing was handled.
	t.seen.Add(ids...)
	t.metrics.SetSeen(t.seen.Len())
	for _, r := range reports {
		t.metrics.ObserveVerdict(chain, r.Verdict.Trustworthy)
	}

	outcome := observability.OutcomeOK
	if len(reports) == 0 {
		outcome = observability.OutcomeEmpty
		logging.Debugf("[tracker] %s cycle %s: %d listed, all seen", chain, cycleID, len(res.Pairs))
	} else {
		logging.Debugf("[tracker] %s cycle %s: %d listed, %d new", chain, cycleID, len(res.Pairs), len(reports))
	}
	t.metrics.ObservePoll(chain, outcome, time.Since(start))
	return reports, nil
}

func (t *Tracker) emit(ctx context.Context, reports []report.Report) {
	if t.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logging.Errorf("[tracker] sink %s panicked: %v", t.sink.Name(), r)
			t.metrics.ObserveSinkError(t.sink.Name())
		}
	}()
	if err := t.sink.Emit(ctx, reports); err != nil {
		logging.Errorf("[tracker] deliver %d reports: %v", len(reports), err)
		t.metrics.ObserveSinkError(t.sink.Name())
	}
}
