// Package engine runs incremental scans: it decides which of a user's
// connections are stale, collects and classifies them, and replaces their
// persisted findings.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pankaj-dahiya-devops/spendscan/internal/classifier"
	"github.com/pankaj-dahiya-devops/spendscan/internal/lock"
	"github.com/pankaj-dahiya-devops/spendscan/internal/models"
	"github.com/pankaj-dahiya-devops/spendscan/internal/policy"
	"github.com/pankaj-dahiya-devops/spendscan/internal/pricing"
	"github.com/pankaj-dahiya-devops/spendscan/internal/providers"
	"github.com/pankaj-dahiya-devops/spendscan/internal/store"
)

const (
	DefaultStalenessWindow          = time.Hour
	DefaultMaxConcurrentConnections = 3
	DefaultCollectorTimeout         = 45 * time.Second
	DefaultLockTTL                  = 5 * time.Minute
)

// Store is the persistence the orchestrator needs.
type Store interface {
	store.ConnectionStore
	store.FindingStore
}

// Collector fetches provider data for one connection. *providers.Registry
// implements it.
type Collector interface {
	Collect(ctx context.Context, conn models.Connection, creds providers.Credentials, tier models.Tier) (*models.ProviderData, error)
}

// Classifier turns provider data into findings.
type Classifier interface {
	Classify(in classifier.Input) []models.Finding
}

// Annotator adds cosmetic fields to findings before they are persisted.
type Annotator interface {
	Annotate(ctx context.Context, findings []models.Finding)
}

// TierFunc resolves a user's subscription tier.
type TierFunc func(ctx context.Context, userID string) (models.Tier, error)

// StaticTier returns a TierFunc that always answers t.
func StaticTier(t models.Tier) TierFunc {
	return func(context.Context, string) (models.Tier, error) { return t, nil }
}

// Options tunes the orchestrator. Zero values take the defaults above.
type Options struct {
	StalenessWindow          time.Duration
	MaxConcurrentConnections int
	CollectorTimeout         time.Duration
	LockTTL                  time.Duration
	Policy                   *policy.PolicyConfig
	Converter                pricing.Converter
	Logger                   *zap.Logger
	Now                      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.StalenessWindow <= 0 {
		o.StalenessWindow = DefaultStalenessWindow
	}
	if o.MaxConcurrentConnections <= 0 {
		o.MaxConcurrentConnections = DefaultMaxConcurrentConnections
	}
	if o.CollectorTimeout <= 0 {
		o.CollectorTimeout = DefaultCollectorTimeout
	}
	if o.LockTTL <= 0 {
		o.LockTTL = DefaultLockTTL
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Params are the orchestrator's collaborators. Store, Collectors and
// Classifier are required.
type Params struct {
	Store       Store
	Collectors  Collector
	Credentials providers.CredentialResolver
	Classifier  Classifier
	Tiers       TierFunc
	Locker      lock.Locker
	Annotator   Annotator
	Options     Options
}

// Orchestrator is the scan orchestrator. It is the only writer of a
// connection's Status, ErrorMessage and LastScannedAt.
type Orchestrator struct {
	store      Store
	collectors Collector
	creds      providers.CredentialResolver
	classifier Classifier
	tiers      TierFunc
	locker     lock.Locker
	annotator  Annotator
	opts       Options
	log        *zap.Logger
}

// NewOrchestrator wires an Orchestrator. Missing optional collaborators get
// inert defaults: plaintext credentials, the free tier, no lock and no
// annotation.
func NewOrchestrator(p Params) *Orchestrator {
	opts := p.Options.withDefaults()
	o := &Orchestrator{
		store:      p.Store,
		collectors: p.Collectors,
		creds:      p.Credentials,
		classifier: p.Classifier,
		tiers:      p.Tiers,
		locker:     p.Locker,
		annotator:  p.Annotator,
		opts:       opts,
		log:        opts.Logger.Named("scan.orchestrator"),
	}
	if o.creds == nil {
		o.creds = providers.PlaintextResolver{}
	}
	if o.tiers == nil {
		o.tiers = StaticTier(models.TierFree)
	}
	if o.locker == nil {
		o.locker = lock.Noop{}
	}
	return o
}

// Trigger scans the user's stale connections and returns the full current
// finding set. The only error returned is a failure to load the user's
// connections or findings; per-connection failures are reported in
// TriggerResult.Connections.
func (o *Orchestrator) Trigger(ctx context.Context, userID string, forceRefresh bool) (*TriggerResult, error) {
	lk, err := o.locker.Obtain(ctx, lock.Key(userID), o.opts.LockTTL)
	switch {
	case errors.Is(err, lock.ErrNotObtained):
		o.log.Info("scan already running; returning persisted findings", zap.String("user_id", userID))
		return o.cachedResult(ctx, userID)
	case err != nil:
		o.log.Warn("could not obtain scan lock; proceeding without it", zap.String("user_id", userID), zap.Error(err))
	default:
		defer func() {
			if err := lk.Release(context.WithoutCancel(ctx)); err != nil {
				o.log.Warn("release scan lock", zap.String("user_id", userID), zap.Error(err))
			}
		}()
	}

	conns, prior, err := o.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	tier, err := o.tiers(ctx, userID)
	if err != nil {
		o.log.Warn("tier lookup failed; using free tier", zap.String("user_id", userID), zap.Error(err))
		tier = models.TierFree
	}
	now := o.opts.Now().UTC()

	outcomes := make([]ConnectionOutcome, len(conns))
	fresh := make([][]models.Finding, len(conns))
	stale := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.MaxConcurrentConnections)
	for i, conn := range conns {
		outcomes[i] = ConnectionOutcome{ConnectionID: conn.ID, Provider: conn.Provider, State: StateNeedsScan}
		if conn.Status == models.ConnectionDisconnected {
			outcomes[i].State = StateSkipped
			outcomes[i].Reason = "disconnected"
			continue
		}
		if !o.isStale(conn, now, forceRefresh) {
			outcomes[i].State = StateSkipped
			outcomes[i].Reason = "fresh"
			continue
		}
		stale++
		g.Go(func() error {
			outcomes[i], fresh[i] = o.scan(gctx, conn, tier, now)
			return nil
		})
	}
	_ = g.Wait()

	res := &TriggerResult{
		Cached:           stale == 0,
		TotalConnections: len(conns),
		Connections:      outcomes,
	}
	for i, conn := range conns {
		if outcomes[i].State == StateScanned {
			res.ScannedConnections++
			res.Findings = append(res.Findings, fresh[i]...)
			continue
		}
		res.Findings = append(res.Findings, prior[conn.ID]...)
		outcomes[i].FindingCount = len(prior[conn.ID])
	}
	if res.Findings == nil {
		res.Findings = []models.Finding{}
	}

	o.log.Info("scan trigger complete",
		zap.String("user_id", userID),
		zap.Int("total_connections", res.TotalConnections),
		zap.Int("scanned_connections", res.ScannedConnections),
		zap.Int("stale_connections", stale),
		zap.Int("findings", len(res.Findings)))
	return res, nil
}

// GetResults returns the persisted findings of the user's connections in
// connection order. It never collects.
func (o *Orchestrator) GetResults(ctx context.Context, userID string) ([]models.Finding, error) {
	conns, prior, err := o.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := []models.Finding{}
	for _, c := range conns {
		out = append(out, prior[c.ID]...)
	}
	return out, nil
}

func (o *Orchestrator) cachedResult(ctx context.Context, userID string) (*TriggerResult, error) {
	conns, prior, err := o.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := &TriggerResult{Cached: true, TotalConnections: len(conns), Findings: []models.Finding{}}
	for _, c := range conns {
		res.Findings = append(res.Findings, prior[c.ID]...)
		res.Connections = append(res.Connections, ConnectionOutcome{
			ConnectionID: c.ID,
			Provider:     c.Provider,
			State:        StateSkipped,
			Reason:       "scan in progress",
			FindingCount: len(prior[c.ID]),
		})
	}
	return res, nil
}

func (o *Orchestrator) load(ctx context.Context, userID string) ([]models.Connection, map[string][]models.Finding, error) {
	conns, err := o.store.ListConnections(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load connections for %s: %w", userID, err)
	}
	findings, err := o.store.ListFindings(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load findings for %s: %w", userID, err)
	}
	byConn := make(map[string][]models.Finding, len(conns))
	for _, f := range findings {
		byConn[f.ConnectionID] = append(byConn[f.ConnectionID], f)
	}
	return conns, byConn, nil
}

func (o *Orchestrator) isStale(conn models.Connection, now time.Time, force bool) bool {
	if force || conn.LastScannedAt == nil {
		return true
	}
	return now.Sub(*conn.LastScannedAt) > o.opts.StalenessWindow
}

// scan runs collect → classify → annotate → replace for one connection.
// Connection-level failures mark the connection as errored and leave its
// findings untouched.
func (o *Orchestrator) scan(ctx context.Context, conn models.Connection, tier models.Tier, now time.Time) (ConnectionOutcome, []models.Finding) {
	out := ConnectionOutcome{ConnectionID: conn.ID, Provider: conn.Provider, State: StateScanning}
	log := o.log.With(
		zap.String("user_id", conn.UserID),
		zap.String("connection_id", conn.ID),
		zap.String("provider", string(conn.Provider)))
	log.Debug("scanning connection")

	creds, err := o.creds.Resolve(ctx, conn)
	if err != nil {
		return o.fail(ctx, log, conn, out, providers.NewConnectionError(conn.Provider, "credentials unavailable", err)), nil
	}

	cctx, cancel := context.WithTimeout(ctx, o.opts.CollectorTimeout)
	data, err := o.collectors.Collect(cctx, conn, creds, tier)
	cancel()
	if err != nil {
		return o.fail(ctx, log, conn, out, err), nil
	}

	findings := o.classifier.Classify(classifier.Input{
		Provider:  conn.Provider,
		Data:      data,
		Tier:      tier,
		Now:       now,
		Policy:    o.opts.Policy,
		Converter: o.opts.Converter,
	})
	for i := range findings {
		f := &findings[i]
		f.UserID = conn.UserID
		f.ConnectionID = conn.ID
		f.ID = FindingID(f.Key())
		f.DetectedAt = now
	}
	if o.annotator != nil {
		o.annotator.Annotate(ctx, findings)
	}

	if err := o.store.ReplaceFindings(ctx, conn.UserID, conn.ID, findings); err != nil {
		// not a connection failure; LastScannedAt stays put so the next
		// trigger retries
		log.Error("persist findings failed", zap.Error(err))
		out.State = StateFailed
		out.Error = err.Error()
		return out, nil
	}
	if err := o.store.UpdateScanStatus(ctx, conn.ID, models.ConnectionActive, "", &now); err != nil {
		log.Error("update connection status failed", zap.Error(err))
	}

	out.State = StateScanned
	out.FindingCount = len(findings)
	if data != nil {
		out.Degraded = data.Degraded
		out.Warnings = data.Warnings
	}
	log.Info("connection scanned",
		zap.Int("findings", len(findings)),
		zap.Bool("degraded", out.Degraded))
	return out, findings
}

func (o *Orchestrator) fail(ctx context.Context, log *zap.Logger, conn models.Connection, out ConnectionOutcome, err error) ConnectionOutcome {
	msg := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		msg = fmt.Sprintf("%s: collector timed out after %s", conn.Provider, o.opts.CollectorTimeout)
	}
	log.Warn("connection failed", zap.String("reason", msg))
	if uerr := o.store.UpdateScanStatus(ctx, conn.ID, models.ConnectionError, msg, nil); uerr != nil {
		log.Error("update connection status failed", zap.Error(uerr))
	}
	out.State = StateFailed
	out.Error = msg
	return out
}
