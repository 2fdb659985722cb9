package service

import (
	"context"
	"fmt"
	"log/slog"
	"menuengine/internal/cache"
	"menuengine/internal/metrics"
	"menuengine/internal/model"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Resolution modes, used as metric labels
const (
	ModeAuto     = "auto"
	ModeExplicit = "explicit"
)

// MenuServiceOptions tunes the orchestrator
type MenuServiceOptions struct {
	CacheTTL    time.Duration
	TierTimeout time.Duration
	Currency    string
	Coalesce    bool // share one in-flight resolution per place and mode
}

// MenuService resolves a place's menu through the cache and the tier chain
type MenuService struct {
	cache      cache.MenuCache
	tiers      []MenuTier
	aiTier     MenuTier
	classifier *Classifier
	noMenu     *NoMenuBuilder
	opts       MenuServiceOptions

	flights     singleflight.Group
	metrics     *metrics.Recorder
	recorder    ResolutionRecorder
	broadcaster Broadcaster
	logger      *slog.Logger
	now         func() time.Time
}

// NewMenuService creates the orchestrator. tiers are tried in the order
// given; the tier whose source is ai-synthesis also serves explicit requests.
func NewMenuService(
	menuCache cache.MenuCache,
	tiers []MenuTier,
	classifier *Classifier,
	noMenu *NoMenuBuilder,
	opts MenuServiceOptions,
) *MenuService {
	s := &MenuService{
		cache:      menuCache,
		tiers:      tiers,
		classifier: classifier,
		noMenu:     noMenu,
		opts:       opts,
		logger:     slog.Default().With("component", "menu_service"),
		now:        time.Now,
	}
	for _, t := range tiers {
		if t.Source() == model.SourceAISynthesis {
			s.aiTier = t
		}
	}
	return s
}

// SetBroadcaster sets the WebSocket broadcaster for explicit resolutions
func (s *MenuService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetRecorder sets where resolution records are written
func (s *MenuService) SetRecorder(r ResolutionRecorder) {
	s.recorder = r
}

// SetMetrics sets the Prometheus recorder
func (s *MenuService) SetMetrics(m *metrics.Recorder) {
	s.metrics = m
}

// SetLogger replaces the structured logger
func (s *MenuService) SetLogger(l *slog.Logger) {
	s.logger = l.With("component", "menu_service")
}

// ResolveMenu returns a cached menu when one is live, otherwise runs the
// tiers in order and caches the first success. Every outcome other than
// invalid input or cancellation is reported through the result.
func (s *MenuService) ResolveMenu(ctx context.Context, placeID string, bundle *model.RestaurantSignalBundle) (*model.MenuResult, error) {
	b, err := prepareBundle(placeID, bundle)
	if err != nil {
		return nil, err
	}
	return s.coalesce(ctx, ModeAuto+":"+placeID, func(ctx context.Context) (*model.MenuResult, error) {
		return s.resolve(ctx, placeID, b)
	})
}

// ResolveMenuWithExplicitAI skips the cache read and the lookup tiers and
// runs synthesis directly under the relaxed explicit preconditions. A
// success overwrites any cached entry.
func (s *MenuService) ResolveMenuWithExplicitAI(ctx context.Context, placeID string, bundle *model.RestaurantSignalBundle) (*model.MenuResult, error) {
	b, err := prepareBundle(placeID, bundle)
	if err != nil {
		return nil, err
	}
	return s.coalesce(ctx, ModeExplicit+":"+placeID, func(ctx context.Context) (*model.MenuResult, error) {
		return s.resolveExplicit(ctx, placeID, b)
	})
}

// coalesce shares one resolution between concurrent callers for the same
// key. The shared flight is detached from the caller that started it, so a
// caller leaving early does not fail the others; the tier timeouts bound it.
func (s *MenuService) coalesce(ctx context.Context, key string, fn func(context.Context) (*model.MenuResult, error)) (*model.MenuResult, error) {
	if !s.opts.Coalesce {
		return fn(ctx)
	}
	flightCtx := context.WithoutCancel(ctx)
	ch := s.flights.DoChan(key, func() (interface{}, error) {
		return fn(flightCtx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.MenuResult), nil
	}
}

type resolutionTrace struct {
	placeID    string
	mode       string
	start      time.Time
	tiersTried []model.MenuSource
}

func (s *MenuService) resolve(ctx context.Context, placeID string, bundle *model.RestaurantSignalBundle) (*model.MenuResult, error) {
	trace := &resolutionTrace{placeID: placeID, mode: ModeAuto, start: s.now()}

	cached, err := s.cache.Get(ctx, placeID)
	switch {
	case err != nil:
		s.metrics.CacheLookup(metrics.CacheError)
		s.logger.Warn("cache read failed, treating as miss", "place_id", placeID, "error", err)
	case cached != nil:
		s.metrics.CacheLookup(metrics.CacheHit)
		result := &model.MenuResult{Menu: cached, CacheHit: true}
		s.finish(trace, result)
		return result, nil
	default:
		s.metrics.CacheLookup(metrics.CacheMiss)
	}

	if bundle.BusinessStatus.IsClosed() {
		result := &model.MenuResult{NoMenu: s.noMenu.Build(placeID, model.ReasonClosed, bundle, false)}
		s.finish(trace, result)
		return result, nil
	}

	var (
		gateReason   model.NoMenuReason
		lookupFailed bool
		aiAttempted  bool
	)
	for _, tier := range s.tiers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if g, ok := tier.(GatedTier); ok {
			if reason := g.Precondition(bundle, false); reason != "" {
				s.metrics.TierOutcome(string(tier.Source()), metrics.TierSkipped)
				gateReason = reason
				continue
			}
		}
		if tier.Source() == model.SourceAISynthesis {
			aiAttempted = true
		}

		doc, err := s.runTier(ctx, trace, tier, bundle)
		if err != nil {
			lookupFailed = true
			continue
		}
		if doc == nil {
			continue
		}
		return s.accept(ctx, trace, tier, bundle, doc)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reason := model.ReasonAllTiersExhausted
	switch {
	case gateReason != "":
		reason = gateReason
	case lookupFailed:
		reason = model.ReasonLookupError
	}
	aiSearchAvailable := s.aiTier != nil && !aiAttempted
	result := &model.MenuResult{NoMenu: s.noMenu.Build(placeID, reason, bundle, aiSearchAvailable)}
	s.finish(trace, result)
	return result, nil
}

func (s *MenuService) resolveExplicit(ctx context.Context, placeID string, bundle *model.RestaurantSignalBundle) (*model.MenuResult, error) {
	trace := &resolutionTrace{placeID: placeID, mode: ModeExplicit, start: s.now()}

	fail := func(reason model.NoMenuReason) (*model.MenuResult, error) {
		result := &model.MenuResult{NoMenu: s.noMenu.Build(placeID, reason, bundle, false)}
		s.finish(trace, result)
		s.broadcast(placeID, MsgMenuUnavailable, result.NoMenu)
		return result, nil
	}

	if s.aiTier == nil {
		return fail(model.ReasonAllTiersExhausted)
	}
	if g, ok := s.aiTier.(GatedTier); ok {
		if reason := g.Precondition(bundle, true); reason != "" {
			return fail(reason)
		}
	} else if bundle.BusinessStatus.IsClosed() {
		return fail(model.ReasonClosed)
	}

	doc, err := s.runTier(ctx, trace, s.aiTier, bundle)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return fail(model.ReasonLookupError)
	}
	if doc == nil {
		return fail(model.ReasonAllTiersExhausted)
	}

	result, err := s.accept(ctx, trace, s.aiTier, bundle, doc)
	if err != nil {
		return nil, err
	}
	s.broadcast(placeID, MsgMenuReady, result.Menu)
	return result, nil
}

// runTier calls one tier under its own deadline. Failures are logged and
// returned; documents that fail validation count as absence.
func (s *MenuService) runTier(ctx context.Context, trace *resolutionTrace, tier MenuTier, bundle *model.RestaurantSignalBundle) (*model.MenuDocument, error) {
	source := string(tier.Source())
	trace.tiersTried = append(trace.tiersTried, tier.Source())

	tierCtx := ctx
	if s.opts.TierTimeout > 0 {
		var cancel context.CancelFunc
		tierCtx, cancel = context.WithTimeout(ctx, s.opts.TierTimeout)
		defer cancel()
	}

	doc, err := tier.Resolve(tierCtx, trace.placeID, bundle)
	if err != nil {
		s.metrics.TierOutcome(source, metrics.TierError)
		s.logger.Warn("tier failed", "place_id", trace.placeID, "tier", source, "error", err)
		return nil, err
	}
	if !doc.Valid() {
		s.metrics.TierOutcome(source, metrics.TierAbsent)
		return nil, nil
	}
	s.metrics.TierOutcome(source, metrics.TierSuccess)
	return doc, nil
}

// accept stamps a tier's document and caches it unless the caller has gone
func (s *MenuService) accept(ctx context.Context, trace *resolutionTrace, tier MenuTier, bundle *model.RestaurantSignalBundle, doc *model.MenuDocument) (*model.MenuResult, error) {
	menu := s.stamp(trace.placeID, tier.Source(), bundle, doc)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, trace.placeID, menu, s.opts.CacheTTL); err != nil {
		s.logger.Error("cache write failed", "place_id", trace.placeID, "error", err)
	}
	result := &model.MenuResult{Menu: menu}
	s.finish(trace, result)
	return result, nil
}

func (s *MenuService) stamp(placeID string, source model.MenuSource, bundle *model.RestaurantSignalBundle, doc *model.MenuDocument) *model.MenuDocument {
	menu := doc.Clone()
	menu.PlaceID = placeID
	menu.LastUpdated = s.now().UTC()
	if menu.Source == "" {
		menu.Source = source
	}
	if menu.Currency == "" {
		menu.Currency = s.opts.Currency
	}
	if menu.RestaurantType == "" {
		menu.RestaurantType = s.classifier.Classify(bundle)
	}
	if menu.Rating == nil {
		menu.Rating = bundle.Rating
	}
	if menu.PriceLevel == nil {
		menu.PriceLevel = bundle.PriceLevel
	}
	if menu.UserRatingsTotal == 0 {
		menu.UserRatingsTotal = bundle.UserRatingsTotal
	}
	return menu
}

func (s *MenuService) finish(trace *resolutionTrace, result *model.MenuResult) {
	elapsed := s.now().Sub(trace.start)
	entry := &model.ResolutionLog{
		ID:         uuid.NewString(),
		PlaceID:    trace.placeID,
		Explicit:   trace.mode == ModeExplicit,
		CacheHit:   result.CacheHit,
		TiersTried: trace.tiersTried,
		DurationMS: elapsed.Milliseconds(),
		ResolvedAt: s.now().UTC(),
	}
	var label string
	if result.Found() {
		entry.Source = result.Menu.Source
		label = string(result.Menu.Source)
		if result.CacheHit {
			label = "cache"
		}
	} else {
		entry.Reason = result.NoMenu.Reason
		label = string(result.NoMenu.Reason)
	}

	s.metrics.Resolution(trace.mode, label, elapsed)
	s.logger.Info("menu resolved",
		"place_id", trace.placeID,
		"mode", trace.mode,
		"result", label,
		"tiers", len(trace.tiersTried),
		"duration_ms", entry.DurationMS,
	)
	if s.recorder != nil {
		s.recorder.Record(entry)
	}
}

func (s *MenuService) broadcast(placeID, msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToPlace(placeID, msgType, payload)
	}
}

// prepareBundle validates input and returns a copy carrying placeID, so the
// caller's bundle is never modified
func prepareBundle(placeID string, bundle *model.RestaurantSignalBundle) (*model.RestaurantSignalBundle, error) {
	if strings.TrimSpace(placeID) == "" {
		return nil, model.ErrInvalidPlaceID
	}
	if bundle == nil {
		return nil, fmt.Errorf("%w: bundle is nil", model.ErrInvalidBundle)
	}
	b := *bundle
	if b.PlaceID == "" {
		b.PlaceID = placeID
	} else if b.PlaceID != placeID {
		return nil, fmt.Errorf("%w: bundle is for place %s, not %s", model.ErrInvalidBundle, b.PlaceID, placeID)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}
