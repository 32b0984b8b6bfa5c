// Package session runs tests for callers: it keeps pending tests in the
// cache until their dialog is answered, persists completed tests and
// publishes their results.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kasuganosora/sr5rules/audit"
	"github.com/kasuganosora/sr5rules/cache"
	"github.com/kasuganosora/sr5rules/config"
	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/errs"
	"github.com/kasuganosora/sr5rules/game/prep"
	"github.com/kasuganosora/sr5rules/game/roll"
)

// ChannelResults is the pub/sub channel completed tests are published on.
const ChannelResults = "test_results"

// RecentLimit is the number of results kept per scene.
const RecentLimit = 50

const lockTTL = 10 * time.Second

// Store is the document and test persistence the session needs.
type Store interface {
	roll.Documents
	SaveActor(ctx context.Context, a *entity.Actor) error
	SaveItems(ctx context.Context, items ...*entity.Item) error
	SaveTest(ctx context.Context, d roll.Data) error
	LoadTest(ctx context.Context, id string) (roll.Data, error)
}

// Caller identifies who runs an operation and from where.
type Caller struct {
	SceneID string
	UserID  string
	TraceID string
	IP      string
}

// Result is the published summary of a completed or cancelled test.
type Result struct {
	TestID         string    `json:"test_id"`
	Kind           roll.Kind `json:"kind"`
	State          string    `json:"state"`
	Title          string    `json:"title,omitempty"`
	SceneID        string    `json:"scene_id,omitempty"`
	ActorID        string    `json:"actor_id,omitempty"`
	AgainstID      string    `json:"against_id,omitempty"`
	Dice           []int     `json:"dice"`
	Hits           int       `json:"hits"`
	NetHits        int       `json:"net_hits"`
	Glitch         bool      `json:"glitch"`
	CriticalGlitch bool      `json:"critical_glitch"`
	Success        bool      `json:"success"`
	Failure        bool      `json:"failure"`
	Label          string    `json:"label,omitempty"`
	Opposed        bool      `json:"opposed"`
	Damage         int       `json:"damage,omitempty"`
	KnockedDown    bool      `json:"knocked_down,omitempty"`
}

// NewResult summarizes a test record.
func NewResult(d roll.Data) Result {
	r := Result{
		TestID:         d.ID,
		Kind:           d.Kind,
		State:          d.State,
		Title:          d.Title,
		SceneID:        d.SceneID,
		ActorID:        d.ActorID,
		AgainstID:      d.AgainstID,
		Dice:           d.Dice,
		Hits:           d.Values.Hits.Value,
		NetHits:        d.Values.NetHits.Value,
		Glitch:         d.Values.Glitch,
		CriticalGlitch: d.Values.CriticalGlitch,
		Success:        d.Success,
		Failure:        d.Failure,
		Label:          d.ResultLabel,
		Opposed:        d.Opposed,
		KnockedDown:    d.KnockedDown,
	}
	switch {
	case d.ModifiedDamage != nil:
		r.Damage = d.ModifiedDamage.Value.Value
	case d.ModifiedDrain != nil:
		r.Damage = d.ModifiedDrain.Value.Value
	}
	return r
}

// Service is the test session.
type Service struct {
	engine *roll.Engine
	store  Store
	cache  cache.Cache
	pubsub cache.PubSub
	audit  *audit.Service
	logger *zap.Logger

	mu    sync.RWMutex
	rules config.RulesConfig
}

// New creates a Service. auditor and logger may be nil.
func New(engine *roll.Engine, store Store, c cache.Cache, ps cache.PubSub, auditor *audit.Service, rules config.RulesConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rules.PendingTTL <= 0 {
		rules.PendingTTL = 30 * time.Minute
	}
	return &Service{
		engine: engine,
		store:  store,
		cache:  c,
		pubsub: ps,
		audit:  auditor,
		logger: logger,
		rules:  rules,
	}
}

// Rules returns the current rules settings.
func (s *Service) Rules() config.RulesConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules
}

// SetRules replaces the rules settings. Tests already pending keep their TTL.
func (s *Service) SetRules(rules config.RulesConfig) {
	if rules.PendingTTL <= 0 {
		rules.PendingTTL = 30 * time.Minute
	}
	s.mu.Lock()
	s.rules = rules
	s.mu.Unlock()
	s.logger.Info("rules reloaded",
		zap.Duration("pending_ttl", rules.PendingTTL),
		zap.Duration("sweep_interval", rules.SweepInterval),
		zap.Bool("show_dialog", rules.ShowDialog))
}

// ShowDialog resolves an optional per-request dialog flag against the
// configured default.
func (s *Service) ShowDialog(requested *bool) bool {
	if requested != nil {
		return *requested
	}
	return s.Rules().ShowDialog
}

func (s *Service) resolution(c Caller) roll.ResolutionContext {
	return roll.ResolutionContext{SceneID: c.SceneID, UserID: c.UserID, Documents: s.store}
}

func (s *Service) record(c Caller, action string, d *roll.Data, request interface{}, start time.Time, err error) {
	entry := audit.Entry{
		TraceID:    c.TraceID,
		UserID:     c.UserID,
		SceneID:    c.SceneID,
		Action:     action,
		Request:    request,
		IP:         c.IP,
		DurationMs: int(time.Since(start).Milliseconds()),
	}
	if d != nil {
		entry.TestID = d.ID
		entry.ActorID = d.ActorID
		entry.Response = NewResult(*d)
	}
	if err != nil {
		entry.Error = err.Error()
	}
	s.audit.Log(entry)
}

// PrepareActor derives the computed fields of an actor and its items and
// stores the result.
func (s *Service) PrepareActor(ctx context.Context, id string) (*entity.Actor, error) {
	a, err := s.store.Actor(ctx, id)
	if err != nil {
		return nil, err
	}
	prep.PrepareActor(a)
	if err := s.store.SaveActor(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// PrepareItem derives the computed fields of a standalone item and stores
// the result.
func (s *Service) PrepareItem(ctx context.Context, id string) (*entity.Item, error) {
	it, err := s.store.Item(ctx, id)
	if err != nil {
		return nil, err
	}
	if it.OwnerID != "" {
		return nil, fmt.Errorf("item %s belongs to actor %s, prepare the actor: %w", id, it.OwnerID, errs.ErrValidation)
	}
	prep.PrepareItem(it, nil)
	if err := s.store.SaveItems(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s *Service) publish(ctx context.Context, d roll.Data) {
	res := NewResult(d)
	raw, err := json.Marshal(res)
	if err != nil {
		s.logger.Error("encode result", zap.String("test_id", d.ID), zap.Error(err))
		return
	}
	if err := s.pubsub.Publish(ctx, ChannelResults, string(raw)); err != nil {
		s.logger.Warn("publish result", zap.String("test_id", d.ID), zap.Error(err))
	}
	if err := s.cache.PushCapped(ctx, recentKey(d.SceneID), string(raw), RecentLimit); err != nil {
		s.logger.Warn("record recent result", zap.String("test_id", d.ID), zap.Error(err))
	}
}

// Recent returns up to n of the latest results of a scene, newest first.
func (s *Service) Recent(ctx context.Context, sceneID string, n int) ([]Result, error) {
	if n <= 0 || n > RecentLimit {
		n = RecentLimit
	}
	raw, err := s.cache.LRange(ctx, recentKey(sceneID), 0, int64(n-1))
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(raw))
	for _, r := range raw {
		var res Result
		if err := json.Unmarshal([]byte(r), &res); err != nil {
			s.logger.Warn("skip malformed result", zap.String("scene_id", sceneID), zap.Error(err))
			continue
		}
		out = append(out, res)
	}
	return out, nil
}
