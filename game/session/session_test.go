package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/sr5rules/cache"
	"github.com/kasuganosora/sr5rules/config"
	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/document"
	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/errs"
	"github.com/kasuganosora/sr5rules/game/roll"
	"github.com/kasuganosora/sr5rules/game/rules"
	"github.com/kasuganosora/sr5rules/plugin/hook"
	"github.com/kasuganosora/sr5rules/testutil"
)

type fixture struct {
	svc    *Service
	store  *document.Store
	cache  cache.Cache
	pubsub cache.PubSub
	hooks  *hook.HookCenter
	caller Caller
}

func attribute(n int) *data.Value {
	v := data.NewValue("")
	v.Base = n
	v.Value = n
	return &v
}

func character(id string, attributes map[string]int) *entity.Actor {
	a := &entity.Actor{ID: id, Name: id, Type: entity.ActorCharacter}
	a.Data.Attributes = map[string]*data.Value{}
	for k, n := range attributes {
		a.Data.Attributes[k] = attribute(n)
	}
	a.Data.Limits = map[string]*data.Value{entity.LimitPhysical: attribute(5)}
	return a
}

func newFixture(t *testing.T, faces ...int) *fixture {
	t.Helper()
	ctx := context.Background()
	store := document.NewStore(testutil.SetupTestDB(t), nil)
	require.NoError(t, store.CreateActor(ctx, character("att", map[string]int{entity.AttrAgility: 3})))
	require.NoError(t, store.CreateActor(ctx, character("def", map[string]int{
		entity.AttrReaction: 1, entity.AttrIntuition: 1, entity.AttrBody: 3,
	})))

	c, ps := testutil.SetupTestCache(t)
	hc := hook.NewHookCenter()
	engine := roll.NewEngine(&rules.FixedRoller{Faces: faces}, hc, nil)
	svc := New(engine, store, c, ps, nil, config.RulesConfig{PendingTTL: time.Minute}, nil)
	return &fixture{
		svc:    svc,
		store:  store,
		cache:  c,
		pubsub: ps,
		hooks:  hc,
		caller: Caller{SceneID: "s1", UserID: "gm", TraceID: "trace-1"},
	}
}

func attack(damage int) roll.Config {
	a := data.MinimalAction()
	a.Attribute = entity.AttrAgility
	a.Damage.Base = damage
	a.Damage.Value.Value = damage
	a.Opposed = &data.Opposed{Test: string(roll.KindPhysicalDefense)}
	return roll.Config{Kind: roll.KindSuccess, ActorID: "att", Action: &a}
}

func TestBegin_EvaluatesAndPublishes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 6, 5, 1)

	msgs, cancel, err := f.pubsub.Subscribe(ctx, ChannelResults)
	require.NoError(t, err)
	defer cancel()

	d, err := f.svc.Begin(ctx, f.caller, attack(5))
	require.NoError(t, err)
	assert.Equal(t, roll.StateResultsProcessed, d.State)
	assert.Equal(t, 2, d.Values.Hits.Value)

	stored, err := f.store.LoadTest(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{6, 5, 1}, stored.Dice)

	select {
	case msg := <-msgs:
		assert.Equal(t, ChannelResults, msg.Channel)
		assert.Contains(t, msg.Payload, d.ID)
	case <-time.After(time.Second):
		t.Fatal("result not published")
	}

	recent, err := f.svc.Recent(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, d.ID, recent[0].TestID)
	assert.Equal(t, "Success", recent[0].Label)
	assert.True(t, recent[0].Opposed)
}

func TestBegin_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Begin(ctx, f.caller, roll.Config{Kind: roll.KindSuccess, ActorID: "nobody"})
	assert.ErrorIs(t, err, errs.ErrResolution)

	_, err = f.svc.Begin(ctx, f.caller, roll.Config{Kind: "hacking"})
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestDialog_ResolvesPendingTest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 6, 6, 1, 1)

	cfg := attack(5)
	cfg.ShowDialog = true
	d, err := f.svc.Begin(ctx, f.caller, cfg)
	require.NoError(t, err)
	assert.Equal(t, roll.StateAwaitingDialog, d.State)
	assert.Empty(t, d.Dice)

	pending, err := f.svc.Pending(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, d.ID, pending[0].ID)

	got, err := f.svc.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, roll.StateAwaitingDialog, got.State)

	mod := 1
	d, err = f.svc.Dialog(ctx, f.caller, d.ID, roll.DialogInput{Modifier: &mod})
	require.NoError(t, err)
	assert.Equal(t, roll.StateResultsProcessed, d.State)
	assert.Equal(t, 4, d.Pool.Value)
	assert.Equal(t, []int{6, 6, 1, 1}, d.Dice)

	pending, err = f.svc.Pending(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, pending)

	got, err = f.svc.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, roll.StateResultsProcessed, got.State)

	_, err = f.svc.Dialog(ctx, f.caller, d.ID, roll.DialogInput{})
	assert.ErrorIs(t, err, errs.ErrResolution)
}

func TestDialog_Cancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 6)

	cfg := attack(5)
	cfg.ShowDialog = true
	d, err := f.svc.Begin(ctx, f.caller, cfg)
	require.NoError(t, err)

	d, err = f.svc.Dialog(ctx, f.caller, d.ID, roll.DialogInput{Cancel: true})
	require.NoError(t, err)
	assert.Equal(t, roll.StateCancelled, d.State)
	assert.Empty(t, d.Dice)

	stored, err := f.store.LoadTest(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, roll.StateCancelled, stored.State)

	pending, err := f.svc.Pending(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDialog_Busy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cfg := attack(5)
	cfg.ShowDialog = true
	d, err := f.svc.Begin(ctx, f.caller, cfg)
	require.NoError(t, err)

	ok, err := f.cache.SetNX(ctx, lockPrefix+d.ID, "1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.Dialog(ctx, f.caller, d.ID, roll.DialogInput{})
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, err, errs.ErrState)
}

func TestOpposedAndFollowUp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 6, 6, 6, 6, 1, 5, 5, 2)

	att, err := f.svc.Begin(ctx, f.caller, attack(5))
	require.NoError(t, err)
	require.Equal(t, 3, att.Values.Hits.Value)

	def, err := f.svc.Opposed(ctx, f.caller, att.ID, "def", false)
	require.NoError(t, err)
	assert.Equal(t, roll.KindPhysicalDefense, def.Kind)
	assert.Equal(t, att.ID, def.AgainstID)
	assert.True(t, def.Failure)
	assert.Equal(t, "AttackHits", def.ResultLabel)
	assert.Equal(t, 7, def.ModifiedDamage.Value.Value)

	resist, err := f.svc.FollowUp(ctx, f.caller, def.ID, false)
	require.NoError(t, err)
	require.NotNil(t, resist)
	assert.Equal(t, roll.KindPhysicalResist, resist.Kind)
	assert.Equal(t, 2, resist.Values.Hits.Value)
	assert.Equal(t, 5, resist.ModifiedDamage.Value.Value)

	none, err := f.svc.FollowUp(ctx, f.caller, att.ID, false)
	require.NoError(t, err)
	assert.Nil(t, none)

	recent, err := f.svc.Recent(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, resist.ID, recent[0].TestID)
	assert.Equal(t, 5, recent[0].Damage)
}

func TestFollowUp_DrainAfterSpell(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 6, 6, 5, 5, 1, 1)

	caster := character("mage", map[string]int{
		entity.AttrLogic: 2, entity.AttrWillpower: 2, entity.AttrMagic: 5,
	})
	caster.Data.Magic = entity.Magic{Awakened: true, Attribute: entity.AttrLogic}
	caster.Items = []*entity.Item{{
		ID:   "manabolt",
		Name: "Manabolt",
		Type: entity.ItemSpell,
		Data: entity.ItemData{Spell: &entity.Spell{Drain: -3}},
	}}
	require.NoError(t, f.store.CreateActor(ctx, caster))

	action := data.MinimalAction()
	action.Attribute = entity.AttrLogic
	cast, err := f.svc.Begin(ctx, f.caller, roll.Config{
		Kind: roll.KindSuccess, ActorID: "mage", ItemID: "manabolt", Force: 6, Action: &action,
	})
	require.NoError(t, err)
	require.Equal(t, 3, cast.Drain)
	assert.False(t, cast.Opposed)

	drain, err := f.svc.FollowUp(ctx, f.caller, cast.ID, false)
	require.NoError(t, err)
	require.NotNil(t, drain)
	assert.Equal(t, roll.KindDrain, drain.Kind)
	assert.Equal(t, "mage", drain.ActorID)
	assert.Equal(t, cast.ID, drain.PreviousMessageID)
	assert.Equal(t, roll.StateResultsProcessed, drain.State)
	assert.Equal(t, 2, drain.Values.Hits.Value)
	incoming := rules.CalcDrainDamage(3, 6, 5)
	assert.Equal(t, max(incoming.Value.Value-2, 0), drain.ModifiedDrain.Value.Value)

	none, err := f.svc.FollowUp(ctx, f.caller, drain.ID, false)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestOpposed_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 6, 6, 6)

	_, err := f.svc.Opposed(ctx, f.caller, "missing", "def", false)
	assert.ErrorIs(t, err, errs.ErrResolution)

	cfg := attack(5)
	cfg.Action.Opposed = nil
	plain, err := f.svc.Begin(ctx, f.caller, cfg)
	require.NoError(t, err)
	_, err = f.svc.Opposed(ctx, f.caller, plain.ID, "def", false)
	assert.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestEvaluate_AfterInterrupt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 6, 6, 6)

	f.hooks.Register(hook.BeforeTestEvaluate, 0, "gm", func(_ context.Context, _ string, d interface{}) (interface{}, error) {
		return d, hook.ErrInterrupt
	})
	d, err := f.svc.Begin(ctx, f.caller, attack(5))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValidation)
	require.NotNil(t, d)
	assert.Equal(t, roll.StateValuesPrepared, d.State)

	pending, err := f.svc.Pending(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, pending, 1)

	f.hooks.UnregisterAll("gm")
	d, err = f.svc.Evaluate(ctx, f.caller, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Values.Hits.Value)

	pending, err = f.svc.Pending(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestExtend(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 6, 1, 1, 5, 2)

	cfg := attack(0)
	cfg.Extended = true
	d, err := f.svc.Begin(ctx, f.caller, cfg)
	require.NoError(t, err)
	require.Equal(t, 1, d.Values.Hits.Value)

	d, err = f.svc.Extend(ctx, f.caller, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Pool.Value)
	assert.Equal(t, 2, d.Values.Hits.Value)

	stored, err := f.store.LoadTest(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ExtendedRolls)

	_, err = f.svc.Extend(ctx, f.caller, d.ID)
	require.NoError(t, err)
	_, err = f.svc.Extend(ctx, f.caller, d.ID)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.SetRules(config.RulesConfig{PendingTTL: 20 * time.Millisecond})

	cfg := attack(5)
	cfg.ShowDialog = true
	d, err := f.svc.Begin(ctx, f.caller, cfg)
	require.NoError(t, err)

	n, err := f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	time.Sleep(50 * time.Millisecond)
	n, err = f.svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	index, err := f.cache.HGetAll(ctx, pendingIndex)
	require.NoError(t, err)
	assert.NotContains(t, index, d.ID)
	require.NoError(t, f.svc.SweepTask(ctx))
}

func TestRecent_Trimmed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 6)

	cfg := attack(1)
	cfg.Action.Opposed = nil
	for i := 0; i < RecentLimit+5; i++ {
		_, err := f.svc.Begin(ctx, f.caller, cfg)
		require.NoError(t, err, fmt.Sprintf("roll %d", i))
	}
	recent, err := f.svc.Recent(ctx, "s1", 1000)
	require.NoError(t, err)
	assert.Len(t, recent, RecentLimit)

	other, err := f.svc.Recent(ctx, "s2", 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestPrepareActor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	a, err := f.svc.PrepareActor(ctx, "def")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Version)
	assert.NotNil(t, a.Data.Track)

	_, err = f.svc.PrepareActor(ctx, "nobody")
	assert.ErrorIs(t, err, errs.ErrResolution)
}

func TestPrepareItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	host := &entity.Item{Name: "Host", Type: entity.ItemHost, Data: entity.ItemData{Host: &entity.Host{Rating: 4}}}
	require.NoError(t, f.store.CreateItem(ctx, host))

	got, err := f.svc.PrepareItem(ctx, host.ID)
	require.NoError(t, err)
	assert.Equal(t, rules.ConditionMonitor(4), got.Data.Host.ConditionMonitor.Max)

	owned := &entity.Item{Name: "Knife", Type: entity.ItemWeapon, OwnerID: "att"}
	require.NoError(t, f.store.CreateItem(ctx, owned))
	_, err = f.svc.PrepareItem(ctx, owned.ID)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestRules(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.svc.ShowDialog(nil))

	f.svc.SetRules(config.RulesConfig{ShowDialog: true})
	assert.True(t, f.svc.ShowDialog(nil))
	no := false
	assert.False(t, f.svc.ShowDialog(&no))
	assert.Equal(t, 30*time.Minute, f.svc.Rules().PendingTTL)
}
