package document_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/document"
	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/errs"
	"github.com/kasuganosora/sr5rules/game/roll"
	"github.com/kasuganosora/sr5rules/model"
	"github.com/kasuganosora/sr5rules/testutil"
)

func newStore(t *testing.T) *document.Store {
	t.Helper()
	return document.NewStore(testutil.SetupTestDB(t), nil)
}

func runner() *entity.Actor {
	body := data.NewValue("Body")
	body.Base = 4
	body.Recalc()
	return &entity.Actor{
		Name: "Runner",
		Type: entity.ActorCharacter,
		Data: entity.ActorData{
			Attributes: map[string]*data.Value{entity.AttrBody: &body},
			Modifiers:  map[string]int{},
		},
		Items: []*entity.Item{
			{Name: "Ares Predator", Type: entity.ItemWeapon},
			{Name: "Commlink", Type: entity.ItemDevice, Data: entity.ItemData{Device: &entity.Device{}}},
		},
	}
}

func TestStore_CreateAndLoadActor(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := runner()
	require.NoError(t, s.CreateActor(ctx, a))
	require.NotEmpty(t, a.ID)

	got, err := s.Actor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Runner", got.Name)
	assert.Equal(t, 4, got.AttributeValue(entity.AttrBody))
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Ares Predator", got.Items[0].Name)
	assert.Equal(t, a.ID, got.Items[1].OwnerID)

	item, err := s.Item(ctx, got.Items[1].ID)
	require.NoError(t, err)
	assert.True(t, item.IsDevice())
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Actor(ctx, "missing")
	assert.ErrorIs(t, err, document.ErrNotFound)
	assert.ErrorIs(t, err, errs.ErrResolution)

	_, err = s.Item(ctx, "missing")
	assert.ErrorIs(t, err, document.ErrNotFound)

	err = s.SaveItems(ctx, &entity.Item{ID: "missing", Type: entity.ItemDevice})
	assert.ErrorIs(t, err, document.ErrNotFound)

	assert.ErrorIs(t, s.DeleteActor(ctx, "missing"), document.ErrNotFound)
	assert.ErrorIs(t, s.PatchActor(ctx, "missing", document.Patch{Set: map[string]interface{}{"armor.base": 1}}), document.ErrNotFound)
}

func TestStore_SaveActorReplacesItems(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := runner()
	require.NoError(t, s.CreateActor(ctx, a))
	weaponID := a.Items[0].ID

	a.Name = "Street Samurai"
	a.Items = []*entity.Item{a.Items[1], {Name: "Armor Jacket", Type: entity.ItemArmor}}
	require.NoError(t, s.SaveActor(ctx, a))
	assert.Equal(t, 1, a.Version)

	got, err := s.Actor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Street Samurai", got.Name)
	assert.Equal(t, 1, got.Version)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Commlink", got.Items[0].Name)
	assert.Equal(t, 1, got.Items[0].Version)
	assert.Equal(t, "Armor Jacket", got.Items[1].Name)

	_, err = s.Item(ctx, weaponID)
	assert.ErrorIs(t, err, document.ErrNotFound)
}

func TestStore_SaveItems(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	host := &entity.Item{Name: "Host", Type: entity.ItemHost, Data: entity.ItemData{Host: &entity.Host{Rating: 4, Marks: entity.Marks{}}}}
	dev := &entity.Item{Name: "Camera", Type: entity.ItemDevice, Data: entity.ItemData{Device: &entity.Device{}}}
	require.NoError(t, s.CreateItem(ctx, host))
	require.NoError(t, s.CreateItem(ctx, dev))

	host.Data.Host.Marks.Set("s1:a1:", 2)
	dev.Data.Device.NetworkDevices = []entity.Link{host.AsLink()}
	require.NoError(t, s.SaveItems(ctx, host, dev))
	assert.Equal(t, 1, host.Version)

	got, err := s.Item(ctx, host.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Data.Host.Marks.Get("s1:a1:"))
	assert.Equal(t, 1, got.Version)

	got, err = s.Item(ctx, dev.ID)
	require.NoError(t, err)
	assert.Len(t, got.Data.Device.NetworkDevices, 1)
}

func TestStore_SaveItemsRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	dev := &entity.Item{Name: "Camera", Type: entity.ItemDevice}
	require.NoError(t, s.CreateItem(ctx, dev))

	dev.Name = "Drone"
	err := s.SaveItems(ctx, dev, &entity.Item{ID: "missing"})
	require.Error(t, err)

	got, err := s.Item(ctx, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Camera", got.Name)
	assert.Equal(t, 0, got.Version)
}

func TestStore_PatchActor(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := runner()
	require.NoError(t, s.CreateActor(ctx, a))

	err := s.PatchActor(ctx, a.ID, document.Patch{
		Set:    map[string]interface{}{"attributes.body.base": 6, "modifiers.wounds": -1},
		Delete: []string{"attributes.agility"},
	})
	require.NoError(t, err)

	got, err := s.Actor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Data.Attributes[entity.AttrBody].Base)
	assert.Equal(t, -1, got.Modifier("wounds"))
	assert.Equal(t, 1, got.Version)

	v, err := s.ActorField(ctx, a.ID, "attributes.body.base")
	require.NoError(t, err)
	assert.EqualValues(t, 6, v)

	_, err = s.ActorField(ctx, a.ID, "attributes.magic.base")
	assert.ErrorIs(t, err, document.ErrNotFound)
}

func TestStore_PatchRejectsInvalidShape(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := runner()
	require.NoError(t, s.CreateActor(ctx, a))

	err := s.PatchActor(ctx, a.ID, document.Patch{Set: map[string]interface{}{"attributes.body.base": "six"}})
	assert.ErrorIs(t, err, errs.ErrValidation)

	got, err := s.Actor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Data.Attributes[entity.AttrBody].Base)
	assert.Equal(t, 0, got.Version)
}

func TestStore_PatchItem(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	it := &entity.Item{Name: "Host", Type: entity.ItemHost, Data: entity.ItemData{Host: &entity.Host{Rating: 3}}}
	require.NoError(t, s.CreateItem(ctx, it))
	require.NoError(t, s.PatchItem(ctx, it.ID, document.Patch{Set: map[string]interface{}{"host.rating": 5}}))
	require.NoError(t, s.PatchItem(ctx, it.ID, document.Patch{}))

	got, err := s.Item(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Data.Host.Rating)
	assert.Equal(t, 1, got.Version)
}

func TestStore_Resolve(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := runner()
	require.NoError(t, s.CreateActor(ctx, a))

	res, err := s.Resolve(ctx, document.Ref{Type: document.RefActor, ID: a.ID})
	require.NoError(t, err)
	require.NotNil(t, res.Actor)
	assert.Nil(t, res.Item)

	res, err = s.Resolve(ctx, document.Ref{Type: document.RefItem, ID: a.Items[0].ID})
	require.NoError(t, err)
	assert.Equal(t, "Ares Predator", res.Item.Name)

	_, err = s.Resolve(ctx, document.Ref{Type: document.RefActor, ID: a.ID, Pack: "sr5.npcs"})
	assert.ErrorIs(t, err, document.ErrNotFound)

	_, err = s.Resolve(ctx, document.Ref{Type: "Scene", ID: a.ID})
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = s.Resolve(ctx, document.Ref{Type: document.RefActor})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestStore_ResolveFromPack(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	s := document.NewStore(db, nil)

	require.NoError(t, db.Create(&model.ActorRecord{ID: "ganger", Pack: "sr5.npcs", Name: "Ganger", Type: entity.ActorCharacter}).Error)

	res, err := s.Resolve(ctx, document.Ref{Type: document.RefActor, ID: "ganger", Pack: "sr5.npcs"})
	require.NoError(t, err)
	assert.Equal(t, "Ganger", res.Actor.Name)

	_, err = s.Actor(ctx, "ganger")
	assert.ErrorIs(t, err, document.ErrNotFound)
}

func TestStore_ListAndDeleteActors(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a := runner()
	b := runner()
	b.Name = "Decker"
	require.NoError(t, s.CreateActor(ctx, a))
	require.NoError(t, s.CreateActor(ctx, b))

	list, err := s.ListActors(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Decker", list[0].Name)

	require.NoError(t, s.DeleteActor(ctx, a.ID))
	_, err = s.Item(ctx, a.Items[0].ID)
	assert.ErrorIs(t, err, document.ErrNotFound)

	list, err = s.ListActors(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStore_Tests(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	first := roll.Data{ID: roll.NewID(), Kind: roll.KindSuccess, State: roll.StateCreated, SceneID: "s1", ActorID: "a1"}
	second := roll.Data{ID: roll.NewID(), Kind: roll.KindPhysicalDefense, State: roll.StateCreated, SceneID: "s1", AgainstID: first.ID}
	other := roll.Data{ID: roll.NewID(), Kind: roll.KindSuccess, State: roll.StateCreated, SceneID: "s2"}
	for _, d := range []roll.Data{first, second, other} {
		require.NoError(t, s.SaveTest(ctx, d))
	}

	first.State = roll.StateResultsProcessed
	first.Dice = []int{5, 6, 1}
	require.NoError(t, s.SaveTest(ctx, first))

	got, err := s.LoadTest(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, roll.StateResultsProcessed, got.State)
	assert.Equal(t, []int{5, 6, 1}, got.Dice)

	list, err := s.TestsByScene(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	_, err = s.LoadTest(ctx, "missing")
	assert.ErrorIs(t, err, document.ErrNotFound)
}
