// Package document stores actors, items and test records in SQL through
// gorm. Document data is kept as JSON and updated whole or by path patches.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/errs"
	"github.com/kasuganosora/sr5rules/model"
)

// ErrNotFound is returned for missing documents.
var ErrNotFound = fmt.Errorf("document not found: %w", errs.ErrResolution)

// Reader loads documents.
type Reader interface {
	Actor(ctx context.Context, id string) (*entity.Actor, error)
	Item(ctx context.Context, id string) (*entity.Item, error)
}

// Writer changes documents. Every write bumps the document version.
type Writer interface {
	PatchActor(ctx context.Context, id string, p Patch) error
	PatchItem(ctx context.Context, id string, p Patch) error
	SaveActor(ctx context.Context, a *entity.Actor) error
	SaveItems(ctx context.Context, items ...*entity.Item) error
}

// Store is the gorm backed document store.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a Store. logger may be nil.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

func notFound(err error, kind, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("load %s %s: %w", kind, id, err)
}

// Actor loads an actor with its owned items.
func (s *Store) Actor(ctx context.Context, id string) (*entity.Actor, error) {
	return s.actor(s.db.WithContext(ctx), id, "")
}

func (s *Store) actor(tx *gorm.DB, id, pack string) (*entity.Actor, error) {
	var rec model.ActorRecord
	if err := tx.Where("id = ? AND pack = ?", id, pack).First(&rec).Error; err != nil {
		return nil, notFound(err, "actor", id)
	}
	a := &entity.Actor{ID: rec.ID, Name: rec.Name, Type: rec.Type, Version: rec.Version}
	if len(rec.Data) > 0 {
		if err := json.Unmarshal(rec.Data, &a.Data); err != nil {
			return nil, fmt.Errorf("decode actor %s: %w", id, err)
		}
	}

	var items []model.ItemRecord
	if err := tx.Where("owner_id = ?", id).Order("sort, id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load items of actor %s: %w", id, err)
	}
	for i := range items {
		it, err := decodeItem(&items[i])
		if err != nil {
			return nil, err
		}
		a.Items = append(a.Items, it)
	}
	return a, nil
}

// Item loads a top level item, owned or not.
func (s *Store) Item(ctx context.Context, id string) (*entity.Item, error) {
	return s.item(s.db.WithContext(ctx), id, "")
}

func (s *Store) item(tx *gorm.DB, id, pack string) (*entity.Item, error) {
	var rec model.ItemRecord
	if err := tx.Where("id = ? AND pack = ?", id, pack).First(&rec).Error; err != nil {
		return nil, notFound(err, "item", id)
	}
	return decodeItem(&rec)
}

func decodeItem(rec *model.ItemRecord) (*entity.Item, error) {
	it := &entity.Item{ID: rec.ID, Name: rec.Name, Type: rec.Type, OwnerID: rec.OwnerID, Version: rec.Version}
	if len(rec.Data) > 0 {
		if err := json.Unmarshal(rec.Data, &it.Data); err != nil {
			return nil, fmt.Errorf("decode item %s: %w", rec.ID, err)
		}
	}
	if len(rec.Children) > 0 {
		if err := json.Unmarshal(rec.Children, &it.Items); err != nil {
			return nil, fmt.Errorf("decode nested items of %s: %w", rec.ID, err)
		}
	}
	return it, nil
}

func encodeItem(it *entity.Item, sort int) (*model.ItemRecord, error) {
	data, err := json.Marshal(it.Data)
	if err != nil {
		return nil, fmt.Errorf("encode item %s: %w", it.ID, err)
	}
	children, err := json.Marshal(it.Items)
	if err != nil {
		return nil, fmt.Errorf("encode nested items of %s: %w", it.ID, err)
	}
	return &model.ItemRecord{
		ID:       it.ID,
		OwnerID:  it.OwnerID,
		Name:     it.Name,
		Type:     it.Type,
		Sort:     sort,
		Data:     datatypes.JSON(data),
		Children: datatypes.JSON(children),
	}, nil
}

// ListActors returns all actors without their items, ordered by name.
func (s *Store) ListActors(ctx context.Context) ([]*entity.Actor, error) {
	var recs []model.ActorRecord
	if err := s.db.WithContext(ctx).Where("pack = ?", "").Order("name, id").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.Actor, 0, len(recs))
	for _, rec := range recs {
		out = append(out, &entity.Actor{ID: rec.ID, Name: rec.Name, Type: rec.Type, Version: rec.Version})
	}
	return out, nil
}

// CreateActor stores a new actor and its items. Missing ids are generated.
func (s *Store) CreateActor(ctx context.Context, a *entity.Actor) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	data, err := json.Marshal(a.Data)
	if err != nil {
		return fmt.Errorf("encode actor %s: %w", a.ID, err)
	}
	rec := &model.ActorRecord{ID: a.ID, Name: a.Name, Type: a.Type, Data: datatypes.JSON(data)}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		for i, it := range a.Items {
			if it.ID == "" {
				it.ID = uuid.NewString()
			}
			it.OwnerID = a.ID
			irec, err := encodeItem(it, i)
			if err != nil {
				return err
			}
			if err := tx.Create(irec).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create actor %s: %w", a.ID, err)
	}
	s.logger.Debug("actor created", zap.String("actor_id", a.ID), zap.Int("items", len(a.Items)))
	return nil
}

// CreateItem stores a new item. Missing ids are generated.
func (s *Store) CreateItem(ctx context.Context, it *entity.Item) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	rec, err := encodeItem(it, 0)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create item %s: %w", it.ID, err)
	}
	return nil
}

// SaveActor writes the whole actor and replaces its owned items.
func (s *Store) SaveActor(ctx context.Context, a *entity.Actor) error {
	data, err := json.Marshal(a.Data)
	if err != nil {
		return fmt.Errorf("encode actor %s: %w", a.ID, err)
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ActorRecord{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
			"name":    a.Name,
			"type":    a.Type,
			"data":    datatypes.JSON(data),
			"version": gorm.Expr("version + 1"),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("actor %s: %w", a.ID, ErrNotFound)
		}

		keep := make([]string, 0, len(a.Items))
		for i, it := range a.Items {
			if it.ID == "" {
				it.ID = uuid.NewString()
			}
			it.OwnerID = a.ID
			irec, err := encodeItem(it, i)
			if err != nil {
				return err
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"owner_id": irec.OwnerID,
					"name":     irec.Name,
					"type":     irec.Type,
					"sort":     irec.Sort,
					"data":     irec.Data,
					"children": irec.Children,
					"version":  gorm.Expr("items.version + 1"),
				}),
			}).Create(irec).Error; err != nil {
				return err
			}
			keep = append(keep, it.ID)
		}
		q := tx.Where("owner_id = ?", a.ID)
		if len(keep) > 0 {
			q = q.Where("id NOT IN ?", keep)
		}
		return q.Delete(&model.ItemRecord{}).Error
	})
	if err != nil {
		return fmt.Errorf("save actor %s: %w", a.ID, err)
	}
	a.Version++
	return nil
}

// SaveItems writes whole items in one transaction. All items must exist.
func (s *Store) SaveItems(ctx context.Context, items ...*entity.Item) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, it := range items {
			rec, err := encodeItem(it, 0)
			if err != nil {
				return err
			}
			res := tx.Model(&model.ItemRecord{}).Where("id = ?", it.ID).Updates(map[string]interface{}{
				"name":     rec.Name,
				"type":     rec.Type,
				"data":     rec.Data,
				"children": rec.Children,
				"version":  gorm.Expr("version + 1"),
			})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("item %s: %w", it.ID, ErrNotFound)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save items: %w", err)
	}
	for _, it := range items {
		it.Version++
	}
	return nil
}

// DeleteActor removes an actor and the items it owns.
func (s *Store) DeleteActor(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&model.ActorRecord{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("actor %s: %w", id, ErrNotFound)
		}
		return tx.Where("owner_id = ?", id).Delete(&model.ItemRecord{}).Error
	})
}

// PatchActor applies p to the actor's data.
func (s *Store) PatchActor(ctx context.Context, id string, p Patch) error {
	return s.patch(ctx, &model.ActorRecord{}, "actor", id, p, func(b []byte) error {
		var d entity.ActorData
		return json.Unmarshal(b, &d)
	})
}

// PatchItem applies p to the item's data.
func (s *Store) PatchItem(ctx context.Context, id string, p Patch) error {
	return s.patch(ctx, &model.ItemRecord{}, "item", id, p, func(b []byte) error {
		var d entity.ItemData
		return json.Unmarshal(b, &d)
	})
}

// patch reads, patches and writes the data column of one record in a
// transaction. The result must still decode into the document type.
func (s *Store) patch(ctx context.Context, table interface{}, kind, id string, p Patch, check func([]byte) error) error {
	if p.Empty() {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct {
			Data datatypes.JSON
		}
		if err := tx.Model(table).Select("data").Where("id = ?", id).Take(&row).Error; err != nil {
			return notFound(err, kind, id)
		}
		data, err := p.Apply(row.Data)
		if err != nil {
			return fmt.Errorf("patch %s %s: %w", kind, id, err)
		}
		if err := check(data); err != nil {
			return fmt.Errorf("patch %s %s: %v: %w", kind, id, err, errs.ErrValidation)
		}
		s.logger.Debug("document patched",
			zap.String("kind", kind),
			zap.String("id", id),
			zap.Int("set", len(p.Set)),
			zap.Int("delete", len(p.Delete)))
		return tx.Model(table).Where("id = ?", id).Updates(map[string]interface{}{
			"data":    datatypes.JSON(data),
			"version": gorm.Expr("version + 1"),
		}).Error
	})
}

// ActorField reads one path of an actor's data.
func (s *Store) ActorField(ctx context.Context, id, path string) (interface{}, error) {
	var row struct {
		Data datatypes.JSON
	}
	if err := s.db.WithContext(ctx).Model(&model.ActorRecord{}).Select("data").Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, notFound(err, "actor", id)
	}
	res := Field(row.Data, path)
	if !res.Exists() {
		return nil, fmt.Errorf("actor %s has no field %q: %w", id, path, ErrNotFound)
	}
	return res.Value(), nil
}
