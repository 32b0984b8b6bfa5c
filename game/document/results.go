package document

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"github.com/kasuganosora/sr5rules/game/roll"
	"github.com/kasuganosora/sr5rules/model"
)

// SaveTest inserts or replaces the record of a test.
func (s *Store) SaveTest(ctx context.Context, d roll.Data) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode test %s: %w", d.ID, err)
	}
	rec := &model.TestRecord{
		ID:        d.ID,
		Kind:      string(d.Kind),
		State:     d.State,
		SceneID:   d.SceneID,
		UserID:    d.UserID,
		ActorID:   d.ActorID,
		AgainstID: d.AgainstID,
		Data:      datatypes.JSON(raw),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "data", "updated_at"}),
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("save test %s: %w", d.ID, err)
	}
	return nil
}

// LoadTest loads a stored test.
func (s *Store) LoadTest(ctx context.Context, id string) (roll.Data, error) {
	var rec model.TestRecord
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return roll.Data{}, notFound(err, "test", id)
	}
	return decodeTest(&rec)
}

// TestsByScene returns the latest tests of a scene, newest first.
func (s *Store) TestsByScene(ctx context.Context, sceneID string, limit int) ([]roll.Data, error) {
	if limit <= 0 {
		limit = 50
	}
	var recs []model.TestRecord
	err := s.db.WithContext(ctx).
		Where("scene_id = ?", sceneID).
		Order("id DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list tests of scene %s: %w", sceneID, err)
	}
	out := make([]roll.Data, 0, len(recs))
	for i := range recs {
		d, err := decodeTest(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func decodeTest(rec *model.TestRecord) (roll.Data, error) {
	var d roll.Data
	if err := json.Unmarshal(rec.Data, &d); err != nil {
		return roll.Data{}, fmt.Errorf("decode test %s: %w", rec.ID, err)
	}
	return d, nil
}
