package model

import (
	"time"

	"gorm.io/datatypes"
)

// TestRecord stores a test record. Data holds the full roll.Data JSON; the
// other columns are copies for querying.
type TestRecord struct {
	ID        string         `gorm:"primaryKey;size:26" json:"id"`
	Kind      string         `gorm:"size:32;not null" json:"kind"`
	State     string         `gorm:"index:idx_test_state;size:32;not null" json:"state"`
	SceneID   string         `gorm:"index:idx_test_scene;size:64" json:"scene_id"`
	UserID    string         `gorm:"size:64" json:"user_id"`
	ActorID   string         `gorm:"index:idx_test_actor;size:36" json:"actor_id"`
	AgainstID string         `gorm:"index:idx_test_against;size:26" json:"against_id"`
	Data      datatypes.JSON `json:"data"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"index:idx_test_updated;autoUpdateTime" json:"updated_at"`
}

func (TestRecord) TableName() string { return "tests" }
