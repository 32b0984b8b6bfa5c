package model

import (
	"time"

	"gorm.io/datatypes"
)

// ActorRecord stores an actor document. Data holds the entity.ActorData JSON.
type ActorRecord struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Pack      string         `gorm:"index:idx_actor_pack;size:64;not null;default:''" json:"pack"`
	Name      string         `gorm:"size:128" json:"name"`
	Type      string         `gorm:"index:idx_actor_type;size:32;not null" json:"type"`
	Data      datatypes.JSON `json:"data"`
	Version   int            `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ActorRecord) TableName() string { return "actors" }

// ItemRecord stores an item document. Items owned by an actor carry its id
// in OwnerID. Data holds entity.ItemData, Children the nested items.
type ItemRecord struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Pack      string         `gorm:"index:idx_item_pack;size:64;not null;default:''" json:"pack"`
	OwnerID   string         `gorm:"index:idx_item_owner;size:36" json:"owner_id"`
	Name      string         `gorm:"size:128" json:"name"`
	Type      string         `gorm:"index:idx_item_type;size:32;not null" json:"type"`
	Sort      int            `gorm:"not null;default:0" json:"sort"`
	Data      datatypes.JSON `json:"data"`
	Children  datatypes.JSON `json:"children"`
	Version   int            `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ItemRecord) TableName() string { return "items" }
