package model_test

import (
	"testing"
	"time"

	"github.com/kasuganosora/sr5rules/model"
	"github.com/kasuganosora/sr5rules/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestAutoMigrate_InsertAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)

	// Actor
	actor := &model.ActorRecord{ID: "a1", Name: "Runner", Type: "character", Data: datatypes.JSON(`{}`)}
	require.NoError(t, db.Create(actor).Error)

	var found model.ActorRecord
	require.NoError(t, db.First(&found, "id = ?", "a1").Error)
	assert.Equal(t, "Runner", found.Name)
	assert.Equal(t, "", found.Pack)

	// Owned item
	item := &model.ItemRecord{ID: "i1", OwnerID: actor.ID, Name: "Ares Predator", Type: "weapon", Data: datatypes.JSON(`{}`)}
	require.NoError(t, db.Create(item).Error)

	var owned []model.ItemRecord
	require.NoError(t, db.Where("owner_id = ?", actor.ID).Find(&owned).Error)
	assert.Len(t, owned, 1)

	// Test
	test := &model.TestRecord{ID: "01J000000000000000000000AA", Kind: "success", State: "created", ActorID: actor.ID, Data: datatypes.JSON(`{}`)}
	require.NoError(t, db.Create(test).Error)

	// AuditLog
	al := &model.AuditLog{
		TraceID: "trace-001", Action: "test.evaluate", TestID: test.ID,
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(al).Error)
	assert.Greater(t, al.ID, int64(0))
}
