package rest_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/sr5rules/game/entity"
)

func seedMatrix(t *testing.T, s *server) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.store.CreateItem(ctx, &entity.Item{ID: "host", Name: "host", Type: entity.ItemHost,
		Data: entity.ItemData{Host: &entity.Host{Rating: 4}}}))
	require.NoError(t, s.store.CreateItem(ctx, &entity.Item{ID: "cmd", Name: "cmd", Type: entity.ItemDevice,
		Data: entity.ItemData{Technology: &entity.Technology{Rating: 3}, Device: &entity.Device{Category: "commlink"}}}))
	require.NoError(t, s.store.CreateItem(ctx, &entity.Item{ID: "gun", Name: "gun", Type: entity.ItemEquipment,
		Data: entity.ItemData{Technology: &entity.Technology{Rating: 1}}}))
	require.NoError(t, s.store.CreateActor(ctx, &entity.Actor{ID: "patrol", Name: "Patrol IC", Type: entity.ActorIC}))
}

func TestMarks(t *testing.T) {
	s := newServer(t)
	seedMatrix(t, s)

	w := s.postJSON("/api/hosts/host/marks", `{"target_id":"att","marks":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var set struct {
		MarkID string `json:"mark_id"`
		Marks  int    `json:"marks"`
	}
	decode(t, w, &set)
	assert.Equal(t, "s1:att:", set.MarkID)
	assert.Equal(t, 2, set.Marks)

	w = s.postJSON("/api/hosts/host/marks", `{"target_id":"att","marks":5}`)
	decode(t, w, &set)
	assert.Equal(t, 3, set.Marks)

	w = s.get("/api/hosts/host/marks/s1:att:")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"mark_id":"s1:att:","marks":3}`, w.Body.String())

	w = s.get("/api/hosts/host/documents")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"target_actor"`)

	w = s.do(http.MethodDelete, "/api/hosts/host/marks/s1:att:", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.get("/api/hosts/host/marks")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"marks":{}}`, w.Body.String())

	w = s.postJSON("/api/hosts/cmd/marks", `{"target_id":"att","marks":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.postJSON("/api/hosts/nohost/marks", `{"target_id":"att","marks":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.postJSON("/api/hosts/host/marks", `{"marks":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIC(t *testing.T) {
	s := newServer(t)
	seedMatrix(t, s)

	w := s.postJSON("/api/hosts/host/ic", `{"actor_id":"patrol"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Patrol IC")

	w = s.postJSON("/api/hosts/host/ic", `{"actor_id":"att"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodDelete, "/api/hosts/host/ic/7", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "patrol")

	w = s.do(http.MethodDelete, "/api/hosts/host/ic/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ic":[]}`, w.Body.String())

	w = s.do(http.MethodDelete, "/api/hosts/host/ic/x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNetwork(t *testing.T) {
	s := newServer(t)
	seedMatrix(t, s)

	w := s.postJSON("/api/controllers/cmd/devices", `{"device_id":"gun"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"gun"`)

	w = s.get("/api/devices/gun/controller")
	require.Equal(t, http.StatusOK, w.Code)
	var ctrl entity.Item
	decode(t, w, &ctrl)
	assert.Equal(t, "cmd", ctrl.ID)

	w = s.do(http.MethodPut, "/api/devices/gun/controller", `{"controller_id":"host"}`)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = s.get("/api/controllers/cmd/devices")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"devices":null}`, w.Body.String())

	w = s.do(http.MethodDelete, "/api/devices/gun/network", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.get("/api/devices/gun/controller")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.postJSON("/api/controllers/cmd/devices", `{"device_id":"gun"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, "/api/controllers/cmd/devices/0", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = s.postJSON("/api/controllers/cmd/devices", `{"device_id":"gun"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodDelete, "/api/controllers/cmd/devices", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.postJSON("/api/controllers/gun/devices", `{"device_id":"cmd"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
