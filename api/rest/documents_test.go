package rest_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/sr5rules/game/entity"
)

func TestActors_CreateGetDelete(t *testing.T) {
	s := newServer(t)

	w := s.postJSON("/api/actors", `{"name":"Spider","type":"character"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created entity.Actor
	decode(t, w, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Spider", created.Name)

	w = s.get("/api/actors/" + created.ID)
	require.Equal(t, http.StatusOK, w.Code)
	var got entity.Actor
	decode(t, w, &got)
	assert.Equal(t, created.ID, got.ID)

	w = s.get("/api/actors")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Actors []entity.Actor `json:"actors"`
	}
	decode(t, w, &list)
	assert.Len(t, list.Actors, 3)

	w = s.do(http.MethodDelete, "/api/actors/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.get("/api/actors/" + created.ID)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActors_CreateValidation(t *testing.T) {
	s := newServer(t)

	w := s.postJSON("/api/actors", `{"name":"NoType"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.postJSON("/api/actors", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.postJSON("/api/actors", `{"id":"att","name":"dup","type":"character"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestActors_PatchAndField(t *testing.T) {
	s := newServer(t)

	w := s.do(http.MethodPatch, "/api/actors/att", `{"set":{"attributes.agility.value":5}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var a entity.Actor
	decode(t, w, &a)
	assert.Equal(t, 5, a.Attribute(entity.AttrAgility).Value)

	w = s.get("/api/actors/att/field?path=attributes.agility.value")
	require.Equal(t, http.StatusOK, w.Code)
	var field struct {
		Value float64 `json:"value"`
	}
	decode(t, w, &field)
	assert.Equal(t, float64(5), field.Value)

	w = s.get("/api/actors/att/field")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, "/api/actors/att", `{"set":{"attributes":"broken"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, "/api/actors/nobody", `{"set":{"name":"x"}}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestItems_CreatePatchResolve(t *testing.T) {
	s := newServer(t)

	w := s.postJSON("/api/items", `{"name":"Fairlight","type":"device","data":{"technology":{"rating":6}}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var it entity.Item
	decode(t, w, &it)

	w = s.do(http.MethodPatch, "/api/items/"+it.ID, `{"set":{"technology.rating":4}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &it)
	assert.Equal(t, 4, it.Data.Technology.Rating)

	w = s.postJSON("/api/resolve", `{"type":"Item","id":"`+it.ID+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Fairlight")

	w = s.postJSON("/api/resolve", `{"type":"Scene","id":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.postJSON("/api/items", `{"name":"NoType"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPrepare(t *testing.T) {
	s := newServer(t)

	w := s.postJSON("/api/actors/att/prepare", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.postJSON("/api/actors/nobody/prepare", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	ctrl := &entity.Item{Name: "deck", Type: entity.ItemDevice, Data: entity.ItemData{
		Technology: &entity.Technology{Rating: 2},
	}}
	require.NoError(t, s.store.CreateItem(context.Background(), ctrl))
	w = s.postJSON("/api/items/"+ctrl.ID+"/prepare", "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
