package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/kasuganosora/sr5rules/api/rest"
	"github.com/kasuganosora/sr5rules/config"
	"github.com/kasuganosora/sr5rules/game/data"
	"github.com/kasuganosora/sr5rules/game/document"
	"github.com/kasuganosora/sr5rules/game/entity"
	"github.com/kasuganosora/sr5rules/game/matrix"
	"github.com/kasuganosora/sr5rules/game/roll"
	"github.com/kasuganosora/sr5rules/game/rules"
	"github.com/kasuganosora/sr5rules/game/session"
	mw "github.com/kasuganosora/sr5rules/middleware"
	"github.com/kasuganosora/sr5rules/plugin/hook"
	"github.com/kasuganosora/sr5rules/scheduler"
	"github.com/kasuganosora/sr5rules/testutil"
)

const testAdminKey = "secret"

type server struct {
	r     *gin.Engine
	store *document.Store
	sess  *session.Service
	sched *scheduler.Scheduler
}

func init() {
	gin.SetMode(gin.TestMode)
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

// newServer wires every handler against an in-memory database and cache.
// The roller returns faces in order.
func newServer(t *testing.T, faces ...int) *server {
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
	sess := session.New(engine, store, c, ps, nil, config.RulesConfig{PendingTTL: time.Minute}, nil)
	sched := scheduler.New(nil)
	t.Cleanup(sched.Stop)

	r := gin.New()
	r.Use(mw.TraceID(), mw.Identity())
	rest.Register(r.Group("/api"), rest.Handlers{
		Documents: rest.NewDocumentHandler(store, sess, nil),
		Tests:     rest.NewTestHandler(sess, store),
		Matrix:    rest.NewMatrixHandler(matrix.NewService(store, hc, nil), nil),
		Rules:     rest.NewRulesHandler(),
		Admin:     rest.NewAdminHandler(sess, sched, nil, nil),
	}, mw.AdminKey(testAdminKey))
	return &server{r: r, store: store, sess: sess, sched: sched}
}

func (s *server) do(method, path, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(mw.SceneHeader, "s1")
	req.Header.Set(mw.UserHeader, "gm")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func (s *server) get(path string) *httptest.ResponseRecorder {
	return s.do(http.MethodGet, path, "")
}

func (s *server) postJSON(path, body string) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, path, body)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
