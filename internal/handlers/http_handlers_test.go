package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"funhub/internal/draw"
	"funhub/internal/models"
	"funhub/internal/services"
)

const testTemplates = `
{{define "layout.html"}}<html><title>{{.title}}</title>{{.PageContent}}</html>{{end}}
{{define "index.html"}}<p>{{len .Participants}} participants</p><textarea>{{.Names}}</textarea>{{end}}
`

type testServer struct {
	t      *testing.T
	router *gin.Engine
	svc    *services.SessionService
	sched  *draw.ManualScheduler
	cookie *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sched := draw.NewManualScheduler()
	svc := services.NewSessionService(services.Options{Scheduler: sched})
	h := NewHTTPHandler(svc, template.Must(template.New("").Parse(testTemplates)))
	return &testServer{t: t, router: NewRouter(h), svc: svc, sched: sched}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	s.t.Helper()
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == tenantCookie {
			s.cookie = c
		}
	}
	return rec
}

func (s *testServer) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *testServer) postJSON(path string, body any) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	require.NoError(s.t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

type participantsResponse struct {
	Participants []models.Participant `json:"participants"`
}

type drawResponse struct {
	Started bool             `json:"started"`
	State   models.DrawState `json:"state"`
}

type groupsResponse struct {
	Groups []models.Group `json:"groups"`
	Size   int            `json:"size"`
	Theme  string         `json:"theme"`
}

func TestTenantMiddleware_IssuesAndReusesCookie(t *testing.T) {
	s := newTestServer(t)

	rec := s.get("/api/participants")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, s.cookie)
	first := s.cookie.Value

	rec = s.get("/api/participants")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, first, s.cookie.Value)
	require.Empty(t, rec.Result().Cookies(), "an existing session keeps its cookie")
}

func TestTenantMiddleware_ReplacesMalformedCookie(t *testing.T) {
	s := newTestServer(t)
	s.cookie = &http.Cookie{Name: tenantCookie, Value: "../../etc"}

	s.get("/api/participants")
	require.NotEqual(t, "../../etc", s.cookie.Value)
}

func TestSetParticipants_FormAndJSON(t *testing.T) {
	s := newTestServer(t)

	rec := s.postForm("/api/participants", url.Values{"names": {"Alice, Bob\n\nCarol"}})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[participantsResponse](t, rec)
	require.Len(t, got.Participants, 3)
	require.Equal(t, "Carol", got.Participants[2].Name)

	rec = s.postJSON("/api/participants", map[string]string{"names": "Dan\nDan"})
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[participantsResponse](t, rec)
	require.Len(t, got.Participants, 2)
	require.NotEqual(t, got.Participants[0].ID, got.Participants[1].ID)

	rec = s.get("/api/participants")
	require.Len(t, decode[participantsResponse](t, rec).Participants, 2)
}

func TestUploadParticipants(t *testing.T) {
	upload := func(s *testServer, filename, content string) *httptest.ResponseRecorder {
		body := &bytes.Buffer{}
		w := multipart.NewWriter(body)
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/participants/upload", body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		return s.do(req)
	}

	s := newTestServer(t)
	rec := upload(s, "staff.CSV", "Alice,Bob\nCarol\n")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[participantsResponse](t, rec).Participants, 3)

	rec = upload(s, "staff.xlsx", "Alice")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, s.svc.Participants(s.cookie.Value), 3)
}

func TestClearParticipants(t *testing.T) {
	s := newTestServer(t)
	s.postForm("/api/participants", url.Values{"names": {"Alice"}})

	rec := s.do(httptest.NewRequest(http.MethodDelete, "/api/participants", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, s.svc.Participants(s.cookie.Value))
}

func TestDrawFlow(t *testing.T) {
	s := newTestServer(t)
	s.postForm("/api/participants", url.Values{"names": {"A,B,C"}})

	for i := 0; i < 3; i++ {
		rec := s.postForm("/api/draw", url.Values{"allowRepeat": {"false"}})
		require.Equal(t, http.StatusAccepted, rec.Code)
		resp := decode[drawResponse](t, rec)
		require.True(t, resp.Started)
		require.Equal(t, models.DrawSpinning, resp.State.Status)

		// changes are refused mid-spin
		require.Equal(t, http.StatusConflict, s.postForm("/api/draw/reset", nil).Code)
		require.Equal(t, http.StatusConflict, s.postForm("/api/participants", url.Values{"names": {"X"}}).Code)

		s.sched.RunAll()
	}

	rec := s.postForm("/api/draw", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[drawResponse](t, rec)
	require.False(t, resp.Started)
	require.Len(t, resp.State.History, 3)
	require.Zero(t, resp.State.Remaining)

	rec = s.get("/api/export/winners.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "winners.csv")
	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, utf8BOM+"Draw,Participant ID,Name\n"))
	require.Equal(t, 4, strings.Count(body, "\n"))

	rec = s.postForm("/api/draw/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[models.DrawState](t, rec)
	require.Empty(t, state.History)
	require.Equal(t, 3, state.Remaining)
}

func TestDrawWithRepeatsJSON(t *testing.T) {
	s := newTestServer(t)
	s.postForm("/api/participants", url.Values{"names": {"A\nB"}})

	for i := 0; i < 5; i++ {
		rec := s.postJSON("/api/draw", map[string]bool{"allowRepeat": true})
		require.Equal(t, http.StatusAccepted, rec.Code)
		s.sched.RunAll()
	}
	state := decode[models.DrawState](t, s.get("/api/draw"))
	require.Len(t, state.History, 5)
	require.True(t, state.AllowRepeat)
	require.Equal(t, models.DrawSettled, state.Status)
}

func TestCreateGroups(t *testing.T) {
	s := newTestServer(t)
	s.postForm("/api/participants", url.Values{"names": {"A,B,C,D,E"}})

	rec := s.postForm("/api/groups", url.Values{"size": {"2"}, "theme": {"nature"}})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[groupsResponse](t, rec)
	require.Len(t, resp.Groups, 3)
	require.Equal(t, 2, resp.Size)
	require.Equal(t, "nature", resp.Theme)
	require.Len(t, resp.Groups[2].Members, 1)

	again := decode[groupsResponse](t, s.get("/api/groups"))
	require.Equal(t, resp.Groups, again.Groups)

	rec = s.get("/api/export/groups.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 6, strings.Count(rec.Body.String(), "\n"))

	// invalid size keeps the previous grouping
	rec = s.postJSON("/api/groups", map[string]any{"size": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[groupsResponse](t, rec).Groups, 3)
}

// streamRecorder adds the CloseNotify support gin's Stream expects.
type streamRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *streamRecorder) CloseNotify() <-chan bool {
	return r.closed
}

func TestStreamEvents_SendsStateUntilClientLeaves(t *testing.T) {
	s := newTestServer(t)
	s.postForm("/api/participants", url.Values{"names": {"Alice"}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/draw/stream", nil).WithContext(ctx)
	req.AddCookie(s.cookie)

	rec := &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/event-stream"))
	body := rec.Body.String()
	require.Contains(t, body, "event:state")
	require.Contains(t, body, `"remaining":1`)
}

func TestIndexAndPublicRoutes(t *testing.T) {
	s := newTestServer(t)
	s.postForm("/api/participants", url.Values{"names": {"Alice,Bob"}})

	rec := s.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "2 participants")
	require.Contains(t, rec.Body.String(), "Alice\nBob")

	rec = s.get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.get("/api/themes")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "superheroes")

	rec = s.get("/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "funhub_active_sessions")
}
