package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/monitor-agent/internal/usecase/errors"
	"github.com/johnquangdev/monitor-agent/pkg/validator"
)

type fakeController struct {
	mu       sync.Mutex
	startErr error
	stopErr  error
	status   entities.PipelineStatus
	starts   int
	ctxErrs  []error
}

func (f *fakeController) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	if f.startErr != nil {
		return f.startErr
	}
	f.status.State = entities.PipelineRunning
	return nil
}

func (f *fakeController) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	if f.stopErr != nil {
		return f.stopErr
	}
	f.status.State = entities.PipelineStopped
	return nil
}

func (f *fakeController) Status() entities.PipelineStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

type fakeRepo struct {
	records []entities.TranscriptRecord
	err     error
	limit   int
}

func (f *fakeRepo) Append(ctx context.Context, record *entities.TranscriptRecord) error {
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeRepo) ListRecent(ctx context.Context, limit int) ([]entities.TranscriptRecord, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.records) {
		return f.records[:limit], nil
	}
	return f.records, nil
}

type fakeRecent struct {
	records []entities.TranscriptRecord
}

func (f *fakeRecent) List(limit int) []entities.TranscriptRecord {
	return f.records
}

type fakeSubscriber struct {
	events chan []byte
	err    error
	closed chan struct{}
}

func (f *fakeSubscriber) Subscribe(ctx context.Context) (<-chan []byte, func() error, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.events, func() error {
		close(f.closed)
		return nil
	}, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Info    string          `json:"info"`
	Data    json.RawMessage `json:"data"`
	Details map[string]string `json:"details"`
}

func newTestServer(ctrl PipelineController, repo *fakeRepo, recent RecentLister, sub EventSubscriber) *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()

	var (
		pipelineHandler    *Pipeline
		transcriptsHandler *Transcripts
		streamHandler      *Stream
	)
	if ctrl != nil {
		pipelineHandler = NewPipelineHandler(ctrl, nil)
	}
	if repo != nil {
		transcriptsHandler = NewTranscriptsHandler(repo, recent, nil)
	}
	if sub != nil {
		streamHandler = NewStreamHandler(sub, []string{"http://allowed.test"}, nil)
	}

	NewRouter(nil, pipelineHandler, transcriptsHandler, streamHandler).Setup(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode body %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func TestHealthCheck(t *testing.T) {
	e := newTestServer(nil, nil, nil, nil)
	rec, _ := do(t, e, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestPipelineStart(t *testing.T) {
	ctrl := &fakeController{}
	e := newTestServer(ctrl, nil, nil, nil)

	rec, env := do(t, e, http.MethodPost, "/v1/pipeline/start")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(string(env.Data), `"started"`) {
		t.Fatalf("unexpected data: %s", env.Data)
	}
	if ctrl.starts != 1 {
		t.Fatalf("expected one start call, got %d", ctrl.starts)
	}
}

func TestPipelineStart_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"already running", usecaseErrors.ErrPipelineAlreadyRunning, http.StatusConflict},
		{"resolution", fmt.Errorf("%w: page never requested a manifest", entities.ErrResolutionFailed), http.StatusBadGateway},
		{"capture", fmt.Errorf("spawn: %w", entities.ErrCaptureAlreadyRunning), http.StatusBadGateway},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestServer(&fakeController{startErr: tc.err}, nil, nil, nil)
			rec, env := do(t, e, http.MethodPost, "/v1/pipeline/start")
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if env.Message == "" {
				t.Fatalf("expected an error message")
			}
		})
	}
}

func TestPipelineControl_IgnoresClientDisconnect(t *testing.T) {
	ctrl := &fakeController{}
	e := newTestServer(ctrl, nil, nil, nil)

	for _, target := range []string{"/v1/pipeline/start", "/v1/pipeline/stop"} {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		req := httptest.NewRequest(http.MethodPost, target, nil).WithContext(ctx)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, rec.Code)
		}
	}

	if len(ctrl.ctxErrs) != 2 {
		t.Fatalf("expected start and stop calls, got %d", len(ctrl.ctxErrs))
	}
	for i, err := range ctrl.ctxErrs {
		if err != nil {
			t.Fatalf("call %d saw a cancelled context: %v", i, err)
		}
	}
}

func TestPipelineStop_NotRunning(t *testing.T) {
	e := newTestServer(&fakeController{stopErr: usecaseErrors.ErrPipelineNotRunning}, nil, nil, nil)
	rec, env := do(t, e, http.MethodPost, "/v1/pipeline/stop")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if env.Details["state"] != "stopped" {
		t.Fatalf("expected state detail, got %v", env.Details)
	}
}

func TestPipelineStatus(t *testing.T) {
	ctrl := &fakeController{status: entities.PipelineStatus{
		State:          entities.PipelineRunning,
		ProcessedCount: 4,
		FailedCount:    1,
		StartedAt:      time.Now().Add(-time.Minute),
	}}
	e := newTestServer(ctrl, nil, nil, nil)

	rec, env := do(t, e, http.MethodGet, "/v1/pipeline/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var status struct {
		State          string `json:"state"`
		IsRunning      bool   `json:"is_running"`
		ProcessedCount int64  `json:"processed_count"`
		FailedCount    int64  `json:"failed_count"`
	}
	if err := json.Unmarshal(env.Data, &status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.State != "running" || !status.IsRunning || status.ProcessedCount != 4 || status.FailedCount != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func testRecords(n int) []entities.TranscriptRecord {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	out := make([]entities.TranscriptRecord, 0, n)
	for i := 0; i < n; i++ {
		start := base.Add(-time.Duration(i) * time.Minute)
		out = append(out, entities.TranscriptRecord{
			ID:           uuid.New(),
			CaptureStart: start,
			CaptureEnd:   start.Add(time.Minute),
			SourceFile:   fmt.Sprintf("audio_%s.wav", start.Format("20060102_150405")),
			Transcript:   "hello world",
			Summary:      "greeting",
		})
	}
	return out
}

func TestListTranscripts(t *testing.T) {
	repo := &fakeRepo{records: testRecords(3)}
	e := newTestServer(nil, repo, nil, nil)

	rec, env := do(t, e, http.MethodGet, "/v1/transcripts?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if repo.limit != 2 {
		t.Fatalf("expected limit 2 to reach the store, got %d", repo.limit)
	}

	var list struct {
		Count  int    `json:"count"`
		Source string `json:"source"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Count != 2 || list.Source != "store" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestListTranscripts_DefaultLimit(t *testing.T) {
	repo := &fakeRepo{}
	e := newTestServer(nil, repo, nil, nil)

	rec, _ := do(t, e, http.MethodGet, "/v1/transcripts")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if repo.limit != 50 {
		t.Fatalf("expected default limit 50, got %d", repo.limit)
	}
}

func TestListTranscripts_InvalidLimit(t *testing.T) {
	e := newTestServer(nil, &fakeRepo{}, nil, nil)

	for _, target := range []string{"/v1/transcripts?limit=1000", "/v1/transcripts?limit=abc"} {
		rec, _ := do(t, e, http.MethodGet, target)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}

	_, env := do(t, e, http.MethodGet, "/v1/transcripts?limit=1000")
	if env.Details["limit"] != "max=500" {
		t.Fatalf("expected field detail, got %v", env.Details)
	}
}

func TestListTranscripts_StoreFallback(t *testing.T) {
	repo := &fakeRepo{err: fmt.Errorf("connection refused")}

	t.Run("recent buffer", func(t *testing.T) {
		e := newTestServer(nil, repo, &fakeRecent{records: testRecords(1)}, nil)
		rec, env := do(t, e, http.MethodGet, "/v1/transcripts")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(string(env.Data), `"source":"recent"`) {
			t.Fatalf("expected recent source, got %s", env.Data)
		}
	})

	t.Run("no buffer", func(t *testing.T) {
		e := newTestServer(nil, repo, nil, nil)
		rec, _ := do(t, e, http.MethodGet, "/v1/transcripts")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}

func TestNotImplementedRoutes(t *testing.T) {
	e := newTestServer(nil, nil, nil, nil)
	rec, _ := do(t, e, http.MethodPost, "/v1/pipeline/start")
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", rec.Code)
	}
}

func TestStream_ForwardsEvents(t *testing.T) {
	sub := &fakeSubscriber{events: make(chan []byte, 1), closed: make(chan struct{})}
	srv := httptest.NewServer(newTestServer(nil, nil, nil, sub))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	header := http.Header{"Origin": []string{"http://allowed.test"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	payload := []byte(`{"type":"new_transcript","data":{"summary":"greeting"}}`)
	sub.events <- payload

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(msg) != string(payload) {
		t.Fatalf("expected %s, got %s", payload, msg)
	}

	conn.Close()
	select {
	case <-sub.closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("subscription was not released after the client left")
	}
}

func TestStream_RejectsOrigin(t *testing.T) {
	sub := &fakeSubscriber{events: make(chan []byte), closed: make(chan struct{})}
	srv := httptest.NewServer(newTestServer(nil, nil, nil, sub))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws"
	header := http.Header{"Origin": []string{"http://evil.test"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	if err == nil {
		t.Fatalf("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", resp)
	}
}

func TestStream_SubscribeFailure(t *testing.T) {
	sub := &fakeSubscriber{err: fmt.Errorf("redis down")}
	e := newTestServer(nil, nil, nil, sub)

	rec, _ := do(t, e, http.MethodGet, "/v1/ws")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestHandleError_PlainErrorIsInternal(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	if err := HandleError(nil, c, fmt.Errorf("disk full")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if env.Code != 1000 || env.Message != "Internal server error" || env.Info != "disk full" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}
