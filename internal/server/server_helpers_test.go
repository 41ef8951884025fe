package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"queryquest/internal/config"
	"queryquest/internal/game"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubContent struct {
	answer string
	hints  []game.Hint
	err    error
}

func (c *stubContent) NextAnswerAndHints(context.Context) (string, []game.Hint, error) {
	if c.err != nil {
		return "", nil, c.err
	}
	return c.answer, append([]game.Hint(nil), c.hints...), nil
}

type stubSandbox struct {
	mu      sync.Mutex
	queries []string
	result  game.QueryResult
	err     error
}

func (s *stubSandbox) Run(_ context.Context, query string) (game.QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	return s.result, s.err
}

type manualTicks struct {
	ch chan time.Time
}

func newManualTicks() *manualTicks {
	return &manualTicks{ch: make(chan time.Time)}
}

func (m *manualTicks) Create(time.Duration) (<-chan time.Time, func()) {
	return m.ch, func() {}
}

func (m *manualTicks) advance(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case m.ch <- time.Now():
		case <-time.After(2 * time.Second):
			t.Fatalf("round timer did not take tick %d", i+1)
		}
	}
}

type testEnv struct {
	srv     *Server
	ts      *httptest.Server
	ticks   *manualTicks
	sandbox *stubSandbox
}

// testConfig runs two-tick rounds split into two hint segments with no rate limit.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.RoundSeconds = 2
	cfg.HintSegments = 2
	cfg.TickInterval = time.Second
	cfg.RateLimitPerMinute = 0
	cfg.SecretKey = "test-secret"
	return cfg
}

func newTestEnv(t *testing.T, cfg config.Config) *testEnv {
	t.Helper()
	env := &testEnv{
		ticks: newManualTicks(),
		sandbox: &stubSandbox{result: game.QueryResult{
			Columns: []string{"location_biome"},
			Rows:    [][]string{{"alpine lake"}},
		}},
	}
	env.srv = New(cfg, Options{
		Content: &stubContent{
			answer: "Lake Tahoe",
			hints: []game.Hint{
				{Name: "biome", Value: "alpine lake"},
				{Name: "state name", Value: "California"},
				{Name: "one animal's name", Value: "black bear"},
			},
		},
		Sandbox: env.sandbox,
		Ticks:   env.ticks,
	})
	env.ts = newTestServer(t, env.srv.Handler())
	t.Cleanup(env.ts.Close)
	return env
}

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("skipping test; listen unavailable: %v", err)
	}
	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: handler},
	}
	ts.Start()
	return ts
}

type joined struct {
	Code          string `json:"code"`
	Token         string `json:"token"`
	ParticipantID string `json:"participantId"`
	IsHost        bool   `json:"isHost"`
	JoinURL       string `json:"joinUrl"`
}

func createRoom(t *testing.T, ts *httptest.Server, name string) joined {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms", map[string]string{"displayName": name}, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	return decodeInto[joined](t, resp)
}

func joinRoom(t *testing.T, ts *httptest.Server, code, name string) joined {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+code+"/join", map[string]string{"displayName": name}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeInto[joined](t, resp)
}

func doRequest(t *testing.T, ts *httptest.Server, method, path string, payload any, token string) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	return decodeInto[map[string]any](t, resp)
}

func decodeInto[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var body T
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

type wsEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func dialRoom(t *testing.T, ts *httptest.Server, code, token string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/rooms/" + code + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func sendWS(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	msg := map[string]any{"event": event}
	if data != nil {
		msg["data"] = data
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write websocket message: %v", err)
	}
}

func readWSEvent(t *testing.T, conn *websocket.Conn, timeout time.Duration) wsEvent {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	var ev wsEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read websocket message: %v", err)
	}
	return ev
}

// expectWSEvent reads the next event, fails unless it is named want, and decodes its data.
func expectWSEvent[T any](t *testing.T, conn *websocket.Conn, want string) T {
	t.Helper()
	ev := readWSEvent(t, conn, 5*time.Second)
	if ev.Event != want {
		t.Fatalf("expected websocket event %s, got %s (%s)", want, ev.Event, ev.Data)
	}
	var data T
	if len(ev.Data) > 0 {
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			t.Fatalf("decode %s data: %v", want, err)
		}
	}
	return data
}

// expectNoWSMessage leaves conn unusable for further reads.
func expectNoWSMessage(t *testing.T, conn *websocket.Conn, timeout time.Duration) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, _, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("expected no websocket message within %s", timeout)
	}
	var netErr net.Error
	if !errors.As(err, &netErr) || !netErr.Timeout() {
		t.Fatalf("expected websocket timeout, got %v", err)
	}
}
