package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const settlePath = "/payments/:payment_id/settle"

// helper: new Echo with the middleware and a simple route
func setupEcho(rdb redis.UniversalClient, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(Idempotency(rdb, ttl))
	e.POST(settlePath, handler)
	e.GET("/payments/:payment_id", handler) // for non-mutating bypass test
	return e
}

func mkJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

func validHeaders() map[string]string {
	return map[string]string{
		HeaderRequestID: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", // 32-hex (valid)
		HeaderRequestAt: time.Now().UTC().Format(time.RFC3339),
		HeaderUserID:    "tenant-1",
	}
}

// simple handler to exercise respRecorder capture & saveFinal
func okSettledHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"status": "PAID"})
}

func Test_BypassOnGET_NoHeadersRequired(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "get ok"})
	})
	rec := doReq(t, e, http.MethodGet, "/payments/p1", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func Test_ValidationFailures(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, okSettledHandler)

	cases := []struct {
		name   string
		mutate func(h map[string]string)
	}{
		{"missing request id", func(h map[string]string) { delete(h, HeaderRequestID) }},
		{"invalid request id", func(h map[string]string) { h[HeaderRequestID] = "NOT-VALID" }},
		{"invalid request at", func(h map[string]string) { h[HeaderRequestAt] = "not-a-time" }},
		{"request at too skewed", func(h map[string]string) {
			h[HeaderRequestAt] = time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339)
		}},
		{"missing user id", func(h map[string]string) { delete(h, HeaderUserID) }},
		{"invalid user id", func(h map[string]string) { h[HeaderUserID] = "has spaces!" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := validHeaders()
			tc.mutate(h)
			rec := doReq(t, e, http.MethodPost, "/payments/p1/settle", mkJSONBody(t, map[string]string{"amount": "1"}), h)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("want 400, got %d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

func Test_HappyPath_Then_Replay(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	calls := 0
	e := setupEcho(rdb, 2*time.Minute, func(c echo.Context) error {
		calls++
		return okSettledHandler(c)
	})

	h := validHeaders()
	body := map[string]any{"amount": "10233.33"}

	// First request -> goes through handler
	rec1 := doReq(t, e, http.MethodPost, "/payments/p1/settle", mkJSONBody(t, body), h)
	if rec1.Code != http.StatusOK {
		t.Fatalf("first request => want 200, got %d, body: %s", rec1.Code, rec1.Body.String())
	}

	// Second request with SAME headers & body -> replay stored response
	rec2 := doReq(t, e, http.MethodPost, "/payments/p1/settle", mkJSONBody(t, body), h)
	if rec2.Code != http.StatusOK {
		t.Fatalf("replay => want 200, got %d, body: %s", rec2.Code, rec2.Body.String())
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
	if rec2.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("replay header missing")
	}
	if calls != 1 {
		t.Fatalf("handler should run once, ran %d times", calls)
	}
}

func Test_ServerError_IsNotStored(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	calls := 0
	e := setupEcho(rdb, 2*time.Minute, func(c echo.Context) error {
		calls++
		if calls == 1 {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		return okSettledHandler(c)
	})

	h := validHeaders()
	rec1 := doReq(t, e, http.MethodPost, "/payments/p1/settle", mkJSONBody(t, map[string]string{"amount": "1"}), h)
	if rec1.Code != http.StatusInternalServerError {
		t.Fatalf("first => want 500, got %d", rec1.Code)
	}
	rec2 := doReq(t, e, http.MethodPost, "/payments/p1/settle", mkJSONBody(t, map[string]string{"amount": "1"}), h)
	if rec2.Code != http.StatusOK {
		t.Fatalf("retry => want 200, got %d body=%s", rec2.Code, rec2.Body.String())
	}
	if calls != 2 {
		t.Fatalf("handler should run twice, ran %d times", calls)
	}
}

func Test_Conflict_When_InProgress(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okSettledHandler)

	method := http.MethodPost
	reqID := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	userID := "tenant-1"
	body := []byte(`{"amount":"1"}`)

	// Seed provisional "in-progress" entry (so SetNX will fail and loadEntry sees InProgress=true)
	key := buildKey(method, settlePath, userID, reqID)
	entry := idempEntry{
		InProgress:  true,
		BodySHA256:  bodyHash(body),
		RequestID:   reqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if ok, err := provisionalSet(context.Background(), rdb, key, entry); err != nil || !ok {
		t.Fatalf("seed provisional failed, ok=%v err=%v", ok, err)
	}

	rec := doReq(t, e, method, "/payments/p1/settle", bytes.NewReader(body), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("in-progress => want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func Test_Conflict_When_SameReqID_DifferentBody(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okSettledHandler)

	method := http.MethodPost
	reqID := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	userID := "tenant-1"

	body1 := []byte(`{"amount":"1"}`)
	body2 := []byte(`{"amount":"2"}`)

	// Seed FINAL entry with body hash of body1
	key := buildKey(method, settlePath, userID, reqID)
	final := idempEntry{
		InProgress:  false,
		Code:        http.StatusOK,
		Body:        []byte(`{"status":"PAID"}`),
		BodySHA256:  bodyHash(body1),
		RequestID:   reqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := saveFinal(context.Background(), rdb, key, final, time.Minute*5); err != nil {
		t.Fatalf("seed final failed: %v", err)
	}

	rec := doReq(t, e, method, "/payments/p1/settle", bytes.NewReader(body2), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("different body same reqID => want 409, got %d", rec.Code)
	}
}

func Test_SameReqID_DifferentUser_IsIndependent(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	calls := 0
	e := setupEcho(rdb, 2*time.Minute, func(c echo.Context) error {
		calls++
		return okSettledHandler(c)
	})

	h := validHeaders()
	doReq(t, e, http.MethodPost, "/payments/p1/settle", mkJSONBody(t, map[string]string{"amount": "1"}), h)
	h[HeaderUserID] = "tenant-2"
	doReq(t, e, http.MethodPost, "/payments/p1/settle", mkJSONBody(t, map[string]string{"amount": "1"}), h)
	if calls != 2 {
		t.Fatalf("keys must be scoped per user, handler ran %d times", calls)
	}
}

func Test_StoreUnavailable_Returns503(t *testing.T) {
	// Closed address → SetNX error
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	e := setupEcho(rdb, time.Minute, okSettledHandler)

	rec := doReq(t, e, http.MethodPost, "/payments/p1/settle", bytes.NewReader([]byte(`{}`)), validHeaders())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store unavailable => want 503, got %d", rec.Code)
	}
}
