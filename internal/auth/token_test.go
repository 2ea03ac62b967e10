package auth_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/localpros/localpros/webapp/internal/auth"
	"github.com/localpros/localpros/webapp/pkg/contracts"
)

func newTestCodec(t *testing.T, ttl time.Duration) *auth.CookieCodec {
	t.Helper()
	codec, err := auth.NewCookieCodec("test-secret", ttl, false)
	if err != nil {
		t.Fatalf("NewCookieCodec() error = %v", err)
	}
	return codec
}

func TestCookieCodec_IssueAndRead(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	cookie, err := codec.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}

	req := httptest.NewRequest("GET", "/provider/dashboard", nil)
	req.AddCookie(cookie)

	identity, refresh, err := codec.Read(req)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if identity != "user-123" {
		t.Errorf("Read() identity = %q, want %q", identity, "user-123")
	}
	if refresh != nil {
		t.Error("fresh cookie should not trigger a refresh")
	}
}

func TestCookieCodec_MissingCookie(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	req := httptest.NewRequest("GET", "/", nil)
	if _, _, err := codec.Read(req); err != contracts.ErrNoSession {
		t.Errorf("Read() error = %v, want ErrNoSession", err)
	}
}

func TestCookieCodec_TamperedToken(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	other := newTestCodec(t, time.Hour)

	// Token signed by a codec with the same secret but read after
	// truncation, and a plainly garbage value.
	cookie, err := other.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	cookie.Value = cookie.Value[:len(cookie.Value)-2]

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	if _, _, err := codec.Read(req); err != contracts.ErrNoSession {
		t.Errorf("Read() tampered token error = %v, want ErrNoSession", err)
	}
}

func TestCookieCodec_RefreshPastHalfLife(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	cookie, err := codec.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Jump 40 minutes into the hour-long session.
	auth.SetNowForTest(codec, func() time.Time { return time.Now().Add(40 * time.Minute) })

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)

	identity, refresh, err := codec.Read(req)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if identity != "user-123" {
		t.Errorf("Read() identity = %q", identity)
	}
	if refresh == nil {
		t.Fatal("token past half-life must be re-issued")
	}
	if refresh.Value == cookie.Value {
		t.Error("refreshed cookie should carry a new token")
	}
}

func TestCookieCodec_Expired(t *testing.T) {
	codec := newTestCodec(t, time.Hour)

	cookie, err := codec.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	auth.SetNowForTest(codec, func() time.Time { return time.Now().Add(2 * time.Hour) })

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)
	if _, _, err := codec.Read(req); err != contracts.ErrNoSession {
		t.Errorf("Read() expired token error = %v, want ErrNoSession", err)
	}
}

func TestCookieCodec_Clear(t *testing.T) {
	codec := newTestCodec(t, time.Hour)
	cookie := codec.Clear()
	if cookie.MaxAge != -1 || cookie.Value != "" {
		t.Errorf("Clear() = {MaxAge: %d, Value: %q}, want expired empty cookie", cookie.MaxAge, cookie.Value)
	}
}
