package sessioncookie

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteThenRead(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	Write(rr, httptest.NewRequest(http.MethodGet, "/", nil), " abc-123 ")
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	if !cookies[0].HttpOnly || cookies[0].Secure {
		t.Fatalf("cookie flags = %+v, want HttpOnly and not Secure over http", cookies[0])
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	got, ok := Read(req)
	if !ok || got != "abc-123" {
		t.Fatalf("Read = %q, %v; want abc-123, true", got, ok)
	}
}

func TestWriteSecureBehindTLSProxy(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rr := httptest.NewRecorder()
	Write(rr, req, "abc")
	if !rr.Result().Cookies()[0].Secure {
		t.Fatal("expected Secure cookie behind https proxy")
	}
}

func TestReadMissingOrBlank(t *testing.T) {
	t.Parallel()

	if _, ok := Read(nil); ok {
		t.Fatal("expected nil request to have no session")
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: Name, Value: "  "})
	if _, ok := Read(req); ok {
		t.Fatal("expected blank cookie to be ignored")
	}
}

func TestClearExpiresCookie(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	Clear(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := rr.Result().Cookies()[0].MaxAge; got >= 0 {
		t.Fatalf("MaxAge = %d, want negative", got)
	}
}
