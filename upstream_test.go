package forecache

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
)

func newTestUpstream(t *testing.T, target string) *Upstream {
	t.Helper()
	targetURL, err := url.Parse(target)
	if err != nil {
		t.Fatal(err)
	}
	return NewUpstream(targetURL, nil, zerolog.Nop())
}

func TestFetchBuffersFullResponse(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-App", "yes")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("created"))
	}))
	defer upstream.Close()
	u := newTestUpstream(t, upstream.URL)

	res, err := u.Fetch(httptest.NewRequest("GET", "/new", nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != http.StatusCreated {
		t.Fatalf("Status is %d", res.Status)
	}
	if string(res.Body) != "created" {
		t.Fatalf("Body is %q", res.Body)
	}
	if res.Header.Get("X-App") != "yes" {
		t.Fatalf("X-App header is %q", res.Header.Get("X-App"))
	}
}

func TestFetchUnavailable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := upstream.URL
	upstream.Close()
	u := newTestUpstream(t, target)

	_, err := u.Fetch(httptest.NewRequest("GET", "/", nil))
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("Error is %v", err)
	}
}

func TestFetchStreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.Write([]byte("short"))
	}))
	defer upstream.Close()
	u := newTestUpstream(t, upstream.URL)

	_, err := u.Fetch(httptest.NewRequest("GET", "/", nil))
	var stream *StreamError
	if !errors.As(err, &stream) {
		t.Fatalf("Error is %v", err)
	}
}

func TestFetchDoesNotFollowRedirects(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer upstream.Close()
	u := newTestUpstream(t, upstream.URL)

	res, err := u.Fetch(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != http.StatusFound {
		t.Fatalf("Status is %d", res.Status)
	}
	if loc := res.Header.Get("Location"); loc != "/elsewhere" {
		t.Fatalf("Location is %q", loc)
	}
}

func TestFetchStripsHopByHopRequestHeaders(t *testing.T) {
	var gotProxyConn string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotProxyConn = r.Header.Get("Proxy-Connection")
	}))
	defer upstream.Close()
	u := newTestUpstream(t, upstream.URL)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Proxy-Connection", "keep-alive")
	if _, err := u.Fetch(req); err != nil {
		t.Fatal(err)
	}
	if gotProxyConn != "" {
		t.Fatalf("Proxy-Connection forwarded as %q", gotProxyConn)
	}
}

func TestSingleJoiningSlash(t *testing.T) {
	tests := []struct {
		a, b, want string
	}{
		{"", "/items", "/items"},
		{"/api", "/items", "/api/items"},
		{"/api/", "/items", "/api/items"},
		{"/api", "items", "/api/items"},
		{"/api/", "items", "/api/items"},
	}
	for _, tt := range tests {
		if got := singleJoiningSlash(tt.a, tt.b); got != tt.want {
			t.Fatalf("singleJoiningSlash(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}
