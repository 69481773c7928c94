package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGateAllowed(t *testing.T) {
	t.Parallel()

	robotsBody := `User-agent: *
Disallow: /private/
Disallow: /tmp

User-agent: seoaudit
Disallow: /admin/

Sitemap: https://example.com/sitemap.xml
Sitemap: https://example.com/sitemap-news.xml
`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if _, err := w.Write([]byte(robotsBody)); err != nil {
			t.Errorf("write robots body: %v", err)
		}
	}))
	defer ts.Close()

	gate := NewGate(context.Background(), ts.Client(), ts.URL+"/", "seoaudit/1.0")

	if !gate.Restricted() {
		t.Fatal("Restricted() = false, want true after successful fetch")
	}

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{name: "root allowed", url: ts.URL + "/", want: true},
		{name: "regular page allowed", url: ts.URL + "/about", want: true},
		{name: "agent specific disallow", url: ts.URL + "/admin/users", want: false},
		{name: "wildcard rules do not apply to named agent", url: ts.URL + "/private/data", want: true},
		{name: "unparsable url allowed", url: "http://exa mple.com/%zz", want: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := gate.Allowed(tt.url); got != tt.want {
				t.Errorf("Allowed(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestGateSitemaps(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("Sitemap: https://example.com/sitemap.xml\nUser-agent: *\nDisallow:\n")); err != nil {
			t.Errorf("write robots body: %v", err)
		}
	}))
	defer ts.Close()

	gate := NewGate(context.Background(), ts.Client(), ts.URL, "seoaudit/1.0")

	got := gate.Sitemaps()
	if len(got) != 1 || got[0] != "https://example.com/sitemap.xml" {
		t.Errorf("Sitemaps() = %v, want [https://example.com/sitemap.xml]", got)
	}
}

func TestGateBlocksAll(t *testing.T) {
	t.Parallel()

	serve := func(body string) *Gate {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := w.Write([]byte(body)); err != nil {
				t.Errorf("write robots body: %v", err)
			}
		}))
		t.Cleanup(ts.Close)
		return NewGate(context.Background(), ts.Client(), ts.URL, "seoaudit/1.0")
	}

	t.Run("disallow all", func(t *testing.T) {
		t.Parallel()
		gate := serve("User-agent: *\nDisallow: /\n")
		if !gate.BlocksAll() {
			t.Error("BlocksAll() = false, want true when the root is disallowed")
		}
	})

	t.Run("open site", func(t *testing.T) {
		t.Parallel()
		gate := serve("User-agent: *\nDisallow: /private/\n")
		if gate.BlocksAll() {
			t.Error("BlocksAll() = true, want false when the root is allowed")
		}
	})

	t.Run("no rules", func(t *testing.T) {
		t.Parallel()
		if AllowAll().BlocksAll() {
			t.Error("BlocksAll() = true, want false without parsed rules")
		}
	})
}

func TestGateFailsOpen(t *testing.T) {
	t.Parallel()

	t.Run("missing robots.txt", func(t *testing.T) {
		t.Parallel()
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer ts.Close()

		gate := NewGate(context.Background(), ts.Client(), ts.URL, "seoaudit/1.0")
		if gate.Restricted() {
			t.Error("Restricted() = true, want false for 404 robots.txt")
		}
		if !gate.Allowed(ts.URL + "/anything") {
			t.Error("Allowed() = false, want true when robots.txt is missing")
		}
	})

	t.Run("server error", func(t *testing.T) {
		t.Parallel()
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ts.Close()

		gate := NewGate(context.Background(), ts.Client(), ts.URL, "seoaudit/1.0")
		if !gate.Allowed(ts.URL + "/anything") {
			t.Error("Allowed() = false, want true when robots.txt returns 500")
		}
	})

	t.Run("unreachable host", func(t *testing.T) {
		t.Parallel()
		gate := NewGate(context.Background(), &http.Client{}, "http://127.0.0.1:1/", "seoaudit/1.0")
		if !gate.Allowed("http://127.0.0.1:1/page") {
			t.Error("Allowed() = false, want true when robots.txt is unreachable")
		}
	})
}

func TestAllowAll(t *testing.T) {
	t.Parallel()

	gate := AllowAll()
	if gate.Restricted() {
		t.Error("Restricted() = true, want false")
	}
	if !gate.Allowed("https://example.com/private/") {
		t.Error("Allowed() = false, want true for allow-all gate")
	}
}
