package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/seoaudit/internal/model"
	"github.com/nao1215/seoaudit/internal/robots"
)

// memStore collects pages and links in memory for spider tests.
type memStore struct {
	pages []*model.Page
	links []*model.Link
}

func (m *memStore) UpsertPage(_ context.Context, page *model.Page) error {
	m.pages = append(m.pages, page)
	return nil
}

func (m *memStore) AppendLink(_ context.Context, link *model.Link) error {
	m.links = append(m.links, link)
	return nil
}

func (m *memStore) page(url string) *model.Page {
	for _, p := range m.pages {
		if p.URL == url {
			return p
		}
	}
	return nil
}

func htmlPage(title string, hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>" + title + "</title></head><body>")
	for _, href := range hrefs {
		b.WriteString(`<a href="` + href + `">` + href + `</a>`)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func serveHTML(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestSpider(ts *httptest.Server, store Store, opts ...SpiderOption) *Spider {
	base := []SpiderOption{WithDelay(0)}
	return NewSpider(NewFetcher(ts.Client()), robots.AllowAll(), store, append(base, opts...)...)
}

func TestSpiderCrawlBreadthFirst(t *testing.T) {
	t.Parallel()

	ts := serveHTML(t, map[string]string{
		"/":  htmlPage("Home", "/a", "/b"),
		"/a": htmlPage("A", "/c"),
		"/b": htmlPage("B", "/"),
		"/c": htmlPage("C"),
	})

	store := &memStore{}
	spider := newTestSpider(ts, store, WithMaxDepth(3))

	result, err := spider.Crawl(context.Background(), ts.URL+"/")
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if result.PagesCrawled != 4 {
		t.Errorf("PagesCrawled = %d, want 4", result.PagesCrawled)
	}
	if result.Termination != model.TerminationQueueExhausted {
		t.Errorf("Termination = %v, want %v", result.Termination, model.TerminationQueueExhausted)
	}
	if result.SeedURL != ts.URL+"/" {
		t.Errorf("SeedURL = %q, want %q", result.SeedURL, ts.URL+"/")
	}

	// BFS order: depth 0 first, then its links, then theirs.
	wantOrder := []string{ts.URL + "/", ts.URL + "/a", ts.URL + "/b", ts.URL + "/c"}
	if len(store.pages) != len(wantOrder) {
		t.Fatalf("stored pages = %d, want %d", len(store.pages), len(wantOrder))
	}
	for i, want := range wantOrder {
		if store.pages[i].URL != want {
			t.Errorf("pages[%d].URL = %q, want %q", i, store.pages[i].URL, want)
		}
	}

	// Depth is fixed at first enqueue.
	wantDepth := map[string]int{
		ts.URL + "/":  0,
		ts.URL + "/a": 1,
		ts.URL + "/b": 1,
		ts.URL + "/c": 2,
	}
	for url, depth := range wantDepth {
		p := store.page(url)
		if p == nil {
			t.Fatalf("page %q not stored", url)
		}
		if p.Depth != depth {
			t.Errorf("page %q depth = %d, want %d", url, p.Depth, depth)
		}
	}

	// /b links back to /; the link is recorded but / is not re-fetched.
	if got := len(store.links); got != 4 {
		t.Errorf("stored links = %d, want 4", got)
	}
}

func TestSpiderDepthLimit(t *testing.T) {
	t.Parallel()

	ts := serveHTML(t, map[string]string{
		"/":  htmlPage("Home", "/a"),
		"/a": htmlPage("A", "/b"),
		"/b": htmlPage("B"),
	})

	store := &memStore{}
	spider := newTestSpider(ts, store, WithMaxDepth(1))

	result, err := spider.Crawl(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if result.PagesCrawled != 2 {
		t.Errorf("PagesCrawled = %d, want 2 (depth 1 stops before /b)", result.PagesCrawled)
	}
	if store.page(ts.URL+"/b") != nil {
		t.Error("/b was crawled, want it beyond the depth limit")
	}
}

func TestSpiderPageBudget(t *testing.T) {
	t.Parallel()

	ts := serveHTML(t, map[string]string{
		"/":  htmlPage("Home", "/a", "/b", "/c"),
		"/a": htmlPage("A"),
		"/b": htmlPage("B"),
		"/c": htmlPage("C"),
	})

	store := &memStore{}
	spider := newTestSpider(ts, store, WithMaxDepth(3), WithMaxPages(2))

	result, err := spider.Crawl(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if result.PagesCrawled != 2 {
		t.Errorf("PagesCrawled = %d, want 2", result.PagesCrawled)
	}
	if result.Termination != model.TerminationPageBudget {
		t.Errorf("Termination = %v, want %v", result.Termination, model.TerminationPageBudget)
	}
}

func TestSpiderFailedFetchCountsAndContinues(t *testing.T) {
	t.Parallel()

	ts := serveHTML(t, map[string]string{
		"/":  htmlPage("Home", "/missing", "/a"),
		"/a": htmlPage("A"),
	})

	store := &memStore{}
	spider := newTestSpider(ts, store, WithMaxDepth(2))

	result, err := spider.Crawl(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if result.PagesCrawled != 3 {
		t.Errorf("PagesCrawled = %d, want 3 (the 404 counts)", result.PagesCrawled)
	}
	missing := store.page(ts.URL + "/missing")
	if missing == nil {
		t.Fatal("404 page not stored, want it recorded as data")
	}
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("missing page StatusCode = %d, want 404", missing.StatusCode)
	}
	if store.page(ts.URL+"/a") == nil {
		t.Error("/a not crawled, want crawl to continue past the 404")
	}
}

func TestSpiderRespectsGate(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/":
			_, _ = w.Write([]byte(htmlPage("Home", "/private/secret", "/open")))
		case "/open":
			_, _ = w.Write([]byte(htmlPage("Open")))
		default:
			http.NotFound(w, r)
		}
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	gate := robots.NewGate(context.Background(), ts.Client(), ts.URL, "seoaudit/1.0")
	store := &memStore{}
	spider := NewSpider(NewFetcher(ts.Client()), gate, store, WithDelay(0), WithMaxDepth(2))

	result, err := spider.Crawl(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if result.PagesCrawled != 2 {
		t.Errorf("PagesCrawled = %d, want 2 (disallowed page skipped)", result.PagesCrawled)
	}
	if store.page(ts.URL+"/private/secret") != nil {
		t.Error("disallowed page was fetched")
	}
}

func TestSpiderExcludedExtensions(t *testing.T) {
	t.Parallel()

	ts := serveHTML(t, map[string]string{
		"/":  htmlPage("Home", "/doc.pdf", "/a"),
		"/a": htmlPage("A"),
	})

	store := &memStore{}
	spider := newTestSpider(ts, store,
		WithMaxDepth(2),
		WithExcludeExtensions([]string{".pdf"}),
	)

	if _, err := spider.Crawl(context.Background(), ts.URL); err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if store.page(ts.URL+"/doc.pdf") != nil {
		t.Error("excluded extension was fetched")
	}
	// The link itself is still recorded for the audit graph.
	found := false
	for _, l := range store.links {
		if l.TargetURL == ts.URL+"/doc.pdf" {
			found = true
		}
	}
	if !found {
		t.Error("link to excluded extension not recorded")
	}
}

func TestSpiderFollowsRedirectTarget(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			http.Redirect(w, r, "/home", http.StatusMovedPermanently)
		case "/home":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(htmlPage("Home", "/about")))
		case "/about":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(htmlPage("About")))
		default:
			http.NotFound(w, r)
		}
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	store := &memStore{}
	spider := newTestSpider(ts, store, WithMaxDepth(1))

	result, err := spider.Crawl(context.Background(), ts.URL+"/")
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if result.PagesCrawled != 3 {
		t.Errorf("PagesCrawled = %d, want 3 (crawl continues from the redirect target)", result.PagesCrawled)
	}
	seed := store.page(ts.URL + "/")
	if seed == nil || seed.RedirectTo != ts.URL+"/home" {
		t.Fatalf("seed RedirectTo not recorded, got %+v", seed)
	}
	home := store.page(ts.URL + "/home")
	if home == nil {
		t.Fatal("redirect target /home not crawled")
	}
	if home.Depth != 0 {
		t.Errorf("/home depth = %d, want 0 (target stands in for the redirecting page)", home.Depth)
	}
	about := store.page(ts.URL + "/about")
	if about == nil {
		t.Fatal("/about not discovered through the redirect target")
	}
	if about.Depth != 1 {
		t.Errorf("/about depth = %d, want 1", about.Depth)
	}
}

func TestSpiderIgnoresOffHostRedirect(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "https://elsewhere.example.com/", http.StatusFound)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	store := &memStore{}
	spider := newTestSpider(ts, store, WithMaxDepth(2))

	result, err := spider.Crawl(context.Background(), ts.URL+"/")
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if result.PagesCrawled != 1 {
		t.Errorf("PagesCrawled = %d, want 1 (off-host redirect target stays out of the frontier)", result.PagesCrawled)
	}
}

func TestSpiderExcludedSeed(t *testing.T) {
	t.Parallel()

	ts := serveHTML(t, map[string]string{
		"/doc.pdf": htmlPage("Not really a PDF"),
	})

	store := &memStore{}
	spider := newTestSpider(ts, store,
		WithMaxDepth(2),
		WithExcludeExtensions([]string{".pdf"}),
	)

	result, err := spider.Crawl(context.Background(), ts.URL+"/doc.pdf")
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if result.PagesCrawled != 0 {
		t.Errorf("PagesCrawled = %d, want 0 (excluded seed skipped after pop)", result.PagesCrawled)
	}
	if len(store.pages) != 0 {
		t.Errorf("stored pages = %d, want 0", len(store.pages))
	}
}

func TestSpiderCancellation(t *testing.T) {
	t.Parallel()

	ts := serveHTML(t, map[string]string{
		"/":  htmlPage("Home", "/a", "/b"),
		"/a": htmlPage("A"),
		"/b": htmlPage("B"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	store := &memStore{}
	spider := NewSpider(NewFetcher(ts.Client()), robots.AllowAll(), store,
		WithMaxDepth(2), WithDelay(50*time.Millisecond))

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	result, err := spider.Crawl(ctx, ts.URL)
	if err == nil {
		t.Fatal("Crawl() error = nil, want context error")
	}
	if result == nil {
		t.Fatal("result = nil, want partial result on cancellation")
	}
	if result.Termination != model.TerminationCancelled {
		t.Errorf("Termination = %v, want %v", result.Termination, model.TerminationCancelled)
	}
	if result.PagesCrawled == 0 {
		t.Error("PagesCrawled = 0, want at least the seed before cancellation")
	}
}

func TestSpiderInvalidSeed(t *testing.T) {
	t.Parallel()

	spider := NewSpider(NewFetcher(&http.Client{}), robots.AllowAll(), &memStore{})
	if _, err := spider.Crawl(context.Background(), "://not a url"); err == nil {
		t.Error("Crawl() error = nil, want error for invalid seed")
	}
}
