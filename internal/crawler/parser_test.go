package crawler

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/nao1215/seoaudit/internal/model"
)

func TestParserParse(t *testing.T) {
	t.Parallel()

	const doc = `<!DOCTYPE html>
<html>
<head>
<title>
  Welcome to
  Example
</title>
<meta name="description" content="  A sample page.  ">
<meta name="robots" content="noindex, follow">
<link rel="canonical" href="/welcome/">
</head>
<body>
<h1>Main Heading</h1>
<p>Some text with <a href="a.html">a relative link</a> and
<a href="/about/">an absolute one</a>.</p>
<a href="https://other.example.org/page">external</a>
<a href="mailto:team@example.com">mail</a>
<a href="javascript:void(0)">js</a>
<a href="#">self</a>
<a href="#section">fragment only</a>
<h1>Second Heading</h1>
</body>
</html>`

	parser, err := NewParser("http://example.com/dir/page")
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}

	got, err := parser.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if want := "Welcome to Example"; got.Title != want {
		t.Errorf("Title = %q, want %q", got.Title, want)
	}
	if want := "A sample page."; got.MetaDescription != want {
		t.Errorf("MetaDescription = %q, want %q", got.MetaDescription, want)
	}
	if want := "noindex, follow"; got.RobotsMeta != want {
		t.Errorf("RobotsMeta = %q, want %q", got.RobotsMeta, want)
	}
	if want := "http://example.com/welcome"; got.Canonical != want {
		t.Errorf("Canonical = %q, want %q", got.Canonical, want)
	}
	if got.H1Count != 2 {
		t.Errorf("H1Count = %d, want 2", got.H1Count)
	}
	if want := "Main Heading | Second Heading"; got.H1Text != want {
		t.Errorf("H1Text = %q, want %q", got.H1Text, want)
	}

	// mailto, javascript, and fragment-only hrefs are dropped; a
	// same-page navigation is not a link edge.
	wantAnchors := []Anchor{
		{URL: "http://example.com/dir/a.html", Text: "a relative link", Type: model.LinkInternal},
		{URL: "http://example.com/about", Text: "an absolute one", Type: model.LinkInternal},
		{URL: "https://other.example.org/page", Text: "external", Type: model.LinkExternal},
	}
	if len(got.Anchors) != len(wantAnchors) {
		t.Fatalf("len(Anchors) = %d, want %d (%+v)", len(got.Anchors), len(wantAnchors), got.Anchors)
	}
	for i, want := range wantAnchors {
		if got.Anchors[i] != want {
			t.Errorf("Anchors[%d] = %+v, want %+v", i, got.Anchors[i], want)
		}
	}

	wantInternal := []string{
		"http://example.com/dir/a.html",
		"http://example.com/about",
	}
	if len(got.InternalLinks) != len(wantInternal) {
		t.Fatalf("len(InternalLinks) = %d, want %d (%v)", len(got.InternalLinks), len(wantInternal), got.InternalLinks)
	}
	for i, want := range wantInternal {
		if got.InternalLinks[i] != want {
			t.Errorf("InternalLinks[%d] = %q, want %q", i, got.InternalLinks[i], want)
		}
	}
}

func TestParserParseMissingFields(t *testing.T) {
	t.Parallel()

	parser, err := NewParser("http://example.com/")
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}

	got, err := parser.Parse(strings.NewReader("<html><body><p>bare</p></body></html>"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got.Title != "" {
		t.Errorf("Title = %q, want empty", got.Title)
	}
	if got.MetaDescription != "" {
		t.Errorf("MetaDescription = %q, want empty", got.MetaDescription)
	}
	if got.H1Count != 0 {
		t.Errorf("H1Count = %d, want 0", got.H1Count)
	}
	if len(got.Anchors) != 0 {
		t.Errorf("Anchors = %v, want none", got.Anchors)
	}
}

func TestParserDuplicateInternalLinksDeduplicated(t *testing.T) {
	t.Parallel()

	parser, err := NewParser("http://example.com/")
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}

	const doc = `<a href="/a">one</a><a href="/a#top">same page</a><a href="/b">two</a>`
	got, err := parser.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(got.Anchors) != 3 {
		t.Errorf("len(Anchors) = %d, want 3 (every anchor is recorded)", len(got.Anchors))
	}
	want := []string{"http://example.com/a", "http://example.com/b"}
	if len(got.InternalLinks) != len(want) {
		t.Fatalf("InternalLinks = %v, want %v", got.InternalLinks, want)
	}
	for i := range want {
		if got.InternalLinks[i] != want[i] {
			t.Errorf("InternalLinks[%d] = %q, want %q", i, got.InternalLinks[i], want[i])
		}
	}
}

func TestParserFragmentHrefsNotRecorded(t *testing.T) {
	t.Parallel()

	parser, err := NewParser("http://example.com/page")
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}

	const doc = `<a href="#">top</a><a href="#section">jump</a><a href="/other#section">real</a>`
	got, err := parser.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// Only the href with a path survives; its fragment is stripped.
	if len(got.Anchors) != 1 {
		t.Fatalf("len(Anchors) = %d, want 1 (%+v)", len(got.Anchors), got.Anchors)
	}
	if want := "http://example.com/other"; got.Anchors[0].URL != want {
		t.Errorf("Anchors[0].URL = %q, want %q", got.Anchors[0].URL, want)
	}
}

func TestParserLongAnchorTextTruncated(t *testing.T) {
	t.Parallel()

	parser, err := NewParser("http://example.com/")
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}

	long := strings.Repeat("x", model.MaxAnchorTextLen+50)
	got, err := parser.Parse(strings.NewReader(`<a href="/a">` + long + `</a>`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(got.Anchors) != 1 {
		t.Fatalf("len(Anchors) = %d, want 1", len(got.Anchors))
	}
	if len(got.Anchors[0].Text) != model.MaxAnchorTextLen {
		t.Errorf("len(Text) = %d, want %d", len(got.Anchors[0].Text), model.MaxAnchorTextLen)
	}
}

func TestParserAnchorTextTruncatedOnRuneBoundary(t *testing.T) {
	t.Parallel()

	parser, err := NewParser("http://example.com/")
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}

	// Offset the multi-byte runs so the byte cap lands inside a rune
	// whatever its value is.
	long := "x" + strings.Repeat("日本語", model.MaxAnchorTextLen)
	got, err := parser.Parse(strings.NewReader(`<a href="/a">` + long + `</a>`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(got.Anchors) != 1 {
		t.Fatalf("len(Anchors) = %d, want 1", len(got.Anchors))
	}
	text := got.Anchors[0].Text
	if len(text) > model.MaxAnchorTextLen {
		t.Errorf("len(Text) = %d, want <= %d", len(text), model.MaxAnchorTextLen)
	}
	if !utf8.ValidString(text) {
		t.Errorf("Text = %q is not valid UTF-8, truncation split a rune", text)
	}
	if !strings.HasPrefix(long, text) {
		t.Errorf("Text = %q is not a prefix of the source text", text)
	}
}
