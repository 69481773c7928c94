package crawler

import (
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/nao1215/seoaudit/internal/model"
	"github.com/nao1215/seoaudit/internal/urlutil"
)

// Parser extracts audit-relevant fields from HTML content.
// It identifies the title, meta tags, headings, and anchors.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. Provides a proper DOM-like structure
//  3. More maintainable than complex regex patterns
//  4. Standard library extension, well-maintained
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving relative URLs.
	baseURL *url.URL
}

// ParseResult contains all information extracted from an HTML page.
//
// Design decision: We return a comprehensive result struct rather than
// multiple methods because:
//  1. Single parsing pass is more efficient
//  2. Related data can be collected together
//  3. Caller can choose what to use
type ParseResult struct {
	// Title is the page title from the <title> tag.
	Title string

	// MetaDescription is the content of <meta name="description">.
	MetaDescription string

	// Canonical is the resolved href of <link rel="canonical">.
	Canonical string

	// RobotsMeta is the content of <meta name="robots">.
	RobotsMeta string

	// H1Count is the number of <h1> elements on the page.
	H1Count int

	// H1Text is the pipe-joined text of all <h1> elements in document order.
	H1Text string

	// Anchors are all <a href> references, resolved and normalized.
	Anchors []Anchor

	// InternalLinks are anchor targets on the same host as the page,
	// deduplicated, in document order.
	InternalLinks []string
}

// Anchor is a single hyperlink discovered on a page.
type Anchor struct {
	// URL is the resolved, normalized target address.
	URL string

	// Text is the anchor's visible text, trimmed and capped.
	Text string

	// Type classifies the target as same-host or off-host.
	Type model.LinkType
}

// NewParser creates a new HTML parser with the given base URL.
// The base URL is used to resolve relative links.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// Parse parses HTML content and extracts all relevant information.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Anchors:       make([]Anchor, 0),
		InternalLinks: make([]string, 0),
	}

	// Walk the DOM tree
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			p.processElement(n, result)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)

	result.InternalLinks = internalTargets(result.Anchors)

	return result, nil
}

// processElement handles HTML element nodes.
func (p *Parser) processElement(n *html.Node, result *ParseResult) {
	switch n.Data {
	case "title":
		if result.Title == "" {
			result.Title = collapseSpace(nodeText(n))
		}

	case "a":
		if href := getAttr(n, "href"); href != "" {
			p.appendAnchor(n, href, result)
		}

	case "h1":
		result.H1Count++
		if text := collapseSpace(nodeText(n)); text != "" {
			if result.H1Text == "" {
				result.H1Text = text
			} else {
				result.H1Text += " | " + text
			}
		}

	case "meta":
		name := strings.ToLower(getAttr(n, "name"))
		content := getAttr(n, "content")
		switch name {
		case "description":
			if result.MetaDescription == "" {
				result.MetaDescription = strings.TrimSpace(content)
			}
		case "robots":
			if result.RobotsMeta == "" {
				result.RobotsMeta = strings.TrimSpace(content)
			}
		}

	case "link":
		if strings.EqualFold(getAttr(n, "rel"), "canonical") {
			if href := getAttr(n, "href"); href != "" && result.Canonical == "" {
				result.Canonical = urlutil.ResolveAndNormalize(p.baseURL, href)
			}
		}
	}
}

// appendAnchor resolves, classifies, and records a single hyperlink.
func (p *Parser) appendAnchor(n *html.Node, href string, result *ParseResult) {
	href = strings.TrimSpace(href)
	// A fragment-only href navigates within the page; it is not a link
	// edge.
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return
	}

	resolved := urlutil.ResolveAndNormalize(p.baseURL, href)
	if resolved == "" {
		return
	}
	if u, err := url.Parse(resolved); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return
	}

	text := truncateAnchorText(collapseSpace(nodeText(n)))

	linkType := model.LinkExternal
	if urlutil.SameHost(p.baseURL.String(), resolved) {
		linkType = model.LinkInternal
	}

	result.Anchors = append(result.Anchors, Anchor{
		URL:  resolved,
		Text: text,
		Type: linkType,
	})
}

// internalTargets returns the unique same-host anchor targets in
// document order.
func internalTargets(anchors []Anchor) []string {
	seen := make(map[string]bool)
	targets := make([]string, 0)
	for _, a := range anchors {
		if a.Type != model.LinkInternal || seen[a.URL] {
			continue
		}
		seen[a.URL] = true
		targets = append(targets, a.URL)
	}
	return targets
}

// truncateAnchorText caps anchor text at MaxAnchorTextLen bytes without
// splitting a multi-byte rune.
func truncateAnchorText(text string) string {
	if len(text) <= model.MaxAnchorTextLen {
		return text
	}
	cut := model.MaxAnchorTextLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// nodeText collects the text content of a node's subtree.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// collapseSpace trims the string and collapses runs of whitespace into
// single spaces. Titles and headings frequently span multiple indented
// source lines.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
