package backlinks

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/adrg/xdg"

	"github.com/nao1215/seoaudit/internal/model"
)

// Edge is one host-level entry from an edge list: a referring domain
// and how many links the graph records from it.
type Edge struct {
	// Domain is the referring host.
	Domain string

	// Count is the number of recorded links from that host.
	Count int
}

// ParseEdgeList reads `domain count` lines. Blank lines and lines
// starting with '#' are skipped; a malformed line is an error, because
// a wrong column order would silently produce garbage domains.
func ParseEdgeList(r io.Reader) ([]Edge, error) {
	var edges []Edge

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected `domain count`, got %q", lineNo, line)
		}
		count, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad count %q: %w", lineNo, fields[1], err)
		}

		edges = append(edges, Edge{
			Domain: strings.ToLower(fields[0]),
			Count:  count,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read edge list: %w", err)
	}

	return edges, nil
}

// SpamConfig controls which referring domains are discarded and how
// the survivors are scored.
type SpamConfig struct {
	// MinLinkCount drops hosts below this many recorded links.
	MinLinkCount int `json:"min_link_count"`

	// SpamTLDs are domain suffixes discarded outright.
	SpamTLDs []string `json:"spam_tlds"`

	// SpamKeywords are substrings that mark a domain as spam.
	SpamKeywords []string `json:"spam_keywords"`

	// TrustedTLDs are suffixes that raise a domain's quality score.
	TrustedTLDs []string `json:"trusted_tlds"`

	// MinQualityScore drops survivors scoring below this 0..1 cutoff.
	MinQualityScore float64 `json:"min_quality_score"`
}

// DefaultSpamConfig returns the built-in filter settings.
func DefaultSpamConfig() *SpamConfig {
	return &SpamConfig{
		MinLinkCount: 2,
		SpamTLDs: []string{
			".xyz", ".top", ".club", ".loan", ".click", ".work",
			".gq", ".cf", ".ml", ".tk", ".buzz",
		},
		SpamKeywords: []string{
			"casino", "porn", "viagra", "pills", "betting",
			"escort", "adult", "pharma",
		},
		TrustedTLDs:     []string{".edu", ".gov"},
		MinQualityScore: 0.3,
	}
}

// spamConfigFileName inside the XDG cache directory.
const spamConfigFileName = "spam_config.json"

// LoadSpamConfig reads the filter settings from the user's cache
// directory, writing the defaults there first when no file exists. The
// file lives in the cache so the operator can tune the lists without
// rebuilding.
func LoadSpamConfig() (*SpamConfig, error) {
	path, err := xdg.CacheFile(filepath.Join("seoaudit", spamConfigFileName))
	if err != nil {
		return nil, fmt.Errorf("resolve spam config path: %w", err)
	}
	return loadSpamConfigFrom(path)
}

func loadSpamConfigFrom(path string) (*SpamConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := DefaultSpamConfig()
		if err := saveSpamConfig(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read spam config: %w", err)
	}

	var cfg SpamConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse spam config %s: %w", path, err)
	}

	return &cfg, nil
}

func saveSpamConfig(path string, cfg *SpamConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode spam config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create spam config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write spam config: %w", err)
	}
	return nil
}

// Filter applies the spam rules to an edge list and scores the
// survivors, best first.
func Filter(edges []Edge, cfg *SpamConfig) []model.Backlink {
	var result []model.Backlink

	for _, edge := range edges {
		if edge.Count < cfg.MinLinkCount {
			continue
		}
		if isSpam(edge.Domain, cfg) {
			continue
		}

		score := qualityScore(edge, cfg)
		if score < cfg.MinQualityScore {
			continue
		}

		result = append(result, model.Backlink{
			Domain:       edge.Domain,
			LinkCount:    edge.Count,
			QualityScore: score,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].QualityScore != result[j].QualityScore {
			return result[i].QualityScore > result[j].QualityScore
		}
		return result[i].Domain < result[j].Domain
	})

	return result
}

// isSpam reports whether a domain matches the spam TLD or keyword
// lists.
func isSpam(domain string, cfg *SpamConfig) bool {
	for _, tld := range cfg.SpamTLDs {
		if strings.HasSuffix(domain, tld) {
			return true
		}
	}
	for _, kw := range cfg.SpamKeywords {
		if strings.Contains(domain, kw) {
			return true
		}
	}
	return false
}

// qualityScore rates a referring domain from 0 to 1. Link volume earns
// up to half the score on a log scale, a trusted TLD adds a fixed
// bonus, and a messy domain name (long hyphen runs, digits) loses the
// cleanliness portion.
func qualityScore(edge Edge, cfg *SpamConfig) float64 {
	score := math.Min(math.Log10(float64(edge.Count)+1)/4, 0.5)

	for _, tld := range cfg.TrustedTLDs {
		if strings.HasSuffix(edge.Domain, tld) {
			score += 0.3
			break
		}
	}

	clean := 0.2
	if strings.Count(edge.Domain, "-") > 1 {
		clean -= 0.1
	}
	if strings.ContainsAny(edge.Domain, "0123456789") {
		clean -= 0.1
	}
	score += clean

	return math.Min(math.Max(score, 0), 1)
}
