// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scholar extracts candidate paper links from the HTML body of
// academic alert emails (Google Scholar alerts, publisher digests).
//
// The heuristic is deliberately loose: any anchor whose target contains a
// known publisher domain is a candidate, and short or generic labels such as
// "PDF" are dropped. Results are deduplicated by URL.
package scholar

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pdiddy/scholar-mail/pkg/types"
)

// minTitleLength is exclusive: a title must be longer than this many runes.
const minTitleLength = 10

// academicDomains are matched as raw, case-sensitive substrings of the href.
var academicDomains = []string{
	"arxiv.org",
	"nature.com",
	"science.org",
	"ieee.org",
	"acm.org",
	"springer.com",
	"sciencedirect.com",
	"biorxiv.org",
	"medrxiv.org",
	"scholar.google.com",
}

// genericLabels are link texts that name a format rather than a paper.
var genericLabels = map[string]bool{
	"pdf":          true,
	"html":         true,
	"full view":    true,
	"view as html": true,
}

// Domains returns a copy of the recognised publisher domain substrings.
func Domains() []string {
	out := make([]string, len(academicDomains))
	copy(out, academicDomains)
	return out
}

// IsAcademicLink reports whether href contains a recognised publisher domain.
// No URL parsing is done, so "notarxiv.org.example" matches as well.
func IsAcademicLink(href string) bool {
	for _, d := range academicDomains {
		if strings.Contains(href, d) {
			return true
		}
	}
	return false
}

// isPaperTitle applies the title filter: more than minTitleLength runes and
// not a generic format label.
func isPaperTitle(title string) bool {
	if utf8.RuneCountInString(title) <= minTitleLength {
		return false
	}
	return !genericLabels[strings.ToLower(title)]
}

// Extract returns the academic paper links found in doc. When several
// anchors share a URL the last one in document order supplies the title.
// The slice order is not part of the contract. Malformed markup is parsed
// best-effort; Extract never fails.
func Extract(doc string) []types.PaperRecord {
	root, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return nil
	}

	var set paperSet
	root.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || !IsAcademicLink(href) {
			return
		}
		title := anchorTitle(a)
		if !isPaperTitle(title) {
			return
		}
		set.add(types.PaperRecord{Title: title, URL: href})
	})

	return set.papers
}

// anchorTitle joins the anchor's descendant text nodes in document order,
// each trimmed of surrounding whitespace, with no separator.
func anchorTitle(a *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range a.Nodes {
		walk(n)
	}
	return b.String()
}

// Merge combines extraction results from several documents with the same
// last-write-wins rule Extract applies within one document.
func Merge(batches ...[]types.PaperRecord) []types.PaperRecord {
	var set paperSet
	for _, batch := range batches {
		for _, p := range batch {
			set.add(p)
		}
	}
	return set.papers
}

// paperSet keeps one record per URL. A URL keeps the position of its first
// occurrence and the value of its last.
type paperSet struct {
	papers []types.PaperRecord
	index  map[string]int
}

func (s *paperSet) add(p types.PaperRecord) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, seen := s.index[p.URL]; seen {
		s.papers[i] = p
		return
	}
	s.index[p.URL] = len(s.papers)
	s.papers = append(s.papers, p)
}
