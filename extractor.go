package hoaxcheck

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// content holds the raw output of one extraction pass, before cleaning.
type content struct {
	Title       string
	Text        string
	PublishedAt string
}

// noiseSelectors are removed from the document before text extraction:
// media chrome, captions, "read also" blocks, ads and navigation. The class
// names cover the layouts of the supported news sites.
var noiseSelectors = []string{
	"script", "style", "noscript", "iframe", "form",
	"nav", "header", "footer", "aside",
	"figure", "figcaption",
	".detail__media", ".media__caption", ".photo__caption", ".foto__caption",
	".img__caption", ".image__caption", ".caption", ".caption__text",
	".artikel__foto", ".media__credit",
	".read__also", ".read__also--item", ".read__more", ".baca-juga",
	".advertisement", ".ad__slot", ".ads", ".parallax__caption",
	".social-share", ".share", ".tag", ".comment",
}

var junkTitles = map[string]bool{
	"home": true, "news": true, "berita": true, "detikcom": true, "detik": true,
}

// Extractor turns raw HTML into a title and body text. It favors recall: when
// paragraph extraction comes up short it falls back to the whole document
// text and relies on the cleaner to trim boilerplate.
type Extractor struct {
	minChars int
}

// NewExtractor returns an extractor with the given minimum viable body
// length; shorter results are treated as failures by the pipeline.
func NewExtractor(minChars int) *Extractor {
	return &Extractor{minChars: minChars}
}

// Extract parses html and returns the best title, body text and publication
// timestamp it can find. It does not enforce the minimum length: the pipeline
// decides whether to try the AMP fallback first.
func (e *Extractor) Extract(html []byte, finalURL string) (content, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return content{}, fmt.Errorf("%w: parse html: %v", ErrExtractionFailed, err)
	}

	title := extractTitle(doc)
	publishedAt := extractPublishedAt(doc)

	doc.Find(strings.Join(noiseSelectors, ", ")).Remove()

	text := paragraphText(doc)
	if len(text) < e.minChars {
		// Recall fallback: some layouts put article text outside <p> tags.
		if whole := normalizeSpace(doc.Find("body").Text()); len(whole) > len(text) {
			text = whole
		}
	}

	return content{Title: title, Text: text, PublishedAt: publishedAt}, nil
}

// FindAMPHref returns the absolute URL of the page's AMP variant, discovered
// via <link rel="amphtml">, or "" when the page does not advertise one.
func FindAMPHref(html []byte, base string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return ""
	}
	href := ""
	doc.Find("link[rel]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		if !strings.Contains(strings.ToLower(rel), "amphtml") {
			return true
		}
		if v, ok := s.Attr("href"); ok && v != "" {
			href = v
			return false
		}
		return true
	})
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ampURL, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ampURL).String()
}

// extractTitle picks the page title by priority: og:title > twitter:title >
// first h1 > <title>, skipping candidates that are too short or are bare
// site names.
func extractTitle(doc *goquery.Document) string {
	var candidates []string
	if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		candidates = append(candidates, v)
	}
	if v, ok := doc.Find(`meta[name="twitter:title"]`).Attr("content"); ok {
		candidates = append(candidates, v)
	}
	candidates = append(candidates,
		doc.Find("h1").First().Text(),
		doc.Find("title").First().Text(),
	)
	for _, c := range candidates {
		if t := cleanTitle(c); t != "" {
			return t
		}
	}
	return ""
}

var siteSuffixPattern = regexp.MustCompile(`(?i)\s*[-–|]\s*(detik\w*|kompas\.com|cnn indonesia|tempo\.co|liputan6\.com|tribunnews\.com|kumparan\.com|antara news)\s*$`)

func cleanTitle(raw string) string {
	t := normalizeSpace(raw)
	t = siteSuffixPattern.ReplaceAllString(t, "")
	t = strings.Trim(t, `'"“”‘’[]() `)
	if len(t) < 6 || junkTitles[strings.ToLower(t)] {
		return ""
	}
	return t
}

// extractPublishedAt reads the publication timestamp from document metadata,
// normalized to RFC 3339 UTC. Best effort; "" when absent or unparseable.
func extractPublishedAt(doc *goquery.Document) string {
	selectors := []string{
		`meta[property="article:published_time"]`,
		`meta[itemprop="datePublished"]`,
		`meta[name="pubdate"]`,
	}
	for _, sel := range selectors {
		v, ok := doc.Find(sel).Attr("content")
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC().Format("2006-01-02T15:04:05Z")
			}
		}
	}
	return ""
}

// paragraphText joins the text of all paragraphs in the document. Paragraph
// boundaries are kept as line breaks so the cleaner can bound credit lines.
func paragraphText(doc *goquery.Document) string {
	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if t := normalizeSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, "\n")
}

var spacePattern = regexp.MustCompile(`\s+`)

func normalizeSpace(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

var sentenceSplit = regexp.MustCompile(`[.!?\n]+`)

// countSentences counts sentence-like segments, ignoring fragments of three
// characters or fewer.
func countSentences(text string) int {
	if text == "" {
		return 0
	}
	n := 0
	for _, part := range sentenceSplit.Split(text, -1) {
		if len(strings.TrimSpace(part)) > 3 {
			n++
		}
	}
	return n
}
