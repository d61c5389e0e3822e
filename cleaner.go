package hoaxcheck

import (
	"regexp"
	"strings"
)

// lineTail bounds a credit or syndication marker: consume to the next
// sentence end or line break, whichever comes first. The body text reaching
// the cleaner is not guaranteed to keep line breaks, so a marker in flowing
// text must not swallow the prose after it.
const lineTail = `[^\n]*?(?:[.!?][ \t]|[.!?]$|\n|$)`

// boilerplatePatterns is the fixed table of phrases stripped from extracted
// article text: navigational prompts, share calls to action, byline/editor
// credits and inline ad markers. Each pattern anchors on the marker phrase,
// so prose that merely mentions a keyword mid-sentence is left alone.
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bIkuti kami di[:：]?` + lineTail),
	regexp.MustCompile(`(?i)\bBaca Juga[:：]?\s*`),
	regexp.MustCompile(`(?i)\bLihat Juga[:：]?\s*`),
	regexp.MustCompile(`(?i)Artikel ini telah tayang` + lineTail),
	regexp.MustCompile(`(?i)\bEditor[:：]` + lineTail),
	regexp.MustCompile(`(?i)\bPenulis[:：]` + lineTail),
	regexp.MustCompile(`(?i)\bPewarta[:：]` + lineTail),
	regexp.MustCompile(`(?i)\(.*?Baca juga.*?\)`),
	regexp.MustCompile(`(?i)ADVERTISEMENT\s*SCROLL TO CONTINUE WITH CONTENT`),
	regexp.MustCompile(`(?i)\bSimak (berita|video) selengkapnya` + lineTail),
}

var collapsePattern = regexp.MustCompile(`\s+`)

// Clean strips boilerplate from extracted body text. Pure and deterministic:
// no I/O, no reordering, output never longer than input, and
// Clean(Clean(x)) == Clean(x). Removing one marker can splice the words
// around it into another marker, so the table is rerun until the text stops
// changing; every pass that changes anything shrinks the text, so the loop
// terminates.
func Clean(raw string) string {
	s := strings.TrimSpace(raw)
	for {
		prev := s
		for _, p := range boilerplatePatterns {
			s = p.ReplaceAllString(s, " ")
		}
		s = strings.TrimSpace(collapsePattern.ReplaceAllString(s, " "))
		if s == prev {
			return s
		}
	}
}
