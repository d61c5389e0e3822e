// Package analyzer derives an explainable credibility assessment from
// article text, the source domain and the probability pair produced by the
// external classification model. Analyze is a pure function: no I/O, no
// clocks, and identical inputs always yield byte-identical output.
package analyzer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zombar/hoaxcheck/models"
)

// MaxReasons caps the reasons list so it stays scannable.
const MaxReasons = 5

// Input carries everything the analyzer needs. Domain is the bare source
// host ("news.detik.com"); empty for raw-text input.
type Input struct {
	Title  string
	Text   string
	Domain string
	PValid float64
	PHoax  float64
}

// evidence is the intermediate result of the signal checks, kept separate
// from reason formatting so the score can be tested in isolation.
type evidence struct {
	score           float64
	reputable       bool
	quoteCount      int
	sensationalHits int
	capsRatio       float64
	factCheck       bool
	positive        []string
	negative        []string
}

// Analyze computes the category, verdict, reasons and credibility score.
// Verdict follows the dominant model probability; the reasons are selected
// from the evidence branch matching that verdict.
func Analyze(in Input) models.AnalysisResult {
	ev := collectEvidence(in)

	verdict := "valid"
	confidence := in.PValid
	if in.PHoax >= in.PValid {
		verdict = "hoax"
		confidence = in.PHoax
	}

	var reasons []string
	if verdict == "valid" {
		reasons = append(reasons, ev.positive...)
		if ev.sensationalHits >= 2 || ev.capsRatio >= capsRatioThreshold {
			reasons = append(reasons, caveatValidButLoud)
		}
	} else {
		reasons = append(reasons, ev.negative...)
		if ev.reputable || ev.quoteCount >= 1 {
			reasons = append(reasons, caveatHoaxButCredible)
		}
	}
	if len(reasons) > MaxReasons {
		reasons = reasons[:MaxReasons]
	}
	if reasons == nil {
		reasons = []string{}
	}

	return models.AnalysisResult{
		Category:         Category(in.Title, in.Text),
		Verdict:          verdict,
		Confidence:       confidence,
		Reasons:          reasons,
		CredibilityScore: ev.score,
	}
}

// Category classifies title+text against the fixed keyword tables. The
// category with the most keyword hits wins; ties go to the earlier table.
// Returns CategoryDefault when nothing matches.
func Category(title, text string) string {
	haystack := strings.ToLower(title + ". " + text)
	best, bestHits := CategoryDefault, 0
	for _, cat := range categoryOrder {
		hits := 0
		for _, p := range categoryKeywords[cat] {
			if p.MatchString(haystack) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = cat, hits
		}
	}
	return best
}

// collectEvidence runs every signal check and accumulates the score plus the
// positive and negative reason lists, each in fixed order.
func collectEvidence(in Input) evidence {
	ev := evidence{score: scoreBase}
	text := in.Text

	ev.reputable = isReputable(in.Domain)
	switch {
	case ev.reputable:
		ev.score += deltaReputable
		ev.positive = append(ev.positive, reasonReputable)
	case in.Domain != "":
		ev.negative = append(ev.negative, reasonOffWhitelist)
	default:
		ev.negative = append(ev.negative, reasonRawText)
	}

	ev.quoteCount = countQuotes(text)
	switch {
	case ev.quoteCount >= 2:
		ev.score += deltaQuotesMany
		ev.positive = append(ev.positive, reasonQuotesMany)
	case ev.quoteCount == 1:
		ev.score += deltaQuoteOne
		ev.positive = append(ev.positive, reasonQuoteOne)
	default:
		ev.negative = append(ev.negative, reasonNoQuotes)
	}

	if numberPattern.MatchString(text) {
		ev.score += deltaNumbers
		ev.positive = append(ev.positive, reasonNumbers)
	}
	if datePattern.MatchString(text) {
		ev.score += deltaDates
		ev.positive = append(ev.positive, reasonDates)
	}
	if matchesAny(officialPatterns, text) {
		ev.score += deltaOfficials
		ev.positive = append(ev.positive, reasonOfficials)
	}

	for _, p := range sensationalPatterns {
		if p.MatchString(text) {
			ev.sensationalHits++
		}
	}
	ev.capsRatio = allCapsRatio(in.Title + " " + text)
	ev.factCheck = matchesAny(factCheckPatterns, in.Title+" "+text)

	if ev.factCheck {
		ev.positive = append(ev.positive, reasonFactCheck)
	} else {
		if ev.sensationalHits > 0 {
			penalty := sensationalPenaltyBase + sensationalPenaltyStep*float64(ev.sensationalHits)
			if penalty > sensationalPenaltyCap {
				penalty = sensationalPenaltyCap
			}
			ev.score -= penalty
			ev.negative = append(ev.negative,
				fmt.Sprintf("Bahasa sensasional/ajakan sebar (%d indikasi).", ev.sensationalHits))
		}
		if ev.capsRatio >= capsRatioThreshold {
			ev.score -= deltaCapsRatio
			ev.negative = append(ev.negative, reasonCaps)
		}
	}

	if len(text) < shortContentChars {
		ev.score -= deltaShortContent
		ev.negative = append(ev.negative, reasonShort)
	}
	if weakTitleConsistency(in.Title, text) {
		ev.score -= deltaWeakTitle
		ev.negative = append(ev.negative, reasonWeakTitle)
	}

	if ev.score < 0 {
		ev.score = 0
	} else if ev.score > 100 {
		ev.score = 100
	}
	return ev
}

func isReputable(domain string) bool {
	d := strings.ToLower(domain)
	if d == "" {
		return false
	}
	for _, h := range reputableHosts {
		if d == h || strings.HasSuffix(d, "."+h) {
			return true
		}
	}
	return false
}

// countQuotes counts quotation-mark passages of substance plus named
// attribution patterns ("menurut X", "kata X", "ujar X").
func countQuotes(text string) int {
	n := len(quotePattern.FindAllString(text, -1))
	n += len(attributionPattern.FindAllString(text, -1))
	return n
}

// allCapsRatio is the share of words (3+ letters) written fully uppercase.
func allCapsRatio(text string) float64 {
	words := wordPattern.FindAllString(text, -1)
	if len(words) == 0 {
		return 0
	}
	caps := 0
	for _, w := range words {
		if len(w) >= 3 && w == strings.ToUpper(w) && w != strings.ToLower(w) {
			caps++
		}
	}
	return float64(caps) / float64(len(words))
}

// weakTitleConsistency reports whether at least half of the title's
// significant words (5+ chars, up to 6 considered) are absent from the body.
// Requires at least 3 significant words to fire at all.
func weakTitleConsistency(title, text string) bool {
	var words []string
	for _, w := range titleWordPattern.FindAllString(strings.ToLower(title), -1) {
		if len(w) >= 5 {
			words = append(words, w)
			if len(words) == 6 {
				break
			}
		}
	}
	if len(words) < 3 {
		return false
	}
	lower := strings.ToLower(text)
	missing := 0
	for _, w := range words {
		if !strings.Contains(lower, w) {
			missing++
		}
	}
	threshold := len(words) / 2
	if threshold < 1 {
		threshold = 1
	}
	return missing >= threshold
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
