package gemini

import (
	"regexp"
	"strings"

	"github.com/jonesrussell/chatscrape/internal/dom"
)

// disclaimerPatterns match the boilerplate Gemini appends under responses.
// Matched spans are stripped from blocks during aggregation and drive the
// disclaimer-dominance rejection of assembled turns.
var disclaimerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)gemini can make mistakes[^.!?]*[.!?]?`),
	regexp.MustCompile(`(?i)model can make mistakes[^.!?]*[.!?]?`),
	regexp.MustCompile(`(?i)(please\s+)?double-check (it|its responses|responses|important info)[^.!?]*[.!?]?`),
	regexp.MustCompile(`(?i)your conversations are processed[^.!?]*[.!?]?`),
}

// progressPatterns match in-progress placeholders rendered before a response
// is complete.
var progressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)show thinking`),
	regexp.MustCompile(`(?i)thinking\s*(…|\.\.\.)?`),
	regexp.MustCompile(`(?i)just a sec`),
	regexp.MustCompile(`(?i)generating\s*(…|\.\.\.)?`),
	regexp.MustCompile(`(?i)researching\s*(…|\.\.\.)?`),
}

// aggregate assembles sorted blocks into one turn: per-block boilerplate
// stripping, substring deduplication, sentence-level deduplication, and the
// incomplete/non-substantive rejections. Returns the empty string when the
// turn should not be emitted.
func (s *Strategy) aggregate(blocks []block) string {
	firstNonEmpty := ""
	var kept []string
	for _, b := range blocks {
		raw := dom.CleanText(b.text)
		if raw == "" {
			continue
		}
		if firstNonEmpty == "" {
			firstNonEmpty = raw
		}

		stripped := stripDisclaimers(raw)
		if stripped == "" {
			continue
		}
		kept = s.dedupeBlock(kept, stripped)
	}

	// Never produce zero blocks when at least one had content.
	if len(kept) == 0 {
		if firstNonEmpty == "" {
			return ""
		}
		kept = []string{firstNonEmpty}
	}

	joined := dom.CleanText(strings.Join(kept, " "))
	joined = s.dedupeSentences(joined)

	if s.rejectTurn(joined) {
		return ""
	}
	return joined
}

// dedupeBlock merges a new block into the kept set, dropping whichever of a
// substring pair is shorter. A block already kept is replaced when a longer
// block covering it arrives.
func (s *Strategy) dedupeBlock(kept []string, text string) []string {
	norm := normalizeForCompare(text)
	for i, existing := range kept {
		existingNorm := normalizeForCompare(existing)
		if covers(existingNorm, norm, s.heuristics.SubstringDedupRatio) {
			return kept
		}
		if covers(norm, existingNorm, s.heuristics.SubstringDedupRatio) {
			kept[i] = text
			return kept
		}
	}
	return append(kept, text)
}

// covers reports whether the longer text contains the shorter one, or at
// least the leading share of it given by ratio.
func covers(longer, shorter string, ratio float64) bool {
	if shorter == "" || len(shorter) > len(longer) {
		return false
	}
	if strings.Contains(longer, shorter) {
		return true
	}
	prefixLen := int(float64(len(shorter)) * ratio)
	if prefixLen < 1 {
		return false
	}
	return strings.Contains(longer, shorter[:prefixLen])
}

// dedupeSentences drops sentences whose normalized first-50-characters form
// was already seen. The deduplicated text is accepted only when it retains
// enough of the original length; otherwise the original is kept, so that
// legitimate repeated phrasing is not destroyed.
func (s *Strategy) dedupeSentences(text string) string {
	sentences := splitSentences(text)
	if len(sentences) < 2 {
		return text
	}

	seen := make(map[string]bool, len(sentences))
	var kept []string
	for _, sentence := range sentences {
		key := sentenceKey(sentence)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, sentence)
	}

	deduped := strings.Join(kept, " ")
	if float64(len(deduped)) < s.heuristics.SentenceKeepRatio*float64(len(text)) {
		return text
	}
	return deduped
}

// rejectTurn discards an assembled turn that signals an incomplete or
// non-substantive capture: disclaimer-dominated and short, in-progress
// dominated or short, or a short text trailing off in an ellipsis.
func (s *Strategy) rejectTurn(text string) bool {
	if text == "" {
		return true
	}
	short := len(text) < s.heuristics.ShortTurnLength

	if cov := patternCoverage(text, disclaimerPatterns); cov >= s.heuristics.DisclaimerDominanceRatio && short {
		return true
	}
	if cov := patternCoverage(text, progressPatterns); cov > 0 {
		if cov >= s.heuristics.ProgressDominanceRatio || short {
			return true
		}
	}

	trimmed := strings.TrimSpace(text)
	if short && (strings.HasSuffix(trimmed, "...") || strings.HasSuffix(trimmed, "…")) {
		return true
	}
	return false
}

// isDisclaimer reports whether the text is nothing but disclaimer boilerplate.
func isDisclaimer(text string) bool {
	if text == "" {
		return false
	}
	return patternCoverage(text, disclaimerPatterns) >= 0.8
}

// stripDisclaimers removes disclaimer boilerplate spans from a block.
func stripDisclaimers(text string) string {
	for _, p := range disclaimerPatterns {
		text = p.ReplaceAllString(text, " ")
	}
	return dom.CleanText(text)
}

// patternCoverage returns the share of the text covered by pattern matches.
func patternCoverage(text string, patterns []*regexp.Regexp) float64 {
	if text == "" {
		return 0
	}
	covered := 0
	for _, p := range patterns {
		for _, m := range p.FindAllString(text, -1) {
			covered += len(m)
		}
	}
	cov := float64(covered) / float64(len(text))
	if cov > 1 {
		cov = 1
	}
	return cov
}

// splitSentences splits on sentence terminators, keeping the terminator with
// its sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// sentenceKey is the normalized first-50-characters form used for
// sentence-level deduplication.
func sentenceKey(sentence string) string {
	norm := normalizeForCompare(sentence)
	runes := []rune(norm)
	if len(runes) > 50 {
		runes = runes[:50]
	}
	return string(runes)
}

func normalizeForCompare(text string) string {
	return strings.ToLower(dom.CleanText(text))
}
