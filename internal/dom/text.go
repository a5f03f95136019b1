package dom

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// whitespaceRegex collapses runs of whitespace during normalization.
var whitespaceRegex = regexp.MustCompile(`\s+`)

// InteractiveSelectors lists control elements stripped before last-resort
// text extraction. Message bodies never legitimately contain these.
const InteractiveSelectors = "button, svg, input, textarea, select, script, style, " +
	"[role='button'], [role='toolbar'], [aria-hidden='true']"

// CleanText collapses runs of whitespace to single spaces and trims the result.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

// FirstText tries each selector in order against the element and returns the
// first non-empty cleaned text. A miss on one selector falls through to the
// next; a miss on all of them returns the empty string.
func FirstText(sel *goquery.Selection, selectors ...string) string {
	for _, s := range selectors {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		found := sel.Find(s).First()
		if found.Length() == 0 {
			continue
		}
		if text := CleanText(found.Text()); text != "" {
			return text
		}
	}
	return ""
}

// StripText is the mandatory last-resort content extractor: it clones the
// element's subtree, removes interactive and control descendants from the
// copy, and returns the remaining cleaned text. The live document is never
// modified; all removal happens on the clone.
func StripText(sel *goquery.Selection, extraStrip ...string) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}

	clone := sel.Clone()
	clone.Find(InteractiveSelectors).Remove()
	for _, s := range extraStrip {
		if s != "" {
			clone.Find(s).Remove()
		}
	}
	return CleanText(clone.Text())
}

// ClassAttr returns the element's class attribute lower-cased, for substring
// signature checks.
func ClassAttr(sel *goquery.Selection) string {
	class, _ := sel.Attr("class")
	return strings.ToLower(class)
}

// HasClassSubstring reports whether the element's class or id attribute
// contains any of the given lower-case substrings.
func HasClassSubstring(sel *goquery.Selection, substrings ...string) bool {
	class := ClassAttr(sel)
	id, _ := sel.Attr("id")
	id = strings.ToLower(id)
	for _, sub := range substrings {
		if sub == "" {
			continue
		}
		if strings.Contains(class, sub) || strings.Contains(id, sub) {
			return true
		}
	}
	return false
}

// SelfOrAncestorHasClass reports whether the element or any of its ancestors
// up to maxDepth carries one of the class/id substrings.
func SelfOrAncestorHasClass(sel *goquery.Selection, maxDepth int, substrings ...string) bool {
	current := sel
	for depth := 0; depth <= maxDepth && current.Length() > 0; depth++ {
		if HasClassSubstring(current, substrings...) {
			return true
		}
		current = current.Parent()
	}
	return false
}
