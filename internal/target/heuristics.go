package target

// Heuristics holds the empirical tuning constants used by turn inference and
// the spatial fallback. These are tuned against observed layouts, not
// derived invariants; they are configuration and should be re-confirmed
// against current target layouts before being trusted for a new target.
type Heuristics struct {
	// MaxAscentDepth bounds the structural ascent from a user node.
	MaxAscentDepth int `mapstructure:"max_ascent_depth"`
	// SiblingWindow is how many following sibling subtrees are inspected at
	// each ascent level.
	SiblingWindow int `mapstructure:"sibling_window"`
	// MinAssistantTextLen is the minimum text length for a sibling to count
	// as an assistant block without a signature match.
	MinAssistantTextLen int `mapstructure:"min_assistant_text_len"`
	// MinBlockHeight is the minimum rendered height in pixels for a sibling
	// to count as an assistant block without a signature match.
	MinBlockHeight float64 `mapstructure:"min_block_height"`
	// MinGap is the minimum vertical gap in pixels between a user node and
	// an admitted spatial candidate.
	MinGap float64 `mapstructure:"min_gap"`
	// SubstringDedupRatio is the length ratio above which one block counts
	// as a substring duplicate of another.
	SubstringDedupRatio float64 `mapstructure:"substring_dedup_ratio"`
	// SentenceKeepRatio is the minimum share of the original length that
	// sentence-level dedup must retain for its result to be accepted.
	SentenceKeepRatio float64 `mapstructure:"sentence_keep_ratio"`
	// DisclaimerDominanceRatio is the share of a turn a disclaimer phrase
	// must cover before the turn is rejected.
	DisclaimerDominanceRatio float64 `mapstructure:"disclaimer_dominance_ratio"`
	// ProgressDominanceRatio is the share of a turn an in-progress phrase
	// must cover before the turn is rejected.
	ProgressDominanceRatio float64 `mapstructure:"progress_dominance_ratio"`
	// ShortTurnLength is the length under which a turn counts as short for
	// the rejection rules.
	ShortTurnLength int `mapstructure:"short_turn_length"`
}

// DefaultHeuristics returns the tuning observed to work against current
// target layouts.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		MaxAscentDepth:           6,
		SiblingWindow:            4,
		MinAssistantTextLen:      40,
		MinBlockHeight:           30,
		MinGap:                   20,
		SubstringDedupRatio:      0.8,
		SentenceKeepRatio:        0.5,
		DisclaimerDominanceRatio: 0.8,
		ProgressDominanceRatio:   0.7,
		ShortTurnLength:          150,
	}
}
