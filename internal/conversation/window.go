package conversation

// MaxTurns is the maximum number of turns retained per conversation. The
// window exists to cap the payload sent upstream on every request; it is a
// plain sliding window, not a summarization or relevance-based retention
// strategy.
const MaxTurns = 20

// IsContinuation reports whether a conversation is already underway. A
// non-empty history is the sole signal that the next upstream call should
// carry context; there is no time-based expiry or topic segmentation.
func IsContinuation(turns []Turn) bool {
	return len(turns) > 0
}

// ApplyBound returns the suffix of at most maxLen most-recent turns. The
// input slice is not modified.
func ApplyBound(turns []Turn, maxLen int) []Turn {
	if len(turns) <= maxLen {
		return turns
	}
	return turns[len(turns)-maxLen:]
}
