package models

// MergedChunk describes one merged output file produced by a merge pass.
// Chunks are regenerable outputs; the ledger remains the source of truth.
type MergedChunk struct {
	// SequenceIndex is the 0-based ordinal within one merge pass.
	SequenceIndex int `json:"sequence_index"`

	// ByteSize and WordCount are the totals at close time. Every chunk
	// except possibly one holding a single oversized document stays under
	// the configured limits.
	ByteSize  int64 `json:"byte_size"`
	WordCount int   `json:"word_count"`

	// MemberIDs lists the record identities written into this chunk, in
	// write order.
	MemberIDs []string `json:"member_ids"`
}
