package index

// Term is a normalized token scoped to one language. Two terms with the same
// text but different language tags are distinct index entries, so an English
// "gun" and a transliterated Bangla "gun" never share postings.
type Term struct {
	Lang string `json:"lang"`
	Text string `json:"text"`
}

func (t Term) String() string {
	return t.Lang + ":" + t.Text
}

// Posting records one (term, document) association.
type Posting struct {
	DocID     string `json:"doc_id"`
	Frequency int    `json:"frequency"`
	Positions []int  `json:"positions,omitempty"`
}

// PostingList is kept sorted by ascending DocID.
type PostingList []Posting

// TermEntry pairs a term with its full posting list, used for checkpointing.
type TermEntry struct {
	Term     Term        `json:"term"`
	Postings PostingList `json:"postings"`
}

// Document is a normalized document ready for indexing. Tokens must already
// be analyzed (lower-cased, stemmed) for the document's language; the index
// performs no linguistic processing.
type Document struct {
	ID     string
	Lang   string
	Tokens []string
}

// DocStats is the per-document bookkeeping carried in checkpoints.
type DocStats struct {
	DocID  string `json:"doc_id"`
	Lang   string `json:"lang"`
	Tokens int    `json:"tokens"`
}

// Stats summarizes the index for logging and health checks.
type Stats struct {
	Documents   int
	Terms       int
	TotalTokens int64
	AvgDocLen   float64
}
