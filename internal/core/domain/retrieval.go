package domain

// Chunk is the unit of retrieval: a contiguous span of knowledge-base text
// together with the name of the document it came from. Chunks are immutable
// once appended to the corpus.
type Chunk struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// RankedMatch is one retrieval result. Similarity is cosine similarity in
// [0,1] between the expanded query vector and the chunk vector.
type RankedMatch struct {
	Chunk      Chunk   `json:"chunk"`
	Similarity float64 `json:"similarity"`
}

// ContextRecord is one Ref block recovered from a formatted context string.
// Similarity carries the 2-decimal rounding applied during formatting.
type ContextRecord struct {
	Source     string
	Similarity float64
	Body       string
}

// Answer is the final synthesized response returned to the caller.
type Answer struct {
	Text            string           `json:"text"`
	SourcesUsed     int              `json:"sources_used"`
	VisualDirective *VisualDirective `json:"visual_directive,omitempty"`
}
