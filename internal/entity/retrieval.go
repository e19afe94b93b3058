package entity

// RetrievedChunk is a piece of an indexed document returned by a similarity query
type RetrievedChunk struct {
	Text       string  `json:"text"`
	Source     string  `json:"source"`
	Similarity float32 `json:"similarity"`
}

// IndexedChunk is a piece of document text handed to the vector index at build time
type IndexedChunk struct {
	Text     string
	Position int
}
