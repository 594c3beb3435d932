// Package models defines core data structures for conversations, documents, chunks, and answers.
package models

import "time"

// Document is an uploaded file's extracted text and its chunks. It is immutable once chunked.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"file_type"`
	RawText    string    `json:"-"`
	Chunks     []*Chunk  `json:"-"`
	WordCount  int       `json:"word_count"`
	Pages      int       `json:"pages,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Chunk is a contiguous slice of a document's text, the unit of embedding and retrieval.
// StartOffset and EndOffset are rune offsets into the document's RawText (end exclusive).
type Chunk struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"document_id"`
	Text        string    `json:"text"`
	StartOffset int       `json:"start_offset"`
	EndOffset   int       `json:"end_offset"`
	OrderIndex  int       `json:"order_index"`
	Embedding   []float32 `json:"-"`
}

// HasEmbedding reports whether the chunk carries a non-empty embedding.
func (c *Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// DocumentMetadata is the client-visible summary of an uploaded document.
type DocumentMetadata struct {
	Filename  string `json:"filename"`
	FileType  string `json:"file_type"`
	Pages     int    `json:"pages,omitempty"`
	WordCount int    `json:"word_count"`
	Chunks    int    `json:"chunks"`
}

// Metadata returns the document's client-visible summary.
func (d *Document) Metadata() DocumentMetadata {
	return DocumentMetadata{
		Filename:  d.Filename,
		FileType:  d.FileType,
		Pages:     d.Pages,
		WordCount: d.WordCount,
		Chunks:    len(d.Chunks),
	}
}
