package driven

import "context"

// Page is one page of extracted plain text, in document order.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the raw extracted text before header/footer cleaning.
	Text string
}

// TextExtractor turns raw document bytes into page-ordered plain text,
// choosing native extraction or OCR per document. Implementations return
// domain.ErrUnsupportedFormat for unknown extensions and
// domain.ErrExtraction for corrupt input.
type TextExtractor interface {
	// Extract returns the pages of the document in order.
	Extract(ctx context.Context, content []byte, extension string) ([]Page, error)
}
