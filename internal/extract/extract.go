// Package extract turns raw document bytes into page-ordered plain text.
// PDF input is classified as searchable or scanned; searchable documents use
// native MuPDF text extraction, scanned documents are rendered per page and
// OCRed with Tesseract. Plain text input is decoded with charset detection.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
	"github.com/saintfish/chardet"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

const (
	// searchableSamplePages is how many pages the searchability probe reads.
	searchableSamplePages = 5

	// searchableMinChars is the average native text length per sampled page
	// above which a PDF counts as searchable.
	searchableMinChars = 100

	// ocrDPI is the render resolution for scanned pages.
	ocrDPI = 300.0

	// ocrLanguage is the fixed Tesseract language hint.
	ocrLanguage = "por"

	// DefaultOCRWorkers bounds concurrent per-page OCR.
	DefaultOCRWorkers = 4
)

// Extractor converts supported file types into pages of plain text.
type Extractor struct {
	ocrWorkers int
}

// Option configures the extractor.
type Option func(*Extractor)

// WithOCRWorkers sets the number of pages OCRed concurrently.
func WithOCRWorkers(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.ocrWorkers = n
		}
	}
}

// New creates a new extractor with the given options.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		ocrWorkers: DefaultOCRWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the pages of the document in order.
// The extension decides the extraction path; unknown extensions fail with
// domain.ErrUnsupportedFormat, corrupt input with domain.ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, content []byte, extension string) ([]driven.Page, error) {
	ext := strings.ToLower(strings.TrimPrefix(extension, "."))

	switch ext {
	case "pdf":
		return e.extractPDF(ctx, content)
	case "txt":
		text, err := decodeText(content)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrExtraction, err)
		}
		// A text file has no page structure; the whole file is page 1.
		return []driven.Page{{Number: 1, Text: text}}, nil
	default:
		return nil, fmt.Errorf("%w: .%s", domain.ErrUnsupportedFormat, ext)
	}
}

// extractPDF probes searchability and picks native extraction or OCR.
func (e *Extractor) extractPDF(ctx context.Context, content []byte) ([]driven.Page, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return nil, fmt.Errorf("%w: open pdf: %v", domain.ErrExtraction, err)
	}
	defer doc.Close()

	if isSearchable(doc) {
		logger.Info("PDF is searchable, using native text extraction")
		return nativePages(doc)
	}

	logger.Info("PDF is not searchable, running OCR at %.0f DPI", ocrDPI)
	return e.ocrPages(ctx, doc)
}

// isSearchable samples up to searchableSamplePages pages and classifies the
// document by average native text length. Empty documents are not
// searchable.
func isSearchable(doc *fitz.Document) bool {
	pages := doc.NumPage()
	if pages == 0 {
		return false
	}

	sample := pages
	if sample > searchableSamplePages {
		sample = searchableSamplePages
	}

	total := 0
	for i := 0; i < sample; i++ {
		text, err := doc.Text(i)
		if err != nil {
			continue
		}
		total += len(strings.TrimSpace(text))
	}

	return averageExceeds(total, sample, searchableMinChars)
}

// averageExceeds reports whether total/count as a real average is above the
// limit. Integer division would misclassify averages just over it.
func averageExceeds(total, count, limit int) bool {
	return float64(total)/float64(count) > float64(limit)
}

// nativePages extracts text per page in reading order.
func nativePages(doc *fitz.Document) ([]driven.Page, error) {
	pages := make([]driven.Page, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", domain.ErrExtraction, i+1, err)
		}
		pages = append(pages, driven.Page{Number: i + 1, Text: text})
	}
	return pages, nil
}

// ocrPages renders every page and OCRs them concurrently. Pages are rendered
// sequentially (MuPDF is not reentrant) and recognised in a bounded worker
// group. A page that fails OCR yields an empty string rather than failing
// the whole document.
func (e *Extractor) ocrPages(ctx context.Context, doc *fitz.Document) ([]driven.Page, error) {
	type renderedPage struct {
		number int
		png    []byte
	}

	rendered := make([]renderedPage, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		img, err := doc.ImageDPI(i, ocrDPI)
		if err != nil {
			logger.Warn("OCR: rendering page %d failed: %v", i+1, err)
			rendered = append(rendered, renderedPage{number: i + 1})
			continue
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			logger.Warn("OCR: encoding page %d failed: %v", i+1, err)
			rendered = append(rendered, renderedPage{number: i + 1})
			continue
		}
		rendered = append(rendered, renderedPage{number: i + 1, png: buf.Bytes()})
	}

	pages := make([]driven.Page, len(rendered))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.ocrWorkers)

	for i, rp := range rendered {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text := ""
			if rp.png != nil {
				text = recognisePage(rp.number, rp.png)
			}
			pages[i] = driven.Page{Number: rp.number, Text: text}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

// recognisePage runs Tesseract on one rendered page.
// Each call uses its own client; gosseract clients are not safe to share.
func recognisePage(number int, pngBytes []byte) string {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(ocrLanguage); err != nil {
		logger.Warn("OCR: page %d: set language: %v", number, err)
		return ""
	}
	if err := client.SetImageFromBytes(pngBytes); err != nil {
		logger.Warn("OCR: page %d: set image: %v", number, err)
		return ""
	}

	text, err := client.Text()
	if err != nil {
		logger.Warn("OCR: page %d failed: %v", number, err)
		return ""
	}
	return text
}

// decodeText decodes plain text bytes by detecting the charset, falling
// back to Latin-1, which accepts any byte sequence.
func decodeText(raw []byte) (string, error) {
	detector := chardet.NewTextDetector()
	if result, err := detector.DetectBest(raw); err == nil {
		if enc, err := htmlindex.Get(strings.ToLower(result.Charset)); err == nil {
			if decoded, err := enc.NewDecoder().Bytes(raw); err == nil {
				return string(decoded), nil
			}
		}
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
