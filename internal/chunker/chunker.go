// Package chunker segments cleaned page text into overlapping, bounded
// token chunks anchored to a page number. Sentences are the unit of
// accumulation: a chunk never splits a sentence, and the tail of each chunk
// seeds the next one so context survives the cut.
package chunker

import (
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/extract"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// DefaultChunkSize is the default chunk budget in whitespace tokens.
const DefaultChunkSize = 500

// DefaultOverlap is the default number of tokens carried into the next chunk.
const DefaultOverlap = 50

// Chunker splits page-ordered text into chunks.
type Chunker struct {
	chunkSize int
	overlap   int
	detector  lingua.LanguageDetector
	splitters map[lingua.Language]sentenceSplitter
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk budget in tokens.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the number of tokens carried between chunks.
// An overlap at or above the chunk size is legal but degenerates to
// near-total overlap; configuring it sanely is the caller's job.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
// Language detection is restricted to the two supported languages.
func New(opts ...Option) (*Chunker, error) {
	english, err := newEnglishSplitter()
	if err != nil {
		return nil, err
	}

	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.Portuguese, lingua.English).
			Build(),
		splitters: map[lingua.Language]sentenceSplitter{
			lingua.English:    english,
			lingua.Portuguese: newTerminatorSplitter(),
		},
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Chunk segments the pages of one document version into chunks.
// TOC pages and pages blank after cleaning are skipped. Returns
// domain.ErrNoText when nothing survives extraction and cleaning.
//
// The page recorded on a chunk is the page being processed when the chunk
// is flushed; a chunk straddling a page boundary therefore carries the
// later page. Indexed data depends on this tagging, so it stays.
func (c *Chunker) Chunk(pages []driven.Page, documentHash, filename string) ([]domain.Chunk, error) {
	headers, footers := extract.IdentifyHeadersFooters(pages)
	if len(headers) > 0 || len(footers) > 0 {
		logger.Info("Detected %d header and %d footer line(s) for %q", len(headers), len(footers), filename)
	}

	var (
		chunks   []domain.Chunk
		buffer   []string
		index    int
		lastPage int
	)

	flush := func(page int) {
		chunks = append(chunks, domain.Chunk{
			Text:         strings.Join(buffer, " "),
			DocumentHash: documentHash,
			Filename:     filename,
			Index:        index,
			Page:         page,
		})
		index++
	}

	for _, page := range pages {
		lastPage = page.Number

		if extract.IsTableOfContents(page.Text) {
			logger.Info("Page %d skipped: table of contents", page.Number)
			continue
		}

		text := extract.CleanPage(page.Text, headers, footers)
		if strings.TrimSpace(text) == "" {
			continue
		}

		language := c.detectLanguage(text)
		for _, sentence := range c.splitters[language].Split(text) {
			tokens := strings.Fields(sentence)
			if len(tokens) == 0 {
				continue
			}

			if len(buffer)+len(tokens) > c.chunkSize && len(buffer) > 0 {
				flush(page.Number)

				keep := len(buffer) - c.overlap
				if keep < 0 {
					keep = 0
				}
				buffer = append([]string(nil), buffer[keep:]...)
			}

			buffer = append(buffer, tokens...)
		}
	}

	if len(buffer) > 0 {
		flush(lastPage)
	}

	if len(chunks) == 0 {
		return nil, domain.ErrNoText
	}
	return chunks, nil
}

// detectLanguage picks between the two supported languages, defaulting to
// English when detection is inconclusive.
func (c *Chunker) detectLanguage(text string) lingua.Language {
	language, ok := c.detector.DetectLanguageOf(text)
	if !ok {
		return lingua.English
	}
	if language == lingua.Portuguese {
		return lingua.Portuguese
	}
	return lingua.English
}
