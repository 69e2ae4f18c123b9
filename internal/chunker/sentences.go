package chunker

import (
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// sentenceSplitter breaks page text into sentences.
type sentenceSplitter interface {
	Split(text string) []string
}

// englishSplitter wraps the trained punkt tokenizer.
type englishSplitter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

func newEnglishSplitter() (*englishSplitter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, err
	}
	return &englishSplitter{tokenizer: tokenizer}, nil
}

// Split tokenises text into sentences using punkt.
func (s *englishSplitter) Split(text string) []string {
	tokenised := s.tokenizer.Tokenize(text)
	result := make([]string, 0, len(tokenised))
	for _, sentence := range tokenised {
		if trimmed := strings.TrimSpace(sentence.Text); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// terminatorSplitter splits on sentence terminators. No trained punkt data
// ships for Portuguese, so abbreviation handling is approximate; chunk
// boundaries only need to be plausible, not linguistically exact.
type terminatorSplitter struct{}

func newTerminatorSplitter() *terminatorSplitter {
	return &terminatorSplitter{}
}

// Split breaks text at '.', '!', '?' and newlines.
func (s *terminatorSplitter) Split(text string) []string {
	var result []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if sentence := strings.TrimSpace(current.String()); sentence != "" {
				result = append(result, sentence)
			}
			current.Reset()
		}
	}

	if sentence := strings.TrimSpace(current.String()); sentence != "" {
		result = append(result, sentence)
	}
	return result
}
