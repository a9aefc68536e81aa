package ingest

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultMaxTokenSize bounds a single token. Longer runs of non-space bytes
// fail the read.
const DefaultMaxTokenSize = 1 << 20

// Tokenizer splits text on Unicode whitespace. Tokens keep their case and
// punctuation; the only change is NFC normalization, so canonically
// equivalent spellings ("é" precomposed or as e + combining accent) map to
// the same word.
type Tokenizer struct {
	maxTokenSize int
}

// NewTokenizer creates a tokenizer with DefaultMaxTokenSize.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{maxTokenSize: DefaultMaxTokenSize}
}

// NewTokenizerWithLimit creates a tokenizer that rejects tokens longer than
// maxTokenSize bytes.
func NewTokenizerWithLimit(maxTokenSize int) *Tokenizer {
	if maxTokenSize <= 0 {
		maxTokenSize = DefaultMaxTokenSize
	}
	return &Tokenizer{maxTokenSize: maxTokenSize}
}

// Each streams tokens from r in order, calling fn for each one.
// An error from fn stops the scan and is returned as is. A failure reading r
// is returned as a *ReadError.
func (t *Tokenizer) Each(r io.Reader, fn func(token string) error) error {
	sc := bufio.NewScanner(r)
	initial := 64 * 1024
	if initial > t.maxTokenSize {
		initial = t.maxTokenSize
	}
	sc.Buffer(make([]byte, 0, initial), t.maxTokenSize)
	sc.Split(bufio.ScanWords)

	for sc.Scan() {
		if err := fn(Normalize(sc.Text())); err != nil {
			return err
		}
	}

	if err := sc.Err(); err != nil {
		return &ReadError{Err: err}
	}
	return nil
}

// Tokenize returns all tokens in text.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	r := strings.NewReader(text)
	// Reading from memory cannot fail except on an oversized token, in
	// which case the tokens before it are returned.
	_ = t.Each(r, func(token string) error {
		tokens = append(tokens, token)
		return nil
	})
	return tokens
}

// Normalize returns token in Unicode normalization form C.
func Normalize(token string) string {
	return norm.NFC.String(token)
}
