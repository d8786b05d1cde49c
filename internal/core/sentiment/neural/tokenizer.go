package neural

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Special tokens of BERT-style vocabularies.
const (
	TokenCLS = "[CLS]"
	TokenSEP = "[SEP]"
	TokenPAD = "[PAD]"
	TokenUNK = "[UNK]"

	continuationPrefix = "##"
	maxWordRunes       = 100
)

var errMissingSpecialToken = errors.New("vocabulary is missing a special token")

// Tokenizer is a WordPiece tokenizer with BERT basic pre-tokenization.
type Tokenizer struct {
	vocab     map[string]int64
	tokens    map[int64]string
	lowerCase bool
	maxLength int

	cls, sep, pad, unk int64
}

// LoadVocab reads a vocab.txt file: one token per line, id = line number.
func LoadVocab(path string) (map[string]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocab: %w", err)
	}
	defer f.Close()

	return ReadVocab(f)
}

// ReadVocab parses a vocabulary from r.
func ReadVocab(r io.Reader) (map[string]int64, error) {
	vocab := make(map[string]int64)
	scanner := bufio.NewScanner(r)

	var id int64

	for scanner.Scan() {
		token := strings.TrimRight(scanner.Text(), "\r")
		if _, dup := vocab[token]; !dup {
			vocab[token] = id
		}

		id++
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocab: %w", err)
	}

	return vocab, nil
}

// NewTokenizer builds a tokenizer over vocab. maxLength includes [CLS] and [SEP].
func NewTokenizer(vocab map[string]int64, lowerCase bool, maxLength int) (*Tokenizer, error) {
	t := &Tokenizer{
		vocab:     vocab,
		tokens:    make(map[int64]string, len(vocab)),
		lowerCase: lowerCase,
		maxLength: maxLength,
	}

	for tok, id := range vocab {
		t.tokens[id] = tok
	}

	for token, dst := range map[string]*int64{TokenCLS: &t.cls, TokenSEP: &t.sep, TokenPAD: &t.pad, TokenUNK: &t.unk} {
		id, ok := vocab[token]
		if !ok {
			return nil, fmt.Errorf("%w: %s", errMissingSpecialToken, token)
		}

		*dst = id
	}

	if t.maxLength < 2 {
		t.maxLength = 2
	}

	return t, nil
}

// MaxLength returns the fixed sequence length.
func (t *Tokenizer) MaxLength() int {
	return t.maxLength
}

// Encode returns input ids and attention mask padded or truncated to MaxLength.
func (t *Tokenizer) Encode(text string) (ids, mask []int64) {
	ids = make([]int64, 0, t.maxLength)
	ids = append(ids, t.cls)

	limit := t.maxLength - 1

	for _, word := range t.basicTokenize(text) {
		for _, id := range t.wordPiece(word) {
			if len(ids) == limit {
				break
			}

			ids = append(ids, id)
		}
	}

	ids = append(ids, t.sep)

	mask = make([]int64, t.maxLength)
	for i := range ids {
		mask[i] = 1
	}

	for len(ids) < t.maxLength {
		ids = append(ids, t.pad)
	}

	return ids, mask
}

// Tokens returns the WordPiece tokens of text without special tokens.
func (t *Tokenizer) Tokens(text string) []string {
	var out []string

	for _, word := range t.basicTokenize(text) {
		for _, id := range t.wordPiece(word) {
			out = append(out, t.tokens[id])
		}
	}

	return out
}

func (t *Tokenizer) basicTokenize(text string) []string {
	var b strings.Builder

	for _, r := range text {
		switch {
		case r == 0 || r == unicode.ReplacementChar || isControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		case isCJK(r):
			b.WriteByte(' ')
			b.WriteRune(r)
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}

	var words []string

	for _, word := range strings.Fields(b.String()) {
		if t.lowerCase {
			word = stripAccents(strings.ToLower(word))
		}

		words = append(words, splitPunctuation(word)...)
	}

	return words
}

func (t *Tokenizer) wordPiece(word string) []int64 {
	runes := []rune(word)
	if len(runes) > maxWordRunes {
		return []int64{t.unk}
	}

	var ids []int64

	for start := 0; start < len(runes); {
		end := len(runes)
		found := false

		var id int64

		for end > start {
			piece := string(runes[start:end])
			if start > 0 {
				piece = continuationPrefix + piece
			}

			if v, ok := t.vocab[piece]; ok {
				id = v
				found = true

				break
			}

			end--
		}

		if !found {
			return []int64{t.unk}
		}

		ids = append(ids, id)
		start = end
	}

	return ids
}

func stripAccents(s string) string {
	var b strings.Builder

	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}

		b.WriteRune(r)
	}

	return b.String()
}

func splitPunctuation(word string) []string {
	var (
		out     []string
		current []rune
	)

	for _, r := range word {
		if isPunctuation(r) {
			if len(current) > 0 {
				out = append(out, string(current))
				current = current[:0]
			}

			out = append(out, string(r))

			continue
		}

		current = append(current, r)
	}

	if len(current) > 0 {
		out = append(out, string(current))
	}

	return out
}

func isPunctuation(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) || (r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}

	return unicode.IsPunct(r)
}

func isControl(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return false
	}

	return unicode.In(r, unicode.Cc, unicode.Cf)
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han)
}
