package triage

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Vectorizer turns a batch of texts into L2-normalized TF-IDF vectors.
// The vocabulary is built from the batch passed to each call and never retained,
// so vectors are only comparable with other vectors from the same call.
type Vectorizer struct {
	ngramMax int
}

// VectorizerOption customizes a Vectorizer.
type VectorizerOption func(*Vectorizer)

// WithBigrams adds adjacent token pairs to the vocabulary.
func WithBigrams() VectorizerOption {
	return func(v *Vectorizer) {
		v.ngramMax = 2
	}
}

// NewVectorizer builds a unigram vectorizer unless options say otherwise.
func NewVectorizer(opts ...VectorizerOption) *Vectorizer {
	v := &Vectorizer{ngramMax: 1}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Vectorize returns one vector per input text, all of the same dimension.
// A text without any vocabulary term yields the zero vector.
func (v *Vectorizer) Vectorize(texts []string) ([][]float64, error) {
	if len(texts) < 2 {
		return nil, fmt.Errorf("%w: vectorize needs at least 2 documents, got %d", ErrEmptyInput, len(texts))
	}

	counts := make([]map[string]int, len(texts))
	docFreq := make(map[string]int)
	for i, text := range texts {
		termCounts := make(map[string]int)
		for _, term := range v.terms(text) {
			termCounts[term]++
		}
		for term := range termCounts {
			docFreq[term]++
		}
		counts[i] = termCounts
	}
	if len(docFreq) == 0 {
		return nil, fmt.Errorf("%w: no terms found in %d documents", ErrVectorization, len(texts))
	}

	vocab := make([]string, 0, len(docFreq))
	for term := range docFreq {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	position := make(map[string]int, len(vocab))
	idf := make([]float64, len(vocab))
	n := float64(len(texts))
	for i, term := range vocab {
		position[term] = i
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	vectors := make([][]float64, len(texts))
	for i, termCounts := range counts {
		vec := make([]float64, len(vocab))
		for term, count := range termCounts {
			j := position[term]
			vec[j] = float64(count) * idf[j]
		}
		normalize(vec)
		vectors[i] = vec
	}
	return vectors, nil
}

func (v *Vectorizer) terms(text string) []string {
	tokens := tokenize(text)
	if v.ngramMax < 2 || len(tokens) < 2 {
		return tokens
	}
	terms := make([]string, 0, 2*len(tokens)-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

// tokenize lowercases text and keeps runs of letters, digits and underscores
// that are at least two characters long.
func tokenize(text string) []string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_')
	})
	tokens := fields[:0]
	for _, field := range fields {
		if utf8.RuneCountInString(field) >= 2 {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

func normalize(vec []float64) {
	var sum float64
	for _, x := range vec {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}

// cosine expects unit or zero vectors of equal length.
func cosine(a, b []float64) float64 {
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	if dot > 1 {
		return 1
	}
	return dot
}
