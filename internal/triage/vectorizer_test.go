package triage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorize_RejectsSingleDocument(t *testing.T) {
	_, err := NewVectorizer().Vectorize([]string{"only one"})
	require.ErrorIs(t, err, ErrEmptyInput)

	_, err = NewVectorizer().Vectorize(nil)
	require.ErrorIs(t, err, ErrEmptyInput)
}

func TestVectorize_EmptyVocabulary(t *testing.T) {
	_, err := NewVectorizer().Vectorize([]string{"?!", "  ", "a"})
	require.ErrorIs(t, err, ErrVectorization)
}

func TestVectorize_UnitVectorsOfEqualDimension(t *testing.T) {
	vectors, err := NewVectorizer().Vectorize([]string{
		"printer is offline",
		"payment failed twice",
		"the printer shows an error",
	})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	dim := len(vectors[0])
	for _, vec := range vectors {
		assert.Len(t, vec, dim)
		assert.InDelta(t, 1.0, l2(vec), 1e-9)
	}
}

func TestVectorize_TokenlessDocumentIsZeroVector(t *testing.T) {
	vectors, err := NewVectorizer().Vectorize([]string{"router reboot loop", "!!!"})
	require.NoError(t, err)
	assert.Zero(t, l2(vectors[1]))
	assert.Zero(t, cosine(vectors[0], vectors[1]))
}

func TestVectorize_SharedTermsWeighLessThanRareOnes(t *testing.T) {
	vectors, err := NewVectorizer().Vectorize([]string{
		"login error",
		"billing error",
		"crash error",
	})
	require.NoError(t, err)

	// vocabulary is sorted: billing, crash, error, login
	doc := vectors[0]
	assert.Greater(t, doc[3], doc[2], "login is rarer than error")
	assert.Zero(t, doc[0])
}

func TestVectorize_IDFSmoothing(t *testing.T) {
	vectors, err := NewVectorizer().Vectorize([]string{"alpha beta", "alpha"})
	require.NoError(t, err)

	// idf(alpha) = ln(3/3)+1 = 1, idf(beta) = ln(3/2)+1
	idfBeta := math.Log(3.0/2.0) + 1
	norm := math.Sqrt(1 + idfBeta*idfBeta)
	assert.InDelta(t, 1/norm, vectors[0][0], 1e-9)
	assert.InDelta(t, idfBeta/norm, vectors[0][1], 1e-9)
	assert.InDelta(t, 1.0, vectors[1][0], 1e-9)
}

func TestVectorize_Bigrams(t *testing.T) {
	unigram, err := NewVectorizer().Vectorize([]string{"reset password", "password reset"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cosine(unigram[0], unigram[1]), 1e-9)

	bigram, err := NewVectorizer(WithBigrams()).Vectorize([]string{"reset password", "password reset"})
	require.NoError(t, err)
	assert.Less(t, cosine(bigram[0], bigram[1]), 1.0)
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Hello, World!", []string{"hello", "world"}},
		{"SSL error #42 in v2", []string{"ssl", "error", "42", "in", "v2"}},
		{"a b c", []string{}},
		{"", nil},
		{"snake_case token", []string{"snake_case", "token"}},
	}
	for _, tt := range tests {
		got := tokenize(tt.input)
		if tt.want == nil {
			assert.Empty(t, got, tt.input)
			continue
		}
		assert.ElementsMatch(t, tt.want, got, tt.input)
	}
}

func l2(vec []float64) float64 {
	var sum float64
	for _, x := range vec {
		sum += x * x
	}
	return math.Sqrt(sum)
}
