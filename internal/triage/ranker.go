package triage

import (
	"fmt"
	"sort"
)

// Match is a corpus entry scored against a query.
type Match struct {
	Index      int
	Similarity float64
}

// Ranker scores a query against corpus texts using a shared TF-IDF space.
type Ranker struct {
	vectorizer *Vectorizer
}

// NewRanker builds a ranker; a nil vectorizer means the unigram default.
func NewRanker(vectorizer *Vectorizer) *Ranker {
	if vectorizer == nil {
		vectorizer = NewVectorizer()
	}
	return &Ranker{vectorizer: vectorizer}
}

// Rank returns corpus matches with similarity strictly above minSimilarity,
// best first, ties going to the lower corpus index. topK <= 0 keeps every match.
func (r *Ranker) Rank(query string, corpus []string, topK int, minSimilarity float64) ([]Match, error) {
	if len(corpus) == 0 {
		return nil, fmt.Errorf("%w: nothing to rank against", ErrNoCorpus)
	}

	batch := make([]string, 0, len(corpus)+1)
	batch = append(batch, corpus...)
	batch = append(batch, query)
	vectors, err := r.vectorizer.Vectorize(batch)
	if err != nil {
		return nil, err
	}

	queryVec := vectors[len(corpus)]
	matches := make([]Match, 0, len(corpus))
	for i := range corpus {
		similarity := cosine(queryVec, vectors[i])
		if similarity <= minSimilarity {
			continue
		}
		matches = append(matches, Match{Index: i, Similarity: similarity})
	}

	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].Similarity != matches[b].Similarity {
			return matches[a].Similarity > matches[b].Similarity
		}
		return matches[a].Index < matches[b].Index
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}
