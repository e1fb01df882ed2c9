package classifier

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultMaxFeatures bounds the vocabulary size.
const DefaultMaxFeatures = 1000

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Tokenize lowercases text and returns its unigrams followed by its bigrams.
// Single-character tokens are dropped.
func Tokenize(text string) []string {
	words := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return nil
	}
	terms := make([]string, 0, 2*len(words)-1)
	terms = append(terms, words...)
	for i := 0; i+1 < len(words); i++ {
		terms = append(terms, words[i]+" "+words[i+1])
	}
	return terms
}

// Feature is one non-zero entry of a sparse vector.
type Feature struct {
	Index int
	Value float64
}

// Vector is a sparse, L2-normalised TF-IDF vector ordered by index.
type Vector []Feature

// Vectorizer turns text into TF-IDF weighted unigram+bigram features.
type Vectorizer struct {
	// Terms holds the vocabulary; a term's position is its feature index.
	Terms []string `json:"terms"`
	// IDF holds the smoothed inverse document frequency per feature.
	IDF []float64 `json:"idf"`

	index map[string]int
}

// FitVectorizer learns a vocabulary of at most maxFeatures terms from docs.
// Terms are ranked by total count across the corpus (ties broken
// alphabetically) and the kept terms are indexed in alphabetical order.
func FitVectorizer(docs []string, maxFeatures int) *Vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}

	counts := make(map[string]int)
	docFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, term := range Tokenize(doc) {
			counts[term]++
			if !seen[term] {
				seen[term] = true
				docFreq[term]++
			}
		}
	}

	terms := make([]string, 0, len(counts))
	for term := range counts {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	v := &Vectorizer{Terms: terms, IDF: idf}
	v.buildIndex()
	return v
}

func (v *Vectorizer) buildIndex() {
	v.index = make(map[string]int, len(v.Terms))
	for i, term := range v.Terms {
		v.index[term] = i
	}
}

// Size is the number of features.
func (v *Vectorizer) Size() int {
	return len(v.Terms)
}

// Transform vectorizes text. Terms outside the vocabulary are ignored, so the
// result may be empty.
func (v *Vectorizer) Transform(text string) Vector {
	if v.index == nil {
		v.buildIndex()
	}
	tf := make(map[int]float64)
	for _, term := range Tokenize(text) {
		if i, ok := v.index[term]; ok {
			tf[i]++
		}
	}
	if len(tf) == 0 {
		return nil
	}

	vec := make(Vector, 0, len(tf))
	for i, count := range tf {
		vec = append(vec, Feature{Index: i, Value: count * v.IDF[i]})
	}
	sort.Slice(vec, func(i, j int) bool { return vec[i].Index < vec[j].Index })

	var norm float64
	for _, f := range vec {
		norm += f.Value * f.Value
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i].Value /= norm
	}
	return vec
}
