package classify

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// maxFeatures caps the vocabulary to the most frequent terms of the batch.
const maxFeatures = 10

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

func tokenize(doc string) []string {
	return tokenPattern.FindAllString(strings.ToLower(doc), -1)
}

// dominantTerms returns, for each document, the vocabulary term with the
// highest TF-IDF weight, or "" when the document contains none of them.
//
// The vocabulary is the maxFeatures terms with the highest total count
// across the batch (ties broken alphabetically), so a document's term
// depends on the rest of the batch.
//
// Weights use raw term frequency and smoothed inverse document frequency,
// idf(t) = ln((1+n)/(1+df(t))) + 1, followed by L2 normalisation of each
// row. On equal weights the alphabetically first term wins.
func dominantTerms(docs []string) []string {
	tokens := make([][]string, len(docs))
	total := make(map[string]int)
	df := make(map[string]int)
	for i, doc := range docs {
		tokens[i] = tokenize(doc)
		seen := make(map[string]bool)
		for _, tok := range tokens[i] {
			total[tok]++
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}

	vocab := selectFeatures(total, maxFeatures)
	out := make([]string, len(docs))
	if len(vocab) == 0 {
		return out
	}

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	col := make(map[string]int, len(vocab))
	for j, term := range vocab {
		idf[j] = math.Log((1+n)/(1+float64(df[term]))) + 1
		col[term] = j
	}

	for i := range docs {
		row := make([]float64, len(vocab))
		for _, tok := range tokens[i] {
			if j, ok := col[tok]; ok {
				row[j]++
			}
		}
		var norm float64
		for j := range row {
			row[j] *= idf[j]
			norm += row[j] * row[j]
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)

		best := 0
		for j := range row {
			row[j] /= norm
			if row[j] > row[best] {
				best = j
			}
		}
		out[i] = vocab[best]
	}
	return out
}

// selectFeatures returns up to k terms by descending count, ties broken
// alphabetically, in alphabetical order.
func selectFeatures(counts map[string]int, k int) []string {
	terms := make([]string, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(a, b int) bool {
		if counts[terms[a]] != counts[terms[b]] {
			return counts[terms[a]] > counts[terms[b]]
		}
		return terms[a] < terms[b]
	})
	if len(terms) > k {
		terms = terms[:k]
	}
	sort.Strings(terms)
	return terms
}
