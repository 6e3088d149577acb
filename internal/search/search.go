package search

import (
	"sort"
	"strings"

	"github.com/arthurhrk/Shapeslibrary/internal/shape"
	"github.com/arthurhrk/Shapeslibrary/internal/textutil"
)

// minScore drops matches whose similarity is indistinguishable from token
// noise.
const minScore = 0.05

// Result pairs a record with its similarity to the query.
type Result struct {
	Record shape.Record
	Score  float64
}

type entry struct {
	record shape.Record
	vector *textutil.Fingerprint
}

// Index is an immutable snapshot of the library prepared for querying.
// Build one per command invocation; the store already caches record loads.
type Index struct {
	entries []entry
	idf     map[string]float64
}

// New fingerprints each record's searchable text and weights terms by
// corpus IDF so common boilerplate ("captured") counts less than
// distinguishing words.
func New(records []shape.Record) *Index {
	raw := make([]*textutil.Fingerprint, len(records))
	corpus := textutil.NewCorpus()
	for i := range records {
		raw[i] = textutil.NewFingerprint(documentText(&records[i]))
		corpus.Add(raw[i])
	}
	idf := corpus.IDF()
	// Raw IDF zeroes a term that appears in every record, which would make
	// such terms unsearchable. +1 smoothing keeps them rankable.
	for term := range idf {
		idf[term]++
	}

	idx := &Index{idf: idf}
	for i := range records {
		vector := raw[i].WithIDF(idf)
		if vector == nil {
			continue
		}
		idx.entries = append(idx.entries, entry{
			record: records[i].Clone(),
			vector: vector,
		})
	}
	return idx
}

// Len reports how many records the index can rank.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Search ranks records against the query, best first. Ties break on record
// name, then id, so output is stable. limit <= 0 returns every match.
// Queries whose terms are all too short to tokenize fall back to substring
// matching over name, id, and tags.
func (idx *Index) Search(query string, limit int) []Result {
	qf := textutil.NewFingerprint(query)
	var results []Result
	if qf == nil {
		results = idx.substringSearch(query)
	} else {
		q := qf.WithIDF(idx.idf)
		for _, e := range idx.entries {
			score := textutil.CosineSimilarity(q, e.vector)
			if score < minScore {
				continue
			}
			results = append(results, Result{Record: e.record.Clone(), Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Record.Name != results[j].Record.Name {
			return results[i].Record.Name < results[j].Record.Name
		}
		return results[i].Record.ID < results[j].Record.ID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// substringSearch handles queries like "ar" that produce no tokens. Hits
// share a flat score; ordering falls to the name tiebreak.
func (idx *Index) substringSearch(query string) []Result {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}
	var results []Result
	for _, e := range idx.entries {
		if !matchesSubstring(&e.record, needle) {
			continue
		}
		results = append(results, Result{Record: e.record.Clone(), Score: 1})
	}
	return results
}

func matchesSubstring(rec *shape.Record, needle string) bool {
	if strings.Contains(strings.ToLower(rec.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(rec.ID), needle) {
		return true
	}
	for _, tag := range rec.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// documentText flattens the fields worth matching into one string. The kind
// contributes its display words so "right arrow" finds rightArrow records
// whose names never mention arrows.
func documentText(rec *shape.Record) string {
	parts := []string{
		rec.Name,
		rec.Description,
		rec.Category,
		shape.DisplayName(rec.Definition.Type),
	}
	parts = append(parts, rec.Tags...)
	return strings.Join(parts, " ")
}
