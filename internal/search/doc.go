// Package search ranks library records against free-text queries.
//
// An Index fingerprints each record's searchable text (name, tags,
// description, category, kind) as a TF vector, weights it with corpus IDF,
// and scores queries by cosine similarity. Queries too short to tokenize
// fall back to substring matching so two-letter searches still land.
package search
