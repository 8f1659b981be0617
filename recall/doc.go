// Package recall interprets a natural-language question against retrieved
// memories: it resolves candidates to records by recency, filters by the
// object the question refers to ("my car"), decides between a latest answer
// and a short history, and rewrites first-person memories for the reader.
//
// The rule tables (history keywords, object pattern, location prepositions,
// pronoun swaps) are plain pure functions so they can be tested alone.
package recall
