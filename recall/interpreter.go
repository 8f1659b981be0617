package recall

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/becomeliminal/mindcare/memory"
)

// NoRecall is the answer whenever nothing relevant is remembered.
const NoRecall = "I don't recall anything about that."

const (
	historyHeader = "Recent memory history:"
	historyDepth  = 3
)

// historyLabels name history lines oldest first.
var historyLabels = []string{"Earlier", "Then", "Now"}

// Searcher returns ranked, threshold-filtered candidates for a query.
// *memory.Retriever implements it.
type Searcher interface {
	Search(ctx context.Context, query string) ([]memory.Candidate, error)
}

// RecordFinder resolves a memory text to the records holding it.
// Every memory.Store implements it.
type RecordFinder interface {
	FindByText(ctx context.Context, text string) ([]memory.Record, error)
}

// Generator writes a free-form answer to query from memory texts.
type Generator interface {
	Generate(ctx context.Context, query string, memories []string) (string, error)
}

// Answer is the outcome of interpreting one question.
type Answer struct {
	Text    string
	Intent  Intent
	Object  string          // Empty when the question names no object
	Records []memory.Record // Filtered records, newest first
}

// Interpreter answers questions from retrieved memories. It holds no state
// of its own between calls.
type Interpreter struct {
	searcher  Searcher
	records   RecordFinder
	generator Generator // Optional: free-form latest answers
}

// Option configures the interpreter.
type Option func(*Interpreter)

// WithGenerator makes latest-mode answers come from g, falling back to the
// rule-based rendering when g fails.
func WithGenerator(g Generator) Option {
	return func(in *Interpreter) {
		in.generator = g
	}
}

// New creates an interpreter over a searcher and a record finder.
func New(searcher Searcher, records RecordFinder, opts ...Option) *Interpreter {
	in := &Interpreter{
		searcher: searcher,
		records:  records,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Ask answers query with rendered text or NoRecall. Errors are returned only
// when retrieval or the record store fails.
func (in *Interpreter) Ask(ctx context.Context, query string) (string, error) {
	answer, err := in.Interpret(ctx, query)
	if err != nil {
		return "", err
	}
	return answer.Text, nil
}

// Interpret runs the full pipeline and reports how the answer was reached.
func (in *Interpreter) Interpret(ctx context.Context, query string) (*Answer, error) {
	answer := &Answer{Text: NoRecall, Intent: ClassifyIntent(query)}

	candidates, err := in.searcher.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieve memories: %w", err)
	}
	if len(candidates) == 0 {
		slog.Debug("no candidates", "query", query)
		return answer, nil
	}

	records, err := in.resolve(ctx, candidates)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		slog.Debug("candidates matched no records", "candidates", len(candidates))
		return answer, nil
	}

	if object, ok := ExtractObject(query); ok {
		answer.Object = object
		records = FilterByObject(records, object)
		if len(records) == 0 {
			slog.Debug("no memories mention object", "object", object)
			return answer, nil
		}
	}
	answer.Records = records

	switch answer.Intent {
	case IntentHistory:
		answer.Text = RenderHistory(records)
	default:
		answer.Text = in.latest(ctx, query, records)
	}

	slog.Debug("question answered",
		"intent", answer.Intent.String(),
		"object", answer.Object,
		"records", len(records),
	)
	return answer, nil
}

// resolve maps candidate texts to their records, newest first. Identical
// texts stored more than once all stay in; nothing picks between them.
func (in *Interpreter) resolve(ctx context.Context, candidates []memory.Candidate) ([]memory.Record, error) {
	seen := make(map[string]bool, len(candidates))
	var records []memory.Record

	for _, c := range candidates {
		if seen[c.Text] {
			continue
		}
		seen[c.Text] = true

		matches, err := in.records.FindByText(ctx, c.Text)
		if err != nil {
			return nil, fmt.Errorf("resolve memory records: %w", err)
		}
		if len(matches) > 1 {
			slog.Debug("ambiguous memory text", "text", c.Text, "records", len(matches))
		}
		records = append(records, matches...)
	}

	SortNewestFirst(records)
	return records, nil
}

func (in *Interpreter) latest(ctx context.Context, query string, records []memory.Record) string {
	if in.generator != nil {
		recent := records
		if len(recent) > historyDepth {
			recent = recent[:historyDepth]
		}

		text, err := in.generator.Generate(ctx, query, memory.Texts(recent))
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		slog.Warn("generator failed, using rule-based answer", "error", err)
	}
	return RenderLatest(records)
}

// SortNewestFirst orders records by CreatedAt descending. Records with equal
// timestamps keep their relative order.
func SortNewestFirst(records []memory.Record) {
	slices.SortStableFunc(records, func(a, b memory.Record) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
}

// FilterByObject keeps records whose text mentions object, ignoring case.
func FilterByObject(records []memory.Record, object string) []memory.Record {
	object = strings.ToLower(object)

	var out []memory.Record
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Text), object) {
			out = append(out, r)
		}
	}
	return out
}

// RenderLatest rewrites the newest record for the reader.
// records must be newest first.
func RenderLatest(records []memory.Record) string {
	if len(records) == 0 {
		return NoRecall
	}
	return RewritePerspective(records[0].Text)
}

// RenderHistory lists up to three of the newest records oldest first,
// labelled Earlier, Then and Now. A line shows only the location phrase
// when one is found. records must be newest first.
func RenderHistory(records []memory.Record) string {
	if len(records) == 0 {
		return NoRecall
	}

	recent := slices.Clone(records[:min(historyDepth, len(records))])
	slices.Reverse(recent)

	lines := make([]string, 0, len(recent)+1)
	lines = append(lines, historyHeader)
	for i, r := range recent {
		text := RewritePerspective(r.Text)
		if loc, ok := ExtractLocation(text); ok {
			text = loc
		}
		lines = append(lines, historyLabels[i]+": "+text)
	}
	return strings.Join(lines, "\n")
}
