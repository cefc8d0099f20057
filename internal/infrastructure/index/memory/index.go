package memory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/legalease/legalease/internal/core/domain"
)

const (
	contentMatchScore = 2
	titleMatchScore   = 3
	embeddingDim      = 384
)

type entry struct {
	clause  domain.SimplifiedClause
	title   string
	content string
	vector  []float32
}

// Index is an in-process keyword index over simplified clauses. Each
// document's entries are replaced atomically on Index, so a reprocess never
// exposes a half-built view.
type Index struct {
	mu   sync.RWMutex
	docs map[string][]entry
}

func NewIndex() *Index {
	return &Index{
		docs: make(map[string][]entry),
	}
}

func (i *Index) Index(ctx context.Context, documentID string, clauses []domain.SimplifiedClause) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries := make([]entry, 0, len(clauses))
	for _, clause := range clauses {
		entries = append(entries, entry{
			clause:  clause,
			title:   strings.ToLower(clause.Title),
			content: strings.ToLower(clause.Simplified),
			vector:  mockEmbedding(clause.Title + " " + clause.Simplified),
		})
	}

	i.mu.Lock()
	i.docs[documentID] = entries
	i.mu.Unlock()
	return nil
}

// Retrieve returns the clauses most relevant to the query, highest score
// first. Clauses with no keyword overlap are excluded, so the result may be
// shorter than limit, or empty.
func (i *Index) Retrieve(ctx context.Context, documentID, query string, limit int) ([]domain.SimplifiedClause, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 3
	}

	i.mu.RLock()
	entries := i.docs[documentID]
	i.mu.RUnlock()
	if len(entries) == 0 {
		return nil, nil
	}

	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	type scored struct {
		entry entry
		score int
		order int
	}
	var matches []scored
	for order, e := range entries {
		score := 0
		for _, token := range tokens {
			if strings.Contains(e.content, token) {
				score += contentMatchScore
			}
			if strings.Contains(e.title, token) {
				score += titleMatchScore
			}
		}
		if score > 0 {
			matches = append(matches, scored{entry: e, score: score, order: order})
		}
	}

	sort.Slice(matches, func(a, b int) bool {
		if matches[a].score != matches[b].score {
			return matches[a].score > matches[b].score
		}
		return matches[a].order < matches[b].order
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	clauses := make([]domain.SimplifiedClause, 0, len(matches))
	for _, m := range matches {
		clauses = append(clauses, m.entry.clause)
	}
	return clauses, nil
}

func (i *Index) Invalidate(ctx context.Context, documentID string) {
	i.mu.Lock()
	delete(i.docs, documentID)
	i.mu.Unlock()
}

func (i *Index) Has(ctx context.Context, documentID string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.docs[documentID]) > 0
}

func tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		token := strings.Trim(field, ".,;:!?\"'()")
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// mockEmbedding produces a deterministic pseudo-embedding from the clause
// text. It stands in for a real embedding model so the entry layout stays
// compatible with one.
func mockEmbedding(text string) []float32 {
	vec := make([]float32, embeddingDim)
	if text == "" {
		return vec
	}
	h := uint32(2166136261)
	for _, r := range text {
		h = (h ^ uint32(r)) * 16777619
	}
	var norm float64
	for idx := range vec {
		hi := (h ^ uint32(idx)) * 16777619
		v := float32(hi%2000)/1000.0 - 1.0
		vec[idx] = v
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1.0 / math.Sqrt(norm))
		for idx := range vec {
			vec[idx] *= scale
		}
	}
	return vec
}
