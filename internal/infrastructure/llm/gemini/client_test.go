package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/legalease/legalease/internal/core/domain"
)

func candidateResponse(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	})
	return string(body)
}

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := New(server.URL, "test-key", "gemini-pro", "gemini-flash")
	return client, server
}

func TestSummarizeSendsPromptAndParsesCandidate(t *testing.T) {
	var gotPath, gotKey string
	var gotPayload map[string]any
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(candidateResponse("A short summary.")))
	})
	defer server.Close()

	got, err := NewSummarizer(client).Summarize(context.Background(), "full contract text")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "A short summary." {
		t.Fatalf("unexpected summary: %q", got)
	}
	if !strings.Contains(gotPath, "gemini-flash:generateContent") {
		t.Fatalf("summaries must use the flash model, path was %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	if _, ok := gotPayload["systemInstruction"]; !ok {
		t.Fatalf("expected system instruction in payload: %v", gotPayload)
	}
}

func TestSimplifyParsesClausesFromFencedJSON(t *testing.T) {
	raw := "Here is the result:\n```json\n" +
		`{"clauses":[{"id":1,"title":"Payment Terms","simplified":"Pay monthly.","category":"payment","importance":"high"}]}` +
		"\n```"
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-pro:generateContent") {
			t.Errorf("simplification must use the pro model, path was %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(candidateResponse(raw)))
	})
	defer server.Close()

	clauses, err := NewSimplifier(client).Simplify(context.Background(), "contract text")
	if err != nil {
		t.Fatalf("Simplify() error = %v", err)
	}
	if len(clauses) != 1 || clauses[0].Title != "Payment Terms" {
		t.Fatalf("unexpected clauses: %+v", clauses)
	}
}

func TestSimplifyRejectsEmptyClauseSet(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(candidateResponse(`{"clauses":[]}`)))
	})
	defer server.Close()

	if _, err := NewSimplifier(client).Simplify(context.Background(), "text"); err == nil {
		t.Fatalf("expected error for empty clause set")
	}
}

func TestExtractTermsParsesJSONArray(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(candidateResponse(`{"terms":["Collateral: assets pledged","APR: yearly rate"]}`)))
	})
	defer server.Close()

	terms, err := NewTermExtractor(client).ExtractTerms(context.Background(), "text")
	if err != nil {
		t.Fatalf("ExtractTerms() error = %v", err)
	}
	if len(terms) != 2 || !strings.HasPrefix(terms[0], "Collateral") {
		t.Fatalf("unexpected terms: %v", terms)
	}
}

func TestGenerateWrapsRetryableStatusAsTemporary(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})
	defer server.Close()

	_, err := NewSummarizer(client).Summarize(context.Background(), "text")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("503 must surface as a temporary error, got %v", err)
	}
}

func TestGenerateKeepsClientErrorsPermanent(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad prompt", http.StatusBadRequest)
	})
	defer server.Close()

	_, err := NewSummarizer(client).Summarize(context.Background(), "text")
	if err == nil {
		t.Fatalf("expected error")
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("400 must not be temporary: %v", err)
	}
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected HTTPStatusError with 400, got %v", err)
	}
}

func TestGenerateRejectsEmptyCandidates(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})
	defer server.Close()

	if _, err := NewSummarizer(client).Summarize(context.Background(), "text"); err == nil {
		t.Fatalf("expected error for empty candidate list")
	}
}

func TestClassifyGeminiErrorTable(t *testing.T) {
	cases := []struct {
		name          string
		err           error
		retryable     bool
		recordFailure bool
	}{
		{"canceled", context.Canceled, false, false},
		{"retryable status", &HTTPStatusError{StatusCode: http.StatusTooManyRequests}, true, true},
		{"permanent status", &HTTPStatusError{StatusCode: http.StatusNotFound}, false, false},
	}
	for _, tc := range cases {
		class := classifyGeminiError(tc.err)
		if class.Retryable != tc.retryable || class.RecordFailure != tc.recordFailure {
			t.Fatalf("%s: got %+v", tc.name, class)
		}
	}
}
