package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/legalease/legalease/internal/core/domain"
	"github.com/legalease/legalease/internal/infrastructure/resilience"
)

// Client talks to the Gemini generateContent REST API. The pro model handles
// clause simplification; the flash model handles everything else.
type Client struct {
	baseURL    string
	apiKey     string
	proModel   string
	flashModel string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey, proModel, flashModel string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		proModel:   proModel,
		flashModel: flashModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Client) WithExecutor(executor *resilience.Executor) *Client {
	c.executor = executor
	return c
}

type Simplifier struct {
	client *Client
}

func NewSimplifier(client *Client) *Simplifier {
	return &Simplifier{client: client}
}

func (s *Simplifier) Simplify(ctx context.Context, text string) ([]domain.SimplifiedClause, error) {
	raw, err := s.client.generateJSON(ctx, s.client.proModel, simplifySystemPrompt, buildSimplifyPrompt(text), "simplify")
	if err != nil {
		return nil, err
	}

	var result struct {
		Clauses []domain.SimplifiedClause `json:"clauses"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &result); err != nil {
		return nil, fmt.Errorf("parse clauses json: %w", err)
	}
	if len(result.Clauses) == 0 {
		return nil, fmt.Errorf("simplify returned no clauses")
	}
	return result.Clauses, nil
}

type Summarizer struct {
	client *Client
}

func NewSummarizer(client *Client) *Summarizer {
	return &Summarizer{client: client}
}

func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	return s.client.generateText(ctx, s.client.flashModel, summarySystemPrompt, buildSummaryPrompt(text), "summarize")
}

type TermExtractor struct {
	client *Client
}

func NewTermExtractor(client *Client) *TermExtractor {
	return &TermExtractor{client: client}
}

func (t *TermExtractor) ExtractTerms(ctx context.Context, text string) ([]string, error) {
	raw, err := t.client.generateJSON(ctx, t.client.flashModel, termsSystemPrompt, buildTermsPrompt(text), "extract_terms")
	if err != nil {
		return nil, err
	}

	var result struct {
		Terms []string `json:"terms"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &result); err != nil {
		return nil, fmt.Errorf("parse terms json: %w", err)
	}
	return result.Terms, nil
}

type Answerer struct {
	client *Client
}

func NewAnswerer(client *Client) *Answerer {
	return &Answerer{client: client}
}

func (a *Answerer) GenerateAnswer(ctx context.Context, question, documentText string, clauses []domain.SimplifiedClause) (string, error) {
	return a.client.generateText(ctx, a.client.flashModel, qaSystemPrompt, buildAnswerPrompt(question, documentText, clauses), "answer")
}

type Translator struct {
	client *Client
}

func NewTranslator(client *Client) *Translator {
	return &Translator{client: client}
}

func (t *Translator) Translate(ctx context.Context, text string, target domain.LanguageCode) (string, error) {
	return t.client.generateText(ctx, t.client.flashModel, "", buildTranslatePrompt(text, target), "translate")
}

func (c *Client) generateText(ctx context.Context, model, system, prompt, operation string) (string, error) {
	return c.generate(ctx, model, system, prompt, "", operation)
}

func (c *Client) generateJSON(ctx context.Context, model, system, prompt, operation string) (string, error) {
	return c.generate(ctx, model, system, prompt, "application/json", operation)
}

func (c *Client) generate(ctx context.Context, model, system, prompt, responseMimeType, operation string) (string, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}
	if system != "" {
		payload["systemInstruction"] = map[string]any{
			"parts": []map[string]string{{"text": system}},
		}
	}
	if responseMimeType != "" {
		payload["generationConfig"] = map[string]string{"responseMimeType": responseMimeType}
	}

	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", model)
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, path, payload, &response, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "gemini."+operation, call, classifyGeminiError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}

	var builder strings.Builder
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			builder.WriteString(part.Text)
		}
		break
	}
	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", fmt.Errorf("gemini %s: empty response", operation)
	}
	return text, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
