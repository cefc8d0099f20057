package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/legalease/legalease/internal/config"
	"github.com/legalease/legalease/internal/core/domain"
)

type ingestorFake struct {
	uploadErr    error
	reprocessErr error
	deleteErr    error
	uploaded     *domain.Document
}

func (f *ingestorFake) Upload(_ context.Context, filename, contentType string, body io.Reader) (*domain.Document, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	data, _ := io.ReadAll(body)
	doc := &domain.Document{
		ID:           "doc-1",
		OriginalName: filename,
		ContentType:  contentType,
		SizeBytes:    int64(len(data)),
		Status:       domain.StatusUploaded,
	}
	f.uploaded = doc
	return doc, nil
}

func (f *ingestorFake) Reprocess(context.Context, string) error { return f.reprocessErr }
func (f *ingestorFake) Delete(context.Context, string) error    { return f.deleteErr }

type qaFake struct {
	answerErr  error
	historyErr error
	result     *domain.QAResult
}

func (f *qaFake) Answer(context.Context, string, string) (*domain.QAResult, error) {
	if f.answerErr != nil {
		return nil, f.answerErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.QAResult{Answer: "ok", RelevantClauseIDs: []int{1}}, nil
}

func (f *qaFake) History(context.Context, string) ([]domain.Conversation, error) {
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return []domain.Conversation{{ID: "conv-1", DocumentID: "doc-1", Question: "q", Answer: "a"}}, nil
}

type translatorFake struct{ err error }

func (f translatorFake) Translate(_ context.Context, text string, target domain.LanguageCode) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "[" + string(target) + "] " + text, nil
}

type ttsFake struct{ err error }

func (f ttsFake) Synthesize(context.Context, string, domain.LanguageCode) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "data:audio/mp3;base64,AAAA", nil
}

type docsFake struct {
	err error
	doc *domain.Document
}

func (f docsFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.doc != nil {
		return f.doc, nil
	}
	return &domain.Document{ID: "doc-1", OriginalName: "a.pdf", Status: domain.StatusCompleted}, nil
}

func newTestRouter(opts ...func(*Router)) http.Handler {
	rt := NewRouter(
		config.Config{MaxConcurrent: 8},
		&ingestorFake{},
		&qaFake{},
		translatorFake{},
		ttsFake{},
		docsFake{},
	)
	for _, opt := range opts {
		opt(rt)
	}
	return rt.Handler()
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestUploadDocumentReturns202(t *testing.T) {
	handler := newTestRouter()

	body, contentType := multipartBody(t, "loan.pdf", "fake pdf bytes")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	var doc domain.Document
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if doc.Status != domain.StatusUploaded {
		t.Fatalf("expected uploaded status, got %s", doc.Status)
	}
}

func TestUploadDocumentRequiresFileField(t *testing.T) {
	handler := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", bytes.NewReader(nil))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestUploadDocumentMapsUnsupportedFormatTo415(t *testing.T) {
	rt := NewRouter(
		config.Config{},
		&ingestorFake{uploadErr: domain.WrapError(domain.ErrUnsupportedFormat, "upload", errors.New("bad ext"))},
		&qaFake{},
		translatorFake{},
		ttsFake{},
		docsFake{},
	)
	handler := rt.Handler()

	body, contentType := multipartBody(t, "notes.xyz", "???")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", res.Code)
	}
}

func TestGetDocumentReturns404ForNotFound(t *testing.T) {
	rt := NewRouter(
		config.Config{},
		&ingestorFake{},
		&qaFake{},
		translatorFake{},
		ttsFake{},
		docsFake{err: domain.WrapError(domain.ErrDocumentNotFound, "get", errors.New("id=missing"))},
	)
	handler := rt.Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestGetDocumentHidesDeleted(t *testing.T) {
	rt := NewRouter(
		config.Config{},
		&ingestorFake{},
		&qaFake{},
		translatorFake{},
		ttsFake{},
		docsFake{doc: &domain.Document{ID: "doc-1", Status: domain.StatusDeleted}},
	)
	handler := rt.Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for deleted document, got %d", res.Code)
	}
}

func TestGetSimplifiedReturns409WhileProcessing(t *testing.T) {
	rt := NewRouter(
		config.Config{},
		&ingestorFake{},
		&qaFake{},
		translatorFake{},
		ttsFake{},
		docsFake{doc: &domain.Document{ID: "doc-1", Status: domain.StatusProcessing}},
	)
	handler := rt.Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1/simplified", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", res.Code)
	}
}

func TestGetSummaryAndKeyTerms(t *testing.T) {
	rt := NewRouter(
		config.Config{},
		&ingestorFake{},
		&qaFake{},
		translatorFake{},
		ttsFake{},
		docsFake{doc: &domain.Document{
			ID:      "doc-1",
			Status:  domain.StatusCompleted,
			Summary: "Short summary.",
		}},
	)
	handler := rt.Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1/summary", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var summary struct {
		Summary string `json:"summary"`
	}
	if err := json.NewDecoder(res.Body).Decode(&summary); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if summary.Summary != "Short summary." {
		t.Fatalf("unexpected summary: %q", summary.Summary)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1/key-terms", nil)
	res = httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var terms struct {
		KeyTerms []string `json:"key_terms"`
	}
	if err := json.NewDecoder(res.Body).Decode(&terms); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if terms.KeyTerms == nil {
		t.Fatalf("key_terms must serialize as an array even when empty")
	}
}

func TestAnswerQuestionMapsNotReadyTo409(t *testing.T) {
	rt := NewRouter(
		config.Config{},
		&ingestorFake{},
		&qaFake{answerErr: domain.WrapError(domain.ErrDocumentNotReady, "answer", errors.New("no text"))},
		translatorFake{},
		ttsFake{},
		docsFake{},
	)
	handler := rt.Handler()

	payload, _ := json.Marshal(map[string]string{"document_id": "doc-1", "question": "what about fees?"})
	req := httptest.NewRequest(http.MethodPost, "/v1/qa", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", res.Code)
	}
}

func TestAnswerQuestionRequiresDocumentID(t *testing.T) {
	handler := newTestRouter()

	payload, _ := json.Marshal(map[string]string{"question": "what about fees?"})
	req := httptest.NewRequest(http.MethodPost, "/v1/qa", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestTranslateMapsInvalidInputTo400(t *testing.T) {
	rt := NewRouter(
		config.Config{},
		&ingestorFake{},
		&qaFake{},
		translatorFake{err: domain.WrapError(domain.ErrInvalidInput, "translate", errors.New("empty text"))},
		ttsFake{},
		docsFake{},
	)
	handler := rt.Handler()

	payload, _ := json.Marshal(map[string]string{"text": "", "language": "hi"})
	req := httptest.NewRequest(http.MethodPost, "/v1/translate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestListConversationsReturnsTrail(t *testing.T) {
	handler := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1/conversations", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var resp struct {
		Conversations []domain.Conversation `json:"conversations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Conversations) != 1 {
		t.Fatalf("expected one conversation, got %d", len(resp.Conversations))
	}
}

func TestAgentStatusListsCapabilities(t *testing.T) {
	handler := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/agents/status", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	var resp struct {
		Agents []domain.AgentStatus `json:"agents"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Agents) == 0 {
		t.Fatalf("expected agent list")
	}
}
