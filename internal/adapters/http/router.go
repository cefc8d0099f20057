package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/legalease/legalease/internal/config"
	"github.com/legalease/legalease/internal/core/domain"
	"github.com/legalease/legalease/internal/core/ports"
	"github.com/legalease/legalease/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	cfg        config.Config
	ingestor   ports.DocumentIngestor
	qa         ports.QuestionAnswerer
	translator ports.Translator
	tts        ports.SpeechSynthesizer
	docs       ports.DocumentReader
	metrics    *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	ingestor ports.DocumentIngestor,
	qa ports.QuestionAnswerer,
	translator ports.Translator,
	tts ports.SpeechSynthesizer,
	docs ports.DocumentReader,
) *Router {
	return &Router{
		cfg:        cfg,
		ingestor:   ingestor,
		qa:         qa,
		translator: translator,
		tts:        tts,
		docs:       docs,
	}
}

func (rt *Router) WithMetrics(m *metrics.HTTPServerMetrics) *Router {
	rt.metrics = m
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("POST /v1/documents", rt.uploadDocument)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	mux.HandleFunc("GET /v1/documents/{id}/simplified", rt.getSimplified)
	mux.HandleFunc("GET /v1/documents/{id}/summary", rt.getSummary)
	mux.HandleFunc("GET /v1/documents/{id}/key-terms", rt.getKeyTerms)
	mux.HandleFunc("GET /v1/documents/{id}/conversations", rt.listConversations)
	mux.HandleFunc("POST /v1/documents/{id}/reprocess", rt.reprocessDocument)
	mux.HandleFunc("DELETE /v1/documents/{id}", rt.deleteDocument)
	mux.HandleFunc("POST /v1/qa", rt.answerQuestion)
	mux.HandleFunc("POST /v1/translate", rt.translate)
	mux.HandleFunc("POST /v1/tts", rt.synthesize)
	mux.HandleFunc("GET /v1/agents/status", rt.agentStatus)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	handler = backpressureMiddleware(handler, rt.cfg.MaxConcurrent, 50*time.Millisecond)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if rt.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes)
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.ingestor.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordUploadSize(serviceName, doc.SizeBytes)
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := rt.loadDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) getSimplified(w http.ResponseWriter, r *http.Request) {
	doc, ok := rt.loadProcessedDocument(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"document_id": doc.ID,
		"summary":     doc.Summary,
		"clauses":     doc.Clauses,
		"key_terms":   doc.KeyTerms,
	})
}

func (rt *Router) getSummary(w http.ResponseWriter, r *http.Request) {
	doc, ok := rt.loadProcessedDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"document_id": doc.ID,
		"summary":     doc.Summary,
	})
}

func (rt *Router) getKeyTerms(w http.ResponseWriter, r *http.Request) {
	doc, ok := rt.loadProcessedDocument(w, r)
	if !ok {
		return
	}
	terms := doc.KeyTerms
	if terms == nil {
		terms = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id": doc.ID,
		"key_terms":   terms,
	})
}

func (rt *Router) listConversations(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	convs, err := rt.qa.History(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"document_id":   id,
		"conversations": convs,
	})
}

func (rt *Router) reprocessDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := rt.ingestor.Reprocess(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"document_id": id,
		"status":      string(domain.StatusUploaded),
	})
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := rt.ingestor.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"document_id": id,
		"status":      string(domain.StatusDeleted),
	})
}

func (rt *Router) answerQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentID string `json:"document_id"`
		Question   string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.DocumentID) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document_id is required"})
		return
	}

	start := time.Now()
	result, err := rt.qa.Answer(r.Context(), req.DocumentID, req.Question)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordQAObservation(serviceName, len(result.RelevantClauseIDs), time.Since(start))
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) translate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	target := domain.LanguageCode(req.Language)
	translated, err := rt.translator.Translate(r.Context(), req.Text, target)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordTranslate(serviceName, string(target))
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"translated_text": translated,
		"language":        string(target),
	})
}

func (rt *Router) synthesize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	lang := domain.LanguageCode(req.Language)
	audio, err := rt.tts.Synthesize(r.Context(), req.Text, lang)
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordTTS(serviceName, string(lang))
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"audio_url": audio,
		"language":  string(lang),
	})
}

func (rt *Router) agentStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agents": []domain.AgentStatus{
			{Name: "document-processor", Status: "active"},
			{Name: "summarizer", Status: "active"},
			{Name: "term-extractor", Status: "active"},
			{Name: "doc-simplifier", Status: "active"},
			{Name: "qa-agent", Status: "active"},
		},
	})
}

func (rt *Router) loadDocument(w http.ResponseWriter, r *http.Request) (*domain.Document, bool) {
	id := r.PathValue("id")
	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if doc.Status == domain.StatusDeleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found: " + id})
		return nil, false
	}
	return doc, true
}

// loadProcessedDocument gates processed views; pollers see 409 until the
// pipeline has finished.
func (rt *Router) loadProcessedDocument(w http.ResponseWriter, r *http.Request) (*domain.Document, bool) {
	doc, ok := rt.loadDocument(w, r)
	if !ok {
		return nil, false
	}
	if doc.Status != domain.StatusCompleted {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":  "document is not processed yet",
			"status": string(doc.Status),
		})
		return nil, false
	}
	return doc, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}
