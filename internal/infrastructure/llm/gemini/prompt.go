package gemini

import (
	"fmt"
	"strings"

	"github.com/legalease/legalease/internal/core/domain"
)

const maxPromptChars = 16000

const simplifySystemPrompt = `You are a legal document simplification expert.
Analyze the given legal document and break it down into simplified clauses.
Each clause should be explained in plain, everyday language that a non-lawyer can understand.

Categorize each clause as: payment, financial, critical, security, or general
Set importance as: low, medium, high, or critical
Assign appropriate colors: blue (payment), amber (financial), red (critical), green (security), gray (general)

Respond with a JSON object: {"clauses": [{"id": number, "title": "string", "simplified": "string", "category": "string", "importance": "string", "color": "string"}]}
No markdown, no extra keys.`

const summarySystemPrompt = `You are a legal document summarizer.
Produce a short plain-language summary (3-5 sentences) of the document for a non-lawyer.
Mention the document type, the parties' main obligations and the most important risks.`

const termsSystemPrompt = `You are a legal terminology extractor.
Identify the key legal terms a non-lawyer should look up before signing.
Respond with a JSON object: {"terms": ["string"]}. At most 10 terms, no extra keys.`

const qaSystemPrompt = `You are a legal document Q&A assistant.
Answer questions about legal documents in simple, clear language.
Use the provided document text and relevant clauses to give accurate, helpful answers.
Always explain legal terms in plain English and provide practical implications.`

func buildSimplifyPrompt(text string) string {
	return "Please simplify this legal document:\n\n" + clip(text)
}

func buildSummaryPrompt(text string) string {
	return "Summarize this legal document:\n\n" + clip(text)
}

func buildTermsPrompt(text string) string {
	return "Extract the key legal terms from this document:\n\n" + clip(text)
}

func buildAnswerPrompt(question, documentText string, clauses []domain.SimplifiedClause) string {
	var contextBuilder strings.Builder
	if len(clauses) > 0 {
		contextBuilder.WriteString("Relevant clauses:\n")
		for _, clause := range clauses {
			contextBuilder.WriteString(clause.Title)
			contextBuilder.WriteString(": ")
			contextBuilder.WriteString(clause.Simplified)
			contextBuilder.WriteString("\n\n")
		}
	}

	return fmt.Sprintf(`%sDocument text:
%s

Question: %s

Please provide a clear, helpful answer in plain language:`, contextBuilder.String(), clip(documentText), question)
}

func buildTranslatePrompt(text string, target domain.LanguageCode) string {
	return fmt.Sprintf(
		"Translate the following text to %s. Maintain the meaning and tone, especially for legal or formal content:\n\n%s",
		target.Name(), text,
	)
}

func clip(text string) string {
	if len(text) > maxPromptChars {
		return text[:maxPromptChars]
	}
	return text
}
