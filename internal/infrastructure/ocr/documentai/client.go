package documentai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/legalease/legalease/internal/infrastructure/extractor"
	"github.com/legalease/legalease/internal/infrastructure/resilience"
)

// Client calls the Document AI REST processor endpoint. It implements the
// extractor's OCR backend for scanned PDFs and DOCX files.
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	executor    *resilience.Executor
}

type Options struct {
	// Endpoint is the full processor URL, e.g.
	// https://us-documentai.googleapis.com/v1/projects/P/locations/us/processors/ID:process
	Endpoint    string
	AccessToken string
	Timeout     time.Duration
}

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint:    opts.Endpoint,
		accessToken: opts.AccessToken,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) WithExecutor(executor *resilience.Executor) *Client {
	c.executor = executor
	return c
}

func (c *Client) Supports(format extractor.Format) bool {
	return format == extractor.FormatPDF || format == extractor.FormatDOCX
}

type processRequest struct {
	RawDocument rawDocument `json:"rawDocument"`
}

type rawDocument struct {
	Content  string `json:"content"`
	MimeType string `json:"mimeType"`
}

type processResponse struct {
	Document struct {
		Text string `json:"text"`
	} `json:"document"`
}

func (c *Client) ProcessDocument(ctx context.Context, raw []byte, contentType string) (string, error) {
	payload := processRequest{
		RawDocument: rawDocument{
			Content:  base64.StdEncoding.EncodeToString(raw),
			MimeType: contentType,
		},
	}

	var out processResponse
	call := func(callCtx context.Context) error {
		return c.post(callCtx, payload, &out)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "documentai.process", call, classifyOCRError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(out.Document.Text)
	if text == "" {
		return "", fmt.Errorf("documentai returned empty text")
	}
	return text, nil
}

func (c *Client) post(ctx context.Context, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal process request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create process request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("documentai request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &statusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode process response: %w", err)
	}
	return nil
}
