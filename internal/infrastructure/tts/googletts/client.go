package googletts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/legalease/legalease/internal/core/domain"
	"github.com/legalease/legalease/internal/infrastructure/resilience"
)

const defaultBaseURL = "https://texttospeech.googleapis.com"

// Client calls the Cloud Text-to-Speech REST endpoint and returns the audio
// as a data URL ready for playback.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) WithExecutor(executor *resilience.Executor) *Client {
	c.executor = executor
	return c
}

type synthesizeRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string  `json:"audioEncoding"`
		SpeakingRate  float64 `json:"speakingRate"`
	} `json:"audioConfig"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

func (c *Client) Synthesize(ctx context.Context, text string, lang domain.LanguageCode) (string, error) {
	var payload synthesizeRequest
	payload.Input.Text = text
	payload.Voice.LanguageCode = lang.Locale()
	payload.Voice.Name = lang.Voice()
	payload.AudioConfig.AudioEncoding = "MP3"
	payload.AudioConfig.SpeakingRate = 0.9

	var out synthesizeResponse
	call := func(callCtx context.Context) error {
		return c.post(callCtx, payload, &out)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "tts.synthesize", call, classifyTTSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", err
	}

	if out.AudioContent == "" {
		return "", fmt.Errorf("tts returned empty audio")
	}
	return "data:audio/mp3;base64," + out.AudioContent, nil
}

func (c *Client) post(ctx context.Context, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal synthesize request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/text:synthesize", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create synthesize request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-goog-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tts request: %w", err)
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
		return fmt.Errorf("decode synthesize response: %w", err)
	}
	return nil
}
