package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"
)

// TranscribeService turns recorded audio into task text via the OpenAI
// Whisper transcription endpoint. DryRun skips the HTTP call and
// returns a canned transcription, which keeps local development free of
// API keys.
type TranscribeService struct {
	apiKey  string
	baseURL string
	dryRun  bool
	client  *http.Client
}

const whisperModel = "whisper-1"

func NewTranscribeService(apiKey string, dryRun bool) *TranscribeService {
	return &TranscribeService{
		apiKey:  apiKey,
		baseURL: "https://api.openai.com/v1",
		dryRun:  dryRun,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (s *TranscribeService) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if s.dryRun || s.apiKey == "" {
		log.Printf("[transcribe][dry-run] file=%q", filename)
		return "Simulated transcription", nil
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("build multipart: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("copy audio: %w", err)
	}
	if err := writer.WriteField("model", whisperModel); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	url := s.baseURL + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	log.Printf("[transcribe][send] file=%q model=%s", filename, whisperModel)
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := resp.Status
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		log.Printf("[transcribe][err] status=%d msg=%q", resp.StatusCode, msg)
		return "", fmt.Errorf("transcription API error: %s", msg)
	}
	return parsed.Text, nil
}
