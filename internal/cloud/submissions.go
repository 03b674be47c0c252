package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/moviestitch/moviestitch-client/internal/logging"
	"github.com/moviestitch/moviestitch-client/internal/metrics"
)

// DefaultUploadContentType is sent when the presign response carries no
// Content-Type header.
const DefaultUploadContentType = "video/mp4"

// PresignedUpload is a direct-to-storage upload target.
type PresignedUpload struct {
	URL     string
	Headers map[string]string
	Key     string
}

// SubmissionRequest binds an uploaded storage key to a subscene.
type SubmissionRequest struct {
	SetID        string `json:"set_id"`
	Comment      string `json:"comment"`
	VideoFileKey string `json:"video_file_key"`
}

type presignResponse struct {
	URLs struct {
		VideoURL struct {
			URL     FlexString `json:"url"`
			Headers Headers    `json:"headers"`
		} `json:"videoUrl"`
	} `json:"urls"`
	Keys struct {
		VideoKey FlexString `json:"videoKey"`
	} `json:"keys"`
}

// PresignUpload asks the server for an upload target for filename.
func (c *HTTPClient) PresignUpload(ctx context.Context, filename string) (*PresignedUpload, error) {
	body, err := c.do(ctx, call{
		op:     "presign_upload",
		method: http.MethodPost,
		path:   "/user-submissions-presigned-url",
		auth:   true,
		body:   map[string]string{"videoFilename": filename},
	})
	if err != nil {
		return nil, err
	}

	var resp presignResponse
	if err := decodeStrict("presign_upload", body, &resp); err != nil {
		return nil, err
	}

	target := &PresignedUpload{
		URL:     strings.TrimSpace(string(resp.URLs.VideoURL.URL)),
		Headers: resp.URLs.VideoURL.Headers,
		Key:     strings.TrimSpace(string(resp.Keys.VideoKey)),
	}
	if target.URL == "" {
		return nil, ErrInvalidPresignedURL
	}
	if target.Key == "" {
		return nil, ErrInvalidPresignedKey
	}
	return target, nil
}

// PutObject uploads body to a presigned target. The target URL is absolute
// and already authorised, so no bearer token is sent.
func (c *HTTPClient) PutObject(ctx context.Context, target *PresignedUpload, body io.Reader, size int64) error {
	if target == nil || target.URL == "" {
		return ErrInvalidPresignedURL
	}

	ctx, span := c.tracer.Start(ctx, "cloud.put_object")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.URL, body)
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.ContentLength = size

	for k, v := range target.Headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", DefaultUploadContentType)
	}

	requestID := uuid.NewString()
	logger := logging.WithTrace(ctx, logging.WithRequestID(c.logger, requestID))
	logger.Info("uploading to storage", "key", target.Key, "bytes", size)

	start := time.Now()
	resp, err := c.uploadClient.Do(req)
	if err != nil {
		metrics.ObserveGateway("put_object", "network_error", time.Since(start))
		return fmt.Errorf("%w: upload: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ObserveGateway("put_object", "http_error", time.Since(start))
		text := strings.TrimSpace(string(respBody))
		return &StatusError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Upload failed with status %d: %s", resp.StatusCode, text),
			Body:       text,
		}
	}

	metrics.ObserveGateway("put_object", "ok", time.Since(start))
	metrics.UploadBytes.Add(float64(size))
	logger.Info("storage upload succeeded", "key", target.Key, "status", resp.StatusCode)
	return nil
}

// CreateSubmission persists an uploaded clip. The server echoes the record,
// either bare or wrapped in "data" or "submission".
func (c *HTTPClient) CreateSubmission(ctx context.Context, req SubmissionRequest) (*RawSubmission, error) {
	body, err := c.do(ctx, call{
		op:     "create_submission",
		method: http.MethodPost,
		path:   "/user-submissions",
		auth:   true,
		body:   req,
	})
	if err != nil {
		return nil, err
	}

	sub := &RawSubmission{}
	var envelope struct {
		Data       json.RawMessage `json:"data"`
		Submission json.RawMessage `json:"submission"`
	}
	decodeLenient(body, &envelope)

	switch {
	case isObject(envelope.Data):
		decodeLenient(envelope.Data, sub)
	case isObject(envelope.Submission):
		decodeLenient(envelope.Submission, sub)
	default:
		decodeLenient(body, sub)
	}

	// Fill what we sent when the echo leaves it out.
	if sub.SetID == "" {
		sub.SetID = FlexString(req.SetID)
	}
	if sub.Comment == "" {
		sub.Comment = FlexString(req.Comment)
	}
	if sub.VideoFileKey == "" {
		sub.VideoFileKey = FlexString(req.VideoFileKey)
	}
	return sub, nil
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
