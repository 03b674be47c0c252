package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// RawScript is one record of GET /load_scripts. Upstream calls scenes
// "main sets", subscenes "sets" and videos "submissions".
type RawScript struct {
	ID           FlexString           `json:"id"`
	Title        FlexString           `json:"title"`
	Description  FlexString           `json:"description"`
	Status       FlexString           `json:"status"`
	Type         FlexString           `json:"type"`
	ImageFileKey FlexString           `json:"image_file_key"`
	PDFFileKey   FlexString           `json:"pdf_file_key"`
	VideoFileKey FlexString           `json:"video_file_key"`
	CreatedAt    FlexString           `json:"created_at"`
	UpdatedAt    FlexString           `json:"updated_at"`
	MainSets     FlexList[RawMainSet] `json:"main_sets"`
}

type RawMainSet struct {
	ID               FlexString       `json:"id"`
	Name             FlexString       `json:"name"`
	ThumbnailFileKey FlexString       `json:"thumbnail_file_key"`
	VideoFileKey     FlexString       `json:"video_file_key"`
	ImageFileKey     FlexString       `json:"image_file_key"`
	PDFFileKey       FlexString       `json:"pdf_file_key"`
	ScriptID         FlexString       `json:"script_id"`
	CreatedAt        FlexString       `json:"created_at"`
	UpdatedAt        FlexString       `json:"updated_at"`
	StartTime        FlexFloat        `json:"start_time"`
	EndTime          FlexFloat        `json:"end_time"`
	Sets             FlexList[RawSet] `json:"sets"`
}

type RawSet struct {
	ID               FlexString              `json:"id"`
	Title            FlexString              `json:"title"`
	ThumbnailFileKey FlexString              `json:"thumbnail_file_key"`
	VideoFileKey     FlexString              `json:"video_file_key"`
	ImageFileKey     FlexString              `json:"image_file_key"`
	PDFFileKey       FlexString              `json:"pdf_file_key"`
	AWSJobID         FlexString              `json:"aws_job_id"`
	AWSJobStatus     FlexString              `json:"aws_job_status"`
	CreatedAt        FlexString              `json:"created_at"`
	UpdatedAt        FlexString              `json:"updated_at"`
	StartTime        FlexFloat               `json:"start_time"`
	EndTime          FlexFloat               `json:"end_time"`
	Submissions      FlexList[RawSubmission] `json:"submissions"`
}

type RawSubmission struct {
	ID               FlexString `json:"id"`
	SetID            FlexString `json:"set_id"`
	Comment          FlexString `json:"comment"`
	ThumbnailFileKey FlexString `json:"thumbnail_file_key"`
	VideoFileKey     FlexString `json:"video_file_key"`
	UserID           FlexString `json:"user_id"`
	AWSJobID         FlexString `json:"aws_job_id"`
	AWSJobStatus     FlexString `json:"aws_job_status"`
	CreatedAt        FlexString `json:"created_at"`
	UpdatedAt        FlexString `json:"updated_at"`
}

// FetchScripts loads the full movie hierarchy.
func (c *HTTPClient) FetchScripts(ctx context.Context) ([]RawScript, error) {
	body, err := c.do(ctx, call{
		op:     "fetch_scripts",
		method: http.MethodGet,
		path:   "/load_scripts",
	})
	if err != nil {
		return nil, err
	}

	scripts, err := DecodeScripts(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("scripts loaded", "count", len(scripts))
	return scripts, nil
}

// DecodeScripts decodes a /load_scripts body. The top level must be a JSON
// array; everything below it is decoded leniently.
func DecodeScripts(body []byte) ([]RawScript, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("%w: scripts payload is not an array", ErrMalformedResponse)
	}

	scripts := make([]RawScript, len(items))
	for i, item := range items {
		_ = json.Unmarshal(item, &scripts[i])
	}
	return scripts, nil
}
