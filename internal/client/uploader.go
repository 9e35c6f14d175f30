package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/clauseiq/clauseiq/internal/domain"
)

// FileItem is one file queued for upload.
type FileItem struct {
	Name        string
	ContentType string
	Data        []byte
}

// Progress is one upload progress tick. Percent is monotonically
// non-decreasing within a session and reaches exactly 100 on completion.
// SecondsRemaining is estimated from the cumulative average throughput
// since the session started, so it is noisy early in the transfer.
type Progress struct {
	BytesSent        int64
	BytesTotal       int64
	Percent          int
	SecondsRemaining int
}

// Uploader drives one multipart upload per Submit call, reporting
// progress ticks as the request body is consumed by the transport.
type Uploader struct {
	BaseURL    string
	HTTPClient *http.Client

	// OnProgress, when set, receives a tick for every body read.
	OnProgress func(Progress)

	now func() time.Time
}

// NewUploader creates an uploader for the given server base URL.
func NewUploader(baseURL string) *Uploader {
	return &Uploader{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Minute},
		now:        time.Now,
	}
}

// Submit packages all files into one multipart payload and issues a
// single request. There is no resumability: any failure discards the
// session and the caller must resubmit from the beginning.
func (u *Uploader) Submit(ctx context.Context, files []FileItem) ([]domain.StoredFile, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to upload")
	}

	body, contentType, err := buildMultipart(files)
	if err != nil {
		return nil, err
	}

	total := int64(body.Len())
	reader := &progressReader{
		r:         body,
		total:     total,
		startedAt: u.now(),
		now:       u.now,
		onTick:    u.OnProgress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.BaseURL+"/api/pdf/upload", reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = total

	resp, err := u.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload transport: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error == "" {
			errBody.Error = resp.Status
		}
		return nil, fmt.Errorf("upload failed: %s", errBody.Error)
	}

	var result domain.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}

	return result.Files, nil
}

func buildMultipart(files []FileItem) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for _, f := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="pdfs"; filename="%s"`, escapeQuotes(f.Name)))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		hdr.Set("Content-Type", contentType)

		part, err := w.CreatePart(hdr)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return body, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// progressReader counts bytes as the transport drains the request body
// and reports a progress tick per read.
type progressReader struct {
	r         io.Reader
	total     int64
	sent      int64
	startedAt time.Time
	now       func() time.Time
	onTick    func(Progress)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.onTick != nil {
			p.onTick(computeProgress(p.sent, p.total, p.now().Sub(p.startedAt)))
		}
	}
	return n, err
}

// computeProgress derives a progress tick from cumulative counters.
// Throughput is the cumulative average since the session started, not a
// sliding-window rate.
func computeProgress(sent, total int64, elapsed time.Duration) Progress {
	p := Progress{
		BytesSent:  sent,
		BytesTotal: total,
	}

	if total > 0 {
		p.Percent = int(math.Round(100 * float64(sent) / float64(total)))
	}

	secs := elapsed.Seconds()
	if secs > 0 && sent > 0 {
		throughput := float64(sent) / secs
		remaining := float64(total-sent) / throughput
		p.SecondsRemaining = int(math.Max(0, math.Round(remaining)))
	}

	return p
}
