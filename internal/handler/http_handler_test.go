package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clauseiq/clauseiq/internal/domain"
	"github.com/clauseiq/clauseiq/internal/service"
)

type fakeChatService struct {
	messages []domain.Message
	postErr  error
	listErr  error
}

func (f *fakeChatService) Relay(ctx context.Context, ev *domain.SendMessageEvent) (*domain.Message, error) {
	panic("not used over HTTP")
}

func (f *fakeChatService) Post(ctx context.Context, req *domain.CreateMessageRequest) (*domain.Message, error) {
	if f.postErr != nil {
		return nil, f.postErr
	}
	sender := req.Sender
	if sender == "" {
		sender = domain.SenderUser
	}
	msg := domain.Message{ID: "m1", Content: req.Content, Sender: sender, CreatedAt: time.Now()}
	f.messages = append(f.messages, msg)
	return &msg, nil
}

func (f *fakeChatService) History(ctx context.Context) ([]domain.Message, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.messages, nil
}

type fakeFileService struct {
	received  []service.UploadFile
	bodies    []string
	stored    []domain.StoredFile
	uploadErr error
	listErr   error
}

func (f *fakeFileService) Upload(ctx context.Context, files []service.UploadFile) ([]domain.StoredFile, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	out := make([]domain.StoredFile, 0, len(files))
	for _, file := range files {
		data, err := io.ReadAll(file.Reader)
		if err != nil {
			return nil, err
		}
		f.received = append(f.received, file)
		f.bodies = append(f.bodies, string(data))
		out = append(out, domain.StoredFile{
			Name: file.Name,
			Type: file.ContentType,
			Size: file.Size,
			URL:  "https://objects.example.com/pdfs/1-" + file.Name,
		})
	}
	f.stored = append(f.stored, out...)
	return out, nil
}

func (f *fakeFileService) ListPDFs(ctx context.Context) ([]domain.StoredFile, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.stored, nil
}

func newTestRouter(chat service.ChatService, files service.FileService, limits UploadLimits) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHTTPHandler(chat, files, limits).RegisterRoutes(r)
	return r
}

func multipartBody(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for name, content := range files {
		part, err := w.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestPostMessageCreated(t *testing.T) {
	chat := &fakeChatService{}
	r := newTestRouter(chat, &fakeFileService{}, UploadLimits{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"content":"hello","sender":"user"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var msg domain.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.Equal(t, "hello", msg.Content)
	assert.NotEmpty(t, msg.ID)
}

func TestPostMessageRejectsInvalidBody(t *testing.T) {
	r := newTestRouter(&fakeChatService{}, &fakeFileService{}, UploadLimits{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestPostMessageMapsValidationErrors(t *testing.T) {
	chat := &fakeChatService{postErr: service.ErrEmptyContent}
	r := newTestRouter(chat, &fakeFileService{}, UploadLimits{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"content":"   "}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMessagesHistory(t *testing.T) {
	chat := &fakeChatService{messages: []domain.Message{
		{ID: "m1", Content: "first", Sender: domain.SenderUser},
		{ID: "m2", Content: "second", Sender: domain.SenderBot},
	}}
	r := newTestRouter(chat, &fakeFileService{}, UploadLimits{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chat", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var got []domain.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Content)
}

func TestGetMessagesFailure(t *testing.T) {
	chat := &fakeChatService{listErr: errors.New("db down")}
	r := newTestRouter(chat, &fakeFileService{}, UploadLimits{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/chat", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUploadPDFsMultipleFiles(t *testing.T) {
	files := &fakeFileService{}
	r := newTestRouter(&fakeChatService{}, files, UploadLimits{})

	body, contentType := multipartBody(t, "pdfs", map[string]string{
		"a.pdf": "alpha",
		"b.pdf": "bravo",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/pdf/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp domain.UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "PDFs uploaded successfully", resp.Message)
	assert.Len(t, resp.Files, 2)

	require.Len(t, files.received, 2)
	assert.ElementsMatch(t, []string{"alpha", "bravo"}, files.bodies)
}

func TestUploadPDFsAcceptsLegacyFieldName(t *testing.T) {
	files := &fakeFileService{}
	r := newTestRouter(&fakeChatService{}, files, UploadLimits{})

	body, contentType := multipartBody(t, "pdf", map[string]string{"only.pdf": "solo"})
	req := httptest.NewRequest(http.MethodPost, "/api/pdf/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, files.received, 1)
	assert.Equal(t, "only.pdf", files.received[0].Name)
}

func TestUploadPDFsRejectsEmptyForm(t *testing.T) {
	r := newTestRouter(&fakeChatService{}, &fakeFileService{}, UploadLimits{})

	body, contentType := multipartBody(t, "unrelated", map[string]string{"x.pdf": "data"})
	req := httptest.NewRequest(http.MethodPost, "/api/pdf/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadPDFsEnforcesPerFileLimit(t *testing.T) {
	files := &fakeFileService{}
	r := newTestRouter(&fakeChatService{}, files, UploadLimits{MaxFileSize: 4})

	body, contentType := multipartBody(t, "pdfs", map[string]string{"big.pdf": "way past the limit"})
	req := httptest.NewRequest(http.MethodPost, "/api/pdf/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, files.received)
}

func TestUploadPDFsServiceFailure(t *testing.T) {
	files := &fakeFileService{uploadErr: errors.New("bucket unavailable")}
	r := newTestRouter(&fakeChatService{}, files, UploadLimits{})

	body, contentType := multipartBody(t, "pdfs", map[string]string{"a.pdf": "alpha"})
	req := httptest.NewRequest(http.MethodPost, "/api/pdf/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetPDFsNewestFirstPassthrough(t *testing.T) {
	files := &fakeFileService{stored: []domain.StoredFile{
		{Name: "new.pdf", Type: "application/pdf"},
		{Name: "old.pdf", Type: "application/pdf"},
	}}
	r := newTestRouter(&fakeChatService{}, files, UploadLimits{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pdf", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var got []domain.StoredFile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "new.pdf", got[0].Name)
}

func TestHealthCheck(t *testing.T) {
	r := newTestRouter(&fakeChatService{}, &fakeFileService{}, UploadLimits{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
