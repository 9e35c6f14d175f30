package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clauseiq/clauseiq/internal/domain"
	"github.com/clauseiq/clauseiq/internal/response"
	"github.com/clauseiq/clauseiq/internal/service"
)

// UploadLimits bounds a single upload request.
type UploadLimits struct {
	MaxFileSize  int64 `mapstructure:"max_file_size"`
	MaxTotalSize int64 `mapstructure:"max_total_size"`
}

// HTTPHandler serves the REST surface: chat log and file uploads.
type HTTPHandler struct {
	chat   service.ChatService
	files  service.FileService
	limits UploadLimits
}

// NewHTTPHandler creates the HTTP handler.
func NewHTTPHandler(chat service.ChatService, files service.FileService, limits UploadLimits) *HTTPHandler {
	return &HTTPHandler{
		chat:   chat,
		files:  files,
		limits: limits,
	}
}

// RegisterRoutes mounts the REST endpoints.
func (h *HTTPHandler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/chat", h.GetMessages)
		api.POST("/chat", h.PostMessage)
		api.GET("/pdf", h.GetPDFs)
		api.POST("/pdf/upload", h.UploadPDFs)
	}

	r.GET("/health", h.HealthCheck)
}

// GetMessages returns the full chat log, oldest first.
func (h *HTTPHandler) GetMessages(c *gin.Context) {
	messages, err := h.chat.History(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to get messages")
		return
	}
	c.JSON(http.StatusOK, messages)
}

// PostMessage persists a message submitted over HTTP.
func (h *HTTPHandler) PostMessage(c *gin.Context) {
	var req domain.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "content is required")
		return
	}

	msg, err := h.chat.Post(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyContent) || errors.Is(err, service.ErrInvalidSender) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, "failed to create message")
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// GetPDFs returns stored PDF metadata, newest first.
func (h *HTTPHandler) GetPDFs(c *gin.Context) {
	files, err := h.files.ListPDFs(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to list files")
		return
	}
	c.JSON(http.StatusOK, files)
}

// UploadPDFs handles one multipart request carrying one or more files
// under the "pdfs" field ("pdf" is accepted for single-file uploads).
func (h *HTTPHandler) UploadPDFs(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "invalid multipart form")
		return
	}

	headers := form.File["pdfs"]
	if len(headers) == 0 {
		headers = form.File["pdf"]
	}
	if len(headers) == 0 {
		response.BadRequest(c, "no files uploaded")
		return
	}

	var total int64
	for _, fh := range headers {
		if h.limits.MaxFileSize > 0 && fh.Size > h.limits.MaxFileSize {
			response.BadRequest(c, "file too large: "+fh.Filename)
			return
		}
		total += fh.Size
	}
	if h.limits.MaxTotalSize > 0 && total > h.limits.MaxTotalSize {
		response.BadRequest(c, "upload too large")
		return
	}

	uploads, closers, err := openAll(headers)
	defer closeAll(closers)
	if err != nil {
		response.BadRequest(c, "failed to read uploaded file")
		return
	}

	stored, err := h.files.Upload(c.Request.Context(), uploads)
	if err != nil {
		if errors.Is(err, service.ErrMissingFileName) || errors.Is(err, service.ErrNoFiles) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, "upload failed")
		return
	}

	c.JSON(http.StatusOK, domain.UploadResponse{
		Message: "PDFs uploaded successfully",
		Files:   stored,
	})
}

// HealthCheck reports liveness.
func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func openAll(headers []*multipart.FileHeader) ([]service.UploadFile, []multipart.File, error) {
	uploads := make([]service.UploadFile, 0, len(headers))
	closers := make([]multipart.File, 0, len(headers))

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closers, err
		}
		closers = append(closers, f)
		uploads = append(uploads, service.UploadFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Reader:      f,
		})
	}

	return uploads, closers, nil
}

func closeAll(files []multipart.File) {
	for _, f := range files {
		f.Close()
	}
}
