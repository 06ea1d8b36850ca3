package api

import (
	stderrors "errors"
	"io"
	"mime"
	"net/http"

	"classroom-recorder/internal/config"
	"classroom-recorder/internal/excel"
	"classroom-recorder/internal/link"
	"classroom-recorder/internal/logger"
	"classroom-recorder/internal/model"
	"classroom-recorder/internal/recording"
	"classroom-recorder/internal/session"
	"classroom-recorder/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Multipart form fields of recording and schedule uploads.
const (
	formGroup   = "group"
	formMembers = "members"
	formAudio   = "audio"
	formSheet   = "sheet"
)

type Handler struct {
	resolver *session.Resolver
	service  *recording.Service
	cfg      *config.Config
	log      zerolog.Logger
}

func NewHandler(cfg *config.Config, resolver *session.Resolver, service *recording.Service) *Handler {
	return &Handler{
		resolver: resolver,
		service:  service,
		cfg:      cfg,
		log:      logger.Component("api"),
	}
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}

func (h *Handler) ListGroups(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"groups": h.service.Groups()})
}

// ResolveContext returns the header shown on the student page.
func (h *Handler) ResolveContext(c *gin.Context) {
	rc, ok := h.resolveQuery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rc.View())
}

func (h *Handler) CreateLink(c *gin.Context) {
	var req model.LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	rc, err := h.resolver.Resolve(single(req.Year), single(req.Class), single(req.Lesson))
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	target, err := link.BuildURL(h.cfg.Link.BaseURL, rc)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build link")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Link base URL is not configured"})
		return
	}

	c.JSON(http.StatusCreated, model.LinkResponse{URL: target, Context: rc.View()})
}

// CreateLinksFromSheet builds one link per row of an uploaded lesson schedule.
func (h *Handler) CreateLinksFromSheet(c *gin.Context) {
	header, err := c.FormFile(formSheet)
	if err != nil {
		h.abortWithBodyError(c, err)
		return
	}
	file, err := header.Open()
	if err != nil {
		h.abortWithBodyError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.abortWithBodyError(c, err)
		return
	}

	ctx := c.Request.Context()
	strategy := excel.NewExcelStrategy(h.resolver)
	rows, err := strategy.Parse(ctx, data)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contexts, err := strategy.Validate(ctx, rows)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	links := make([]model.LinkResponse, 0, len(contexts))
	for _, rc := range contexts {
		target, err := link.BuildURL(h.cfg.Link.BaseURL, rc)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to build link")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Link base URL is not configured"})
			return
		}
		links = append(links, model.LinkResponse{URL: target, Context: rc.View()})
	}

	c.JSON(http.StatusCreated, gin.H{"links": links})
}

func (h *Handler) LinkQRCode(c *gin.Context) {
	rc, ok := h.resolveQuery(c)
	if !ok {
		return
	}

	target, err := link.BuildURL(h.cfg.Link.BaseURL, rc)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build link")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Link base URL is not configured"})
		return
	}

	png, err := link.QRCode(target, h.cfg.Link.QRSize)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to render QR code")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// FileRecording files one recording synchronously and returns the outcome.
func (h *Handler) FileRecording(c *gin.Context) {
	rc, ok := h.resolveQuery(c)
	if !ok {
		return
	}

	sub, ok := h.readSubmission(c)
	if !ok {
		return
	}

	id, result := h.service.File(c.Request.Context(), rc, sub)
	c.JSON(statusForResult(result), model.RecordingResponse{SubmissionID: id, Result: result})
}

// QueueRecording records the submission and leaves filing to the worker.
func (h *Handler) QueueRecording(c *gin.Context) {
	rc, ok := h.resolveQuery(c)
	if !ok {
		return
	}

	sub, ok := h.readSubmission(c)
	if !ok {
		return
	}

	id, err := h.service.Enqueue(c.Request.Context(), rc, sub)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, model.QueuedResponse{SubmissionID: id, Status: model.SubmissionStatusQueued})
}

func (h *Handler) GetRecording(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) LessonReport(c *gin.Context) {
	rc, ok := h.resolveQuery(c)
	if !ok {
		return
	}

	data, err := h.service.LessonReport(c.Request.Context(), rc)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": excel.ReportFileName(rc)})
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *Handler) resolveQuery(c *gin.Context) (model.RecordingContext, bool) {
	rc, err := h.resolver.FromQuery(c.Request.URL.Query())
	if err != nil {
		h.abortWithError(c, err)
		return model.RecordingContext{}, false
	}
	return rc, true
}

func (h *Handler) readSubmission(c *gin.Context) (model.Submission, bool) {
	sub := model.Submission{
		Group:   c.PostForm(formGroup),
		Members: c.PostForm(formMembers),
	}

	header, err := c.FormFile(formAudio)
	if err != nil {
		if stderrors.Is(err, http.ErrMissingFile) {
			return sub, true
		}
		h.abortWithBodyError(c, err)
		return sub, false
	}

	file, err := header.Open()
	if err != nil {
		h.abortWithBodyError(c, err)
		return sub, false
	}
	defer file.Close()

	sub.Audio, err = io.ReadAll(file)
	if err != nil {
		h.abortWithBodyError(c, err)
		return sub, false
	}
	return sub, true
}

func (h *Handler) abortWithBodyError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Recording is too large"})
		return
	}
	h.log.Warn().Err(err).Msg("Failed to read multipart body")
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart body"})
}

func (h *Handler) abortWithError(c *gin.Context, err error) {
	if errors.Is(err, errors.ErrSubmissionNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}

	kind := errors.KindOf(err)
	status := statusForKind(kind)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("kind", string(kind)).Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "kind": kind})
}

func statusForResult(result model.UploadResult) int {
	if result.OK() {
		return http.StatusCreated
	}
	return statusForKind(result.ErrorKind)
}

func statusForKind(kind errors.Kind) int {
	switch kind {
	case errors.KindMissingField, errors.KindInvalidSubmission:
		return http.StatusBadRequest
	case errors.KindConfigurationMissing:
		return http.StatusServiceUnavailable
	case errors.KindAuthenticationFailed, errors.KindBackendError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func single(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}
