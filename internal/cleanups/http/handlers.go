package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ecosphere-community/eco-backend/internal/cleanups/domain"
	"github.com/ecosphere-community/eco-backend/internal/cleanups/service"
	"github.com/ecosphere-community/eco-backend/internal/platform/apperr"
	"github.com/ecosphere-community/eco-backend/internal/users"
)

const maxReportImageBytes = 8 << 20

// Uploader stores report images and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type Handler struct {
	svc      *service.Service
	uploader Uploader
}

func New(svc *service.Service, uploader Uploader) *Handler {
	return &Handler{svc: svc, uploader: uploader}
}

func (h *Handler) Register(r gin.IRouter) {
	r.POST("/create-cleanup", h.create)
	r.GET("/get-cleanups", h.list)
	r.POST("/join-cleanup/:eventId", h.join)
	r.POST("/submit-report/:eventId", h.submitReport)
	r.DELETE("/delete-cleanup/:eventId", h.delete)
	r.POST("/upload-report-image", h.uploadReportImage)
}

type createReq struct {
	Title     string `json:"title"`
	Location  string `json:"location"`
	Date      string `json:"date"`
	CreatedBy string `json:"createdBy"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	e, err := h.svc.Create(c.Request.Context(), service.CreateInput{
		Title:     req.Title,
		Location:  req.Location,
		Date:      req.Date,
		CreatedBy: req.CreatedBy,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *Handler) list(c *gin.Context) {
	events, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if len(events) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No cleanup events found"})
		return
	}
	c.JSON(http.StatusOK, events)
}

type joinReq struct {
	UserID string `json:"userId"`
}

func (h *Handler) join(c *gin.Context) {
	var req joinReq
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	e, err := h.svc.Join(c.Request.Context(), c.Param("eventId"), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully joined event", "event": e})
}

type reportReq struct {
	UserID           string  `json:"userId"`
	ReportText       string  `json:"reportText"`
	TrashCollectedKg float64 `json:"trashCollectedKg"`
	ImageURL         string  `json:"imageUrl"`
}

func (h *Handler) submitReport(c *gin.Context) {
	var req reportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	e, err := h.svc.SubmitReport(c.Request.Context(), c.Param("eventId"), service.ReportInput{
		UserID:           req.UserID,
		ReportText:       req.ReportText,
		TrashCollectedKg: req.TrashCollectedKg,
		ImageURL:         req.ImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Report submitted successfully", "event": e})
}

type deleteReq struct {
	UserID string `json:"userId"`
}

func (h *Handler) delete(c *gin.Context) {
	var req deleteReq
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User ID is required"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("eventId"), req.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

// uploadReportImage stores a multipart image in S3 and returns the URL
// the client passes back as imageUrl on submit-report.
func (h *Handler) uploadReportImage(c *gin.Context) {
	if h.uploader == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Image storage not configured"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing image"})
		return
	}
	if file.Size > maxReportImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}

	key := fmt.Sprintf("reports/%s%s", uuid.New().String(), path.Ext(file.Filename))
	url, err := h.uploader.Upload(c.Request.Context(), key, data, file.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"imageUrl": url})
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, users.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, domain.ErrAlreadyJoined):
		// Conflict-class, surfaced as 400 like the rest of the API.
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already joined"})
	case errors.Is(err, domain.ErrNotCreator):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized: Only the creator can delete this event"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
