package reports

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	repo *Repo
	log  zerolog.Logger
}

func NewHandler(repo *Repo, log zerolog.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

func (h *Handler) Register(r gin.IRouter) {
	r.POST("/citizen-science-report", h.create)
	r.GET("/citizen-science-reports", h.list)
}

type createReq struct {
	ReportName string   `json:"reportName"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil ||
		req.ReportName == "" || req.Lat == nil || req.Lng == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: reportName, lat, lng"})
		return
	}

	rep, err := h.repo.Create(c.Request.Context(), req.ReportName, *req.Lat, *req.Lng)
	if err != nil {
		h.log.Error().Err(err).Msg("save citizen science report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusCreated, rep)
}

func (h *Handler) list(c *gin.Context) {
	out, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list citizen science reports")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, out)
}
