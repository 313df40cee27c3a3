package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecosphere-community/eco-backend/internal/fundraisers/domain"
	"github.com/ecosphere-community/eco-backend/internal/fundraisers/service"
	"github.com/ecosphere-community/eco-backend/internal/platform/apperr"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(r gin.IRouter) {
	r.POST("/create-fundraiser", h.create)
	r.GET("/get-fundraisers", h.list)
	r.POST("/donate/:fundraiserId", h.donate)
	r.DELETE("/delete-fundraiser/:fundraiserId", h.delete)
	r.GET("/leaderboard", h.leaderboard)
}

type createReq struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Goal          float64 `json:"goal"`
	CreatedBy     string  `json:"createdBy"`
	CreatedByName string  `json:"createdByName"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	f, err := h.svc.Create(c.Request.Context(), service.CreateInput{
		Title:         req.Title,
		Description:   req.Description,
		Goal:          req.Goal,
		CreatedBy:     req.CreatedBy,
		CreatedByName: req.CreatedByName,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *Handler) list(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type donateReq struct {
	UserID    string  `json:"userId"`
	DonorType string  `json:"donorType"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
}

func (h *Handler) donate(c *gin.Context) {
	var req donateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid donation details"})
		return
	}

	f, err := h.svc.Donate(c.Request.Context(), c.Param("fundraiserId"), service.DonateInput{
		UserID:    req.UserID,
		DonorType: req.DonorType,
		Name:      req.Name,
		Amount:    req.Amount,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Donation successful", "fundraiser": f})
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

	if err := h.svc.Delete(c.Request.Context(), c.Param("fundraiserId"), req.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fundraiser deleted successfully"})
}

func (h *Handler) leaderboard(c *gin.Context) {
	lb, err := h.svc.Leaderboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mostDonated": lb.MostDonated, "mostRaised": lb.MostRaised})
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrFundraiserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Fundraiser not found"})
	case errors.Is(err, domain.ErrNotCreator):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized: Only the creator can delete this fundraiser"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
