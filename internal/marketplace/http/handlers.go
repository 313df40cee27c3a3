package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ecosphere-community/eco-backend/internal/marketplace/domain"
	"github.com/ecosphere-community/eco-backend/internal/marketplace/service"
	"github.com/ecosphere-community/eco-backend/internal/platform/apperr"
)

// Images above this size are rejected before touching the database.
const maxImageBytes = 5 << 20

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.ListUnsold(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load marketplace items."})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) get(c *gin.Context) {
	it, err := h.svc.GetItem(c.Request.Context(), c.Param("itemId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (h *Handler) image(c *gin.Context) {
	data, ct, err := h.svc.GetImage(c.Request.Context(), c.Param("itemId"))
	if err != nil {
		if errors.Is(err, domain.ErrNoImage) || errors.Is(err, domain.ErrItemNotFound) {
			c.String(http.StatusNotFound, "No image found for this item.")
			return
		}
		respondError(c, err)
		return
	}
	if ct == "" {
		ct = "image/png"
	}
	c.Data(http.StatusOK, ct, data)
}

// create accepts a multipart form with name, description, price,
// sellerId and an optional image part.
func (h *Handler) create(c *gin.Context) {
	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	in := service.CreateItemInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       price,
		SellerID:    c.PostForm("sellerId"),
	}

	if file, err := c.FormFile("image"); err == nil {
		if file.Size > maxImageBytes {
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
		in.ImageData = data
		in.ImageContentType = file.Header.Get("Content-Type")
	}

	it, err := h.svc.CreateItem(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Item created successfully", "item": it})
}

type purchaseReq struct {
	ItemID  string `json:"itemId"`
	BuyerID string `json:"buyerId"`
}

func (h *Handler) purchase(c *gin.Context) {
	var req purchaseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "itemId and buyerId are required"})
		return
	}

	it, err := h.svc.Purchase(c.Request.Context(), req.ItemID, req.BuyerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Purchase successful", "item": it})
}

type deleteReq struct {
	UserID string `json:"userId"`
}

func (h *Handler) delete(c *gin.Context) {
	var req deleteReq
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing userId in request body"})
		return
	}

	itemID := c.Param("itemId")
	if err := h.svc.DeleteItem(c.Request.Context(), itemID, req.UserID); err != nil {
		if errors.Is(err, domain.ErrAlreadySold) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete: item has already been sold."})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item " + itemID + " deleted successfully."})
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found."})
	case errors.Is(err, domain.ErrBuyerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Buyer not found."})
	case errors.Is(err, domain.ErrAlreadySold):
		// Conflict-class, surfaced as 400 like the rest of the API.
		c.JSON(http.StatusBadRequest, gin.H{"error": "Item is already sold."})
	case errors.Is(err, domain.ErrNotSeller):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: only the seller can delete this item."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
