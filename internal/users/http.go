package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// BalanceReader reads the on-chain token balance for a wallet.
type BalanceReader interface {
	BalanceOf(ctx context.Context, wallet string) (string, error)
}

type Handler struct {
	repo  *Repo
	chain BalanceReader
	log   zerolog.Logger
}

func NewHandler(repo *Repo, chain BalanceReader, log zerolog.Logger) *Handler {
	return &Handler{repo: repo, chain: chain, log: log}
}

func (h *Handler) Register(r gin.IRouter) {
	r.POST("/create-user", h.createUser)
	r.GET("/get-user/:userId", h.getUser)
	r.GET("/get-purchases/:userId", h.getPurchases)
	r.POST("/set-wallet-address", h.setWalletAddress)
	r.GET("/eco-balance/:userId", h.ecoBalance)
}

type createUserReq struct {
	UserID          string `json:"userId"`
	Email           string `json:"email"`
	Name            string `json:"name"`
	ProfileImageURL string `json:"profileImageUrl"`
}

func (h *Handler) createUser(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil ||
		req.UserID == "" || req.Email == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	u, err := h.repo.Upsert(c.Request.Context(), UpsertUser{
		UserID:         req.UserID,
		Email:          req.Email,
		Name:           req.Name,
		ProfilePicture: req.ProfileImageURL,
	})
	if err != nil {
		h.log.Error().Err(err).Str("user_id", req.UserID).Msg("upsert user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) getUser(c *gin.Context) {
	u, err := h.repo.Get(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) getPurchases(c *gin.Context) {
	items, err := h.repo.Purchases(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, items)
}

type setWalletReq struct {
	UserID        string `json:"userId"`
	WalletAddress string `json:"walletAddress"`
}

func (h *Handler) setWalletAddress(c *gin.Context) {
	var req setWalletReq
	if err := c.ShouldBindJSON(&req); err != nil ||
		req.UserID == "" || strings.TrimSpace(req.WalletAddress) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing userId or walletAddress"})
		return
	}

	u, err := h.repo.SetWallet(c.Request.Context(), req.UserID, strings.TrimSpace(req.WalletAddress))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	h.log.Info().Str("user_id", req.UserID).Str("wallet", u.WalletAddress).Msg("wallet address set")
	c.JSON(http.StatusOK, gin.H{"message": "Wallet address updated", "user": u})
}

func (h *Handler) ecoBalance(c *gin.Context) {
	u, err := h.repo.Get(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if u.WalletAddress == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User has no walletAddress set"})
		return
	}
	if h.chain == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Chain client not configured"})
		return
	}

	balance, err := h.chain.BalanceOf(c.Request.Context(), u.WalletAddress)
	if err != nil {
		h.log.Error().Err(err).Str("wallet", u.WalletAddress).Msg("eco-balance")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}
