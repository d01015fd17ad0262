package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"giftguard-backend/internal/voucher"
)

type listResponse struct {
	Giftcons     []giftconView `json:"giftcons"`
	IsLoading    bool          `json:"is_loading"`
	ErrorMessage string        `json:"error_message"`
}

func (h *Handler) listResponse(list voucher.ListState) listResponse {
	views := make([]giftconView, 0, len(list.Giftcons))
	for _, g := range list.Giftcons {
		views = append(views, h.view(g))
	}
	return listResponse{
		Giftcons:     views,
		IsLoading:    list.IsLoading,
		ErrorMessage: list.ErrorMessage,
	}
}

// ListGiftcons returns the dashboard list, most recently saved first.
func (h *Handler) ListGiftcons(c *gin.Context) {
	c.JSON(http.StatusOK, h.listResponse(h.store.List()))
}

// GetGiftcon returns a single voucher.
func (h *Handler) GetGiftcon(c *gin.Context) {
	id := c.Param("id")
	g, ok := h.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage(id)})
		return
	}
	c.JSON(http.StatusOK, h.view(g))
}

// ReloadGiftcons reloads the list from the repository.
func (h *Handler) ReloadGiftcons(c *gin.Context) {
	if err := h.store.Load(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": h.store.List().ErrorMessage})
		return
	}
	c.JSON(http.StatusOK, h.listResponse(h.store.List()))
}

// MarkGiftconUsed records that the voucher was redeemed.
func (h *Handler) MarkGiftconUsed(c *gin.Context) {
	id := c.Param("id")
	g, err := h.store.MarkUsed(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, id, err)
		return
	}
	c.JSON(http.StatusOK, h.view(g))
}

// DeleteGiftcon removes a voucher.
func (h *Handler) DeleteGiftcon(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		respondStoreError(c, id, err)
		return
	}
	c.Status(http.StatusNoContent)
}
