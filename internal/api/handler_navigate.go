package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"giftguard-backend/internal/navigation"
)

type navigateRequest struct {
	Route string `json:"route" binding:"notblank"`
}

type navigateResponse struct {
	Route     string        `json:"route"`
	Screen    string        `json:"screen"`
	GiftconID string        `json:"giftcon_id,omitempty"`
	Found     *bool         `json:"found,omitempty"`
	Form      *formResponse `json:"form,omitempty"`
	Giftcon   *giftconView  `json:"giftcon,omitempty"`
}

// Navigate resolves a route and runs the effects of entering its screen.
// Entering the add screen clears the previous save status, then loads the
// voucher being edited or resets to registration. An edit route for an
// unknown id lands on registration with found=false.
func (h *Handler) Navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	route, err := navigation.Parse(req.Route)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch route.Screen {
	case navigation.AddGiftcon:
		h.store.ClearTransientStatus()
		if route.IsEdit() {
			found := h.store.BeginEdit(route.GiftconID)
			if !found {
				route = navigation.RegisterRoute()
			}
			form := h.currentForm()
			c.JSON(http.StatusOK, navigateResponse{
				Route: route.Path(), Screen: route.Screen.String(), GiftconID: route.GiftconID,
				Found: &found, Form: &form,
			})
			return
		}
		h.store.ResetForm()
		form := h.currentForm()
		c.JSON(http.StatusOK, navigateResponse{Route: route.Path(), Screen: route.Screen.String(), Form: &form})
	case navigation.Detail:
		g, ok := h.store.Get(route.GiftconID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage(route.GiftconID)})
			return
		}
		v := h.view(g)
		c.JSON(http.StatusOK, navigateResponse{
			Route: route.Path(), Screen: route.Screen.String(), GiftconID: route.GiftconID, Giftcon: &v,
		})
	default:
		c.JSON(http.StatusOK, navigateResponse{Route: route.Path(), Screen: route.Screen.String()})
	}
}

// ListScreens returns the route pattern of every screen.
func (h *Handler) ListScreens(c *gin.Context) {
	screens := []navigation.Screen{
		navigation.Dashboard,
		navigation.AddGiftcon,
		navigation.StoreMap,
		navigation.GeofenceAlert,
		navigation.Detail,
	}
	out := make([]gin.H, 0, len(screens))
	for _, s := range screens {
		out = append(out, gin.H{"screen": s.String(), "pattern": s.Pattern()})
	}
	c.JSON(http.StatusOK, gin.H{"screens": out})
}
