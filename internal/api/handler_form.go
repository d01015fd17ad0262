package api

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"giftguard-backend/internal/parse"
	"giftguard-backend/internal/voucher"
)

const (
	modeRegister = "register"
	modeEdit     = "edit"
)

type formResponse struct {
	Form       voucher.FormState `json:"form"`
	ExpiryText string            `json:"expiry_text"`
	EditingID  *string           `json:"editing_id"`
	Mode       string            `json:"mode"`
}

func (h *Handler) formResponse(form voucher.FormState, editingID string) formResponse {
	resp := formResponse{
		Form:       form,
		ExpiryText: parse.FormatDate(form.ExpiryDate, h.loc),
		Mode:       modeRegister,
	}
	if editingID != "" {
		resp.EditingID = &editingID
		resp.Mode = modeEdit
	}
	return resp
}

func (h *Handler) currentForm() formResponse {
	return h.formResponse(h.store.Form())
}

// formPatchRequest is a partial form update. Absent fields are left alone;
// an empty image_url clears the image.
type formPatchRequest struct {
	Brand         *string `json:"brand"`
	ProductName   *string `json:"product_name"`
	ExpiryDate    *string `json:"expiry_date"`
	Price         *string `json:"price"`
	ImageURL      *string `json:"image_url"`
	BarcodeNumber *string `json:"barcode_number"`
	Memo          *string `json:"memo"`
	Category      *string `json:"category"`
}

func (r formPatchRequest) toPatch(h *Handler) (voucher.FormPatch, error) {
	patch := voucher.FormPatch{
		Brand:         r.Brand,
		ProductName:   r.ProductName,
		Price:         r.Price,
		ImageURL:      r.ImageURL,
		BarcodeNumber: r.BarcodeNumber,
		Memo:          r.Memo,
		Category:      r.Category,
	}
	if r.ExpiryDate != nil {
		date, err := parse.Date(*r.ExpiryDate, h.loc)
		if err != nil {
			return voucher.FormPatch{}, err
		}
		patch.ExpiryDate = &date
	}
	return patch, nil
}

// GetForm returns the register/edit form buffer.
func (h *Handler) GetForm(c *gin.Context) {
	c.JSON(http.StatusOK, h.currentForm())
}

// PatchForm updates individual form fields.
func (h *Handler) PatchForm(c *gin.Context) {
	var req formPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	patch, err := req.toPatch(h)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.store.ApplyFormPatch(patch)
	c.JSON(http.StatusOK, h.currentForm())
}

// BeginEdit loads a voucher into the form. An unknown id leaves the form in
// registration mode and reports found=false.
func (h *Handler) BeginEdit(c *gin.Context) {
	found := h.store.BeginEdit(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"found": found, "form": h.currentForm()})
}

// SaveForm registers or updates the voucher described by the form.
func (h *Handler) SaveForm(c *gin.Context) {
	result, err := h.store.Save(c.Request.Context())
	if err != nil {
		form, editingID := h.store.Form()
		status := http.StatusInternalServerError
		if errors.Is(err, voucher.ErrValidation) {
			status = http.StatusUnprocessableEntity
		} else {
			_ = c.Error(err)
		}
		c.JSON(status, gin.H{"error": form.SaveError, "form": h.formResponse(form, editingID)})
		return
	}

	status := http.StatusCreated
	if result.Updated {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"giftcon": h.view(result.Giftcon),
		"updated": result.Updated,
		"message": result.Message,
	})
}

// ClearFormStatus drops the save error and success flags.
func (h *Handler) ClearFormStatus(c *gin.Context) {
	h.store.ClearTransientStatus()
	c.Status(http.StatusNoContent)
}

// ResetForm returns the form to an empty registration.
func (h *Handler) ResetForm(c *gin.Context) {
	h.store.ResetForm()
	c.JSON(http.StatusOK, h.currentForm())
}
