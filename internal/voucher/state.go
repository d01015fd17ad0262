package voucher

import (
	"time"

	"giftguard-backend/internal/model"
)

// Messages shown to the user. The store decides them so every client
// renders the same text.
const (
	MsgRequiredFields = "브랜드와 상품명을 입력해야 합니다."
	MsgRegistered     = "기프티콘이 성공적으로 등록되었습니다!"
	MsgUpdated        = "기프티콘이 성공적으로 수정되었습니다!"
	msgSaveFailed     = "저장 중 오류 발생: "
	msgLoadFailed     = "데이터 로드 실패: "
)

// defaultValidity is how far in the future a fresh form sets the expiry date.
const defaultValidity = 30 * 24 * time.Hour

// FormState is the editing buffer of the register/edit screen.
type FormState struct {
	Brand         string    `json:"brand" validate:"notblank"`
	ProductName   string    `json:"product_name" validate:"notblank"`
	ExpiryDate    time.Time `json:"expiry_date"`
	Price         string    `json:"price"`
	ImageURL      *string   `json:"image_url"`
	BarcodeNumber string    `json:"barcode_number"`
	Memo          string    `json:"memo"`
	Category      string    `json:"category"`

	IsSaving       bool   `json:"is_saving"`
	SaveSuccess    bool   `json:"save_success"`
	SaveError      string `json:"save_error"`
	SuccessMessage string `json:"success_message"`
}

// NewFormState returns an empty registration form.
func NewFormState(now time.Time) FormState {
	return FormState{
		ExpiryDate: now.Add(defaultValidity),
		Category:   model.DefaultCategory,
	}
}

// FormPatch carries the fields of a partial form update; nil fields are left alone.
type FormPatch struct {
	Brand         *string
	ProductName   *string
	ExpiryDate    *time.Time
	Price         *string
	ImageURL      *string
	BarcodeNumber *string
	Memo          *string
	Category      *string
}

func (p FormPatch) apply(f *FormState) {
	if p.Brand != nil {
		f.Brand = *p.Brand
	}
	if p.ProductName != nil {
		f.ProductName = *p.ProductName
	}
	if p.ExpiryDate != nil {
		f.ExpiryDate = *p.ExpiryDate
	}
	if p.Price != nil {
		f.Price = *p.Price
	}
	if p.ImageURL != nil {
		if *p.ImageURL == "" {
			f.ImageURL = nil
		} else {
			url := *p.ImageURL
			f.ImageURL = &url
		}
	}
	if p.BarcodeNumber != nil {
		f.BarcodeNumber = *p.BarcodeNumber
	}
	if p.Memo != nil {
		f.Memo = *p.Memo
	}
	if p.Category != nil {
		f.Category = *p.Category
	}
}

// ListState is the dashboard's view of the voucher collection.
type ListState struct {
	Giftcons     []model.Giftcon `json:"giftcons"`
	IsLoading    bool            `json:"is_loading"`
	ErrorMessage string          `json:"error_message"`
}

// Snapshot is a read-only copy of the store's state.
type Snapshot struct {
	List      ListState `json:"list"`
	Form      FormState `json:"form"`
	EditingID string    `json:"editing_id"`
}

// SaveResult describes a successful save.
type SaveResult struct {
	Giftcon model.Giftcon
	Updated bool
	Message string
}
