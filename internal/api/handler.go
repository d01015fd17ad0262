package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"giftguard-backend/internal/model"
	"giftguard-backend/internal/parse"
	"giftguard-backend/internal/voucher"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   *voucher.Store
	db      *gorm.DB
	webpush *webpush.Options
	loc     *time.Location
	now     func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock replaces time.Now for days-left and date rendering.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// NewHandler creates a new API handler. db may be nil, in which case the
// subscription endpoints report 503.
func NewHandler(s *voucher.Store, db *gorm.DB, webpushOptions *webpush.Options, loc *time.Location, opts ...Option) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	h := &Handler{
		store:   s,
		db:      db,
		webpush: webpushOptions,
		loc:     loc,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// giftconView is a voucher as the dashboard and detail screens show it.
type giftconView struct {
	model.Giftcon
	ExpiryText string `json:"expiry_text"`
	DaysLeft   int    `json:"days_left"`
	DDay       string `json:"d_day"`
}

func (h *Handler) view(g model.Giftcon) giftconView {
	days := parse.DaysLeft(g.ExpiryDate, h.now(), h.loc)
	return giftconView{
		Giftcon:    g,
		ExpiryText: parse.FormatDate(g.ExpiryDate, h.loc),
		DaysLeft:   days,
		DDay:       parse.DDay(days),
	}
}

func notFoundMessage(id string) string {
	return fmt.Sprintf("기프티콘 ID '%s'를 찾을 수 없습니다.", id)
}

func badRequest(c *gin.Context, err error) {
	log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("rejecting malformed request")
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}

// respondStoreError maps voucher store errors onto status codes.
func respondStoreError(c *gin.Context, id string, err error) {
	switch {
	case errors.Is(err, voucher.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage(id)})
	case errors.Is(err, voucher.ErrAlreadyUsed):
		c.JSON(http.StatusConflict, gin.H{"error": "이미 사용한 기프티콘입니다."})
	default:
		_ = c.Error(err)
		log.Error().Err(err).Str("giftcon_id", id).Msg("voucher operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
