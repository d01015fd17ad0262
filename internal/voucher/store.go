// Package voucher holds the authoritative in-memory voucher list, the
// register/edit form buffer and the id of the voucher being edited.
package voucher

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	govalidator "github.com/go-playground/validator/v10"

	"giftguard-backend/internal/model"
	"giftguard-backend/internal/parse"
	"giftguard-backend/internal/repository"
	"giftguard-backend/internal/validator"
)

var (
	// ErrValidation is returned by Save when a required form field is blank.
	ErrValidation = errors.New("invalid giftcon form")

	// ErrNotFound is returned when no voucher in the list has the requested id.
	ErrNotFound = errors.New("giftcon not found")

	// ErrAlreadyUsed is returned when marking a voucher that is already used.
	ErrAlreadyUsed = errors.New("giftcon already used")
)

// Listener receives a snapshot after every state change.
type Listener func(Snapshot)

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the timestamp based id generator.
func WithIDGenerator(gen func(now time.Time) string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithValidator replaces the form validator.
func WithValidator(v *govalidator.Validate) Option {
	return func(s *Store) { s.validate = v }
}

// Store is the single owner of the list state, the form state and the
// editing marker. All methods are safe for concurrent use; writes that
// touch the repository are serialized, so concurrent saves apply in call
// order and the last one wins.
type Store struct {
	repo     repository.Repository
	now      func() time.Time
	newID    func(now time.Time) string
	validate *govalidator.Validate

	writeMu   sync.Mutex
	lastSaved time.Time // guarded by writeMu

	mu        sync.RWMutex
	list      ListState
	form      FormState
	editingID string
	lastIDms  int64

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// New creates a store backed by repo. The list starts empty; call Load.
func New(repo repository.Repository, opts ...Option) *Store {
	s := &Store{
		repo:      repo,
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validate == nil {
		s.validate = validator.New()
	}
	if s.newID == nil {
		s.newID = s.timestampID
	}
	s.form = NewFormState(s.now())
	return s
}

// timestampID returns "g" followed by the unix milliseconds of now, bumped
// past the previous id when two inserts land in the same millisecond.
// Callers hold s.mu.
func (s *Store) timestampID(now time.Time) string {
	ms := now.UnixMilli()
	if ms <= s.lastIDms {
		ms = s.lastIDms + 1
	}
	s.lastIDms = ms
	return "g" + strconv.FormatInt(ms, 10)
}

// nextSavedAt returns now, bumped past the previous save so that saves
// keep their order under a coarse or pinned clock. Callers hold s.writeMu.
func (s *Store) nextSavedAt() time.Time {
	t := s.now()
	if !t.After(s.lastSaved) {
		t = s.lastSaved.Add(time.Microsecond)
	}
	s.lastSaved = t
	return t
}

// Subscribe registers fn for state changes and returns a function that
// removes it. fn runs on the goroutine that made the change, after the
// store's locks are released.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

func (s *Store) notify(snap Snapshot) {
	s.listenersMu.Lock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// snapshotLocked copies the state. Callers hold s.mu.
func (s *Store) snapshotLocked() Snapshot {
	giftcons := make([]model.Giftcon, len(s.list.Giftcons))
	copy(giftcons, s.list.Giftcons)
	list := s.list
	list.Giftcons = giftcons
	return Snapshot{List: list, Form: s.form, EditingID: s.editingID}
}

// mutate applies fn under the state lock and notifies listeners.
func (s *Store) mutate(fn func()) Snapshot {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return snap
}

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// List returns a copy of the list state.
func (s *Store) List() ListState {
	return s.Snapshot().List
}

// Form returns a copy of the form buffer and the id being edited, if any.
func (s *Store) Form() (FormState, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.form, s.editingID
}

// Get looks a voucher up by id.
func (s *Store) Get(id string) (model.Giftcon, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.list.Giftcons, id)
	if i < 0 {
		return model.Giftcon{}, false
	}
	return s.list.Giftcons[i], true
}

func indexOf(giftcons []model.Giftcon, id string) int {
	if id == "" {
		return -1
	}
	for i := range giftcons {
		if giftcons[i].ID == id {
			return i
		}
	}
	return -1
}

// Load fills the list from the repository. An empty repository yields the
// seed vouchers, which are handed to the repository so later loads see them.
// On failure the list is kept and the error message is set.
func (s *Store) Load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mutate(func() {
		s.list.IsLoading = true
		s.list.ErrorMessage = ""
	})

	giftcons, err := s.fetchOrSeed(ctx)
	if err != nil {
		s.mutate(func() {
			s.list.IsLoading = false
			s.list.ErrorMessage = msgLoadFailed + err.Error()
		})
		return errors.Wrap(err, "load giftcons")
	}

	for _, g := range giftcons {
		if g.SavedAt.After(s.lastSaved) {
			s.lastSaved = g.SavedAt
		}
	}
	s.mutate(func() {
		s.list = ListState{Giftcons: giftcons}
	})
	return nil
}

func (s *Store) fetchOrSeed(ctx context.Context) ([]model.Giftcon, error) {
	giftcons, err := s.repo.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(giftcons) > 0 {
		return giftcons, nil
	}

	seeds := SeedGiftcons(s.now())
	// Oldest first, so a repository ordering by save time returns seed order.
	for i := len(seeds) - 1; i >= 0; i-- {
		seeds[i].SavedAt = s.nextSavedAt()
		if err := s.repo.Save(ctx, seeds[i]); err != nil {
			return nil, err
		}
	}
	return seeds, nil
}

// UpdateBrand replaces the brand in the form buffer.
func (s *Store) UpdateBrand(brand string) {
	s.ApplyFormPatch(FormPatch{Brand: &brand})
}

// UpdateProductName replaces the product name in the form buffer.
func (s *Store) UpdateProductName(productName string) {
	s.ApplyFormPatch(FormPatch{ProductName: &productName})
}

// UpdateExpiryDate replaces the expiry date in the form buffer.
func (s *Store) UpdateExpiryDate(date time.Time) {
	s.ApplyFormPatch(FormPatch{ExpiryDate: &date})
}

// UpdatePrice replaces the price text in the form buffer.
func (s *Store) UpdatePrice(price string) {
	s.ApplyFormPatch(FormPatch{Price: &price})
}

// UpdateImageURL replaces the image url; an empty url clears it.
func (s *Store) UpdateImageURL(url string) {
	s.ApplyFormPatch(FormPatch{ImageURL: &url})
}

// UpdateBarcodeNumber replaces the barcode number in the form buffer.
func (s *Store) UpdateBarcodeNumber(number string) {
	s.ApplyFormPatch(FormPatch{BarcodeNumber: &number})
}

// UpdateMemo replaces the memo in the form buffer.
func (s *Store) UpdateMemo(memo string) {
	s.ApplyFormPatch(FormPatch{Memo: &memo})
}

// UpdateCategory replaces the category in the form buffer.
func (s *Store) UpdateCategory(category string) {
	s.ApplyFormPatch(FormPatch{Category: &category})
}

// ApplyFormPatch sets every non-nil field of patch. Nothing is validated here.
func (s *Store) ApplyFormPatch(patch FormPatch) FormState {
	return s.mutate(func() { patch.apply(&s.form) }).Form
}

// ClearTransientStatus drops the save error and success flags.
func (s *Store) ClearTransientStatus() {
	s.mutate(func() {
		s.form.SaveError = ""
		s.form.SaveSuccess = false
		s.form.SuccessMessage = ""
	})
}

// ResetForm restores an empty registration form and forgets the editing id.
func (s *Store) ResetForm() {
	s.mutate(s.resetFormLocked)
}

func (s *Store) resetFormLocked() {
	s.form = NewFormState(s.now())
	s.editingID = ""
}

// BeginEdit copies the voucher with id into the form and remembers id.
// An unknown id silently resets to registration mode and reports false.
func (s *Store) BeginEdit(id string) bool {
	found := false
	s.mutate(func() {
		i := indexOf(s.list.Giftcons, id)
		if i < 0 {
			s.resetFormLocked()
			return
		}
		found = true
		g := s.list.Giftcons[i]
		s.form = FormState{
			Brand:         g.Brand,
			ProductName:   g.ProductName,
			ExpiryDate:    g.ExpiryDate,
			Price:         parse.FormatPrice(g.Price),
			ImageURL:      g.ImageURL,
			BarcodeNumber: g.BarcodeNumber,
			Memo:          g.Memo,
			Category:      g.Category,
		}
		s.editingID = id
	})
	return found
}

// Save registers the form as a new voucher, or replaces the voucher being
// edited. Usage and geofence fields of an edited voucher are kept. The
// saved voucher moves to the front of the list.
func (s *Store) Save(ctx context.Context) (SaveResult, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var (
		record  model.Giftcon
		updated bool
		invalid error
	)
	s.mutate(func() {
		s.form.IsSaving = true
		s.form.SaveError = ""
		s.form.SaveSuccess = false
		s.form.SuccessMessage = ""

		if err := s.validate.Struct(s.form); err != nil {
			s.form.IsSaving = false
			s.form.SaveError = MsgRequiredFields
			invalid = err
			return
		}
		record, updated = s.buildRecordLocked()
	})
	if invalid != nil {
		return SaveResult{}, errors.WithSecondaryError(errors.Wrap(ErrValidation, "validate form"), invalid)
	}

	if err := s.repo.Save(ctx, record); err != nil {
		s.mutate(func() {
			s.form.IsSaving = false
			s.form.SaveError = msgSaveFailed + err.Error()
		})
		return SaveResult{}, errors.Wrap(err, "save giftcon")
	}

	message := MsgRegistered
	if updated {
		message = MsgUpdated
	}
	s.mutate(func() {
		s.list.Giftcons = moveToFront(s.list.Giftcons, record)
		s.list.ErrorMessage = ""
		s.resetFormLocked()
		s.form.SaveSuccess = true
		s.form.SuccessMessage = message
	})
	return SaveResult{Giftcon: record, Updated: updated, Message: message}, nil
}

// buildRecordLocked turns the form into a voucher. It is an update only if
// the editing id still names a voucher in the list. Callers hold s.mu and
// s.writeMu.
func (s *Store) buildRecordLocked() (model.Giftcon, bool) {
	f := s.form
	record := model.Giftcon{
		SavedAt:       s.nextSavedAt(),
		Brand:         f.Brand,
		ProductName:   f.ProductName,
		Category:      f.Category,
		Memo:          f.Memo,
		Price:         parse.Price(f.Price),
		BarcodeNumber: f.BarcodeNumber,
		ExpiryDate:    f.ExpiryDate,
		ImageURL:      f.ImageURL,
	}

	if i := indexOf(s.list.Giftcons, s.editingID); i >= 0 {
		existing := s.list.Giftcons[i]
		record.ID = existing.ID
		record.IsUsed = existing.IsUsed
		record.UsedDate = existing.UsedDate
		record.StoreLatitude = existing.StoreLatitude
		record.StoreLongitude = existing.StoreLongitude
		record.GeofenceRadiusKm = existing.GeofenceRadiusKm
		record.CreatedAt = existing.CreatedAt
		return record, true
	}

	record.ID = s.newID(s.now())
	record.GeofenceRadiusKm = model.DefaultGeofenceRadiusKm
	return record, false
}

// moveToFront returns a new slice with record first and any older copy removed.
func moveToFront(giftcons []model.Giftcon, record model.Giftcon) []model.Giftcon {
	out := make([]model.Giftcon, 0, len(giftcons)+1)
	out = append(out, record)
	for _, g := range giftcons {
		if g.ID != record.ID {
			out = append(out, g)
		}
	}
	return out
}

// MarkUsed records that the voucher was redeemed now. Its list position and
// SavedAt are kept.
func (s *Store) MarkUsed(ctx context.Context, id string) (model.Giftcon, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	g, ok := s.Get(id)
	if !ok {
		return model.Giftcon{}, errors.Wrapf(ErrNotFound, "id %q", id)
	}
	if g.IsUsed {
		return g, errors.Wrapf(ErrAlreadyUsed, "id %q", id)
	}

	usedAt := s.now()
	g.IsUsed = true
	g.UsedDate = &usedAt
	if err := s.repo.Save(ctx, g); err != nil {
		return model.Giftcon{}, errors.Wrap(err, "mark giftcon used")
	}

	s.mutate(func() {
		if i := indexOf(s.list.Giftcons, id); i >= 0 {
			giftcons := make([]model.Giftcon, len(s.list.Giftcons))
			copy(giftcons, s.list.Giftcons)
			giftcons[i] = g
			s.list.Giftcons = giftcons
		}
	})
	return g, nil
}

// Delete removes the voucher from the list and the repository. A voucher
// the repository never stored is still removed from the list.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, ok := s.Get(id); !ok {
		return errors.Wrapf(ErrNotFound, "id %q", id)
	}
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return errors.Wrap(err, "delete giftcon")
	}

	s.mutate(func() {
		giftcons := make([]model.Giftcon, 0, len(s.list.Giftcons))
		for _, g := range s.list.Giftcons {
			if g.ID != id {
				giftcons = append(giftcons, g)
			}
		}
		s.list.Giftcons = giftcons
		if s.editingID == id {
			s.editingID = ""
		}
	})
	return nil
}
