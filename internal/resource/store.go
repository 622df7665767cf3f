// Package resource implements the reusable CRUD state container instantiated
// once per admin entity: paginated list view, search filtering, dialog/form
// lifecycle, and mutate-then-refetch semantics. Concrete stores are thin
// configurations of Store via Hooks.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"adminkit.org/internal/ids"
	"adminkit.org/internal/notify"
	"adminkit.org/internal/obs"
	"adminkit.org/internal/paginate"
	"adminkit.org/internal/service"
)

// DialogMode determines form pre-population and submit behavior.
type DialogMode string

const (
	ModeCreate DialogMode = "create"
	ModeEdit   DialogMode = "edit"
	ModeView   DialogMode = "view"
)

// ErrReadOnly is returned by mutations on stores configured without the
// matching hook (fetch-only collections such as plan capabilities).
var ErrReadOnly = errors.New("resource: store does not support this operation")

// Hooks carries the entity-specific behavior a Store needs. Defaults, New
// and Project are required; Validate, Merge and Match may be nil for
// entities that do not use the corresponding operation.
type Hooks[R service.Record, F any] struct {
	// Defaults returns a fresh form buffer.
	Defaults func() F
	// Validate checks required form fields before create.
	Validate func(form F) error
	// Project copies a record's editable subset into a form buffer.
	// The form never aliases the record.
	Project func(rec R) F
	// New builds a record from a validated form. total is the current
	// working-set size, for entities that derive a sort position.
	New func(id string, form F, now time.Time, total int) R
	// Merge lays form fields over an existing record, preserving fields
	// the form does not carry (creation timestamp in particular), and
	// stamps the updated time.
	Merge func(existing R, form F, now time.Time) R
	// Match reports whether a record matches a lower-cased search string.
	Match func(rec R, search string) bool
}

// Store manages one entity type's paginated list, form, and dialog
// lifecycle. All methods are safe for concurrent use; loading flags are
// UI-facing and advisory.
type Store[R service.Record, F any] struct {
	name  string
	svc   service.Resource[R]
	hooks Hooks[R, F]

	sink  notify.Sink
	log   *zap.Logger
	now   func() time.Time
	newID func() string

	mu            sync.Mutex
	all           []R
	page          paginate.Page[R]
	query         paginate.Query
	selected      *R
	form          F
	dialogVisible bool
	mode          DialogMode
	loading       bool
	loadingSubmit bool
	loadingDelete bool
	fetchGen      uint64
}

// Option configures a Store.
type Option[R service.Record, F any] func(*Store[R, F])

// WithClock overrides the time source (useful for tests).
func WithClock[R service.Record, F any](fn func() time.Time) Option[R, F] {
	return func(s *Store[R, F]) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithIDs overrides record identifier generation.
func WithIDs[R service.Record, F any](fn func() string) Option[R, F] {
	return func(s *Store[R, F]) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithNotifier sets the notification sink.
func WithNotifier[R service.Record, F any](sink notify.Sink) Option[R, F] {
	return func(s *Store[R, F]) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger[R service.Record, F any](log *zap.Logger) Option[R, F] {
	return func(s *Store[R, F]) {
		if log != nil {
			s.log = log
		}
	}
}

// WithPerPage sets the initial page size.
func WithPerPage[R service.Record, F any](n int) Option[R, F] {
	return func(s *Store[R, F]) {
		if n > 0 {
			s.query.PerPage = n
		}
	}
}

// New constructs a Store. name labels logs and metrics ("module", "user").
func New[R service.Record, F any](name string, svc service.Resource[R], hooks Hooks[R, F], opts ...Option[R, F]) *Store[R, F] {
	s := &Store[R, F]{
		name:  name,
		svc:   svc,
		hooks: hooks,
		sink:  notify.Discard,
		log:   zap.NewNop(),
		now:   time.Now,
		newID: ids.Record,
		query: paginate.Query{Page: 1, PerPage: 10},
		mode:  ModeCreate,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.form = s.hooks.Defaults()
	return s
}

// Fetch recomputes the paginated view from the backing set: list, filter,
// slice. Always restartable; a different page or search never reuses a
// previous slice. A fetch that completes after a newer fetch started leaves
// the newer state alone.
func (s *Store[R, F]) Fetch(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.fetchGen++
	gen := s.fetchGen
	query := s.query
	s.mu.Unlock()

	start := s.now()
	all, err := s.svc.List(ctx)
	obs.ObserveFetch(s.name, start)
	obs.ObserveAction(s.name, "fetch", err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.fetchGen {
		// A newer fetch owns the view and the loading flag now.
		return nil
	}
	s.loading = false
	if err != nil {
		s.log.Warn("fetch failed", zap.String("store", s.name), zap.Error(err))
		return err
	}
	filtered := paginate.Filter(all, query.Search, s.hooks.Match)
	s.all = filtered
	s.page = paginate.Slice(filtered, query)
	return nil
}

// Create validates the form buffer, builds a new record and submits it.
// Validation failure returns without a service call, leaving the dialog open
// and the form untouched. On success the dialog closes, the form resets, and
// the view is re-fetched.
func (s *Store[R, F]) Create(ctx context.Context) error {
	if s.hooks.New == nil {
		return ErrReadOnly
	}
	s.mu.Lock()
	form := s.form
	total := len(s.all)
	s.mu.Unlock()

	if s.hooks.Validate != nil {
		if err := s.hooks.Validate(form); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.loadingSubmit = true
	s.mu.Unlock()
	defer s.clearFlag(&s.loadingSubmit)

	rec := s.hooks.New(s.newID(), form, s.now().UTC(), total)
	_, err := s.svc.Create(ctx, rec)
	obs.ObserveAction(s.name, "create", err)
	if err != nil {
		s.sink.Notify(fmt.Sprintf("failed to create %s", s.name), notify.Error)
		return err
	}

	s.sink.Notify(fmt.Sprintf("%s created", s.name), notify.Success)
	s.mu.Lock()
	s.dialogVisible = false
	s.resetFormLocked()
	s.mu.Unlock()
	return s.Fetch(ctx)
}

// Update merges the form buffer over the selected record and submits it.
// Without a selected record it is a no-op: state unchanged, no service call.
func (s *Store[R, F]) Update(ctx context.Context) error {
	s.mu.Lock()
	if s.selected == nil {
		s.mu.Unlock()
		return nil
	}
	selected := *s.selected
	form := s.form
	s.mu.Unlock()
	if s.hooks.Merge == nil {
		return ErrReadOnly
	}
	s.mu.Lock()
	s.loadingSubmit = true
	s.mu.Unlock()
	defer s.clearFlag(&s.loadingSubmit)

	merged := s.hooks.Merge(selected, form, s.now().UTC())
	_, err := s.svc.Update(ctx, selected.RecordID(), merged)
	obs.ObserveAction(s.name, "update", err)
	if err != nil {
		s.sink.Notify(fmt.Sprintf("failed to update %s", s.name), notify.Error)
		return err
	}

	s.sink.Notify(fmt.Sprintf("%s updated", s.name), notify.Success)
	s.mu.Lock()
	s.dialogVisible = false
	s.resetFormLocked()
	s.mu.Unlock()
	return s.Fetch(ctx)
}

// Delete removes the record with the given identifier and re-fetches.
// Deleting an absent identifier is a silent no-op.
func (s *Store[R, F]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	s.loadingDelete = true
	s.mu.Unlock()
	defer s.clearFlag(&s.loadingDelete)

	err := s.svc.Delete(ctx, id)
	obs.ObserveAction(s.name, "delete", err)
	if err != nil {
		s.sink.Notify(fmt.Sprintf("failed to delete %s", s.name), notify.Error)
		return err
	}
	s.sink.Notify(fmt.Sprintf("%s deleted", s.name), notify.Success)
	return s.Fetch(ctx)
}

// OpenDialog shows the dialog in the given mode. With a record, the selected
// slot and form buffer are populated from it (field-by-field projection);
// without one, the form resets to defaults.
func (s *Store[R, F]) OpenDialog(mode DialogMode, rec *R) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	if rec != nil {
		cp := *rec
		s.selected = &cp
		s.form = s.hooks.Project(cp)
	} else {
		s.resetFormLocked()
	}
	s.dialogVisible = true
}

// CloseDialog hides the dialog and resets the form buffer.
func (s *Store[R, F]) CloseDialog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialogVisible = false
	s.resetFormLocked()
}

// ResetForm returns the form buffer to entity defaults and clears selected.
func (s *Store[R, F]) ResetForm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetFormLocked()
}

func (s *Store[R, F]) resetFormLocked() {
	s.form = s.hooks.Defaults()
	s.selected = nil
}

// SetSearch updates the search text. Takes effect on the next Fetch.
func (s *Store[R, F]) SetSearch(search string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Search = search
}

// SetPage updates the current page. Takes effect on the next Fetch.
func (s *Store[R, F]) SetPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.Page = page
}

// SetPerPage updates the page size. Takes effect on the next Fetch.
func (s *Store[R, F]) SetPerPage(perPage int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query.PerPage = perPage
}

// SetForm replaces the form buffer. The UI binds edits through this.
func (s *Store[R, F]) SetForm(form F) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = form
}

// Page returns the current paginated view.
func (s *Store[R, F]) Page() paginate.Page[R] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Records returns the filtered working set.
func (s *Store[R, F]) Records() []R {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]R{}, s.all...)
}

// Query returns the current list request state.
func (s *Store[R, F]) Query() paginate.Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Form returns a copy of the form buffer.
func (s *Store[R, F]) Form() F {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

// Selected returns the selected record, if any.
func (s *Store[R, F]) Selected() (R, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		var zero R
		return zero, false
	}
	return *s.selected, true
}

// DialogVisible reports whether the dialog is shown.
func (s *Store[R, F]) DialogVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialogVisible
}

// Mode returns the current dialog mode.
func (s *Store[R, F]) Mode() DialogMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Loading reports whether a list fetch is in flight.
func (s *Store[R, F]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LoadingSubmit reports whether a create/update is in flight.
func (s *Store[R, F]) LoadingSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingSubmit
}

// LoadingDelete reports whether a delete is in flight.
func (s *Store[R, F]) LoadingDelete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingDelete
}

func (s *Store[R, F]) clearFlag(flag *bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*flag = false
}
