package blueprint

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/blueprint/internal/logging"
	"github.com/aretw0/blueprint/pkg/adapters/memory"
	"github.com/aretw0/blueprint/pkg/catalog"
	"github.com/aretw0/blueprint/pkg/domain"
	"github.com/aretw0/blueprint/pkg/draft"
	"github.com/aretw0/blueprint/pkg/history"
	"github.com/aretw0/blueprint/pkg/layers"
	"github.com/aretw0/blueprint/pkg/ports"
	"github.com/google/uuid"
)

// maxNotices bounds the notice list; the oldest notices are dropped first.
const maxNotices = 50

// Studio is the single write path for an editing session.
// Every document mutation goes through one of its methods, which computes a new
// canvas, commits it to history, autosaves a draft and re-syncs the layer order.
//
// Studio is safe for concurrent use. Mutations are serialized; calls to remote
// collaborators run outside the lock and are discarded if the session moved on
// to another canvas in the meantime.
type Studio struct {
	canvases   ports.CanvasService
	reference  *catalog.Cache
	suggester  ports.LayoutSuggester
	drafts     ports.DraftStore
	gateway    *draft.Gateway
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	clock      func() time.Time
	newID      func() string
	historyOpt []history.Option

	mu         sync.Mutex
	history    *history.Manager
	layers     *layers.Coordinator
	generation uint64
	storeID    string
	pageTypeID string
	baseline   *domain.Canvas
	selected   string
	notices    []domain.Notice
	view       *domain.ViewState
}

// Option defines a functional option for configuring the Studio.
type Option func(*Studio)

// WithCanvasService sets the canonical canvas store.
func WithCanvasService(svc ports.CanvasService) Option {
	return func(s *Studio) {
		s.canvases = svc
	}
}

// WithReferenceData sets the reference catalog. It is wrapped in a session cache.
func WithReferenceData(ref ports.ReferenceData) Option {
	return func(s *Studio) {
		s.reference = catalog.New(ref)
	}
}

// WithLayoutSuggester sets the external layout suggestion service.
func WithLayoutSuggester(sg ports.LayoutSuggester) Option {
	return func(s *Studio) {
		s.suggester = sg
	}
}

// WithDraftStore sets where local drafts are persisted.
func WithDraftStore(store ports.DraftStore) Option {
	return func(s *Studio) {
		s.drafts = store
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Studio) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the studio.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Studio) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Studio) {
		s.clock = clock
	}
}

// WithIDGenerator overrides the generator used for section and notice IDs.
func WithIDGenerator(gen func() string) Option {
	return func(s *Studio) {
		s.newID = gen
	}
}

// WithHistoryLimit caps the number of undo snapshots kept.
func WithHistoryLimit(n int) Option {
	return func(s *Studio) {
		s.historyOpt = append(s.historyOpt, history.WithLimit(n))
	}
}

// WithViewState shares a caller-owned view state with the studio.
func WithViewState(view *domain.ViewState) Option {
	return func(s *Studio) {
		s.view = view
	}
}

// New creates a Studio. Collaborators not provided through options default to
// in-memory implementations, so a bare New() is a fully working offline editor.
func New(opts ...Option) *Studio {
	s := &Studio{}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.canvases == nil {
		s.canvases = memory.NewCanvasService()
	}
	if s.reference == nil {
		s.reference = catalog.New(memory.DefaultCatalog())
	}
	if s.suggester == nil {
		s.suggester = memory.NewSuggester()
	}
	if s.drafts == nil {
		s.drafts = memory.NewStore()
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.view == nil {
		s.view = domain.NewViewState()
	}

	s.gateway = draft.New(s.drafts, draft.WithLogger(s.logger))
	return s
}

// Observe adds lifecycle hooks after construction.
// Adapters use it to subscribe to commits (e.g. to stream diffs).
func (s *Studio) Observe(hooks domain.LifecycleHooks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = s.hooks.Merge(hooks)
}

// Canvas returns a copy of the current canvas.
func (s *Studio) Canvas() (*domain.Canvas, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.history == nil {
		return nil, domain.ErrNoCanvas
	}
	return s.history.Current(), nil
}

// LayerOrder returns the current display order of section IDs.
func (s *Studio) LayerOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.layers == nil {
		return nil
	}
	return s.layers.Order()
}

// HasUnsavedChanges reports whether the current canvas differs from the last
// canonical copy (fetched, saved or published).
func (s *Studio) HasUnsavedChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsavedLocked()
}

func (s *Studio) unsavedLocked() bool {
	if s.history == nil {
		return false
	}
	return !s.history.Peek().Equal(s.baseline)
}

// PendingChanges diffs the canvas under edit against its canonical copy.
// It returns nil when there is no canvas or nothing is unsaved.
func (s *Studio) PendingChanges() *domain.CanvasDiff {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.unsavedLocked() {
		return nil
	}
	return domain.Diff(s.baseline, s.history.Peek())
}

// State returns a summary of the session.
func (s *Studio) State() domain.StudioState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := domain.StudioState{
		Selected: s.selected,
		Unsaved:  s.unsavedLocked(),
		Notices:  slices.Clone(s.notices),
		View:     *s.view,
	}
	if st.Notices == nil {
		st.Notices = []domain.Notice{}
	}
	if s.history != nil {
		st.Canvas = s.history.Current()
		st.LayerOrder = s.layers.Order()
		st.Position = s.history.Position()
		st.Length = s.history.Len()
		st.CanUndo = s.history.CanUndo()
		st.CanRedo = s.history.CanRedo()
	}
	return st
}

// Select marks a section as the active selection. An empty id clears it.
func (s *Studio) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		s.selected = ""
		return nil
	}
	if s.history == nil {
		return domain.ErrNoCanvas
	}
	if s.history.Peek().IndexOf(id) < 0 {
		return domain.ErrSectionNotFound
	}
	s.selected = id
	return nil
}

// Selected returns the selected section ID, or "" when nothing is selected.
func (s *Studio) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Notices returns the pending notices, oldest first.
func (s *Studio) Notices() []domain.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notices)
}

// DismissNotice removes a notice. It reports whether the notice existed.
func (s *Studio) DismissNotice(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.notices, func(n domain.Notice) bool { return n.ID == id })
	if i < 0 {
		return false
	}
	s.notices = slices.Delete(s.notices, i, i+1)
	return true
}

// View returns a copy of the view state.
func (s *Studio) View() domain.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.view
}

// UpdateView mutates the view state under the studio lock.
// View changes never touch history or drafts.
func (s *Studio) UpdateView(fn func(v *domain.ViewState)) domain.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.view)
	return *s.view
}

// notifyLocked records a notice and fires the notice hook.
func (s *Studio) notifyLocked(ctx context.Context, level domain.NoticeLevel, code domain.NoticeCode, msg string) {
	n := domain.Notice{
		ID:        s.newID(),
		Level:     level,
		Code:      code,
		Message:   msg,
		CreatedAt: s.clock().UTC(),
	}
	if s.history != nil {
		n.CanvasID = s.history.Peek().ID
	}
	s.notices = append(s.notices, n)
	if len(s.notices) > maxNotices {
		s.notices = slices.Delete(s.notices, 0, len(s.notices)-maxNotices)
	}
	if s.hooks.OnNotice != nil {
		s.hooks.OnNotice(ctx, &n)
	}
}

// hasNoticeLocked reports whether an undismissed notice with code exists.
func (s *Studio) hasNoticeLocked(code domain.NoticeCode) bool {
	return slices.ContainsFunc(s.notices, func(n domain.Notice) bool { return n.Code == code })
}

var _ ports.Editor = (*Studio)(nil)
