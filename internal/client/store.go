package client

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/sifan077/Rinku/internal/app/model"
	"go.uber.org/zap"
)

// State is a snapshot of everything the bookmark view renders.
type State struct {
	Links        []model.Bookmark
	Form         Draft
	URLError     string
	IsLoading    bool
	IsSubmitting bool
	IsDeleting   map[int64]bool
}

// Store holds the client-side bookmark list and draft form. The server is
// the source of truth: every mutation is followed by a full list refetch
// rather than a local patch. Failures are logged and otherwise silent.
type Store struct {
	backend Backend
	logger  *zap.Logger

	mu       sync.Mutex
	state    State
	onChange func(State)
}

// NewStore creates a store. onChange, when set, receives a snapshot after
// every state change and may be called from any goroutine.
func NewStore(backend Backend, logger *zap.Logger, onChange func(State)) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		backend:  backend,
		logger:   logger,
		onChange: onChange,
		state: State{
			Links:      []model.Bookmark{},
			IsLoading:  true,
			IsDeleting: map[int64]bool{},
		},
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	st := s.state
	st.Links = slices.Clone(s.state.Links)
	st.IsDeleting = maps.Clone(s.state.IsDeleting)
	return st
}

func (s *Store) update(fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.snapshotLocked()
	cb := s.onChange
	s.mu.Unlock()

	if cb != nil {
		cb(snap)
	}
}

// Load performs the initial list fetch. IsLoading is cleared once the fetch
// settles, whether or not it succeeded.
func (s *Store) Load(ctx context.Context) {
	s.Refresh(ctx)
	s.update(func(st *State) { st.IsLoading = false })
}

// Refresh replaces the in-memory list with the server's. On failure the
// current list is kept.
func (s *Store) Refresh(ctx context.Context) {
	links, err := s.backend.List(ctx)
	if err != nil {
		s.logger.Error("failed to fetch links", zap.Error(err))
		return
	}
	if links == nil {
		links = []model.Bookmark{}
	}
	s.update(func(st *State) { st.Links = links })
}

func (s *Store) SetTitle(v string) {
	s.update(func(st *State) { st.Form.Title = v })
}

// SetURL edits the draft URL and clears any inline URL error.
func (s *Store) SetURL(v string) {
	s.update(func(st *State) {
		st.Form.URL = v
		st.URLError = ""
	})
}

func (s *Store) SetDescription(v string) {
	s.update(func(st *State) { st.Form.Description = v })
}

// SetForm replaces the whole draft, e.g. when editing an existing bookmark.
func (s *Store) SetForm(d Draft) {
	s.update(func(st *State) {
		st.Form = d
		st.URLError = ""
	})
}

// Submit validates the draft URL and creates a bookmark from the draft.
// It returns false without any request when validation fails.
func (s *Store) Submit(ctx context.Context) bool {
	draft, ok := s.beginSubmit()
	if !ok {
		return false
	}

	_, err := s.backend.Create(ctx, draft)
	s.finishSubmit(ctx, err, "failed to create link")
	return true
}

// Update validates the draft URL and overwrites bookmark id with the draft.
// It returns false without any request when validation fails.
func (s *Store) Update(ctx context.Context, id int64) bool {
	draft, ok := s.beginSubmit()
	if !ok {
		return false
	}

	_, err := s.backend.Update(ctx, id, draft)
	s.finishSubmit(ctx, err, "failed to update link")
	return true
}

func (s *Store) beginSubmit() (Draft, bool) {
	var (
		draft Draft
		ok    bool
	)
	s.update(func(st *State) {
		if msg := urlError(st.Form.URL); msg != "" {
			st.URLError = msg
			return
		}
		st.URLError = ""
		st.IsSubmitting = true
		draft = st.Form
		ok = true
	})
	return draft, ok
}

// finishSubmit clears the form only on success. The list is refetched
// either way.
func (s *Store) finishSubmit(ctx context.Context, err error, msg string) {
	if err != nil {
		s.logger.Error(msg, zap.Error(err))
	}
	s.update(func(st *State) {
		st.IsSubmitting = false
		if err == nil {
			st.Form = Draft{}
		}
	})
	s.Refresh(ctx)
}

// Delete removes bookmark id, marking only that row as pending for the
// duration of the round trip. The list is refetched whether or not the
// delete succeeded.
func (s *Store) Delete(ctx context.Context, id int64) {
	s.update(func(st *State) { st.IsDeleting[id] = true })

	if err := s.backend.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete link", zap.Int64("id", id), zap.Error(err))
	}

	s.Refresh(ctx)
	s.update(func(st *State) { delete(st.IsDeleting, id) })
}
