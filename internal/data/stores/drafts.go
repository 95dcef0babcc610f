package stores

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/colonyops/workplan/internal/core/workplan"
)

// ErrDraftNotFound is returned when no draft exists for an ID.
var ErrDraftNotFound = errors.New("draft not found")

// Draft is an in-progress submission that can be resumed.
type Draft struct {
	ID        string               `json:"id"`
	Step      int                  `json:"step"`
	UpdatedAt time.Time            `json:"updated_at"`
	Tree      *workplan.AnswerTree `json:"tree"`
}

// DraftStore keeps one JSON file per draft.
type DraftStore struct {
	dir string
	mu  sync.RWMutex
}

func NewDraftStore(dir string) *DraftStore {
	return &DraftStore{dir: dir}
}

// Save writes d atomically.
func (s *DraftStore) Save(d Draft) error {
	if err := uuid.Validate(d.ID); err != nil {
		return fmt.Errorf("draft id: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := writeAtomic(s.path(d.ID), data); err != nil {
		return &PersistenceError{Op: "save draft", Path: s.path(d.ID), Err: err}
	}
	return nil
}

// Get loads a draft by ID. The tree is normalized before it is returned.
func (s *DraftStore) Get(id string) (Draft, error) {
	if err := uuid.Validate(id); err != nil {
		return Draft{}, fmt.Errorf("%w: %s", ErrDraftNotFound, id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return Draft{}, fmt.Errorf("%w: %s", ErrDraftNotFound, id)
	}
	if err != nil {
		return Draft{}, err
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return Draft{}, fmt.Errorf("decode draft %s: %w", id, err)
	}
	if d.Tree == nil {
		d.Tree = workplan.NewAnswerTree()
	}
	d.Tree.Normalize()
	return d, nil
}

// List returns all drafts, most recently updated first. Unreadable files are
// skipped.
func (s *DraftStore) List() ([]Draft, error) {
	s.mu.RLock()
	entries, err := os.ReadDir(s.dir)
	s.mu.RUnlock()
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var drafts []Draft
	for _, e := range entries {
		id, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok {
			continue
		}
		d, err := s.Get(id)
		if err != nil {
			continue
		}
		drafts = append(drafts, d)
	}

	slices.SortFunc(drafts, func(a, b Draft) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return drafts, nil
}

// Delete removes a draft. Deleting a missing draft is not an error.
func (s *DraftStore) Delete(id string) error {
	if err := uuid.Validate(id); err != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *DraftStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}
