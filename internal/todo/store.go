// Package todo keeps the local snapshot of the user's todo list consistent
// with server state. Mutations go strictly through the server: every
// successful create/update/delete/toggle re-fetches the full list instead of
// patching locally, so server-assigned fields (id, owner_id, defaulted
// complete) can never diverge. The cost is one extra round-trip per
// mutation, which is the right trade for a personal todo list.
package todo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"taskpad-cli/internal/api"
	"taskpad-cli/internal/model"
)

// ErrNotFound is a local lookup miss: the id is not in the current snapshot
// (it may have been deleted concurrently).
var ErrNotFound = errors.New("todo not found")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Store owns the snapshot. The mutex only guards snapshot access; concurrent
// mutations against the server are not serialized per item, and last write
// wins (accepted race).
type Store struct {
	client *api.Client

	mu    sync.Mutex
	items []model.TodoItem
}

func NewStore(client *api.Client) *Store {
	return &Store{client: client, items: []model.TodoItem{}}
}

// Items returns a copy of the current snapshot.
func (s *Store) Items() []model.TodoItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.TodoItem, len(s.items))
	copy(out, s.items)
	return out
}

// Find looks an item up by id in the snapshot.
func (s *Store) Find(id int) (model.TodoItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return model.TodoItem{}, false
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StatsOf(s.items)
}

// Load replaces the snapshot with the server's current list. On failure the
// snapshot is left unchanged.
func (s *Store) Load(ctx context.Context) ([]model.TodoItem, error) {
	items, err := s.client.Todos(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return s.Items(), nil
}

// Create sends a draft (no id/owner_id/complete) and reloads. There is no
// optimistic insert: the reload is what brings in the server-assigned id.
func (s *Store) Create(ctx context.Context, draft model.TodoDraft) error {
	if err := validate.Struct(draft); err != nil {
		return fmt.Errorf("invalid todo: %w", err)
	}
	if err := s.client.CreateTodo(ctx, draft); err != nil {
		return err
	}
	_, err := s.Load(ctx)
	return err
}

// Update sends a full update payload (id/owner_id stripped by construction
// of model.TodoUpdate) and reloads.
func (s *Store) Update(ctx context.Context, id int, update model.TodoUpdate) error {
	if err := validate.Struct(update); err != nil {
		return fmt.Errorf("invalid todo: %w", err)
	}
	if err := s.client.UpdateTodo(ctx, id, update); err != nil {
		return err
	}
	_, err := s.Load(ctx)
	return err
}

// Delete removes an item server-side and reloads. Confirmation is a view
// concern; the store only exposes the operation.
func (s *Store) Delete(ctx context.Context, id int) error {
	if err := s.client.DeleteTodo(ctx, id); err != nil {
		return err
	}
	_, err := s.Load(ctx)
	return err
}

// Toggle flips the complete flag via a full update built from the snapshot.
// A missing id yields ErrNotFound without a network call.
func (s *Store) Toggle(ctx context.Context, id int, complete bool) error {
	item, ok := s.Find(id)
	if !ok {
		return ErrNotFound
	}
	update := model.UpdateOf(item)
	update.Complete = complete
	return s.Update(ctx, id, update)
}

// LoadAll fetches every user's todos (admin endpoint). Admin results are not
// cached in the snapshot: the snapshot stays the current user's list.
func (s *Store) LoadAll(ctx context.Context) ([]model.TodoItem, error) {
	return s.client.AdminTodos(ctx)
}

// AdminDelete removes any user's todo by id (admin endpoint).
func (s *Store) AdminDelete(ctx context.Context, id int) error {
	return s.client.AdminDeleteTodo(ctx, id)
}
