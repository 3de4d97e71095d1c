package todo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"taskpad-cli/internal/api"
	"taskpad-cli/internal/model"
)

// fakeTodoServer is an in-memory stand-in for the todo service, enough to
// exercise the reload-after-mutation contract end to end.
type fakeTodoServer struct {
	mu     sync.Mutex
	nextID int
	items  []model.TodoItem

	// lastUpdateBody records the raw PUT payload for field-stripping checks.
	lastUpdateBody map[string]any
}

func newFakeTodoServer(seed ...model.TodoItem) *fakeTodoServer {
	s := &fakeTodoServer{nextID: 1}
	for _, item := range seed {
		if item.ID >= s.nextID {
			s.nextID = item.ID + 1
		}
		s.items = append(s.items, item)
	}
	return s
}

func (s *fakeTodoServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		switch {
		case r.URL.Path == "/todos/" && r.Method == http.MethodGet:
			json.NewEncoder(w).Encode(s.items)

		case r.URL.Path == "/todos/" && r.Method == http.MethodPost:
			var draft model.TodoDraft
			json.NewDecoder(r.Body).Decode(&draft)
			s.items = append(s.items, model.TodoItem{
				ID: s.nextID, OwnerID: 1,
				Title: draft.Title, Description: draft.Description, Priority: draft.Priority,
			})
			s.nextID++
			w.WriteHeader(http.StatusCreated)

		case strings.HasPrefix(r.URL.Path, "/todos/") && r.Method == http.MethodPut:
			id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/todos/"))
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			s.lastUpdateBody = body
			for i := range s.items {
				if s.items[i].ID == id {
					s.items[i].Title = body["title"].(string)
					s.items[i].Description = body["description"].(string)
					s.items[i].Priority = int(body["priority"].(float64))
					s.items[i].Complete, _ = body["complete"].(bool)
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "todo not found"})

		case strings.HasPrefix(r.URL.Path, "/todos/") && r.Method == http.MethodDelete:
			id, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/todos/"))
			for i := range s.items {
				if s.items[i].ID == id {
					s.items = append(s.items[:i], s.items[i+1:]...)
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "todo not found"})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestStore(t *testing.T, srv *fakeTodoServer) *Store {
	t.Helper()
	ts := httptest.NewServer(srv.handler())
	t.Cleanup(ts.Close)
	client := api.New(ts.URL)
	client.SetTokenFunc(func() string { return "test-token" })
	return NewStore(client)
}

func TestLoadReplacesSnapshot(t *testing.T) {
	t.Parallel()

	srv := newFakeTodoServer(model.TodoItem{ID: 1, OwnerID: 1, Title: "A", Priority: 2})
	s := newTestStore(t, srv)

	items, err := s.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Title != "A" {
		t.Fatalf("items = %v", items)
	}
	if got := s.Stats(); got != (Stats{Total: 1, Pending: 1}) {
		t.Fatalf("Stats = %+v, want {Total:1 Completed:0 Pending:1}", got)
	}
}

func TestCreateReloadsWithServerID(t *testing.T) {
	t.Parallel()

	srv := newFakeTodoServer(model.TodoItem{ID: 1, OwnerID: 1, Title: "A", Priority: 2})
	s := newTestStore(t, srv)
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	err := s.Create(context.Background(), model.TodoDraft{Title: "B", Description: "x", Priority: 5})
	if err != nil {
		t.Fatal(err)
	}

	items := s.Items()
	if len(items) != 2 {
		t.Fatalf("snapshot length = %d, want 2", len(items))
	}
	created, ok := s.Find(2)
	if !ok || created.Title != "B" {
		t.Fatalf("created item not in snapshot with server id: %v", items)
	}
}

func TestCreateValidatesDraftLocally(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		draft model.TodoDraft
	}{
		{name: "priority too low", draft: model.TodoDraft{Title: "t", Description: "d", Priority: 0}},
		{name: "priority too high", draft: model.TodoDraft{Title: "t", Description: "d", Priority: 6}},
		{name: "empty title", draft: model.TodoDraft{Description: "d", Priority: 3}},
		{name: "description too long", draft: model.TodoDraft{Title: "t", Description: strings.Repeat("z", 101), Priority: 3}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := newFakeTodoServer()
			s := newTestStore(t, srv)
			if err := s.Create(context.Background(), tt.draft); err == nil {
				t.Fatal("want validation error, got nil")
			}
			if len(srv.items) != 0 {
				t.Fatal("invalid draft reached the server")
			}
		})
	}
}

func TestToggleBuildsStrippedFullUpdate(t *testing.T) {
	t.Parallel()

	srv := newFakeTodoServer(model.TodoItem{ID: 1, OwnerID: 9, Title: "A", Description: "d", Priority: 2})
	s := newTestStore(t, srv)
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := s.Toggle(context.Background(), 1, true); err != nil {
		t.Fatal(err)
	}

	body := srv.lastUpdateBody
	if body == nil {
		t.Fatal("no update request reached the server")
	}
	if got, _ := body["complete"].(bool); !got {
		t.Fatalf("update payload complete = %v, want true", body["complete"])
	}
	for _, k := range []string{"id", "owner_id"} {
		if _, present := body[k]; present {
			t.Fatalf("update payload contains server-assigned field %q", k)
		}
	}

	item, ok := s.Find(1)
	if !ok || !item.Complete {
		t.Fatalf("snapshot not reloaded after toggle: %+v ok=%v", item, ok)
	}
}

func TestToggleMissingIDIsLocalNoop(t *testing.T) {
	t.Parallel()

	srv := newFakeTodoServer()
	s := newTestStore(t, srv)
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	err := s.Toggle(context.Background(), 42, true)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if srv.lastUpdateBody != nil {
		t.Fatal("toggle of a missing id reached the server")
	}
}

func TestDeleteReloads(t *testing.T) {
	t.Parallel()

	srv := newFakeTodoServer(
		model.TodoItem{ID: 1, OwnerID: 1, Title: "A", Priority: 1},
		model.TodoItem{ID: 2, OwnerID: 1, Title: "B", Priority: 2},
	)
	s := newTestStore(t, srv)
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	if len(s.Items()) != 1 {
		t.Fatalf("snapshot = %v, want only id 2", s.Items())
	}
}

func TestFailedMutationLeavesSnapshotUnchanged(t *testing.T) {
	t.Parallel()

	srv := newFakeTodoServer(model.TodoItem{ID: 1, OwnerID: 1, Title: "A", Description: "d", Priority: 1})
	s := newTestStore(t, srv)
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := s.Items()

	err := s.Update(context.Background(), 99, model.TodoUpdate{Title: "x", Description: "y", Priority: 1})
	var reqErr *api.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("err = %v, want *api.RequestError", err)
	}

	after := s.Items()
	if len(after) != len(before) || after[0] != before[0] {
		t.Fatalf("snapshot changed on failed mutation:\nbefore: %v\nafter:  %v", before, after)
	}
}

func TestLoadWithoutTokenRefusedLocally(t *testing.T) {
	t.Parallel()

	requests := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	t.Cleanup(ts.Close)

	client := api.New(ts.URL)
	client.SetTokenFunc(func() string { return "" })
	s := NewStore(client)

	_, err := s.Load(context.Background())
	if !errors.Is(err, api.ErrNoSession) {
		t.Fatalf("err = %v, want api.ErrNoSession", err)
	}
	if requests != 0 {
		t.Fatalf("server saw %d requests, want 0", requests)
	}
}
