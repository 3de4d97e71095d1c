package format

import (
	"strings"
	"testing"

	"taskpad-cli/internal/model"
	"taskpad-cli/internal/todo"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	if err := Write(&b, map[string]int{"a": 1}, "json", false); err != nil {
		t.Fatal(err)
	}
	if got := b.String(); got != "{\"a\":1}\n" {
		t.Fatalf("got %q", got)
	}

	b.Reset()
	if err := Write(&b, map[string]int{"a": 1}, "", true); err != nil {
		t.Fatal(err)
	}
	if got := b.String(); !strings.Contains(got, "\n  \"a\": 1\n") {
		t.Fatalf("pretty output not indented: %q", got)
	}
}

func TestWriteTodoTable(t *testing.T) {
	t.Parallel()

	items := []model.TodoItem{
		{ID: 1, Title: "buy milk", Description: "2 liters", Priority: 2},
		{ID: 2, Title: "ship release", Description: "tag v1", Priority: 5, Complete: true},
	}

	var b strings.Builder
	if err := Write(&b, items, "table", false); err != nil {
		t.Fatal(err)
	}
	out := b.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("want header + 2 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[0], "TITLE") {
		t.Fatalf("bad header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "buy milk") || !strings.Contains(lines[1], "Medium") {
		t.Fatalf("bad row: %q", lines[1])
	}
	if !strings.Contains(lines[2], "x") || !strings.Contains(lines[2], "Critical") {
		t.Fatalf("completed row missing mark or priority: %q", lines[2])
	}
}

func TestWriteStatsTable(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	if err := Write(&b, todo.Stats{Total: 3, Completed: 1, Pending: 2}, "table", false); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"total: 3", "completed: 1", "pending: 2"} {
		if !strings.Contains(b.String(), want) {
			t.Errorf("output %q missing %q", b.String(), want)
		}
	}
}

// Table format falls back to JSON for values without a table rendering.
func TestWriteTableFallback(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	if err := Write(&b, model.UserProfile{Username: "alice"}, "table", false); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "\"username\":\"alice\"") {
		t.Fatalf("got %q", b.String())
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	if err := Write(&b, 1, "yaml", false); err == nil {
		t.Fatal("want error for unknown format")
	}
}
