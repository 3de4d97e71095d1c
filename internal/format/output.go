package format

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"taskpad-cli/internal/model"
	"taskpad-cli/internal/todo"
)

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - table (todo lists and stats only; other values fall back to json)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "table":
		return writeTable(w, v, pretty)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
//
// NOTE: Output stays strict JSON only so it remains scriptable; human
// conveniences belong in the table format or the TUI.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

func writeTable(w io.Writer, v any, pretty bool) error {
	switch t := v.(type) {
	case []model.TodoItem:
		return writeTodoTable(w, t)
	case todo.Stats:
		_, err := fmt.Fprintf(w, "total: %d\tcompleted: %d\tpending: %d\n", t.Total, t.Completed, t.Pending)
		return err
	default:
		return WriteJSON(w, v, pretty)
	}
}

func writeTodoTable(w io.Writer, items []model.TodoItem) error {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPRI\tTITLE\tDESCRIPTION")
	for _, item := range items {
		done := " "
		if item.Complete {
			done = "x"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			item.ID, done, todo.PriorityLabel(item.Priority), item.Title, item.Description)
	}
	return tw.Flush()
}
