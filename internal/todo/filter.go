package todo

import "taskpad-cli/internal/model"

type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
	FilterHigh      Filter = "high"
)

// highPriorityMin: priorities 4 and 5 ("Urgent"/"Critical") count as high.
const highPriorityMin = 4

func ParseFilter(s string) (Filter, bool) {
	switch Filter(s) {
	case FilterAll, FilterPending, FilterCompleted, FilterHigh:
		return Filter(s), true
	case "":
		return FilterAll, true
	}
	return FilterAll, false
}

// Filtered is a pure projection over a collection. Order is preserved from
// the source (server-defined); nothing is re-sorted client-side.
func Filtered(items []model.TodoItem, f Filter) []model.TodoItem {
	if f == FilterAll {
		out := make([]model.TodoItem, len(items))
		copy(out, items)
		return out
	}
	out := []model.TodoItem{}
	for _, item := range items {
		switch f {
		case FilterPending:
			if !item.Complete {
				out = append(out, item)
			}
		case FilterCompleted:
			if item.Complete {
				out = append(out, item)
			}
		case FilterHigh:
			if item.Priority >= highPriorityMin {
				out = append(out, item)
			}
		}
	}
	return out
}

type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

func StatsOf(items []model.TodoItem) Stats {
	s := Stats{Total: len(items)}
	for _, item := range items {
		if item.Complete {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}

// PriorityLabel maps the 1..5 scale to a display label.
func PriorityLabel(p int) string {
	switch p {
	case 1:
		return "Low"
	case 2:
		return "Medium"
	case 3:
		return "High"
	case 4:
		return "Urgent"
	case 5:
		return "Critical"
	}
	return "Unknown"
}
