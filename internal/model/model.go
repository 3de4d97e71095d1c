package model

import "encoding/json"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserProfile is the client-side view of the authenticated user.
//
// Only Username is known right after login; the rest is merged in from the
// profile endpoint (see api.Client.UserInfo) and may stay empty when that
// fetch fails. Persisted as JSON under the "user" key in the credential store.
type UserProfile struct {
	ID          int    `json:"id,omitempty"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Role        Role   `json:"role,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Active      bool   `json:"is_active,omitempty"`
}

func (p UserProfile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Merge overlays non-zero fields of other onto p. Username is kept from p
// when other omits it, so a partial profile never erases the login identity.
func (p UserProfile) Merge(other UserProfile) UserProfile {
	out := p
	if other.ID != 0 {
		out.ID = other.ID
	}
	if other.Username != "" {
		out.Username = other.Username
	}
	if other.Email != "" {
		out.Email = other.Email
	}
	if other.FirstName != "" {
		out.FirstName = other.FirstName
	}
	if other.LastName != "" {
		out.LastName = other.LastName
	}
	if other.Role != "" {
		out.Role = other.Role
	}
	if other.PhoneNumber != "" {
		out.PhoneNumber = other.PhoneNumber
	}
	if other.Active {
		out.Active = true
	}
	return out
}

func (p UserProfile) EncodeJSON() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func DecodeProfileJSON(s string) (UserProfile, error) {
	var p UserProfile
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return UserProfile{}, err
	}
	return p, nil
}

// RegisterDraft is the user-creation payload for /auth/new-user.
//
// Validation tags mirror what the server enforces so obviously bad input
// fails locally before a network round-trip.
type RegisterDraft struct {
	Username    string `json:"username" validate:"required,min=1"`
	Email       string `json:"email" validate:"required,email"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	Password    string `json:"password" validate:"required,min=1"`
	Role        Role   `json:"role" validate:"required,oneof=user admin"`
	Active      bool   `json:"is_active"`
}

// TodoItem is the server's todo record. ID and OwnerID are server-assigned
// and must never be sent back on create or update.
type TodoItem struct {
	ID          int    `json:"id"`
	OwnerID     int    `json:"owner_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Complete    bool   `json:"complete"`
}

// TodoDraft is the creation payload: no id, no owner_id, no complete flag
// (the server defaults complete to false).
type TodoDraft struct {
	Title       string `json:"title" validate:"required,min=1"`
	Description string `json:"description" validate:"required,min=1,max=100"`
	Priority    int    `json:"priority" validate:"required,gte=1,lte=5"`
}

// TodoUpdate is the full update payload for PUT /todos/{id}. It carries the
// complete flag but still strips the server-assigned identifiers.
type TodoUpdate struct {
	Title       string `json:"title" validate:"required,min=1"`
	Description string `json:"description" validate:"required,min=1,max=100"`
	Priority    int    `json:"priority" validate:"required,gte=1,lte=5"`
	Complete    bool   `json:"complete"`
}

// UpdateOf builds the update payload reproducing an item as-is.
func UpdateOf(item TodoItem) TodoUpdate {
	return TodoUpdate{
		Title:       item.Title,
		Description: item.Description,
		Priority:    item.Priority,
		Complete:    item.Complete,
	}
}
