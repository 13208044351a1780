package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`

	// Preference flags
	DarkMode           bool `json:"dark_mode"`
	EmailNotifications bool `json:"email_notifications"`
	TaskReminders      bool `json:"task_reminders"`
}

type Task struct {
	ID          int            `json:"id"`
	UserID      int            `json:"user_id"`
	Title       string         `json:"title"`
	Description sql.NullString `json:"-"`
	IsCompleted bool           `json:"is_completed"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// taskJSON mirrors Task with a plain pointer description so a missing
// description serializes as null instead of the sql.NullString wrapper.
type taskJSON struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	out := taskJSON{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Description.Valid {
		out.Description = &t.Description.String
	}
	return json.Marshal(out)
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var in taskJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	t.ID = in.ID
	t.UserID = in.UserID
	t.Title = in.Title
	t.IsCompleted = in.IsCompleted
	t.CreatedAt = in.CreatedAt
	t.UpdatedAt = in.UpdatedAt
	if in.Description != nil {
		t.Description = sql.NullString{String: *in.Description, Valid: true}
	} else {
		t.Description = sql.NullString{}
	}
	return nil
}
