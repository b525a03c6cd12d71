package habitica

import "time"

// Task is the slice of the API's task representation this system reads.
// Wire timestamps are RFC 3339 UTC with fractional seconds.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"text"`
	Notes       string     `json:"notes"`
	Completed   bool       `json:"completed"`
	Created     time.Time  `json:"dateCreated"`
	CompletedAt *time.Time `json:"dateCompleted"`
}

// Tag is a user-level task tag.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewTodo describes a todo to create. Checklist items are submitted
// unchecked; Tags holds tag IDs.
type NewTodo struct {
	Title     string
	Notes     string
	Checklist []string
	Tags      []string
}

type checkItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// createTodoRequest mirrors the POST user/tasks body. Tags are a presence
// map keyed by tag ID, per the API's (unusual) tagging scheme.
type createTodoRequest struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	Notes     string          `json:"notes,omitempty"`
	Checklist []checkItem     `json:"checklist,omitempty"`
	Tags      map[string]bool `json:"tags,omitempty"`
}

type userResponse struct {
	Tags []Tag `json:"tags"`
}
