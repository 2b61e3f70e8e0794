package models

import "time"

type Conversation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Content        string    `json:"content"`
	IsUserMessage  bool      `json:"isUserMessage"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Option is a question template the user picks a structured query from.
type Option struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

type Item struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// StructuredQuery is the (option, locations, items) triple assembled by the
// query builder. Immutable once built.
type StructuredQuery struct {
	OptionID    string   `json:"optionId"`
	LocationIDs []string `json:"locationIds"`
	ItemIDs     []string `json:"itemIds"`
}
