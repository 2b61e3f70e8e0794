package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"querychat/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    conversation_id TEXT NOT NULL,
    content TEXT NOT NULL,
    is_user_message BOOLEAN NOT NULL,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS options (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS locations (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT ''
);`

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// sqlite allows a single writer; one connection also keeps :memory:
	// databases coherent across the pool.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateConversation() (models.Conversation, error) {
	conv := models.Conversation{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO conversations (id, created_at) VALUES (?, ?)`,
		conv.ID, conv.CreatedAt,
	)
	return conv, err
}

func (s *Store) GetConversation(id string) (models.Conversation, error) {
	var conv models.Conversation
	err := s.db.QueryRow(
		`SELECT id, created_at FROM conversations WHERE id = ?`, id,
	).Scan(&conv.ID, &conv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Conversation{}, ErrConversationNotFound
	}
	return conv, err
}

func (s *Store) CreateMessage(conversationID, content string, isUserMessage bool) (models.Message, error) {
	msg := models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Content:        content,
		IsUserMessage:  isUserMessage,
		CreatedAt:      time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO messages (id, conversation_id, content, is_user_message, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.ConversationID, msg.Content, msg.IsUserMessage, msg.CreatedAt,
	)
	return msg, err
}

func (s *Store) MessagesByConversation(conversationID string, limit int) ([]models.Message, error) {
	rows, err := s.db.Query(
		`SELECT id, conversation_id, content, is_user_message, created_at
		 FROM messages
		 WHERE conversation_id = ?
		 ORDER BY created_at ASC
		 LIMIT ?`,
		conversationID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.Content, &msg.IsUserMessage, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// normalizeFilter treats "" and the "all" sentinel as "no filter".
func normalizeFilter(v string) string {
	if v == "all" {
		return ""
	}
	return v
}

func (s *Store) ListOptions(nameFilter string) ([]models.Option, error) {
	query := `SELECT id, name, description FROM options`
	args := []any{}
	if f := normalizeFilter(nameFilter); f != "" {
		query += ` WHERE name = ?`
		args = append(args, f)
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := make([]models.Option, 0)
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.Name, &opt.Description); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}

func (s *Store) ListLocations(typeFilter string) ([]models.Location, error) {
	query := `SELECT id, name, type FROM locations`
	args := []any{}
	if f := normalizeFilter(typeFilter); f != "" {
		query += ` WHERE type = ?`
		args = append(args, f)
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]models.Location, 0)
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Type); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (s *Store) ListItems(categoryFilter string) ([]models.Item, error) {
	query := `SELECT id, name, category FROM items`
	args := []any{}
	if f := normalizeFilter(categoryFilter); f != "" {
		query += ` WHERE category = ?`
		args = append(args, f)
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.Item, 0)
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.Name, &item.Category); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ReplaceCatalog wipes and reloads the three catalog tables in one
// transaction. Used by the seed importer.
func (s *Store) ReplaceCatalog(options []models.Option, locations []models.Location, items []models.Item) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"options", "locations", "items"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return err
		}
	}

	for _, opt := range options {
		if _, err := tx.Exec(
			`INSERT INTO options (id, name, description) VALUES (?, ?, ?)`,
			opt.ID, opt.Name, opt.Description,
		); err != nil {
			return err
		}
	}
	for _, loc := range locations {
		if _, err := tx.Exec(
			`INSERT INTO locations (id, name, type) VALUES (?, ?, ?)`,
			loc.ID, loc.Name, loc.Type,
		); err != nil {
			return err
		}
	}
	for _, item := range items {
		if _, err := tx.Exec(
			`INSERT INTO items (id, name, category) VALUES (?, ?, ?)`,
			item.ID, item.Name, item.Category,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}
