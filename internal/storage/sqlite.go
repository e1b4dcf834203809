package storage

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const (
	tableName     = "messages"
	colSeq        = "seq"
	colReceivedAt = "received_at"
	colSender     = "sender"
	colGroup      = "group_id"
	colText       = "text"
)

var createTable = fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  %s INTEGER PRIMARY KEY,
  %s TEXT NOT NULL,
  %s TEXT NOT NULL,
  %s TEXT NOT NULL,
  %s TEXT NOT NULL
);`,
	tableName,
	colSeq,
	colReceivedAt,
	colSender,
	colGroup,
	colText,
)

var insertMessage = fmt.Sprintf(`
INSERT INTO %s (%s, %s, %s, %s, %s)
VALUES (?, ?, ?, ?, ?);`,
	tableName,
	colSeq, colReceivedAt, colSender, colGroup, colText,
)

var selectAll = fmt.Sprintf(`
SELECT %s, %s, %s, %s, %s
FROM %s
ORDER BY %s ASC;`,
	colSeq, colReceivedAt, colSender, colGroup, colText,
	tableName,
	colSeq,
)

// SQLiteRecorder stores one row per message. Each append is a single INSERT,
// which SQLite commits atomically.
type SQLiteRecorder struct {
	db *sql.DB
}

func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure db dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(createTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	log.Printf("[storage/SQLiteRecorder] table ready at %s", path)
	return &SQLiteRecorder{db: db}, nil
}

func (r *SQLiteRecorder) AppendMessage(msg Message) error {
	_, err := r.db.Exec(insertMessage,
		msg.Seq,
		msg.ReceivedAt.Format(time.RFC3339Nano),
		msg.Sender,
		msg.Group,
		msg.Text,
	)
	if err != nil {
		return fmt.Errorf("insert message seq=%d: %w", msg.Seq, err)
	}
	return nil
}

func (r *SQLiteRecorder) LoadMessages() ([]Message, error) {
	rows, err := r.db.Query(selectAll)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			log.Println("[storage/SQLiteRecorder.LoadMessages] failed to close rows:", err)
		}
	}(rows)

	msgs := []Message{}
	for rows.Next() {
		var (
			m  Message
			ts string
		)
		if err := rows.Scan(&m.Seq, &ts, &m.Sender, &m.Group, &m.Text); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		m.ReceivedAt, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse received_at of seq=%d: %w", m.Seq, err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return msgs, nil
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
