package contact

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/campus/internal/form"
)

// Inbox stores accepted contact messages.
type Inbox interface {
	Save(ctx context.Context, msg form.Contact) error
}

// LogInbox records submissions in the application log only.
type LogInbox struct{}

func (LogInbox) Save(_ context.Context, msg form.Contact) error {
	zap.S().Infow("contact message", "name", msg.Name, "email", msg.Email, "subject", msg.Subject)
	return nil
}

const qInsert = `INSERT INTO contact_messages (id, name, email, subject, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`

// SQLInbox writes to contact_messages, keyed by a random UUID so the
// schema stays portable between MySQL and SQLite.
type SQLInbox struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSQLInbox wraps db.
func NewSQLInbox(db *sqlx.DB) *SQLInbox { return &SQLInbox{db: db, now: time.Now} }

func (s *SQLInbox) Save(ctx context.Context, msg form.Contact) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(qInsert),
		uuid.NewString(), msg.Name, msg.Email, msg.Subject, msg.Message, s.now().UTC())
	return err
}

// Migrations creates the inbox table.
func (s *SQLInbox) Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS contact_messages (
	id CHAR(36) NOT NULL PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	email VARCHAR(191) NOT NULL,
	subject VARCHAR(150) NOT NULL,
	message TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
)`,
	}
}
