package faculty

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const (
	qMember  = `SELECT slug, name, department, title, office, email FROM faculty WHERE slug = ?`
	qMembers = `SELECT slug, name, department, title, office, email FROM faculty ORDER BY position`
)

// SQLStore reads the faculty table created by Migrations.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Lookup(ctx context.Context, slug string) (Member, error) {
	var m Member
	if err := s.db.GetContext(ctx, &m, s.db.Rebind(qMember), slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Member{}, ErrNotFound
		}
		return Member{}, fmt.Errorf("faculty: lookup %s: %w", slug, err)
	}
	return m, nil
}

func (s *SQLStore) List(ctx context.Context) ([]Member, error) {
	var out []Member
	if err := s.db.SelectContext(ctx, &out, qMembers); err != nil {
		return nil, fmt.Errorf("faculty: list: %w", err)
	}
	return out, nil
}

// Migrations creates and seeds the faculty table.  Append only.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS faculty (
	slug VARCHAR(64) NOT NULL PRIMARY KEY,
	position INT NOT NULL,
	name VARCHAR(128) NOT NULL,
	department VARCHAR(128) NOT NULL,
	title VARCHAR(128) NOT NULL,
	office VARCHAR(32) NOT NULL,
	email VARCHAR(191) NOT NULL
)`,
		`INSERT INTO faculty (slug, position, name, department, title, office, email) VALUES
	('brother-jack', 1, 'Brother Jack', 'Computer Science', 'Professor', 'STC 310', 'jack@campus.example'),
	('sister-enkey', 2, 'Sister Enkey', 'Computer Science', 'Associate Professor', 'STC 312', 'enkey@campus.example'),
	('brother-keers', 3, 'Brother Keers', 'Computer Science', 'Assistant Professor', 'STC 314', 'keers@campus.example'),
	('sister-anderson', 4, 'Sister Anderson', 'Mathematics', 'Professor', 'MC 220', 'anderson@campus.example'),
	('brother-miller', 5, 'Brother Miller', 'Mathematics', 'Lecturer', 'MC 224', 'miller@campus.example'),
	('brother-thompson', 6, 'Brother Thompson', 'Mathematics', 'Assistant Professor', 'MC 226', 'thompson@campus.example'),
	('brother-davis', 7, 'Brother Davis', 'English', 'Associate Professor', 'GEB 110', 'davis@campus.example')`,
	}
}
