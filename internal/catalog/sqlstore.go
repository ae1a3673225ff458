// internal/catalog/sqlstore.go
//
// SQLStore reads the catalog from the course / course_section tables
// created by Migrations.  Queries use "?" placeholders rebound for the
// driver in use, so MySQL and SQLite share one code path.

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const (
	qCourse   = `SELECT id, title, description, credits FROM course WHERE id = ?`
	qCourses  = `SELECT id, title, description, credits FROM course ORDER BY position`
	qSections = `SELECT time_label, room, professor FROM course_section WHERE course_id = ? ORDER BY position`
)

// SQLStore is safe for concurrent use.
type SQLStore struct {
	db *sqlx.DB
}

func NewSQLStore(db *sqlx.DB) *SQLStore { return &SQLStore{db: db} }

// Lookup loads one course and its sections.
func (s *SQLStore) Lookup(ctx context.Context, id string) (Course, error) {
	var c Course
	if err := s.db.GetContext(ctx, &c, s.db.Rebind(qCourse), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, ErrNotFound
		}
		return Course{}, fmt.Errorf("catalog: lookup %s: %w", id, err)
	}
	if err := s.sections(ctx, &c); err != nil {
		return Course{}, err
	}
	return c, nil
}

// List loads every course in catalog order.
func (s *SQLStore) List(ctx context.Context) ([]Course, error) {
	var out []Course
	if err := s.db.SelectContext(ctx, &out, qCourses); err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	for i := range out {
		if err := s.sections(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLStore) sections(ctx context.Context, c *Course) error {
	if err := s.db.SelectContext(ctx, &c.Sections, s.db.Rebind(qSections), c.ID); err != nil {
		return fmt.Errorf("catalog: sections %s: %w", c.ID, err)
	}
	return nil
}

// Migrations creates and seeds the catalog tables.  Append only.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS course (
	id VARCHAR(16) NOT NULL PRIMARY KEY,
	position INT NOT NULL,
	title VARCHAR(128) NOT NULL,
	description TEXT NOT NULL,
	credits INT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS course_section (
	course_id VARCHAR(16) NOT NULL,
	position INT NOT NULL,
	time_label VARCHAR(16) NOT NULL,
	room VARCHAR(32) NOT NULL,
	professor VARCHAR(64) NOT NULL,
	PRIMARY KEY (course_id, position)
)`,
		`INSERT INTO course (id, position, title, description, credits) VALUES
	('CS121', 1, 'Introduction to Programming', 'Learn programming fundamentals using JavaScript and basic web development concepts.', 3),
	('MATH110', 2, 'College Algebra', 'Fundamental algebraic concepts including functions, graphing, and problem solving.', 4),
	('ENG101', 3, 'Academic Writing', 'Develop writing skills for academic and professional communication.', 3)`,
		`INSERT INTO course_section (course_id, position, time_label, room, professor) VALUES
	('CS121', 1, '9:00 AM', 'STC 392', 'Brother Jack'),
	('CS121', 2, '2:00 PM', 'STC 394', 'Sister Enkey'),
	('CS121', 3, '11:00 AM', 'STC 390', 'Brother Keers'),
	('MATH110', 1, '8:00 AM', 'MC 301', 'Sister Anderson'),
	('MATH110', 2, '1:00 PM', 'MC 305', 'Brother Miller'),
	('MATH110', 3, '3:00 PM', 'MC 307', 'Brother Thompson'),
	('ENG101', 1, '10:00 AM', 'GEB 201', 'Sister Anderson'),
	('ENG101', 2, '12:00 PM', 'GEB 205', 'Brother Davis'),
	('ENG101', 3, '4:00 PM', 'GEB 203', 'Sister Enkey')`,
	}
}
