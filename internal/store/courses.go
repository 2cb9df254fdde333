package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const courseColumns = "id, readable_id, title, description, url, image_url, content_downloaded, content_downloaded_at"

func scanCourse(scanner interface{ Scan(dest ...any) error }) (*Course, error) {
	var (
		c            Course
		downloadedAt sql.NullString
	)
	if err := scanner.Scan(&c.ID, &c.ReadableID, &c.Title, &c.Description, &c.URL, &c.ImageURL, &c.ContentDownloaded, &downloadedAt); err != nil {
		return nil, err
	}
	c.ContentDownloadedAt = timePtr(downloadedAt)
	return &c, nil
}

// FindCoursesBySlug returns courses whose URL contains slug, compared
// case-insensitively, ordered by id.
func (s *Store) FindCoursesBySlug(ctx context.Context, slug string) ([]Course, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, errors.New("find courses: slug required")
	}
	pattern := "%" + escapeLike(slug) + "%"
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT `+courseColumns+` FROM courses WHERE LOWER(url) LIKE ? ESCAPE '\' ORDER BY id`),
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("find courses: %w", err)
	}
	defer rows.Close()
	return collectCourses(rows)
}

// GetCourse fetches a course by id; it returns nil when absent.
func (s *Store) GetCourse(ctx context.Context, id int64) (*Course, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+courseColumns+` FROM courses WHERE id = ?`), id)
	course, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return course, nil
}

// ListCourses returns courses ordered by title. When downloadedOnly is set,
// only courses with fetched content are returned.
func (s *Store) ListCourses(ctx context.Context, downloadedOnly bool, limit int) ([]Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses`
	if downloadedOnly {
		query += ` WHERE content_downloaded = ?`
	}
	query += ` ORDER BY title, id`
	args := []any{}
	if downloadedOnly {
		args = append(args, true)
	}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()
	return collectCourses(rows)
}

func collectCourses(rows *sql.Rows) ([]Course, error) {
	var courses []Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, *course)
	}
	return courses, rows.Err()
}

// UpsertCourses inserts or updates catalog rows in one transaction, keyed on
// id. Content flags of existing rows are left untouched.
func (s *Store) UpsertCourses(ctx context.Context, courses []Course) error {
	if len(courses) == 0 {
		return nil
	}
	stamp := formatTime(s.now())
	query := s.rebind(`INSERT INTO courses (id, readable_id, title, description, url, image_url, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET
            readable_id = excluded.readable_id,
            title = excluded.title,
            description = excluded.description,
            url = excluded.url,
            image_url = excluded.image_url,
            updated_at = excluded.updated_at`)
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("prepare upsert: %w", err)
		}
		defer stmt.Close()
		for _, c := range courses {
			if _, err := stmt.ExecContext(ctx, c.ID, c.ReadableID, c.Title, c.Description, c.URL, c.ImageURL, stamp); err != nil {
				return fmt.Errorf("upsert course %d: %w", c.ID, err)
			}
		}
		return nil
	})
}

func markContentDownloaded(ctx context.Context, tx *sql.Tx, s *Store, courseID int64, at time.Time) error {
	res, err := tx.ExecContext(ctx,
		s.rebind(`UPDATE courses SET content_downloaded = ?, content_downloaded_at = ? WHERE id = ?`),
		true, formatTime(at), courseID,
	)
	if err != nil {
		return fmt.Errorf("mark content downloaded: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("mark content downloaded: course %d not found", courseID)
	}
	return nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
