package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const resourceColumns = "id, course_id, section_id, title, resource_type, pdf_path, video_url, youtube_id, archive_url, ordering, created_at"

// ReplaceCourseContent deletes every section and resource of the course and
// inserts the supplied plan, then flags the course as downloaded. The whole
// replacement is one transaction, so readers never observe a half-written
// course. Section orderings must already be contiguous from zero.
func (s *Store) ReplaceCourseContent(ctx context.Context, courseID int64, plan []SectionContent) error {
	for i, sc := range plan {
		if sc.Section.Ordering != i {
			return fmt.Errorf("replace course content: section %d has ordering %d", i, sc.Section.Ordering)
		}
	}
	now := s.now()
	stamp := formatTime(now)
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM resources WHERE course_id = ?`), courseID); err != nil {
			return fmt.Errorf("delete resources: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM course_sections WHERE course_id = ?`), courseID); err != nil {
			return fmt.Errorf("delete sections: %w", err)
		}

		sectionQuery := s.rebind(`INSERT INTO course_sections (course_id, title, slug, section_type, ordering, created_at)
            VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
		resourceQuery := s.rebind(`INSERT INTO resources (course_id, section_id, title, resource_type, pdf_path, video_url, youtube_id, archive_url, ordering, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		for _, sc := range plan {
			var sectionID int64
			sec := sc.Section
			if err := tx.QueryRowContext(ctx, sectionQuery,
				courseID, sec.Title, sec.Slug, sec.SectionType, sec.Ordering, stamp,
			).Scan(&sectionID); err != nil {
				return fmt.Errorf("insert section %q: %w", sec.Title, err)
			}
			for _, r := range sc.Resources {
				if _, err := tx.ExecContext(ctx, resourceQuery,
					courseID, sectionID, r.Title, r.ResourceType,
					nullableString(r.PDFPath), nullableString(r.VideoURL), nullableString(r.VideoID), nullableString(r.ArchiveURL),
					r.Ordering, stamp,
				); err != nil {
					return fmt.Errorf("insert resource %q: %w", r.Title, err)
				}
			}
		}
		return markContentDownloaded(ctx, tx, s, courseID, now)
	})
}

// ListSections returns a course's sections in timeline order.
func (s *Store) ListSections(ctx context.Context, courseID int64) ([]Section, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT id, course_id, title, slug, section_type, ordering, created_at
            FROM course_sections WHERE course_id = ? ORDER BY ordering`),
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()
	var sections []Section
	for rows.Next() {
		var (
			sec     Section
			created string
		)
		if err := rows.Scan(&sec.ID, &sec.CourseID, &sec.Title, &sec.Slug, &sec.SectionType, &sec.Ordering, &created); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sec.CreatedAt = parseTime(created)
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// ListResources returns a course's resources ordered by section position and
// local ordering. When types is non-empty only those resource types are
// returned.
func (s *Store) ListResources(ctx context.Context, courseID int64, types ...string) ([]Resource, error) {
	query := `SELECT r.id, r.course_id, r.section_id, r.title, r.resource_type, r.pdf_path, r.video_url, r.youtube_id, r.archive_url, r.ordering, r.created_at
        FROM resources r
        LEFT JOIN course_sections cs ON cs.id = r.section_id
        WHERE r.course_id = ?`
	args := []any{courseID}
	if len(types) > 0 {
		query += ` AND r.resource_type IN (` + strings.TrimSuffix(strings.Repeat("?, ", len(types)), ", ") + `)`
		for _, t := range types {
			args = append(args, t)
		}
	}
	query += ` ORDER BY COALESCE(cs.ordering, -1), r.ordering, r.id`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()
	var resources []Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		resources = append(resources, *r)
	}
	return resources, rows.Err()
}

func scanResource(scanner interface{ Scan(dest ...any) error }) (*Resource, error) {
	var (
		r          Resource
		sectionID  sql.NullInt64
		pdfPath    sql.NullString
		videoURL   sql.NullString
		videoID    sql.NullString
		archiveURL sql.NullString
		created    string
	)
	if err := scanner.Scan(&r.ID, &r.CourseID, &sectionID, &r.Title, &r.ResourceType,
		&pdfPath, &videoURL, &videoID, &archiveURL, &r.Ordering, &created); err != nil {
		return nil, err
	}
	r.SectionID = int64Ptr(sectionID)
	r.PDFPath = stringPtr(pdfPath)
	r.VideoURL = stringPtr(videoURL)
	r.VideoID = stringPtr(videoID)
	r.ArchiveURL = stringPtr(archiveURL)
	r.CreatedAt = parseTime(created)
	return &r, nil
}
