package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ReplaceProblems swaps the full problem set of one questions resource inside
// a single transaction.
func (s *Store) ReplaceProblems(ctx context.Context, resourceID, courseID int64, problems []Problem) error {
	stamp := formatTime(s.now())
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM problems WHERE resource_id = ?`), resourceID); err != nil {
			return fmt.Errorf("delete problems: %w", err)
		}
		insert := s.rebind(`INSERT INTO problems (resource_id, course_id, problem_label, question_text, solution_text, ordering, created_at)
            VALUES (?, ?, ?, ?, ?, ?, ?)`)
		for _, p := range problems {
			if _, err := tx.ExecContext(ctx, insert,
				resourceID, courseID, p.Label, p.QuestionText, nullableString(p.SolutionText), p.Ordering, stamp,
			); err != nil {
				return fmt.Errorf("insert problem %q: %w", p.Label, err)
			}
		}
		return nil
	})
}

// ListProblems returns the problems of one resource in order.
func (s *Store) ListProblems(ctx context.Context, resourceID int64) ([]Problem, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT id, resource_id, course_id, problem_label, question_text, solution_text, ordering, created_at
            FROM problems WHERE resource_id = ? ORDER BY ordering, id`),
		resourceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	defer rows.Close()
	var problems []Problem
	for rows.Next() {
		var (
			p        Problem
			solution sql.NullString
			created  string
		)
		if err := rows.Scan(&p.ID, &p.ResourceID, &p.CourseID, &p.Label, &p.QuestionText, &solution, &p.Ordering, &created); err != nil {
			return nil, fmt.Errorf("scan problem: %w", err)
		}
		p.SolutionText = stringPtr(solution)
		p.CreatedAt = parseTime(created)
		problems = append(problems, p)
	}
	return problems, rows.Err()
}

// CountProblems returns per-resource problem counts for a course.
func (s *Store) CountProblems(ctx context.Context, courseID int64) (map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT resource_id, COUNT(1) FROM problems WHERE course_id = ? GROUP BY resource_id`),
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("count problems: %w", err)
	}
	defer rows.Close()
	counts := make(map[int64]int)
	for rows.Next() {
		var (
			id int64
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
