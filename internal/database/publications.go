package database

import (
	"database/sql"
)

const publicationColumns = `id, filename, image_url, container_id, media_id, state, error, created_at`

// RecordPublication stores a publish attempt and returns its ID. Empty
// optional values are stored as NULL.
func (db *DB) RecordPublication(p Publication) (int64, error) {
	result, err := db.conn.Exec(
		`INSERT INTO publications (filename, image_url, container_id, media_id, state, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.Filename, nullable(p.ImageURL), nullable(p.ContainerID), nullable(p.MediaID), p.State, nullable(p.Error),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// RecentPublications returns the latest publish attempts, newest first.
func (db *DB) RecentPublications(limit int) ([]Publication, error) {
	rows, err := db.conn.Query(
		`SELECT `+publicationColumns+` FROM publications ORDER BY created_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pubs []Publication
	for rows.Next() {
		var p Publication
		if err := rows.Scan(&p.ID, &p.Filename, &p.ImageURL, &p.ContainerID, &p.MediaID, &p.State, &p.Error, &p.CreatedAt); err != nil {
			return nil, err
		}
		pubs = append(pubs, p)
	}
	return pubs, rows.Err()
}

// LastPublished returns the latest successful publication of filename, or
// nil if it was never published.
func (db *DB) LastPublished(filename string) (*Publication, error) {
	row := db.conn.QueryRow(
		`SELECT `+publicationColumns+` FROM publications
		WHERE filename = ? AND state = 'PUBLISHED' ORDER BY id DESC LIMIT 1`, filename,
	)
	var p Publication
	err := row.Scan(&p.ID, &p.Filename, &p.ImageURL, &p.ContainerID, &p.MediaID, &p.State, &p.Error, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetStats returns aggregate ledger statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{}
	queries := []struct {
		query string
		dest  any
	}{
		{"SELECT COUNT(*) FROM renders", &s.Renders},
		{"SELECT COUNT(*) FROM publications", &s.Publications},
		{"SELECT COUNT(*) FROM publications WHERE state = 'PUBLISHED'", &s.Published},
		{"SELECT COUNT(*) FROM publications WHERE state = 'FAILED'", &s.Failed},
		{"SELECT MAX(rendered_at) FROM renders", &s.LastRenderedAt},
		{"SELECT MAX(created_at) FROM publications WHERE state = 'PUBLISHED'", &s.LastPublished},
	}
	for _, q := range queries {
		if err := db.conn.QueryRow(q.query).Scan(q.dest); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func nullable(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
