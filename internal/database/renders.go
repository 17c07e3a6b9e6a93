package database

// RecordRender stores a rendered file. Re-rendering the same hour replaces
// the previous row.
func (db *DB) RecordRender(filename, tier string) error {
	_, err := db.conn.Exec(
		`INSERT INTO renders (filename, tier) VALUES (?, ?)
		ON CONFLICT(filename) DO UPDATE SET tier = excluded.tier, rendered_at = datetime('now')`,
		filename, tier,
	)
	return err
}

// RecentRenders returns the latest renders, newest first.
func (db *DB) RecentRenders(limit int) ([]Render, error) {
	rows, err := db.conn.Query(
		`SELECT id, filename, tier, rendered_at FROM renders
		ORDER BY rendered_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var renders []Render
	for rows.Next() {
		var r Render
		if err := rows.Scan(&r.ID, &r.Filename, &r.Tier, &r.RenderedAt); err != nil {
			return nil, err
		}
		renders = append(renders, r)
	}
	return renders, rows.Err()
}
