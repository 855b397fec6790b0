package indexdb

import (
	"context"
	"database/sql"
	"errors"
)

// LatestSnapshot returns the newest indexed snapshot at or before tick.
func (s *SQLiteIndex) LatestSnapshot(ctx context.Context, atOrBefore uint64) (SnapshotRow, bool, error) {
	var r SnapshotRow
	var tick int64
	err := s.db.QueryRowContext(ctx,
		`SELECT tick,path,seed,height,chunks,moving,events,drops,digest FROM snapshots WHERE tick <= ? ORDER BY tick DESC LIMIT 1`,
		int64(atOrBefore),
	).Scan(&tick, &r.Path, &r.Seed, &r.Height, &r.Chunks, &r.Moving, &r.Events, &r.Drops, &r.Digest)
	if errors.Is(err, sql.ErrNoRows) {
		return SnapshotRow{}, false, nil
	}
	if err != nil {
		return SnapshotRow{}, false, err
	}
	r.Tick = uint64(tick)
	return r, true, nil
}

// TickDigest returns the digest recorded for tick.
func (s *SQLiteIndex) TickDigest(ctx context.Context, tick uint64) (string, bool, error) {
	var d string
	err := s.db.QueryRowContext(ctx, `SELECT digest FROM ticks WHERE tick = ?`, int64(tick)).Scan(&d)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	return d, err == nil, err
}

// MovesAt lists piston moves whose base sits at pos, oldest first.
func (s *SQLiteIndex) MovesAt(ctx context.Context, pos [3]int, limit int) ([]MoveRow, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT tick,seq,x,y,z,facing,extending,moved,destroyed FROM moves WHERE x = ? AND z = ? AND y = ? ORDER BY tick, seq LIMIT ?`,
		pos[0], pos[2], pos[1], limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MoveRow
	for rows.Next() {
		var m MoveRow
		var tick int64
		var ext int
		if err := rows.Scan(&tick, &m.Seq, &m.Pos[0], &m.Pos[1], &m.Pos[2], &m.Facing, &ext, &m.Moved, &m.Destroyed); err != nil {
			return nil, err
		}
		m.Tick = uint64(tick)
		m.Extending = ext != 0
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountAudits counts audit rows with the given action.
func (s *SQLiteIndex) CountAudits(ctx context.Context, action string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audits WHERE action = ?`, action).Scan(&n)
	return n, err
}
