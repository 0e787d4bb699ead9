package sqlite

import (
	"time"

	"github.com/vigil-network/vigil/internal/domain"
)

// ─── Availability Round Archive ─────────────────────────────────────────────

// SaveRound archives one measurement round outcome.
func (d *DB) SaveRound(rec domain.RoundRecord) error {
	_, err := d.db.Exec(
		`INSERT INTO availability_rounds (id, time, failed, score) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Time.Unix(), rec.Failed, rec.Score,
	)
	return err
}

// RecentRounds returns up to n most recent rounds, newest first.
func (d *DB) RecentRounds(n int) ([]domain.RoundRecord, error) {
	rows, err := d.db.Query(
		`SELECT id, time, failed, score FROM availability_rounds
		 ORDER BY time DESC, id LIMIT ?`, n,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []domain.RoundRecord
	for rows.Next() {
		var rec domain.RoundRecord
		var ts int64
		if err := rows.Scan(&rec.ID, &ts, &rec.Failed, &rec.Score); err != nil {
			return nil, err
		}
		rec.Time = time.Unix(ts, 0)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// PruneRounds deletes rounds older than the cutoff. Returns rows removed.
func (d *DB) PruneRounds(before time.Time) (int64, error) {
	res, err := d.db.Exec(`DELETE FROM availability_rounds WHERE time < ?`, before.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ─── Peer Persistence ───────────────────────────────────────────────────────

// UpsertPeer stores or refreshes a known peer.
func (d *DB) UpsertPeer(p domain.Peer) error {
	_, err := d.db.Exec(
		`INSERT INTO peers (endpoint, identity, host, port, last_seen, state)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET
		   identity=excluded.identity, last_seen=excluded.last_seen, state=excluded.state`,
		p.Endpoint(), p.Identity, p.Host, p.Port, p.LastSeen.Unix(), string(p.State),
	)
	return err
}

// DeletePeer removes a peer by its host:port endpoint.
func (d *DB) DeletePeer(endpoint string) error {
	_, err := d.db.Exec(`DELETE FROM peers WHERE endpoint = ?`, endpoint)
	return err
}

// ListPeers returns all persisted peers.
func (d *DB) ListPeers() ([]domain.Peer, error) {
	rows, err := d.db.Query(`SELECT identity, host, port, last_seen, state FROM peers ORDER BY endpoint`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var peers []domain.Peer
	for rows.Next() {
		var p domain.Peer
		var ts int64
		var state string
		if err := rows.Scan(&p.Identity, &p.Host, &p.Port, &ts, &state); err != nil {
			return nil, err
		}
		p.LastSeen = time.Unix(ts, 0)
		p.State = domain.PeerState(state)
		peers = append(peers, p)
	}
	return peers, rows.Err()
}
