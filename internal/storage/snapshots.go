package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	caperrors "capdash/internal/errors"
	"capdash/internal/logging"
)

// Snapshot is the metadata of one archived payload.
type Snapshot struct {
	ID              string    `json:"id"`
	CapturedAt      time.Time `json:"capturedAt"`
	NodeCount       int       `json:"nodeCount"`
	EdgeCount       int       `json:"edgeCount"`
	CapabilityCount int       `json:"capabilityCount"`
	RawSize         int64     `json:"rawSize"`
}

// Counts carries the payload statistics recorded alongside a snapshot.
// CapabilityCount counts materialized (nonzero-usage) capabilities.
type Counts struct {
	Nodes        int
	Edges        int
	Capabilities int
}

// Archive stores raw payload snapshots zstd-compressed in SQLite.
type Archive struct {
	db      *DB
	logger  *logging.Logger
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewArchive creates an archive over an open database. level is the zstd
// preset (1 fastest .. 4 best), as configured in archive.compressionLevel.
func NewArchive(db *DB, level int, logger *logging.Logger) (*Archive, error) {
	if level < 1 || level > 4 {
		level = 2
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevel(level)))
	if err != nil {
		return nil, caperrors.Wrap(caperrors.StorageIO, "failed to create zstd encoder", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, caperrors.Wrap(caperrors.StorageIO, "failed to create zstd decoder", err)
	}
	return &Archive{db: db, logger: logger, encoder: enc, decoder: dec}, nil
}

// Close releases the compressor resources. The database is closed by its
// owner, not here.
func (a *Archive) Close() {
	a.encoder.Close()
	a.decoder.Close()
}

// Save archives one raw payload and returns its metadata.
func (a *Archive) Save(payload []byte, counts Counts, capturedAt time.Time) (*Snapshot, error) {
	snap := &Snapshot{
		ID:              uuid.NewString(),
		CapturedAt:      capturedAt.UTC(),
		NodeCount:       counts.Nodes,
		EdgeCount:       counts.Edges,
		CapabilityCount: counts.Capabilities,
		RawSize:         int64(len(payload)),
	}

	compressed := a.encoder.EncodeAll(payload, nil)

	_, err := a.db.Exec(`
		INSERT INTO snapshots (id, captured_at, node_count, edge_count, capability_count, raw_size, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, snap.ID, snap.CapturedAt.Format(time.RFC3339Nano), snap.NodeCount, snap.EdgeCount,
		snap.CapabilityCount, snap.RawSize, compressed)
	if err != nil {
		return nil, caperrors.Wrap(caperrors.StorageIO, "failed to save snapshot", err)
	}

	a.logger.Info("archived snapshot", logging.Fields{
		"id":         snap.ID,
		"nodes":      snap.NodeCount,
		"edges":      snap.EdgeCount,
		"compressed": len(compressed),
		"raw":        snap.RawSize,
	})
	return snap, nil
}

// Get returns a snapshot and its decompressed payload. id may be a full
// snapshot id or an unambiguous prefix.
func (a *Archive) Get(id string) (*Snapshot, []byte, error) {
	full, err := a.resolveID(id)
	if err != nil {
		return nil, nil, err
	}

	var snap Snapshot
	var capturedAt string
	var compressed []byte
	err = a.db.QueryRow(`
		SELECT id, captured_at, node_count, edge_count, capability_count, raw_size, payload
		FROM snapshots WHERE id = ?
	`, full).Scan(&snap.ID, &capturedAt, &snap.NodeCount, &snap.EdgeCount,
		&snap.CapabilityCount, &snap.RawSize, &compressed)
	if err == sql.ErrNoRows {
		return nil, nil, caperrors.New(caperrors.SnapshotNotFound, fmt.Sprintf("snapshot %s not found", id))
	}
	if err != nil {
		return nil, nil, caperrors.Wrap(caperrors.StorageIO, "failed to load snapshot", err)
	}

	snap.CapturedAt, err = time.Parse(time.RFC3339Nano, capturedAt)
	if err != nil {
		return nil, nil, caperrors.Wrap(caperrors.StorageIO, "invalid captured_at in snapshot row", err)
	}

	payload, err := a.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, nil, caperrors.Wrap(caperrors.StorageIO, "failed to decompress snapshot payload", err)
	}
	return &snap, payload, nil
}

// List returns snapshot metadata, newest first. limit <= 0 means all.
func (a *Archive) List(limit int) ([]Snapshot, error) {
	query := `
		SELECT id, captured_at, node_count, edge_count, capability_count, raw_size
		FROM snapshots ORDER BY captured_at DESC, id`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, caperrors.Wrap(caperrors.StorageIO, "failed to list snapshots", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var s Snapshot
		var capturedAt string
		if err := rows.Scan(&s.ID, &capturedAt, &s.NodeCount, &s.EdgeCount, &s.CapabilityCount, &s.RawSize); err != nil {
			return nil, caperrors.Wrap(caperrors.StorageIO, "failed to scan snapshot row", err)
		}
		s.CapturedAt, err = time.Parse(time.RFC3339Nano, capturedAt)
		if err != nil {
			return nil, caperrors.Wrap(caperrors.StorageIO, "invalid captured_at in snapshot row", err)
		}
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, caperrors.Wrap(caperrors.StorageIO, "failed to iterate snapshot rows", err)
	}
	return snaps, nil
}

// Prune deletes all but the newest keep snapshots and reports how many
// were removed.
func (a *Archive) Prune(keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	res, err := a.db.Exec(`
		DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY captured_at DESC, id LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, caperrors.Wrap(caperrors.StorageIO, "failed to prune snapshots", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, caperrors.Wrap(caperrors.StorageIO, "failed to count pruned snapshots", err)
	}
	if n > 0 {
		a.logger.Info("pruned snapshots", logging.Fields{"removed": n, "kept": keep})
	}
	return int(n), nil
}

// resolveID expands a full id or unambiguous prefix to the stored id.
func (a *Archive) resolveID(id string) (string, error) {
	if id == "" {
		return "", caperrors.New(caperrors.SnapshotNotFound, "empty snapshot id")
	}

	rows, err := a.db.Query("SELECT id FROM snapshots WHERE id LIKE ? LIMIT 2", id+"%")
	if err != nil {
		return "", caperrors.Wrap(caperrors.StorageIO, "failed to resolve snapshot id", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return "", caperrors.Wrap(caperrors.StorageIO, "failed to scan snapshot id", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return "", caperrors.Wrap(caperrors.StorageIO, "failed to iterate snapshot ids", err)
	}

	switch len(matches) {
	case 0:
		return "", caperrors.New(caperrors.SnapshotNotFound, fmt.Sprintf("snapshot %s not found", id))
	case 1:
		return matches[0], nil
	default:
		return "", caperrors.New(caperrors.SnapshotNotFound, fmt.Sprintf("snapshot id %s is ambiguous", id))
	}
}
