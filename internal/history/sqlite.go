package history

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"trisk/internal/findings"
	"trisk/internal/logging"
	"trisk/internal/objects"
)

// zstdMagic prefixes every zstd frame; rows written before compression was
// introduced carry raw JSON instead.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// SQLiteStore is the default Store backed by a local SQLite file.
// A single lock serializes writes; overlap scans take the read side. Each
// change id's row is independent, so this is sufficient for the
// single-operator model and safe if the store is ever shared.
type SQLiteStore struct {
	mu      sync.RWMutex
	conn    *sql.DB
	logger  *logging.Logger
	limits  Limits
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	dbPath  string
}

// Open opens or creates the history database at <dataDir>/history.db.
func Open(dataDir string, limits Limits, logger *logging.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "history.db")
	existed := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",   // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous=NORMAL", // Balance between safety and performance
		"PRAGMA busy_timeout=5000",  // Wait up to 5 seconds on lock
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	s := &SQLiteStore{
		conn:    conn,
		logger:  logger,
		limits:  limits.orDefaults(),
		encoder: encoder,
		decoder: decoder,
		dbPath:  dbPath,
	}

	if !existed {
		logger.Info("Creating new history database", map[string]interface{}{
			"path": dbPath,
		})
	}
	if err := s.initializeSchema(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initializeSchema() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS changes (
			change_id    TEXT PRIMARY KEY,
			generated_at TEXT,
			findings     BLOB NOT NULL
		)
	`)
	return err
}

// Close releases the database connection and the compression codecs.
func (s *SQLiteStore) Close() error {
	if s.encoder != nil {
		s.encoder.Close()
	}
	if s.decoder != nil {
		s.decoder.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Save upserts the snapshot under its change id (last write wins).
func (s *SQLiteStore) Save(changeID string, f *findings.Findings) error {
	if changeID == "" {
		return fmt.Errorf("change id must not be empty")
	}
	if f == nil {
		return fmt.Errorf("findings must not be nil")
	}

	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode findings: %w", err)
	}
	blob := s.encoder.EncodeAll(data, nil)

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.conn.Exec(`
		INSERT INTO changes(change_id, generated_at, findings)
		VALUES(?, ?, ?)
		ON CONFLICT(change_id) DO UPDATE SET
			generated_at = excluded.generated_at,
			findings     = excluded.findings
	`, changeID, f.GeneratedAt, blob)
	if err != nil {
		return fmt.Errorf("failed to save findings: %w", err)
	}

	s.logger.Debug("Findings saved", map[string]interface{}{
		"change_id": changeID,
		"bytes":     len(blob),
	})
	return nil
}

// Get returns the stored snapshot, or nil when the change id is unknown.
func (s *SQLiteStore) Get(changeID string) (*findings.Findings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var blob []byte
	err := s.conn.QueryRow(
		`SELECT findings FROM changes WHERE change_id = ?`, changeID,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load findings: %w", err)
	}

	return s.decode(blob)
}

// List returns stored change ids, newest first.
func (s *SQLiteStore) List() ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.Query(
		`SELECT change_id, generated_at FROM changes ORDER BY generated_at DESC, change_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list changes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ChangeID, &e.GeneratedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FindOverlaps scans all other stored changes within the lookback window
// and reports shared normalized keys. Malformed rows are skipped, counted
// and logged; they never abort the query.
func (s *SQLiteStore) FindOverlaps(changeID string, objs []objects.Object, windowDays int) ([]findings.OverlapRecord, error) {
	keys := objects.KeySet(objs)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.conn.Query(
		`SELECT change_id, generated_at, findings FROM changes WHERE change_id <> ?`, changeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan history: %w", err)
	}
	defer rows.Close()

	var snaps []snapshot
	skipped := 0
	for rows.Next() {
		var cid, generatedAt string
		var blob []byte
		if err := rows.Scan(&cid, &generatedAt, &blob); err != nil {
			skipped++
			continue
		}
		f, err := s.decode(blob)
		if err != nil {
			skipped++
			s.logger.Debug("Skipping undecodable history record", map[string]interface{}{
				"change_id": cid,
				"error":     err.Error(),
			})
			continue
		}
		snaps = append(snaps, snapshot{changeID: cid, generatedAt: generatedAt, f: f})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan history: %w", err)
	}
	if skipped > 0 {
		s.logger.Warn("Skipped malformed history records during overlap scan", map[string]interface{}{
			"skipped": skipped,
		})
	}

	return computeOverlaps(changeID, keys, snaps, windowDays, s.limits, time.Now().UTC()), nil
}

// decode reverses Save's encoding, tolerating uncompressed legacy rows.
func (s *SQLiteStore) decode(blob []byte) (*findings.Findings, error) {
	data := blob
	if bytes.HasPrefix(blob, zstdMagic) {
		var err error
		data, err = s.decoder.DecodeAll(blob, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress findings: %w", err)
		}
	}

	var f findings.Findings
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode findings: %w", err)
	}
	return &f, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
