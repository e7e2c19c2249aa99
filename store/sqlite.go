package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/buger/jsonparser"
	_ "github.com/mattn/go-sqlite3"

	"waveprint/fingerprint"
	"waveprint/internal/xerr"
)

const schema = `
CREATE TABLE IF NOT EXISTS sounds (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	filepath TEXT UNIQUE NOT NULL,
	filename TEXT NOT NULL,
	duration REAL NOT NULL,
	sample_rate INTEGER NOT NULL,
	channels INTEGER NOT NULL,
	format TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	artist TEXT NOT NULL DEFAULT '',
	date_added TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_sounds_filepath ON sounds(filepath);
CREATE INDEX IF NOT EXISTS idx_sounds_filename ON sounds(filename);

CREATE TABLE IF NOT EXISTS fingerprints (
	sound_id INTEGER PRIMARY KEY REFERENCES sounds(id) ON DELETE CASCADE,
	payload TEXT NOT NULL
);
`

// SQLiteStore is the default Store backend, grounded on database/sql and
// github.com/mattn/go-sqlite3.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) a SQLite database at path and
// ensures its schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, xerr.Database("failed to open sqlite database", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, xerr.Database("failed to apply schema", err)
	}
	return &SQLiteStore{db: db}, nil
}

// AddSound is idempotent on filepath: re-ingesting an already-known path
// returns its existing id rather than inserting a duplicate row. The
// upsert only guards against the race of a concurrent first insert; the id
// is always resolved by a following SELECT rather than
// sqlite3_last_insert_rowid(), since DO NOTHING performs no insert on the
// conflict path and would otherwise leave the driver's last-insert-id
// pointing at an unrelated row from the same pooled connection.
func (s *SQLiteStore) AddSound(sound Sound) (int64, error) {
	_, err := s.db.Exec(
		`INSERT INTO sounds (filepath, filename, duration, sample_rate, channels, format, title, artist)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(filepath) DO NOTHING`,
		sound.Filepath, sound.Filename, sound.Duration, sound.SampleRate, sound.Channels, sound.Format, sound.Title, sound.Artist,
	)
	if err != nil {
		return 0, xerr.Database("failed to insert sound", err)
	}
	var id int64
	row := s.db.QueryRow(`SELECT id FROM sounds WHERE filepath = ?`, sound.Filepath)
	if err := row.Scan(&id); err != nil {
		return 0, xerr.Database("failed to resolve sound id", err)
	}
	return id, nil
}

func (s *SQLiteStore) StoreFingerprint(soundID int64, fp *fingerprint.Fingerprint) error {
	payload, err := json.Marshal(fp)
	if err != nil {
		return xerr.Fingerprint("failed to serialize fingerprint", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO fingerprints (sound_id, payload) VALUES (?, ?)
		 ON CONFLICT(sound_id) DO UPDATE SET payload = excluded.payload`,
		soundID, string(payload),
	)
	if err != nil {
		return xerr.Database("failed to store fingerprint", err)
	}
	return nil
}

func (s *SQLiteStore) GetFingerprint(soundID int64) (*fingerprint.Fingerprint, bool, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM fingerprints WHERE sound_id = ?`, soundID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, xerr.Database("failed to read fingerprint", err)
	}
	fp, ok := decodeFingerprint([]byte(payload))
	return fp, ok, nil
}

func (s *SQLiteStore) GetAllFingerprints() (map[int64]*fingerprint.Fingerprint, error) {
	rows, err := s.db.Query(`SELECT sound_id, payload FROM fingerprints`)
	if err != nil {
		return nil, xerr.Database("failed to scan fingerprints", err)
	}
	defer rows.Close()

	out := make(map[int64]*fingerprint.Fingerprint)
	for rows.Next() {
		var id int64
		var payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, xerr.Database("failed to scan fingerprint row", err)
		}
		if fp, ok := decodeFingerprint([]byte(payload)); ok {
			out[id] = fp
		}
	}
	return out, rows.Err()
}

// decodeFingerprint uses jsonparser for a cheap structural pre-check
// (required top-level keys present) before paying for a full
// encoding/json.Unmarshal, so a payload missing any of those keys is
// skipped without reaching the decoder. A payload that passes the pre-check
// but fails to unmarshal is skipped as well.
func decodeFingerprint(payload []byte) (*fingerprint.Fingerprint, bool) {
	for _, key := range []string{"mfcc_mean", "mfcc_std", "chroma_mean"} {
		if _, _, _, err := jsonparser.Get(payload, key); err != nil {
			return nil, false
		}
	}
	var fp fingerprint.Fingerprint
	if err := json.Unmarshal(payload, &fp); err != nil {
		return nil, false
	}
	return &fp, true
}

func (s *SQLiteStore) GetSound(id int64) (*Sound, bool, error) {
	row := s.db.QueryRow(
		`SELECT id, filepath, filename, duration, sample_rate, channels, format, title, artist, date_added
		 FROM sounds WHERE id = ?`, id,
	)
	sound, err := scanSound(row)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, xerr.Database("failed to read sound", err)
	}
	return sound, true, nil
}

func (s *SQLiteStore) GetAllSounds() ([]Sound, error) {
	rows, err := s.db.Query(
		`SELECT id, filepath, filename, duration, sample_rate, channels, format, title, artist, date_added
		 FROM sounds ORDER BY date_added DESC`,
	)
	if err != nil {
		return nil, xerr.Database("failed to list sounds", err)
	}
	defer rows.Close()
	return scanSounds(rows)
}

func (s *SQLiteStore) Search(query string) ([]Sound, error) {
	rows, err := s.db.Query(
		`SELECT id, filepath, filename, duration, sample_rate, channels, format, title, artist, date_added
		 FROM sounds WHERE filename LIKE ? ORDER BY date_added DESC`,
		"%"+query+"%",
	)
	if err != nil {
		return nil, xerr.Database("failed to search sounds", err)
	}
	defer rows.Close()
	return scanSounds(rows)
}

func (s *SQLiteStore) RemoveSound(id int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return xerr.Database("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM fingerprints WHERE sound_id = ?`, id); err != nil {
		return xerr.Database("failed to delete fingerprint", err)
	}
	if _, err := tx.Exec(`DELETE FROM sounds WHERE id = ?`, id); err != nil {
		return xerr.Database("failed to delete sound", err)
	}
	if err := tx.Commit(); err != nil {
		return xerr.Database("failed to commit delete", err)
	}
	return nil
}

func (s *SQLiteStore) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sounds`).Scan(&n); err != nil {
		return 0, xerr.Database("failed to count sounds", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSound(row rowScanner) (*Sound, error) {
	var sound Sound
	var dateAdded time.Time
	err := row.Scan(
		&sound.ID, &sound.Filepath, &sound.Filename, &sound.Duration,
		&sound.SampleRate, &sound.Channels, &sound.Format,
		&sound.Title, &sound.Artist, &dateAdded,
	)
	if err != nil {
		return nil, err
	}
	sound.DateAdded = dateAdded
	return &sound, nil
}

func scanSounds(rows *sql.Rows) ([]Sound, error) {
	var out []Sound
	for rows.Next() {
		sound, err := scanSound(rows)
		if err != nil {
			return nil, xerr.Database(fmt.Sprintf("failed to scan sound row: %v", err), err)
		}
		out = append(out, *sound)
	}
	return out, rows.Err()
}
