// Package waveprint is a content-derived audio fingerprint index with
// segment-localized similarity search, embeddable in a host application.
//
// A Library is opened against a database path and threaded explicitly
// through every call by the caller — there is no package-level singleton
// (see DESIGN.md's Open Question resolution).
package waveprint

import (
	"context"
	"path/filepath"

	"waveprint/audio"
	"waveprint/fingerprint"
	"waveprint/internal/backup"
	"waveprint/internal/config"
	"waveprint/internal/xerr"
	"waveprint/search"
	"waveprint/store"
)

// Version is the library version embedded in exported binaries and printed
// by the CLI's version subcommand.
const Version = "0.1.0"

// Library is an opened fingerprint index: a Store plus a Search Engine
// bound to it.
type Library struct {
	store  store.Store
	engine *search.Engine
	dbPath string
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	mongoURI string
	mongoDB  string
}

// WithMongoURI overrides the Mongo connection string used when the store
// engine is Mongo.
func WithMongoURI(uri string) Option {
	return func(o *openOptions) { o.mongoURI = uri }
}

// WithMongoDatabase overrides the Mongo database name used when the store
// engine is Mongo.
func WithMongoDatabase(name string) Option {
	return func(o *openOptions) { o.mongoDB = name }
}

// Open initializes a Library backed by the database at path. The backend
// (SQLite or Mongo) is selected by WAVEPRINT_DB_ENGINE; for Mongo, path is
// ignored in favor of the configured URI/database.
func Open(path string, opts ...Option) (*Library, error) {
	config.Load()

	o := openOptions{mongoURI: config.MongoURI(), mongoDB: config.MongoDatabase()}
	for _, opt := range opts {
		opt(&o)
	}

	var s store.Store
	var err error
	switch config.StoreEngine() {
	case config.EngineMongo:
		s, err = store.OpenMongo(context.Background(), o.mongoURI, o.mongoDB)
	default:
		s, err = store.OpenSQLite(path)
	}
	if err != nil {
		return nil, err
	}

	return &Library{store: s, engine: search.New(s), dbPath: path}, nil
}

// Close releases the underlying store handle.
func (l *Library) Close() error { return l.store.Close() }

// Backup uploads a snapshot of the library's database file to the
// configured Google Drive folder, or to folderID if given. It is an
// opt-in, non-critical feature (see backup.Enabled): callers that never
// invoke it incur no Drive dependency at runtime, and it is only
// meaningful against the SQLite backend, since Mongo has no single
// database file to snapshot.
func (l *Library) Backup(ctx context.Context, folderID string) (string, error) {
	if l.dbPath == "" {
		return "", xerr.IO("backup requires a file-backed store", nil)
	}
	if folderID == "" {
		folderID = config.GetEnv("WAVEPRINT_GOOGLE_DRIVE_FOLDER", "")
	}
	if folderID == "" {
		return "", xerr.IO("no Google Drive folder configured for backup", nil)
	}
	return backup.UploadSnapshot(ctx, l.dbPath, folderID)
}

// AddSound ingests filepath: decodes it, extracts its fingerprint, and
// persists both the Sound metadata and the Fingerprint.
func (l *Library) AddSound(path string) (int64, error) {
	data, err := audio.Load(path)
	if err != nil {
		return 0, err
	}
	fp, err := fingerprint.Extract(data.Samples, data.SampleRate, data.Duration)
	if err != nil {
		return 0, err
	}

	meta, _ := audio.Metadata(path)
	sound := store.Sound{
		Filepath:   path,
		Filename:   filepath.Base(path),
		Duration:   data.Duration,
		SampleRate: data.SampleRate,
		Channels:   data.Channels,
		Format:     filepath.Ext(path),
	}
	if meta != nil {
		sound.Title = meta.Title
		sound.Artist = meta.Artist
	}

	id, err := l.store.AddSound(sound)
	if err != nil {
		return 0, err
	}
	if err := l.store.StoreFingerprint(id, fp); err != nil {
		return 0, err
	}
	return id, nil
}

// GetAllSounds returns every registered sound, newest first.
func (l *Library) GetAllSounds() ([]store.Sound, error) { return l.store.GetAllSounds() }

// GetSoundCount returns the number of registered sounds.
func (l *Library) GetSoundCount() (int64, error) { return l.store.Count() }

// SearchSounds returns sounds whose filename contains query.
func (l *Library) SearchSounds(query string) ([]store.Sound, error) { return l.store.Search(query) }

// RemoveSound deletes a sound and its fingerprint.
func (l *Library) RemoveSound(id int64) error { return l.store.RemoveSound(id) }

// GetFingerprint returns the fingerprint stored for filepath, if any.
func (l *Library) GetFingerprint(path string) (*fingerprint.Fingerprint, bool, error) {
	sounds, err := l.store.Search(filepath.Base(path))
	if err != nil {
		return nil, false, err
	}
	for _, s := range sounds {
		if s.Filepath == path {
			return l.store.GetFingerprint(s.ID)
		}
	}
	return nil, false, nil
}

// FindSimilar runs a whole-file query against queryPath.
func (l *Library) FindSimilar(queryPath string, threshold float64, maxResults int) ([]search.Match, error) {
	q, err := l.fingerprintFile(queryPath)
	if err != nil {
		return nil, err
	}
	return l.engine.FindSimilar(q, threshold, maxResults)
}

// FindSimilarWithSegments runs a coarse-then-fine segment-localized query
// against queryPath.
func (l *Library) FindSimilarWithSegments(queryPath string, threshold float64, maxResults int) ([]search.Match, error) {
	q, err := l.fingerprintFile(queryPath)
	if err != nil {
		return nil, err
	}
	return l.engine.FindSimilarWithSegments(q, threshold, maxResults)
}

// FindSimilarFromSamples is the selection-based search path: it queries
// with an in-memory PCM buffer (e.g. a clip picked out of a larger
// recording) instead of a file path, and like that path it runs through
// the segment-localized engine rather than the whole-file one, since the
// whole point of handing over raw samples is getting back the matched
// time range within each candidate.
func (l *Library) FindSimilarFromSamples(samples []float64, sampleRate int, threshold float64, maxResults int) ([]search.Match, error) {
	data := audio.FromSamples(samples, sampleRate)
	q, err := fingerprint.Extract(data.Samples, data.SampleRate, data.Duration)
	if err != nil {
		return nil, err
	}
	return l.engine.FindSimilarWithSegments(q, threshold, maxResults)
}

// ComputeSimilarity fingerprints two files and returns their cosine
// similarity score in [0, 100].
func (l *Library) ComputeSimilarity(pathA, pathB string) (float64, error) {
	a, err := l.fingerprintFile(pathA)
	if err != nil {
		return 0, err
	}
	b, err := l.fingerprintFile(pathB)
	if err != nil {
		return 0, err
	}
	return fingerprint.Similarity(a, b), nil
}

func (l *Library) fingerprintFile(path string) (*fingerprint.Fingerprint, error) {
	data, err := audio.Load(path)
	if err != nil {
		return nil, err
	}
	return fingerprint.Extract(data.Samples, data.SampleRate, data.Duration)
}
