// Package backup implements an optional, non-critical off-box durability
// feature: copying the SQLite database file to a configured Google Drive
// folder. It is never on the query/ingest hot path.
package backup

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"waveprint/internal/config"
)

// Enabled reports whether both a credentials file and a destination
// folder are configured; callers should skip backup entirely otherwise.
func Enabled() bool {
	return config.GetEnv("WAVEPRINT_GOOGLE_CREDENTIALS", "") != "" &&
		config.GetEnv("WAVEPRINT_GOOGLE_DRIVE_FOLDER", "") != ""
}

// UploadSnapshot copies the file at dbPath into folderID on Google Drive,
// authenticated via the credentials file named by
// WAVEPRINT_GOOGLE_CREDENTIALS, and returns the resulting file id.
func UploadSnapshot(ctx context.Context, dbPath, folderID string) (string, error) {
	credPath := config.GetEnv("WAVEPRINT_GOOGLE_CREDENTIALS", "")
	if credPath == "" {
		return "", fmt.Errorf("WAVEPRINT_GOOGLE_CREDENTIALS not set")
	}

	svc, err := drive.NewService(ctx, option.WithCredentialsFile(credPath))
	if err != nil {
		return "", fmt.Errorf("failed to create drive client: %w", err)
	}

	f, err := os.Open(dbPath)
	if err != nil {
		return "", fmt.Errorf("failed to open snapshot %s: %w", dbPath, err)
	}
	defer f.Close()

	// Each snapshot gets a unique name so repeated backups never collide
	// on Drive's namespace, which (unlike a filesystem) tolerates
	// duplicate names as distinct files.
	file := &drive.File{
		Name:    fmt.Sprintf("waveprint-%s.db", uuid.NewString()),
		Parents: []string{folderID},
	}
	created, err := svc.Files.Create(file).Media(f).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot: %w", err)
	}
	return created.Id, nil
}
