// Package audiostore manages the generated audio artifacts: WAV files in a
// temp directory, named by generated identifiers, served back by filename
// and purged by an age-based janitor. An optional NATS JetStream mirror
// publishes each artifact to a bucket for pipeline consumers.
package audiostore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/naija-speech/tts-api/internal/tts/ttsutils"
)

// File permissions for stored artifacts.
const filePermissions = 0o600

// wavExtension is the only format the service currently produces.
const wavExtension = ".wav"

// Static errors.
var (
	// ErrNotFound indicates no artifact exists under the requested filename.
	ErrNotFound = errors.New("audio file not found")
	// ErrInvalidFilename indicates the requested filename is not one the
	// store could ever have produced.
	ErrInvalidFilename = errors.New("invalid audio filename")
)

// Store is a filesystem-backed artifact store.
type Store struct {
	baseDir string
}

// New creates a store rooted at baseDir, creating the directory if needed.
func New(baseDir string) (*Store, error) {
	err := ttsutils.EnsureDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare audio directory: %w", err)
	}

	return &Store{baseDir: baseDir}, nil
}

// BaseDir returns the directory artifacts are stored in.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// Save writes the WAV bytes under a fresh generated filename and returns
// that filename. Concurrent saves cannot collide because every call draws
// a new identifier.
func (s *Store) Save(wavData []byte) (string, error) {
	filename := uuid.NewString() + wavExtension
	path := filepath.Join(s.baseDir, filename)

	err := os.WriteFile(path, wavData, filePermissions)
	if err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	return filename, nil
}

// Read returns the artifact bytes for a filename previously returned by
// Save. Filenames are sanitized so requests can never traverse outside the
// store directory.
func (s *Store) Read(filename string) ([]byte, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
		}

		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	return data, nil
}

// Remove deletes a single artifact. Removing an absent artifact is not an
// error.
func (s *Store) Remove(filename string) error {
	path, err := s.resolve(filename)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove audio file: %w", err)
	}

	return nil
}

// Count returns the number of audio artifacts currently on disk.
func (s *Store) Count() (int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, fmt.Errorf("failed to list audio directory: %w", err)
	}

	count := 0

	for _, entry := range entries {
		if !entry.IsDir() && ttsutils.IsValidAudioFile(entry.Name()) {
			count++
		}
	}

	return count, nil
}

// resolve validates and sanitizes a client-supplied filename and returns
// its absolute path inside the store.
func (s *Store) resolve(filename string) (string, error) {
	clean := ttsutils.SanitizeFilename(filename)
	if clean == "" || clean != filename || !ttsutils.IsValidAudioFile(clean) {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}

	return filepath.Join(s.baseDir, clean), nil
}
