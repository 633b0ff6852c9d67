package audiostore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/book-expert/logger"

	"github.com/naija-speech/tts-api/internal/tts/ttsutils"
)

// defaultSweepInterval is used when the configured interval is not a
// usable ticker period.
const defaultSweepInterval = time.Hour

// Deleter removes a mirrored artifact by key. It is the janitor's view of
// the remote object store.
type Deleter interface {
	Delete(ctx context.Context, key string) error
}

// Janitor periodically removes artifacts older than a maximum age. Age is
// judged by file modification time, so an artifact's clock starts when the
// synthesis that produced it finished.
type Janitor struct {
	store    *Store
	remote   Deleter
	maxAge   time.Duration
	interval time.Duration
	log      *logger.Logger
}

// NewJanitor creates a janitor over the given store. Non-positive maxAge
// or interval fall back to hourly values; a zero interval would make the
// sweep ticker panic.
func NewJanitor(store *Store, maxAge, interval time.Duration, log *logger.Logger) *Janitor {
	if maxAge <= 0 {
		maxAge = defaultSweepInterval
	}

	if interval <= 0 {
		interval = defaultSweepInterval
	}

	return &Janitor{
		store:    store,
		remote:   nil,
		maxAge:   maxAge,
		interval: interval,
		log:      log,
	}
}

// WithRemote makes sweeps also delete aged artifacts from the remote
// mirror, keeping the bucket from accumulating what the local store has
// already let go of.
func (j *Janitor) WithRemote(remote Deleter) *Janitor {
	j.remote = remote

	return j
}

// Run sweeps on every interval tick until the context is canceled. It is
// meant to run in its own goroutine for the life of the process.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := j.Sweep(ctx)
			if err != nil {
				j.log.Error("Audio cleanup failed: %v", err)

				continue
			}

			if removed > 0 {
				j.log.Info("Audio cleanup removed %d file(s) older than %s",
					removed, j.maxAge)
			}
		}
	}
}

// Sweep removes every audio artifact older than the maximum age and
// returns the number of files deleted. Errors on individual files are
// logged and skipped so one bad entry cannot stall the sweep.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(j.store.BaseDir())
	if err != nil {
		return 0, fmt.Errorf("failed to list audio directory: %w", err)
	}

	cutoff := time.Now().Add(-j.maxAge)
	removed := 0

	for _, entry := range entries {
		if entry.IsDir() || !ttsutils.IsValidAudioFile(entry.Name()) {
			continue
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			j.log.Warn("Skipping %s during cleanup: %v", entry.Name(), infoErr)

			continue
		}

		if info.ModTime().After(cutoff) {
			continue
		}

		removeErr := os.Remove(filepath.Join(j.store.BaseDir(), entry.Name()))
		if removeErr != nil {
			j.log.Warn("Failed to remove %s during cleanup: %v", entry.Name(), removeErr)

			continue
		}

		j.removeRemote(ctx, entry.Name())

		removed++
	}

	return removed, nil
}

// removeRemote follows a local deletion through to the mirror. A missing
// remote copy is not worth more than a warning; artifacts synthesized
// while the mirror was disabled were never uploaded.
func (j *Janitor) removeRemote(ctx context.Context, filename string) {
	if j.remote == nil {
		return
	}

	err := j.remote.Delete(ctx, filename)
	if err != nil {
		j.log.Warn("Failed to remove %s from mirror: %v", filename, err)
	}
}
