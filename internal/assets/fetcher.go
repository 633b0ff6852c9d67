// Package assets downloads the wavtokenizer model assets the synthesis
// engine needs: a YAML config and a large checkpoint file. Downloads are
// skipped when the files already exist, so Ensure is safe to run on every
// startup.
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/book-expert/logger"
	"golang.org/x/sync/errgroup"

	"github.com/naija-speech/tts-api/internal/config"
)

// File and directory permissions.
const (
	filePermissions = 0o600
	dirPermissions  = 0o750
)

// Static errors.
var (
	// ErrNoDownloadURL indicates a required asset is missing on disk and no
	// URL was configured to fetch it from.
	ErrNoDownloadURL = errors.New("asset missing and no download URL configured")
	// ErrBadDownloadStatus indicates the asset host answered with a
	// non-OK status.
	ErrBadDownloadStatus = errors.New("unexpected download status")
)

// Fetcher ensures model assets exist on local disk.
type Fetcher struct {
	cfg        config.ModelConfig
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a fetcher for the configured model directory and URLs.
func New(cfg config.ModelConfig, log *logger.Logger) *Fetcher {
	return &Fetcher{
		cfg:        cfg,
		httpClient: &http.Client{},
		log:        log,
	}
}

// ConfigPath returns the on-disk path of the wavtokenizer config.
func (f *Fetcher) ConfigPath() string {
	return filepath.Join(f.cfg.Dir, f.cfg.ConfigFile)
}

// CheckpointPath returns the on-disk path of the model checkpoint.
func (f *Fetcher) CheckpointPath() string {
	return filepath.Join(f.cfg.Dir, f.cfg.CheckpointFile)
}

// Ensure downloads any asset that is missing from the models directory.
// The two assets download concurrently; the checkpoint runs to hundreds of
// megabytes, so it is streamed straight to disk and moved into place with
// an atomic rename once complete.
func (f *Fetcher) Ensure(ctx context.Context) error {
	err := os.MkdirAll(f.cfg.Dir, dirPermissions)
	if err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return f.ensureOne(groupCtx, f.ConfigPath(), f.cfg.ConfigURL)
	})
	group.Go(func() error {
		return f.ensureOne(groupCtx, f.CheckpointPath(), f.cfg.CheckpointURL)
	})

	err = group.Wait()
	if err != nil {
		return fmt.Errorf("failed to ensure model assets: %w", err)
	}

	return nil
}

func (f *Fetcher) ensureOne(ctx context.Context, path, url string) error {
	_, statErr := os.Stat(path)
	if statErr == nil {
		return nil
	}

	if !os.IsNotExist(statErr) {
		return fmt.Errorf("failed to check asset %s: %w", path, statErr)
	}

	if url == "" {
		return fmt.Errorf("%w: %s", ErrNoDownloadURL, filepath.Base(path))
	}

	f.log.Info("Downloading model asset %s from %s", filepath.Base(path), url)

	err := f.download(ctx, path, url)
	if err != nil {
		return err
	}

	f.log.Info("Downloaded model asset %s", filepath.Base(path))

	return nil
}

// download streams the asset to a sibling temp file and renames it into
// place, so a crashed download never leaves a truncated asset behind.
func (f *Fetcher) download(ctx context.Context, path, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s for %s", ErrBadDownloadStatus, resp.Status, url)
	}

	tempPath := path + ".partial"

	tempFile, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePermissions)
	if err != nil {
		return fmt.Errorf("failed to create partial file: %w", err)
	}

	_, copyErr := io.Copy(tempFile, resp.Body)
	closeErr := tempFile.Close()

	if copyErr != nil {
		_ = os.Remove(tempPath)

		return fmt.Errorf("failed to write asset to disk: %w", copyErr)
	}

	if closeErr != nil {
		_ = os.Remove(tempPath)

		return fmt.Errorf("failed to close partial file: %w", closeErr)
	}

	err = os.Rename(tempPath, path)
	if err != nil {
		return fmt.Errorf("failed to move asset into place: %w", err)
	}

	return nil
}
