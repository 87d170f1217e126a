package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/rs/zerolog/log"
	"github.com/vizlink/vizlink/internal/render"
)

const (
	artifactDirName = "artifacts"
	artifactExt     = ".svg.snappy"
)

var defaultMaxPerView = 10

// ErrNoArtifact is returned by Load when a view has never flushed an
// artifact to disk.
var ErrNoArtifact = errors.New("no artifact on disk")

// Store persists rendered artifacts to disk, snappy-compressed, one
// directory per view. Saves are buffered in memory and flushed on an
// interval so a burst of interactions does not hammer the disk.
type Store struct {
	rootDir     string
	artifactDir string

	flushInterval time.Duration
	maxPerView    int

	mutex   sync.Mutex
	pending map[string]*render.Artifact
	flushed map[string]string // viewID -> last flushed fingerprint

	procCtx   context.Context
	ctxCancel context.CancelFunc
}

type Config struct {
	RootDir string
	// FlushInterval is how often pending artifacts hit the disk, in seconds.
	FlushInterval int
	// MaxPerView bounds how many artifact files are kept per view.
	MaxPerView int
}

func (c *Config) validate() error {
	var errGrp []error
	if c.RootDir == "" {
		errGrp = append(errGrp, errors.New("root directory is required"))
	}
	if c.FlushInterval <= 0 {
		errGrp = append(errGrp, errors.New("flush interval must be greater than 0"))
	}
	// 0 means the default limit.
	if c.MaxPerView < 0 || c.MaxPerView > 100 {
		errGrp = append(errGrp, errors.New("max artifacts per view must be between 0 and 100"))
	}
	return errors.Join(errGrp...)
}

// New creates a new artifact store rooted at cfg.RootDir.
func New(cfg *Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	dirName := filepath.Join(cfg.RootDir, artifactDirName)
	if err := os.MkdirAll(dirName, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}

	if cfg.MaxPerView == 0 {
		cfg.MaxPerView = defaultMaxPerView
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Store{
		rootDir:       cfg.RootDir,
		artifactDir:   dirName,
		flushInterval: time.Duration(cfg.FlushInterval) * time.Second,
		maxPerView:    cfg.MaxPerView,
		pending:       make(map[string]*render.Artifact),
		flushed:       make(map[string]string),
		procCtx:       ctx,
		ctxCancel:     cancel,
	}, nil
}

// Save queues an artifact for the next flush. Only the newest artifact
// per view is kept, and an artifact whose fingerprint matches the last
// flush is dropped since the bytes on disk would be identical.
func (s *Store) Save(a *render.Artifact) {
	if a == nil || a.ViewID == "" {
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.flushed[a.ViewID] == a.Fingerprint {
		return
	}
	s.pending[a.ViewID] = a
}

// Start launches the background flush process.
func (s *Store) Start() error {
	go func() {
		ticker := time.NewTicker(s.flushInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.procCtx.Done():
				return
			case <-ticker.C:
				if err := s.Flush(); err != nil {
					log.Error().Err(err).Msg("artifact flush failed")
				}
			}
		}
	}()
	return nil
}

// Stop halts the flush process and writes out anything still pending.
func (s *Store) Stop() error {
	if s.ctxCancel != nil {
		s.ctxCancel()
	}
	return s.Flush()
}

func (s *Store) Name() string {
	return "Artifact Store"
}

// Flush writes every pending artifact to disk and trims each touched
// view directory down to the per-view limit.
func (s *Store) Flush() error {
	s.mutex.Lock()
	batch := s.pending
	s.pending = make(map[string]*render.Artifact)
	s.mutex.Unlock()

	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	var errGrp []error
	for viewID, a := range batch {
		if err := s.writeArtifact(a); err != nil {
			errGrp = append(errGrp, err)
			continue
		}
		s.mutex.Lock()
		s.flushed[viewID] = a.Fingerprint
		s.mutex.Unlock()

		if err := s.maintainViewLimit(viewID); err != nil {
			errGrp = append(errGrp, err)
		}
	}

	log.Debug().
		Int("artifacts", len(batch)).
		Str("duration", time.Since(start).String()).
		Msg("artifact flush complete")
	return errors.Join(errGrp...)
}

func (s *Store) writeArtifact(a *render.Artifact) error {
	dir := filepath.Join(s.artifactDir, a.ViewID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create view directory: %w", err)
	}

	name := fmt.Sprintf("%d-%s%s", a.Version, a.Fingerprint, artifactExt)
	encoded := snappy.Encode(nil, a.SVG)
	if err := os.WriteFile(filepath.Join(dir, name), encoded, 0644); err != nil {
		return fmt.Errorf("failed to write artifact file: %w", err)
	}
	return nil
}

// Load returns the newest artifact flushed for the given view. The
// in-memory pending entry wins over disk when both exist, since it is
// strictly newer.
func (s *Store) Load(viewID string) (*render.Artifact, error) {
	s.mutex.Lock()
	if a, ok := s.pending[viewID]; ok {
		s.mutex.Unlock()
		return a, nil
	}
	s.mutex.Unlock()

	files, err := filepath.Glob(filepath.Join(s.artifactDir, viewID, "*"+artifactExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list artifact files: %w", err)
	}
	if len(files) == 0 {
		return nil, ErrNoArtifact
	}

	latest := files[0]
	latestVersion := fileVersion(latest)
	for _, file := range files[1:] {
		if v := fileVersion(file); v > latestVersion {
			latest, latestVersion = file, v
		}
	}

	encoded, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", latest, err)
	}
	svg, err := snappy.Decode(nil, encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", latest, err)
	}

	info, err := os.Stat(latest)
	if err != nil {
		return nil, err
	}

	return &render.Artifact{
		ViewID:      viewID,
		Version:     latestVersion,
		Fingerprint: fileFingerprint(latest),
		RenderedAt:  info.ModTime(),
		SVG:         svg,
	}, nil
}

// Prune removes every artifact file older than the cutoff and returns
// how many were removed.
func (s *Store) Prune(olderThan time.Time) (int, error) {
	files, err := filepath.Glob(filepath.Join(s.artifactDir, "*", "*"+artifactExt))
	if err != nil {
		return 0, fmt.Errorf("failed to list artifact files: %w", err)
	}

	var removed int
	var errGrp []error
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(olderThan) {
			if err := os.Remove(file); err != nil {
				errGrp = append(errGrp, err)
				continue
			}
			removed++
		}
	}
	return removed, errors.Join(errGrp...)
}

// maintainViewLimit keeps at most maxPerView files in a view directory,
// removing the oldest versions first.
func (s *Store) maintainViewLimit(viewID string) error {
	files, err := filepath.Glob(filepath.Join(s.artifactDir, viewID, "*"+artifactExt))
	if err != nil {
		return fmt.Errorf("failed to list artifact files: %w", err)
	}
	if len(files) <= s.maxPerView {
		return nil
	}

	sort.Slice(files, func(i, j int) bool {
		return fileVersion(files[i]) < fileVersion(files[j])
	})

	var errGrp []error
	for _, file := range files[:len(files)-s.maxPerView] {
		if err := os.Remove(file); err != nil {
			errGrp = append(errGrp, err)
		}
	}
	return errors.Join(errGrp...)
}

func fileVersion(path string) uint64 {
	base := filepath.Base(path)
	idx := strings.Index(base, "-")
	if idx < 0 {
		return 0
	}
	v, err := strconv.ParseUint(base[:idx], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func fileFingerprint(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), artifactExt)
	idx := strings.Index(base, "-")
	if idx < 0 {
		return ""
	}
	return base[idx+1:]
}
