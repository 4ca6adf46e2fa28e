package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"ownergen/internal/config"
	"ownergen/internal/errors"
	"ownergen/internal/generate"
	"ownergen/internal/history"
	"ownergen/internal/ownership"
	"ownergen/internal/paths"
	"ownergen/internal/slogutil"
	"ownergen/internal/storage"
	"ownergen/internal/usermap"
)

// session is the state shared by every command: repository, effective
// configuration and logger.
type session struct {
	repoRoot string
	isRepo   bool
	load     *config.LoadResult
	cfg      *config.Config
	logger   *slog.Logger
	closer   io.Closer
}

// openSession resolves the repository and loads the configuration. A
// directory that is not a git repository is accepted here; commands that
// need history call requireRepo.
func openSession() (*session, error) {
	s := &session{}

	root, err := history.RepoRoot(repoPath)
	if err == nil {
		s.repoRoot, s.isRepo = root, true
	} else if s.repoRoot, err = filepath.Abs(repoPath); err != nil {
		return nil, errors.New(errors.InvalidArgument, "invalid repository path "+repoPath, err)
	}

	s.load, err = config.LoadConfigWithDetails(s.repoRoot, configPath)
	if err != nil {
		return nil, err
	}
	s.cfg = s.load.Config

	file := logFile
	if file == "" {
		file = s.cfg.Logging.File
	}
	if file != "" {
		file = s.resolve(file)
	}

	s.logger, s.closer, err = slogutil.Setup(os.Stderr, slogutil.Options{
		Level:      slogutil.LevelFromVerbosity(verbosity, quiet, slogutil.LevelFromString(s.cfg.Logging.Level)),
		File:       file,
		FileLevel:  slog.LevelDebug,
		MaxSize:    s.cfg.Logging.MaxSize,
		MaxBackups: s.cfg.Logging.MaxBackups,
	})
	if err != nil {
		return nil, errors.New(errors.ConfigFileError, "failed to open log file "+file, err)
	}

	s.logger.Debug("Session opened",
		"repoRoot", s.repoRoot,
		"isRepo", s.isRepo,
		"configPath", s.load.ConfigPath,
		"envOverrides", len(s.load.EnvOverrides),
	)
	return s, nil
}

func (s *session) Close() {
	if s.closer != nil {
		_ = s.closer.Close()
	}
}

func (s *session) requireRepo() error {
	if !s.isRepo {
		return errors.New(errors.GitUnavailable, "not a git repository: "+s.repoRoot, nil)
	}
	return nil
}

// resolve makes a configured path absolute relative to the repository root.
func (s *session) resolve(p string) string {
	return paths.Resolve(s.repoRoot, p)
}

// openCache opens the result cache, or returns nil when caching is disabled
// or the cache cannot be opened. Failures are logged, never fatal.
func (s *session) openCache() (*storage.Cache, func()) {
	if !s.cfg.Cache.Enabled {
		return nil, func() {}
	}
	db, err := storage.Open(s.resolve(s.cfg.Cache.Dir), s.logger)
	if err != nil {
		s.logger.Warn("Cache unavailable, continuing without it",
			"dir", s.cfg.Cache.Dir,
			"error", err.Error(),
		)
		return nil, func() {}
	}
	return storage.NewCache(db, s.logger), func() { _ = db.Close() }
}

// generate runs the full pipeline with the session's configuration.
func (s *session) generate(ctx context.Context, progress ownership.ProgressFunc) (*generate.Result, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireRepo(); err != nil {
		return nil, err
	}

	provider, err := history.NewGit(s.repoRoot, s.cfg.GitTimeout(), s.logger)
	if err != nil {
		return nil, err
	}

	var mapping usermap.Mapping
	if s.cfg.UsernameMapping != "" {
		mapping, err = usermap.Load(s.resolve(s.cfg.UsernameMapping))
		if err != nil {
			return nil, err
		}
		s.logger.Info("Loaded username mappings", "count", len(mapping))
	}

	cache, closeCache := s.openCache()
	defer closeCache()

	runner := generate.NewRunner(provider, cache, s.logger)
	return runner.Run(ctx, generate.Options{
		Config:   s.cfg,
		Repo:     s.repoRoot,
		Mapping:  mapping,
		Progress: progress,
	})
}
