package main

import (
	"fmt"

	"github.com/polysafe/polysafe/internal/audit"
	"github.com/polysafe/polysafe/internal/capability"
	"github.com/polysafe/polysafe/internal/config"
	"github.com/polysafe/polysafe/internal/logging"
	"go.uber.org/zap"
)

// env bundles the resolved configuration and the live resources every
// subcommand needs, built once from the layered config plus any
// persistent flags the user passed.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func loadEnv() (*env, error) {
	overrides := &config.Config{
		RootDir:     rootDir,
		Permissions: permissions,
		AuditLog:    auditLog,
		LogLevel:    logLevel,
		Verbose:     verbose,
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	return &env{cfg: cfg, logger: logger}, nil
}

func (e *env) capability() (*capability.DirCapability, error) {
	perms, err := config.ParsePermissions(e.cfg.Permissions)
	if err != nil {
		return nil, err
	}
	return capability.New(e.cfg.RootDir, perms)
}

func (e *env) auditLog() (*audit.AuditLog, error) {
	return audit.Open(e.cfg.AuditLog)
}
