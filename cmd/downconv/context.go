package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"downconv/internal/config"
	"downconv/internal/history"
	"downconv/internal/jobs"
	"downconv/internal/logging"
	"downconv/internal/textutil"
)

var (
	// errJobFailed reports a run whose outcome was already printed.
	errJobFailed = errors.New("job failed")
	// errCancelled reports a run stopped by the user.
	errCancelled = errors.New("job cancelled")
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	flag         *jobs.Flag

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	historyOnce sync.Once
	history     *history.Store
	historyErr  error
}

func newCommandContext(configFlag, logLevelFlag *string, flag *jobs.Flag) *commandContext {
	if flag == nil {
		flag = &jobs.Flag{}
	}
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		flag:         flag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
				cfg.Logging.Level = level
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// loggerFor returns the process logger, pruning rotated log files the
// first time it is built.
func (c *commandContext) loggerFor(cmd *cobra.Command) *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "logging disabled: %v\n", err)
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
		if cfg.Paths.LogDir != "" {
			logging.PruneRotated(logger, filepath.Join(cfg.Paths.LogDir, logging.LogFileName), cfg.Logging.RetentionDays, time.Now())
		}
	})
	return c.logger
}

func (c *commandContext) historyStore() (*history.Store, error) {
	c.historyOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.historyErr = err
			return
		}
		c.history, c.historyErr = history.Open(cfg)
	})
	return c.history, c.historyErr
}

func (c *commandContext) close() {
	if c.history != nil {
		_ = c.history.Close()
	}
}

// skipConfigLoad marks commands that load or create configuration
// themselves instead of going through the root pre-run.
const skipConfigLoad = "skipConfigLoad"

func withoutConfigLoad() map[string]string {
	return map[string]string{skipConfigLoad: "true"}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigLoad] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	return textutil.Ternary(value, "sì", "no")
}
