package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-journal/internal/config"
	infraBQ "github.com/dvloznov/finance-journal/internal/infra/bigquery"
	"github.com/dvloznov/finance-journal/internal/llm"
	"github.com/dvloznov/finance-journal/internal/logger"
	"github.com/dvloznov/finance-journal/internal/pipeline"
	"github.com/dvloznov/finance-journal/internal/storage/sqlite"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// logger writes to stderr so command output on stdout stays clean.
func (c *commandContext) logger() zerolog.Logger {
	level := "info"
	if c.config != nil {
		level = c.config.Logging.Level
	}
	return logger.NewWithWriter(zerolog.ConsoleWriter{Out: os.Stderr}).Level(logger.ParseLevel(level))
}

// withLogger attaches the command logger to ctx.
func (c *commandContext) withLogger(ctx context.Context) context.Context {
	return logger.WithContext(ctx, c.logger())
}

func (c *commandContext) openStore(ctx context.Context) (*sqlite.SQLiteStore, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return sqlite.New(ctx, cfg.Database.Path)
}

func (c *commandContext) openAudit(ctx context.Context) (*infraBQ.BigQueryAuditRepository, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Audit.Project == "" {
		return nil, errors.New("audit.project is not configured (set BQ_PROJECT)")
	}
	return infraBQ.NewBigQueryAuditRepository(ctx, cfg.Audit.Project, cfg.Audit.Dataset)
}

// newPipeline builds the configured pipeline. Runs are written straight to
// the audit dataset when audit is enabled; the returned closer releases it.
func (c *commandContext) newPipeline(ctx context.Context) (*pipeline.Pipeline, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}

	provider, err := llm.NewProvider(ctx, cfg.LLM)
	if err != nil {
		return nil, nil, err
	}

	opts := []pipeline.Option{pipeline.WithModelInfo(provider.Name, provider.Model)}
	closer := func() {}

	if cfg.Audit.Enabled {
		repo, err := c.openAudit(ctx)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, pipeline.WithRecorder(repo))
		closer = func() { _ = repo.Close() }
	}

	return pipeline.New(provider.Gateway, opts...), closer, nil
}
