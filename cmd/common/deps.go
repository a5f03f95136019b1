// Package common provides shared dependency wiring for the CLI commands.
package common

import (
	"fmt"

	"github.com/jonesrussell/chatscrape/internal/config"
	"github.com/jonesrussell/chatscrape/internal/logger"
	"github.com/jonesrussell/chatscrape/internal/target"
	"github.com/jonesrussell/chatscrape/internal/target/chatgpt"
	"github.com/jonesrussell/chatscrape/internal/target/claude"
	"github.com/jonesrussell/chatscrape/internal/target/deepseek"
	"github.com/jonesrussell/chatscrape/internal/target/gemini"
)

// CommandDeps holds the dependencies every command needs.
type CommandDeps struct {
	Logger logger.Interface
	Config *config.Config
}

// Validate checks that all required dependencies are present.
func (d CommandDeps) Validate() error {
	if d.Logger == nil {
		return fmt.Errorf("logger is required")
	}
	if d.Config == nil {
		return fmt.Errorf("config is required")
	}
	return nil
}

// NewCommandDeps creates CommandDeps by loading config and creating a logger.
func NewCommandDeps(cfgFile string, debug bool) (CommandDeps, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return CommandDeps{}, fmt.Errorf("load config: %w", err)
	}

	logCfg := cfg.Logging
	if debug {
		logCfg.Level = logger.DebugLevel
		logCfg.Development = true
	}

	log, err := logger.New(&logCfg)
	if err != nil {
		return CommandDeps{}, fmt.Errorf("create logger: %w", err)
	}

	deps := CommandDeps{
		Logger: log,
		Config: cfg,
	}

	if validateErr := deps.Validate(); validateErr != nil {
		return CommandDeps{}, fmt.Errorf("validate deps: %w", validateErr)
	}

	return deps, nil
}

// Strategies builds the full set of extraction strategies, each wrapped
// so a panic in one target cannot take down the scan loop.
func Strategies(deps CommandDeps) []target.Strategy {
	log := deps.Logger
	return []target.Strategy{
		target.Guarded(log, chatgpt.New(log)),
		target.Guarded(log, claude.New(log)),
		target.Guarded(log, deepseek.New(log)),
		target.Guarded(log, gemini.New(log, deps.Config.Heuristics)),
	}
}
