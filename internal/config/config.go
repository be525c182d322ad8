// Package config defines the CLI structure and configuration for padrelay.
package config

import (
	"github.com/Alia5/padrelay/internal/cmd"
)

type Log struct {
	Level   string `help:"Log level: trace, debug, info, warn, error" default:"info" env:"PADRELAY_LOG_LEVEL"`
	File    string `help:"Log file path (default: none; logs only to console)" env:"PADRELAY_LOG_FILE"`
	RawFile string `help:"Raw frame log file path (default: none)" env:"PADRELAY_LOG_RAW_FILE"`
}

// CLI is the root command structure for Kong CLI parsing.
type CLI struct {
	Config string `help:"Config file (JSON, YAML or TOML)" type:"path" env:"PADRELAY_CONFIG"`
	Log    `embed:"" prefix:"log."`

	Run    cmd.Run    `cmd:"" default:"withargs" help:"Start the relay daemon"`
	Status cmd.Status `cmd:"" help:"Print the slot table of a running daemon"`
}
