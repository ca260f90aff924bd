// Package actions implements the workflows behind each CLI command.
package actions

import (
	"laminar.dev/laminar/internal/config"
	"laminar.dev/laminar/internal/github"
	"laminar.dev/laminar/internal/output"
)

// Context carries the dependencies every action needs.
type Context struct {
	Forge github.Client
	Cfg   *config.Config
	Splog *output.Splog
}
