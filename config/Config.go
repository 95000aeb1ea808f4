// Package config implements the YAML configuration of training runs
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samuelfneumann/gorl/agent"
	"github.com/samuelfneumann/gorl/agent/qlearning"
	"gopkg.in/yaml.v3"
)

// Environments which can be trained on
const (
	Grid      = "grid"
	TicTacToe = "tictactoe"
)

// Opponents in two-player environments
const (
	SelfPlay = "self"
	Random   = "random"
)

// Stores agents can be saved to
const (
	FileStore   = "file"
	BadgerStore = "badger"
)

// GridConfig configures the grid world
type GridConfig struct {
	Rows int `yaml:"rows" validate:"gte=1"`
	Cols int `yaml:"cols" validate:"gte=1"`
}

// StoreConfig configures where agents are saved
type StoreConfig struct {
	Kind string `yaml:"kind" validate:"oneof=file badger"`
	Path string `yaml:"path" validate:"required"`
}

// ReportConfig configures the data and charts written after training.
// Nothing is written if Dir is empty.
type ReportConfig struct {
	Dir    string `yaml:"dir"`
	Window int    `yaml:"window" validate:"gte=1"`
}

// LogConfig configures logging
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Run is the configuration of a training run. Runs with Runs > 1 train
// independent agents in parallel, the ith run using seed Seed+i.
type Run struct {
	Environment string             `yaml:"environment" validate:"oneof=grid tictactoe"`
	Grid        GridConfig         `yaml:"grid"`
	Agent       agent.TypedConfig  `yaml:"agent"`
	Opponent    string             `yaml:"opponent" validate:"oneof=self random"`
	Episodes    int                `yaml:"episodes" validate:"gte=1"`
	StepLimit   int                `yaml:"step_limit" validate:"gte=0"`
	Seed        uint64             `yaml:"seed"`
	Runs        int                `yaml:"runs" validate:"gte=1"`
	Checkpoint  int                `yaml:"checkpoint_every" validate:"gte=0"`
	Store       StoreConfig        `yaml:"store"`
	Report      ReportConfig       `yaml:"report"`
	Log         LogConfig          `yaml:"log"`
}

var validate = validator.New()

// Validate checks that the configuration describes a run which can be
// trained
func (r Run) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	if r.Environment == Grid && r.Grid.Rows*r.Grid.Cols < 2 {
		return fmt.Errorf("validate: grid must have more than one cell")
	}
	if err := r.Agent.Validate(); err != nil {
		return fmt.Errorf("validate: agent: %w", err)
	}
	return nil
}

// Default returns the default configuration, training a tabular agent
// on a 9x9 grid world
func Default() Run {
	return Run{
		Environment: Grid,
		Grid:        GridConfig{Rows: 9, Cols: 9},
		Agent:       agent.NewTypedConfig(qlearning.DefaultConfig()),
		Opponent:    SelfPlay,
		Episodes:    10_000,
		StepLimit:   1_000,
		Seed:        0,
		Runs:        1,
		Checkpoint:  0,
		Store:       StoreConfig{Kind: FileStore, Path: "agents"},
		Report:      ReportConfig{Dir: "results", Window: 100},
		Log:         LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the configuration in the YAML file at path. Fields missing
// from the file keep their default values.
func Load(path string) (Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Run{}, fmt.Errorf("load: %w", err)
	}
	return Parse(data)
}

// Parse parses a YAML configuration. Fields missing from data keep
// their default values.
func Parse(data []byte) (Run, error) {
	r := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&r); err != nil && !errors.Is(err, io.EOF) {
		return Run{}, fmt.Errorf("parse: %w", err)
	}

	if err := r.Validate(); err != nil {
		return Run{}, fmt.Errorf("parse: %w", err)
	}
	return r, nil
}
