// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads suite files describing the network elements to test
// and their transcripts.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v2"

	"github.com/osmocom/python-osmo-python-tests/pkg/confopt"
)

const (
	DefaultHost = "localhost"
	// DefaultCtrlPort is the CTRL port of OsmoBSC. A ctrl endpoint without a
	// port uses it.
	DefaultCtrlPort = 4249
)

// Suite is the content of a suite file.
type Suite struct {
	Host        string           `yaml:"host"`
	Timeout     confopt.Duration `yaml:"timeout"`
	StopTimeout confopt.Duration `yaml:"stop_timeout"`
	// DocDir is where dumpdoc writes the VTY reference files.
	DocDir  string   `yaml:"doc_dir"`
	Targets []Target `yaml:"targets"`

	// dir is the directory relative paths are resolved against.
	dir string
}

// Target is one network element.
type Target struct {
	Name string `yaml:"name"`
	// Run is the command line launching the target. Empty means it is
	// already running.
	Run  string    `yaml:"run"`
	VTY  *Endpoint `yaml:"vty"`
	CTRL *Endpoint `yaml:"ctrl"`
}

// Endpoint is a VTY or CTRL interface of a target.
type Endpoint struct {
	Port int `yaml:"port"`
	// PromptName is VTY only.
	PromptName string `yaml:"prompt_name"`
	// KeepIDs is CTRL only.
	KeepIDs     bool             `yaml:"keep_ids"`
	Timeout     confopt.Duration `yaml:"timeout"`
	Transcripts []string         `yaml:"transcripts"`
}

func (s *Suite) String() string {
	return fmt.Sprintf("host '%s', timeout '%s', %d target(s)", s.Host, s.Timeout, len(s.Targets))
}

// Load reads a suite file. Files ending in .ini or .conf are INI, anything
// else is YAML.
func Load(path string) (*Suite, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}

	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite file: %w", err)
	}

	var s *Suite
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".conf":
		s, err = parseINI(bs)
	default:
		s, err = parseYAML(bs)
	}
	if err != nil {
		return nil, fmt.Errorf("parse suite file '%s': %w", path, err)
	}

	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	s.dir = abs

	s.applyDefaults()

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("suite file '%s': %w", path, err)
	}

	return s, nil
}

func parseYAML(bs []byte) (*Suite, error) {
	var s Suite
	if err := yaml.UnmarshalStrict(bs, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Suite) applyDefaults() {
	if s.Host == "" {
		s.Host = DefaultHost
	}
	for i := range s.Targets {
		t := &s.Targets[i]
		if t.CTRL != nil && t.CTRL.Port == 0 {
			t.CTRL.Port = DefaultCtrlPort
		}
		for _, ep := range []*Endpoint{t.VTY, t.CTRL} {
			if ep != nil && ep.Timeout == 0 {
				ep.Timeout = s.Timeout
			}
		}
	}
}

func (s *Suite) validate() error {
	if len(s.Targets) == 0 {
		return errors.New("no targets")
	}

	seen := make(map[string]bool)
	for i, t := range s.Targets {
		if t.Name == "" {
			return fmt.Errorf("target %d: no name", i+1)
		}
		if seen[t.Name] {
			return fmt.Errorf("target '%s': duplicate name", t.Name)
		}
		seen[t.Name] = true

		if t.VTY == nil && t.CTRL == nil {
			return fmt.Errorf("target '%s': neither vty nor ctrl configured", t.Name)
		}
		for kind, ep := range map[string]*Endpoint{"vty": t.VTY, "ctrl": t.CTRL} {
			if ep != nil && (ep.Port <= 0 || ep.Port > 65535) {
				return fmt.Errorf("target '%s': invalid %s port %d", t.Name, kind, ep.Port)
			}
		}
	}

	return nil
}

// Dir returns the directory of the suite file.
func (s *Suite) Dir() string { return s.dir }

// Resolve expands '~' in path and makes a relative path relative to the
// suite file.
func (s *Suite) Resolve(path string) (string, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(path) || s.dir == "" {
		return path, nil
	}
	return filepath.Join(s.dir, path), nil
}

// Transcripts returns the transcript files of an endpoint with globs expanded.
func (s *Suite) Transcripts(ep *Endpoint) ([]string, error) {
	if ep == nil {
		return nil, nil
	}

	patterns := make([]string, 0, len(ep.Transcripts))
	for _, p := range ep.Transcripts {
		resolved, err := s.Resolve(p)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, resolved)
	}

	return ExpandGlobs(patterns)
}
