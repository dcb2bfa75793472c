// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/osmocom/python-osmo-python-tests/pkg/confopt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const suiteYAML = `
timeout: 5
stop_timeout: 2s
doc_dir: doc
targets:
  - name: osmo-bsc
    run: osmo-bsc -c osmo-bsc.cfg
    vty:
      port: 4242
      prompt_name: OsmoBSC
      transcripts: ["tests/*.vty"]
    ctrl:
      port: 4249
      timeout: 1s
      transcripts: ["tests/**/*.ctrl"]
  - name: osmo-hlr
    vty:
      port: 4258
`

const suiteINI = `
timeout = 5
stop_timeout = 2s
doc_dir = doc

[osmo-bsc]
run = osmo-bsc -c osmo-bsc.cfg
vty_port = 4242
vty_prompt_name = OsmoBSC
vty_transcripts = tests/*.vty
ctrl_port = 4249
ctrl_timeout = 1s
ctrl_transcripts = tests/**/*.ctrl

[osmo-hlr]
vty_port = 4258
`

func TestLoad(t *testing.T) {
	want := func(dir string) *Suite {
		return &Suite{
			Host:        DefaultHost,
			Timeout:     confopt.Duration(5 * time.Second),
			StopTimeout: confopt.Duration(2 * time.Second),
			DocDir:      "doc",
			Targets: []Target{
				{
					Name: "osmo-bsc",
					Run:  "osmo-bsc -c osmo-bsc.cfg",
					VTY: &Endpoint{
						Port:        4242,
						PromptName:  "OsmoBSC",
						Timeout:     confopt.Duration(5 * time.Second),
						Transcripts: []string{"tests/*.vty"},
					},
					CTRL: &Endpoint{
						Port:        4249,
						Timeout:     confopt.Duration(time.Second),
						Transcripts: []string{"tests/**/*.ctrl"},
					},
				},
				{
					Name: "osmo-hlr",
					VTY:  &Endpoint{Port: 4258, Timeout: confopt.Duration(5 * time.Second)},
				},
			},
			dir: dir,
		}
	}

	tests := map[string]struct {
		filename string
		content  string
		wantErr  bool
	}{
		"yaml": {
			filename: "suite.yaml",
			content:  suiteYAML,
		},
		"ini": {
			filename: "suite.ini",
			content:  suiteINI,
		},
		"yaml unknown field": {
			filename: "suite.yml",
			content:  "targets:\n  - name: a\n    vty: {port: 1}\n    bogus: 1\n",
			wantErr:  true,
		},
		"ini unknown key": {
			filename: "suite.ini",
			content:  "[a]\nvty_port = 1\nvty_bogus = 2\n",
			wantErr:  true,
		},
		"no targets": {
			filename: "suite.yaml",
			content:  "host: localhost\n",
			wantErr:  true,
		},
		"target without interfaces": {
			filename: "suite.yaml",
			content:  "targets:\n  - name: a\n",
			wantErr:  true,
		},
		"invalid port": {
			filename: "suite.ini",
			content:  "[a]\nctrl_port = 70000\n",
			wantErr:  true,
		},
		"duplicate target": {
			filename: "suite.yaml",
			content:  "targets:\n  - {name: a, vty: {port: 1}}\n  - {name: a, vty: {port: 2}}\n",
			wantErr:  true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, test.filename)
			require.NoError(t, os.WriteFile(path, []byte(test.content), 0o644))

			s, err := Load(path)

			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			abs, err := filepath.Abs(dir)
			require.NoError(t, err)
			assert.Equal(t, want(abs), s)
		})
	}
}

func TestLoad_DefaultCtrlPort(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.yaml")
	require.NoError(t, os.WriteFile(path, []byte("targets:\n  - name: osmo-bsc\n    ctrl: {}\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	require.NotNil(t, s.Targets[0].CTRL)
	assert.Equal(t, DefaultCtrlPort, s.Targets[0].CTRL.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSuite_Transcripts(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"tests/a.vty", "tests/b.vty", "tests/sub/c.ctrl", "tests/notes.txt"} {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	s := &Suite{dir: dir}

	tests := map[string]struct {
		patterns []string
		want     []string
		wantErr  bool
	}{
		"glob": {
			patterns: []string{"tests/*.vty"},
			want:     []string{"tests/a.vty", "tests/b.vty"},
		},
		"doublestar": {
			patterns: []string{"tests/**/*.ctrl"},
			want:     []string{"tests/sub/c.ctrl"},
		},
		"literal path is kept even if missing": {
			patterns: []string{"tests/missing.vty"},
			want:     []string{"tests/missing.vty"},
		},
		"duplicates are dropped": {
			patterns: []string{"tests/a.vty", "tests/*.vty"},
			want:     []string{"tests/a.vty", "tests/b.vty"},
		},
		"glob without matches": {
			patterns: []string{"tests/*.none"},
			wantErr:  true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			files, err := s.Transcripts(&Endpoint{Transcripts: test.patterns})

			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			var want []string
			for _, w := range test.want {
				want = append(want, filepath.Join(dir, filepath.FromSlash(w)))
			}
			assert.Equal(t, want, files)
		})
	}
}

func TestSuite_Resolve(t *testing.T) {
	s := &Suite{dir: "/etc/osmocom"}

	p, err := s.Resolve("tests/a.vty")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/etc/osmocom", "tests/a.vty"), p)

	p, err = s.Resolve("/abs/a.vty")
	require.NoError(t, err)
	assert.Equal(t, "/abs/a.vty", p)
}
