// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/osmocom/python-osmo-python-tests/pkg/confopt"
)

// parseINI reads the INI flavour of a suite file: suite wide keys in the
// default section, one section per target with vty_ and ctrl_ prefixed keys.
func parseINI(bs []byte) (*Suite, error) {
	f, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true}, bs)
	if err != nil {
		return nil, err
	}

	s := &Suite{}

	def := f.Section(ini.DefaultSection)
	for _, key := range def.Keys() {
		switch key.Name() {
		case "host":
			s.Host = key.String()
		case "timeout":
			if s.Timeout, err = confopt.ParseDuration(key.String()); err != nil {
				return nil, fmt.Errorf("key '%s': %w", key.Name(), err)
			}
		case "stop_timeout":
			if s.StopTimeout, err = confopt.ParseDuration(key.String()); err != nil {
				return nil, fmt.Errorf("key '%s': %w", key.Name(), err)
			}
		case "doc_dir":
			s.DocDir = key.String()
		default:
			return nil, fmt.Errorf("unknown key '%s'", key.Name())
		}
	}

	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		t, err := parseINITarget(sec)
		if err != nil {
			return nil, fmt.Errorf("section '%s': %w", sec.Name(), err)
		}
		s.Targets = append(s.Targets, t)
	}

	return s, nil
}

func parseINITarget(sec *ini.Section) (Target, error) {
	t := Target{Name: sec.Name()}

	endpoint := func(prefix string) *Endpoint {
		switch prefix {
		case "vty":
			if t.VTY == nil {
				t.VTY = &Endpoint{}
			}
			return t.VTY
		default:
			if t.CTRL == nil {
				t.CTRL = &Endpoint{}
			}
			return t.CTRL
		}
	}

	for _, key := range sec.Keys() {
		name := key.Name()
		if name == "run" {
			t.Run = key.String()
			continue
		}

		prefix, field, ok := strings.Cut(name, "_")
		if !ok || (prefix != "vty" && prefix != "ctrl") {
			return Target{}, fmt.Errorf("unknown key '%s'", name)
		}
		ep := endpoint(prefix)

		var err error
		switch field {
		case "port":
			ep.Port, err = key.Int()
		case "prompt_name":
			ep.PromptName = key.String()
		case "keep_ids":
			ep.KeepIDs, err = key.Bool()
		case "timeout":
			ep.Timeout, err = confopt.ParseDuration(key.String())
		case "transcripts":
			ep.Transcripts = key.Strings(",")
		default:
			return Target{}, fmt.Errorf("unknown key '%s'", name)
		}
		if err != nil {
			return Target{}, fmt.Errorf("key '%s': %w", name, err)
		}
	}

	return t, nil
}
