// SPDX-License-Identifier: GPL-3.0-or-later

package executable

import (
	"os"
	"path/filepath"
	"strings"
)

var (
	Name      string
	Directory string
)

func init() {
	path, err := os.Executable()
	if err != nil || path == "" {
		Name = "osmo-interact"
		return
	}

	_, Name = filepath.Split(path)
	Name = strings.TrimSuffix(Name, ".exe")

	if strings.HasSuffix(Name, ".test") {
		Name = "test"
	}

	if real, err := filepath.EvalSymlinks(path); err == nil {
		path = real
	}
	Directory = filepath.Dir(path)
}
