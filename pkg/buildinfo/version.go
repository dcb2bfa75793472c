// SPDX-License-Identifier: GPL-3.0-or-later

package buildinfo

import "fmt"

// Version stores the tool's version number. It's set during the build process using build flags.
var Version = "v0.0.0"

// Info returns the version line printed by --version.
func Info(name string) string {
	return fmt.Sprintf("%s, version: %s", name, Version)
}
