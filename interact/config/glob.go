// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mitchellh/go-homedir"
)

// ExpandGlobs expands '~' and doublestar globs ("tests/**/*.vty"). Paths
// without glob characters are passed through even if they do not exist, so
// that a missing transcript shows up as a failed one. A glob matching nothing
// is an error.
func ExpandGlobs(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		p, err := homedir.Expand(pattern)
		if err != nil {
			return nil, err
		}

		if !hasMeta(p) {
			if !seen[p] {
				seen[p] = true
				files = append(files, p)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob '%s': %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("glob '%s': no matching files", pattern)
		}
		sort.Strings(matches)

		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	return files, nil
}

func hasMeta(path string) bool {
	for _, c := range filepath.ToSlash(path) {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
