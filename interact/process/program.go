// SPDX-License-Identifier: GPL-3.0-or-later

package process

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/osmocom/python-osmo-python-tests/logger"
)

const outputLimit = 8 << 10 // 8 KiB

// RunProgram runs a test program against a launched target and returns its
// combined stdout and stderr. The program is run as a single word: arguments
// are not supported. On failure the error carries a trimmed output snippet,
// the full output is returned as well.
func RunProgram(ctx context.Context, log *logger.Logger, program string) ([]byte, error) {
	ex := exec.CommandContext(ctx, program)

	log.Debugf("executing: %v", ex)

	out, err := ex.CombinedOutput()
	if err != nil {
		s := string(out)
		if len(s) > outputLimit {
			s = s[len(s)-outputLimit:] + " (truncated)"
		}
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return out, fmt.Errorf("%v: %w (output: %s)", ex, err, strings.TrimSpace(s))
	}

	return out, nil
}
