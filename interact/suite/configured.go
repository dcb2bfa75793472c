// SPDX-License-Identifier: GPL-3.0-or-later

package suite

import (
	"context"

	"github.com/osmocom/python-osmo-python-tests/interact/config"
	"github.com/osmocom/python-osmo-python-tests/interact/ctrl"
	"github.com/osmocom/python-osmo-python-tests/interact/vty"
	"github.com/osmocom/python-osmo-python-tests/pkg/socket"
)

// Job is a target and the transcripts to verify against it.
type Job struct {
	Target Target
	Files  []string
}

// Jobs returns one job per endpoint of the suite file that lists transcripts.
// CTRL ids recorded in transcripts are only renumbered in update mode, and
// only when the endpoint does not ask to keep them.
func Jobs(cfg *config.Suite, update bool) ([]Job, error) {
	var jobs []Job

	for _, t := range cfg.Targets {
		if t.VTY != nil {
			files, err := cfg.Transcripts(t.VTY)
			if err != nil {
				return nil, err
			}
			if len(files) > 0 {
				jobs = append(jobs, Job{Target: VTYTarget(cfg, t), Files: files})
			}
		}
		if t.CTRL != nil {
			files, err := cfg.Transcripts(t.CTRL)
			if err != nil {
				return nil, err
			}
			if len(files) > 0 {
				jobs = append(jobs, Job{Target: CTRLTarget(cfg, t, t.CTRL.KeepIDs || !update), Files: files})
			}
		}
	}

	return jobs, nil
}

// DocTargets returns the targets of the suite file that have a VTY.
func DocTargets(cfg *config.Suite) []Target {
	var targets []Target
	for _, t := range cfg.Targets {
		if t.VTY != nil {
			targets = append(targets, VTYTarget(cfg, t))
		}
	}
	return targets
}

func VTYTarget(cfg *config.Suite, t config.Target) Target {
	vcfg := vty.Config{
		Address:    socket.HostPort(cfg.Host, t.VTY.Port),
		PromptName: t.VTY.PromptName,
		Timeout:    t.VTY.Timeout,
	}
	return Target{
		Name:        t.Name,
		Run:         t.Run,
		StopTimeout: cfg.StopTimeout.Duration(),
		NewSession:  func() Session { return vty.New(vcfg) },
	}
}

func CTRLTarget(cfg *config.Suite, t config.Target, keepIDs bool) Target {
	ccfg := ctrl.Config{
		Address: socket.HostPort(cfg.Host, t.CTRL.Port),
		KeepIDs: keepIDs,
		Timeout: t.CTRL.Timeout,
	}
	return Target{
		Name:        t.Name,
		Run:         t.Run,
		StopTimeout: cfg.StopTimeout.Duration(),
		NewSession:  func() Session { return ctrl.New(ccfg) },
	}
}

// VerifyJobs verifies all jobs and returns the combined results.
func (s *Suite) VerifyJobs(ctx context.Context, jobs []Job) Results {
	var results Results
	for _, job := range jobs {
		s.Infof("target '%s': %d transcript(s)", job.Target.Name, len(job.Files))
		results = append(results, s.Verify(ctx, job.Target, job.Files)...)
	}
	return results
}
