//go:build mage

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Pipeline groups targets that drive the CLI end to end.
type Pipeline mg.Namespace

// Collect gathers posts and comments for a space-separated list of subreddits.
func (Pipeline) Collect(subreddits string) error {
	mg.Deps(Build, Init)
	names := strings.Fields(subreddits)
	if len(names) == 0 {
		return fmt.Errorf("no subreddits given")
	}
	return sh.RunV(binPath(), append([]string{"collect"}, names...)...)
}

// Analyze runs a corpus analysis over everything stored, comments included.
func (Pipeline) Analyze() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "analyze", "run", "--comments")
}

// Report prints the latest all-subreddits corpus analysis.
func (Pipeline) Report() error {
	mg.Deps(Build)
	return sh.RunV(binPath(), "report")
}

// Run collects the given subreddits, analyzes them and prints the report.
func (Pipeline) Run(subreddits string) error {
	p := Pipeline{}
	if err := p.Collect(subreddits); err != nil {
		return err
	}
	mg.SerialDeps(p.Analyze, p.Report)
	return nil
}
