// Package vcs queries version-control metadata for build stamping.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// DefaultBinary is the git executable looked up on PATH.
const DefaultBinary = "git"

var (
	// ErrGitNotFound is returned when the git executable cannot be found.
	ErrGitNotFound = errors.New("git executable not found")

	// ErrNotRepository is returned when the working directory is not inside a repository.
	ErrNotRepository = errors.New("not a git repository")
)

// DescribeOptions selects the flags passed to git describe.
type DescribeOptions struct {
	Abbrev int  // abbreviated hash length, omitted when <= 0
	Dirty  bool // append -dirty for a modified working tree
	Always bool // fall back to the bare hash when no tag is reachable
	Tags   bool // consider lightweight tags
}

// DefaultDescribeOptions returns the options used for firmware version stamps.
func DefaultDescribeOptions() DescribeOptions {
	return DescribeOptions{
		Abbrev: 7,
		Dirty:  true,
		Always: true,
		Tags:   true,
	}
}

// Args returns the git command line for the options.
func (o DescribeOptions) Args() []string {
	args := []string{"describe"}
	if o.Abbrev > 0 {
		args = append(args, "--abbrev="+strconv.Itoa(o.Abbrev))
	}
	if o.Dirty {
		args = append(args, "--dirty")
	}
	if o.Always {
		args = append(args, "--always")
	}
	if o.Tags {
		args = append(args, "--tags")
	}
	return args
}

// Describer runs git describe.
type Describer struct {
	binaryPath string
	dir        string
	opts       DescribeOptions
}

// NewDescriber creates a describer. An empty binaryPath means DefaultBinary
// and an empty dir means the current working directory.
func NewDescriber(binaryPath, dir string, opts DescribeOptions) *Describer {
	if binaryPath == "" {
		binaryPath = DefaultBinary
	}
	return &Describer{
		binaryPath: binaryPath,
		dir:        dir,
		opts:       opts,
	}
}

// Describe returns the trimmed describe output, e.g. "v1.4.0-3-g1a2b3c4-dirty".
func (d *Describer) Describe(ctx context.Context) (string, error) {
	path, err := exec.LookPath(d.binaryPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrGitNotFound, d.binaryPath)
	}

	//nolint:gosec // G204: binary path comes from configuration
	cmd := exec.CommandContext(ctx, path, d.opts.Args()...)
	cmd.Dir = d.dir
	// Untranslated messages so failures can be classified.
	cmd.Env = append(os.Environ(), "LC_ALL=C")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, "not a git repository") {
			return "", fmt.Errorf("%w: %s", ErrNotRepository, msg)
		}
		if msg != "" {
			return "", fmt.Errorf("executing %s describe: %w: %s", d.binaryPath, err, msg)
		}
		return "", fmt.Errorf("executing %s describe: %w", d.binaryPath, err)
	}

	revision := strings.TrimSpace(stdout.String())
	if revision == "" {
		return "", fmt.Errorf("%s describe returned no output", d.binaryPath)
	}

	return revision, nil
}

// BinaryExists checks if the configured git binary exists and is executable.
func (d *Describer) BinaryExists() bool {
	_, err := exec.LookPath(d.binaryPath)
	return err == nil
}

// BinaryPath returns the configured git binary.
func (d *Describer) BinaryPath() string {
	return d.binaryPath
}
