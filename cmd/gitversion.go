package cmd

import (
	"fmt"
	"time"

	"github.com/platinenmacher/pio-helpers/internal/buildinfo"
	"github.com/platinenmacher/pio-helpers/internal/config"
	"github.com/platinenmacher/pio-helpers/internal/github"
	"github.com/platinenmacher/pio-helpers/internal/vcs"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// customFormat names a format loaded with --template.
const customFormat = "custom"

var (
	versionFormat   string
	versionDefine   string
	versionPackage  string
	versionDir      string
	versionGit      string
	versionTemplate string
	versionAbbrev   int
	githubOutput    bool
)

var gitVersionCmd = &cobra.Command{
	Use:   "git-version",
	Short: "Print a build version string from git describe",
	Long: `Print a build version string from git describe and the current local time.

The default format is a compiler flag for PlatformIO build_flags:

  -DGIT_HASH='"Version: v1.2.0-3-gabc1234 built: 05 Mar 2024 14:07"'

Use it from platformio.ini as:

  build_flags = !pio-helpers git-version

A missing git executable or a directory outside a repository is fatal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runGitVersion(cmd)
	},
}

func init() {
	gitVersionCmd.Flags().AddFlagSet(gitVersionFlags())
	rootCmd.AddCommand(gitVersionCmd)
}

// gitVersionFlags declares the git-version flags; zero values defer to the config file.
func gitVersionFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("git-version", pflag.ContinueOnError)
	fs.StringVarP(&versionFormat, "format", "f", "", "output format: define, plain, ldflags or a configured format (default: from config)")
	fs.StringVar(&versionDefine, "define", "", "macro name for the define format (default GIT_HASH)")
	fs.StringVar(&versionPackage, "package", "", "Go package path for the ldflags format")
	fs.StringVarP(&versionDir, "dir", "C", "", "run git in this directory")
	fs.StringVar(&versionGit, "git", "", "git executable (default: from config or PATH)")
	fs.StringVar(&versionTemplate, "template", "", "render with the Go template in this file")
	fs.IntVar(&versionAbbrev, "abbrev", 0, "abbreviated hash length (default 7)")
	fs.BoolVar(&githubOutput, "github-output", false, "also write git_hash and revision to $GITHUB_OUTPUT")
	return fs
}

// versionSettings merges command-line overrides into the configured settings.
func versionSettings() (config.VersionConfig, error) {
	v := cfg.Version
	if versionFormat != "" {
		v.Format = versionFormat
	}
	if versionDefine != "" {
		v.Define = versionDefine
	}
	if versionPackage != "" {
		v.Package = versionPackage
	}
	if versionDir != "" {
		v.Dir = versionDir
	}
	if versionGit != "" {
		v.GitBinary = versionGit
	}
	if versionAbbrev != 0 {
		if versionAbbrev < 4 || versionAbbrev > 40 {
			return v, fmt.Errorf("--abbrev must be between 4 and 40, got %d", versionAbbrev)
		}
		v.Abbrev = versionAbbrev
	}
	if versionTemplate != "" {
		v.Format = customFormat
	}
	return v, nil
}

func runGitVersion(cmd *cobra.Command) error {
	v, err := versionSettings()
	if err != nil {
		return err
	}

	describer := vcs.NewDescriber(v.GitBinary, v.Dir, v.DescribeOptions())
	if !describer.BinaryExists() {
		return fmt.Errorf("describing revision: %w: %s", vcs.ErrGitNotFound, describer.BinaryPath())
	}
	log.Debug("Using git", "binary", describer.BinaryPath(), "dir", v.Dir)

	formatter := buildinfo.NewFormatter()
	for name, content := range v.Formats {
		if err := formatter.LoadString(name, content); err != nil {
			return fmt.Errorf("loading format: %w", err)
		}
	}
	if versionTemplate != "" {
		if err := formatter.LoadFile(customFormat, versionTemplate); err != nil {
			return err
		}
	}

	revision, err := describer.Describe(cmd.Context())
	if err != nil {
		return fmt.Errorf("describing revision: %w", err)
	}

	stamp := buildinfo.NewStamp(revision, time.Now())
	stamp.Define = v.Define
	stamp.Package = v.Package

	line, err := formatter.Render(v.Format, stamp)
	if err != nil {
		return err
	}

	log.Debug("Rendered version", "revision", revision, "format", v.Format, "git", describer.BinaryPath())
	fmt.Fprintln(cmd.OutOrStdout(), line)

	if githubOutput {
		written, err := github.WriteOutputs(
			github.Output{Name: "git_hash", Value: line},
			github.Output{Name: "revision", Value: revision},
		)
		if err != nil {
			return err
		}
		if !written {
			log.Warn("Not running in GitHub Actions, skipping step outputs")
		}
	}

	return nil
}
