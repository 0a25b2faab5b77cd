package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with a fresh flag state.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	verbose, logLevel, logFormat = false, "", ""
	filterFile, filterPatterns, listPatterns = "", nil, false
	versionFormat, versionDefine, versionPackage = "", "", ""
	versionDir, versionGit, versionTemplate = "", "", ""
	versionAbbrev, githubOutput = 0, false

	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// project writes a config file and filter file into a temp dir.
func project(t *testing.T, patterns string) string {
	t.Helper()
	dir := t.TempDir()

	filterPath := filepath.Join(dir, "monitor.filter")
	require.NoError(t, os.WriteFile(filterPath, []byte(patterns), 0o600))

	cfgPath := filepath.Join(dir, ".pio-helpers.yml")
	content := "filter:\n  file: " + filterPath + "\nlogging:\n  color: never\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	return cfgPath
}

func fakeGit(t *testing.T, output string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake git requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "git")
	script := "#!/bin/sh\nprintf '%s\\n' '" + output + "'\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestFilterCommand_Stdin(t *testing.T) {
	cfgPath := project(t, "INFO:*\n")

	stdout, stderr, err := execute(t, "DEBUG:x\nINFO:y\npartial", "--config", cfgPath, "filter")
	require.NoError(t, err)

	assert.Equal(t, "INFO:y\n", stdout)
	assert.Contains(t, stderr, "Filter log for pattern=INFO:*")
}

func TestFilterCommand_ExtraPatterns(t *testing.T) {
	cfgPath := project(t, "")

	stdout, _, err := execute(t, "E (1) sd\nW (2) gps\nI (3) wifi\n",
		"--config", cfgPath, "filter", "-p", "E *", "--pattern", "W *")
	require.NoError(t, err)

	assert.Equal(t, "E (1) sd\nW (2) gps\n", stdout)
}

func TestFilterCommand_NoPatternsPassesAll(t *testing.T) {
	cfgPath := project(t, "")

	stdout, _, err := execute(t, "a\nb\n", "--config", cfgPath, "filter")
	require.NoError(t, err)

	assert.Equal(t, "a\nb\n", stdout)
}

func TestFilterCommand_List(t *testing.T) {
	cfgPath := project(t, "INFO:*\n")

	stdout, _, err := execute(t, "", "--config", cfgPath, "filter", "--list", "-p", "E *")
	require.NoError(t, err)

	assert.Contains(t, stdout, `"INFO:*"`)
	assert.Contains(t, stdout, `"E *"`)
	assert.Contains(t, stdout, "extra")
}

func TestFilterCommand_MissingFilterFile(t *testing.T) {
	cfgPath := project(t, "")

	_, _, err := execute(t, "", "--config", cfgPath, "filter", "--filter-file", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFilterCommand_MonitorCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
	cfgPath := project(t, "*gps*\n")

	stdout, _, err := execute(t, "", "--config", cfgPath, "filter", "--",
		"sh", "-c", `printf 'I (1) gps: fix\nI (2) wifi: up\n'`)
	require.NoError(t, err)

	assert.Equal(t, "I (1) gps: fix\n", stdout)
}

func TestGitVersionCommand(t *testing.T) {
	cfgPath := project(t, "")
	git := fakeGit(t, "v1.0-3-gabc1234")

	stdout, _, err := execute(t, "", "--config", cfgPath, "git-version", "--git", git)
	require.NoError(t, err)

	want := regexp.MustCompile(`^-DGIT_HASH='"Version: v1\.0-3-gabc1234 built: \d{2} [A-Z][a-z]{2} \d{4} \d{2}:\d{2}"'\n$`)
	assert.Regexp(t, want, stdout)
}

func TestGitVersionCommand_Formats(t *testing.T) {
	cfgPath := project(t, "")
	git := fakeGit(t, "a1b2c3d-dirty")

	stdout, _, err := execute(t, "", "--config", cfgPath, "git-version", "--git", git, "--format", "plain")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "Version: a1b2c3d-dirty built: "), stdout)

	stdout, _, err = execute(t, "", "--config", cfgPath, "git-version", "--git", git,
		"--format", "ldflags", "--package", "example.com/fw/version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "-X 'example.com/fw/version.Version=a1b2c3d-dirty' "), stdout)

	_, _, err = execute(t, "", "--config", cfgPath, "git-version", "--git", git, "--format", "yaml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestGitVersionCommand_Template(t *testing.T) {
	cfgPath := project(t, "")
	git := fakeGit(t, "v2.0")
	tmpl := filepath.Join(t.TempDir(), "version.tmpl")
	require.NoError(t, os.WriteFile(tmpl, []byte(`{{.Define}}={{upper .Revision}}`), 0o600))

	stdout, _, err := execute(t, "", "--config", cfgPath, "git-version", "--git", git,
		"--template", tmpl, "--define", "FW_REV")
	require.NoError(t, err)
	assert.Equal(t, "FW_REV=V2.0\n", stdout)
}

func TestGitVersionCommand_GitHubOutput(t *testing.T) {
	cfgPath := project(t, "")
	git := fakeGit(t, "v1.1")
	outputFile := filepath.Join(t.TempDir(), "github_output")
	t.Setenv("GITHUB_ACTIONS", "true")
	t.Setenv("GITHUB_OUTPUT", outputFile)

	stdout, _, err := execute(t, "", "--config", cfgPath, "git-version", "--git", git, "--github-output")
	require.NoError(t, err)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "git_hash="+strings.TrimSuffix(stdout, "\n")+"\n")
	assert.Contains(t, string(data), "revision=v1.1\n")
}

func TestGitVersionCommand_GitMissing(t *testing.T) {
	cfgPath := project(t, "")

	stdout, _, err := execute(t, "", "--config", cfgPath, "git-version",
		"--git", filepath.Join(t.TempDir(), "missing-git"))
	require.Error(t, err)
	assert.Empty(t, stdout)
	assert.ErrorContains(t, err, "git executable not found")
}

func TestGitVersionCommand_BadAbbrev(t *testing.T) {
	cfgPath := project(t, "")

	_, _, err := execute(t, "", "--config", cfgPath, "git-version", "--abbrev", "2")
	assert.ErrorContains(t, err, "--abbrev")
}

func TestVersionCommand(t *testing.T) {
	cfgPath := project(t, "")

	stdout, _, err := execute(t, "", "--config", cfgPath, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "pio-helpers version "), stdout)
}

func TestRoot_MissingExplicitConfig(t *testing.T) {
	_, _, err := execute(t, "", "--config", filepath.Join(t.TempDir(), "absent.yml"), "version")
	assert.ErrorContains(t, err, "loading config")
}

func TestGitVersionCommand_GitCheckedBeforeFormats(t *testing.T) {
	cfgPath := project(t, "")

	_, _, err := execute(t, "", "--config", cfgPath, "git-version",
		"--git", filepath.Join(t.TempDir(), "missing-git"),
		"--template", filepath.Join(t.TempDir(), "missing.tmpl"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "git executable not found")
	assert.NotContains(t, err.Error(), "format template")
}

func TestRoot_LogLevelFlagOverridesEnvironment(t *testing.T) {
	cfgPath := project(t, "")
	t.Setenv("PIO_HELPERS_LOG_LEVEL", "trace")

	_, _, err := execute(t, "", "--config", cfgPath, "version")
	assert.ErrorContains(t, err, "logging.level")

	stdout, _, err := execute(t, "", "--config", cfgPath, "--log-level", "debug", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "pio-helpers version "), stdout)
}
