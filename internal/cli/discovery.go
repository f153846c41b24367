package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/qwenlm/qwen-agent-sdk-go/internal/errors"
)

const (
	// MinimumVersion is the minimum required Qwen Code CLI version.
	MinimumVersion = "0.1.0"

	// VersionCheckTimeout is the timeout for the CLI version check command.
	VersionCheckTimeout = 2 * time.Second
)

// Config holds configuration for CLI discovery.
type Config struct {
	// ExecutablePath is an explicit CLI path that skips PATH search.
	// If empty, discovery searches PATH and common locations.
	ExecutablePath string

	// SkipVersionCheck skips version validation during discovery.
	// Can also be controlled via the QWEN_AGENT_SDK_SKIP_VERSION_CHECK env var.
	SkipVersionCheck bool

	// Logger is an optional logger for discovery operations.
	// If nil, a default no-op logger is used.
	Logger *slog.Logger
}

// Discoverer locates and validates the Qwen Code CLI binary.
type Discoverer interface {
	// Discover locates the CLI binary and validates its version.
	// Returns the absolute path to the binary or an error.
	Discover(ctx context.Context) (string, error)
}

type discoverer struct {
	cfg *Config
	log *slog.Logger
}

var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new CLI discoverer with the given configuration.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	return &discoverer{
		cfg: cfg,
		log: log,
	}
}

// Discover locates the Qwen Code CLI binary and validates its version.
func (d *discoverer) Discover(ctx context.Context) (string, error) {
	d.log.Debug("Discovering Qwen Code CLI binary")

	cliPath, err := d.findCLI()
	if err != nil {
		d.log.Error("Failed to find Qwen Code CLI", "error", err)

		return "", err
	}

	d.log.Debug("Found Qwen Code CLI binary", "cli_path", cliPath)

	d.checkVersion(ctx, cliPath)

	return cliPath, nil
}

// findCLI locates the qwen binary.
func (d *discoverer) findCLI() (string, error) {
	// An explicit path is used and only it
	if d.cfg.ExecutablePath != "" {
		d.log.Debug("Using explicit CLI path", "cli_path", d.cfg.ExecutablePath)

		if _, err := os.Stat(d.cfg.ExecutablePath); err == nil {
			return d.cfg.ExecutablePath, nil
		}

		d.log.Debug("Explicit CLI path not found", "cli_path", d.cfg.ExecutablePath)

		return "", &errors.CLINotFoundError{SearchedPaths: []string{d.cfg.ExecutablePath}}
	}

	searchedPaths := make([]string, 0, 4)

	d.log.Debug("Searching for 'qwen' in PATH")

	if path, err := exec.LookPath("qwen"); err == nil {
		d.log.Debug("Found 'qwen' in PATH", "path", path)

		return path, nil
	}

	searchedPaths = append(searchedPaths, "$PATH")

	commonPaths := []string{
		"/usr/local/bin/qwen",
		"/usr/bin/qwen",
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		commonPaths = append(commonPaths, filepath.Join(homeDir, ".local/bin/qwen"))
	}

	for _, path := range commonPaths {
		searchedPaths = append(searchedPaths, path)
		d.log.Debug("Checking common path", "path", path)

		if _, err := os.Stat(path); err == nil {
			d.log.Debug("Found CLI at common path", "path", path)

			return path, nil
		}
	}

	d.log.Warn("Qwen Code CLI not found in any searched paths", "searched_paths", searchedPaths)

	return "", &errors.CLINotFoundError{SearchedPaths: searchedPaths}
}

// checkVersion warns if the CLI version is below the minimum.
// Errors from the version command are silently ignored.
func (d *discoverer) checkVersion(ctx context.Context, cliPath string) {
	if d.cfg.SkipVersionCheck {
		d.log.Debug("Skipping CLI version check (configured)")

		return
	}

	if os.Getenv("QWEN_AGENT_SDK_SKIP_VERSION_CHECK") != "" {
		d.log.Debug("Skipping CLI version check (QWEN_AGENT_SDK_SKIP_VERSION_CHECK set)")

		return
	}

	ctx, cancel := context.WithTimeout(ctx, VersionCheckTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cliPath, "--version")

	output, err := cmd.Output()
	if err != nil {
		d.log.Debug("CLI version check failed", "error", err)

		return
	}

	versionStr := strings.TrimSpace(string(output))
	re := regexp.MustCompile(`([0-9]+\.[0-9]+\.[0-9]+)`)

	match := re.FindStringSubmatch(versionStr)
	if match == nil {
		d.log.Debug("Could not parse CLI version", "output", versionStr)

		return
	}

	version := match[1]
	if compareVersions(version, MinimumVersion) < 0 {
		d.log.Warn("Qwen Code CLI version is unsupported",
			"version", version,
			"minimum_required", MinimumVersion,
		)

		fmt.Fprintf(os.Stderr,
			"Warning: Qwen Code CLI version %s is unsupported. "+
				"Minimum required version is %s. Some features may not work correctly.\n",
			version, MinimumVersion,
		)
	} else {
		d.log.Debug("CLI version check passed", "version", version, "minimum", MinimumVersion)
	}
}

// compareVersions compares two semantic versions.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func compareVersions(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	for i := range 3 {
		aNum := 0
		bNum := 0

		if i < len(aParts) {
			aNum, _ = strconv.Atoi(aParts[i])
		}

		if i < len(bParts) {
			bNum, _ = strconv.Atoi(bParts[i])
		}

		if aNum < bNum {
			return -1
		}

		if aNum > bNum {
			return 1
		}
	}

	return 0
}
