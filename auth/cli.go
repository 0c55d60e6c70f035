// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// cliBinary is the cloud provider's command-line tool.
const cliBinary = "yc"

// CommandRunner executes a command and returns its stdout, for substituting
// the yc binary in tests.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = nil
	return cmd.Output()
}

// cliConfig mirrors the yc CLI configuration file.
type cliConfig struct {
	Current  string                `yaml:"current"`
	Profiles map[string]cliProfile `yaml:"profiles"`
}

type cliProfile struct {
	Endpoint string `yaml:"endpoint"`
	CloudID  string `yaml:"cloud-id"`
	FolderID string `yaml:"folder-id"`
}

// defaultCLIConfigPath is where the yc CLI stores its profiles.
func defaultCLIConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "yandex-cloud", "config.yaml")
}

// CLIProfileSource obtains IAM tokens from the locally installed yc CLI's
// active (or explicitly selected) profile by running
// "yc iam create-token". It is always used behind a [TokenCache].
type CLIProfileSource struct {
	profile    string
	endpoint   string
	configPath string
	runner     CommandRunner
}

var _ CredentialSource = (*CLIProfileSource)(nil)

// CLIOption configures a [CLIProfileSource].
type CLIOption func(*CLIProfileSource)

// WithCLIProfile selects a profile instead of the config's current one.
func WithCLIProfile(profile string) CLIOption {
	return func(s *CLIProfileSource) {
		s.profile = profile
	}
}

// WithCLIEndpoint pins the API endpoint the CLI must be configured for.
func WithCLIEndpoint(endpoint string) CLIOption {
	return func(s *CLIProfileSource) {
		s.endpoint = endpoint
	}
}

// WithCLIConfigPath overrides the CLI configuration file location.
func WithCLIConfigPath(path string) CLIOption {
	return func(s *CLIProfileSource) {
		s.configPath = path
	}
}

// WithCLICommandRunner substitutes the process execution, for tests.
func WithCLICommandRunner(runner CommandRunner) CLIOption {
	return func(s *CLIProfileSource) {
		s.runner = runner
	}
}

// NewCLIProfileSource returns a CLI-profile credential source. The profile is
// taken from the option, the [EnvProfile] environment variable, or the config
// file's current profile, in that order.
func NewCLIProfileSource(opts ...CLIOption) *CLIProfileSource {
	s := &CLIProfileSource{
		configPath: defaultCLIConfigPath(),
		runner:     defaultCommandRunner,
	}
	if profile := os.Getenv(EnvProfile); profile != "" {
		s.profile = profile
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements [CredentialSource].
func (s *CLIProfileSource) Name() string {
	if s.profile != "" {
		return "cli-profile/" + s.profile
	}
	return "cli-profile"
}

// Resolve implements [CredentialSource]. It shells out to the CLI, which
// performs the IAM token exchange for the stored profile identity.
func (s *CLIProfileSource) Resolve(ctx context.Context) (Credential, error) {
	args := []string{"iam", "create-token", "--no-user-output"}
	if s.endpoint != "" {
		args = append(args, "--endpoint", s.endpoint)
	}
	if s.profile != "" {
		args = append(args, "--profile", s.profile)
	}

	out, err := s.runner(ctx, cliBinary, args...)
	if err != nil {
		return Credential{}, fmt.Errorf("%s iam create-token failed: %v: %w", cliBinary, err, ErrAuthUnavailable)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	token := strings.TrimSpace(lines[len(lines)-1])
	if token == "" {
		return Credential{}, fmt.Errorf("%s produced an empty token: %w", cliBinary, ErrAuthUnavailable)
	}

	// The CLI refreshes tokens on its side; treat its answer as good for the
	// cache's refresh period rather than trusting any particular expiry.
	return NewCredential(KindIAMToken, token), nil
}

// probe reports whether this source is worth selecting: the CLI binary must be
// installed and a profile must be identifiable, either explicitly or as the
// config file's current one.
func (s *CLIProfileSource) probe(ctx context.Context) error {
	if _, err := exec.LookPath(cliBinary); err != nil {
		return fmt.Errorf("%s binary not found on PATH: %w", cliBinary, ErrAuthUnavailable)
	}
	if s.profile != "" {
		return nil
	}

	raw, err := os.ReadFile(s.configPath)
	if err != nil {
		return fmt.Errorf("no CLI configuration at %s: %w", s.configPath, ErrAuthUnavailable)
	}
	var cfg cliConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return fmt.Errorf("parse CLI configuration: %v: %w", err, ErrAuthUnavailable)
	}
	if cfg.Current == "" {
		return fmt.Errorf("CLI configuration has no current profile: %w", ErrAuthUnavailable)
	}
	if _, ok := cfg.Profiles[cfg.Current]; len(cfg.Profiles) > 0 && !ok {
		return fmt.Errorf("CLI configuration current profile %q is not defined: %w", cfg.Current, ErrAuthUnavailable)
	}
	s.profile = cfg.Current
	return nil
}
