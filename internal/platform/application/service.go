// Package application answers questions about the host platform.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/kolabsys/phlesk/internal/platform/domain"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/command"
)

// Service exposes the detected platform of the host it runs on. The
// platform is derived from the OS identification on every query.
type Service struct {
	source   domain.InfoSource
	runner   command.Runner
	detector *Detector
	varDir   string
	logger   *slog.Logger
}

// NewService creates a new platform service.
func NewService(source domain.InfoSource, runner command.Runner, varDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		source:   source,
		runner:   runner,
		detector: NewDetector(logger),
		varDir:   varDir,
		logger:   logger,
	}
}

// OSInfo returns the host OS identification. It is empty when the source
// cannot be read.
func (s *Service) OSInfo() domain.OSInfo {
	info, err := s.source.OSInfo()
	if err != nil {
		s.logger.Warn("failed to read os information", "error", err)
		return domain.OSInfo{}
	}
	return info
}

// Platform returns the detected platform.
func (s *Service) Platform() domain.Platform {
	info := s.OSInfo()
	if info.Name == "" {
		return domain.Unknown
	}
	return s.detector.Detect(info.Name, info.Version)
}

// Distribution returns the host OS name ("CentOS", "Debian", ...).
func (s *Service) Distribution() string {
	return s.OSInfo().Distribution()
}

// IsPlatform reports whether the host runs platform p.
func (s *Service) IsPlatform(p domain.Platform) bool {
	return s.Platform() == p
}

// IsDistribution reports whether the host runs the named distribution,
// ignoring case.
func (s *Service) IsDistribution(name string) bool {
	return strings.EqualFold(s.Distribution(), name)
}

// IsMaipo reports whether the host is Red Hat (or, unless strict, CentOS) 7.
func (s *Service) IsMaipo(strict bool) bool {
	info := s.OSInfo()
	return domain.Matches(domain.Maipo, info.Name, info.Version, strict)
}

// IsOotpa reports whether the host is Red Hat (or, unless strict, CentOS) 8.
func (s *Service) IsOotpa(strict bool) bool {
	info := s.OSInfo()
	return domain.Matches(domain.Ootpa, info.Name, info.Version, strict)
}

// UsesApt reports whether the host is Debian-like.
func (s *Service) UsesApt() bool {
	return s.IsDistribution(string(domain.OSDebian)) || s.IsDistribution(string(domain.OSUbuntu))
}

// UsesAptitude reports whether the host is Debian-like and has aptitude
// installed.
func (s *Service) UsesAptitude(ctx context.Context) bool {
	if !s.UsesApt() {
		return false
	}
	return s.runner.Run(ctx, "dpkg", []string{"-l", "aptitude"}, true).Success()
}

// UsesYum reports whether the host uses yum.
func (s *Service) UsesYum() bool {
	return s.Platform().Family() == domain.FamilyYum
}

// UsesDnf reports whether the host uses dnf.
func (s *Service) UsesDnf() bool {
	return s.Platform().Family() == domain.FamilyDnf
}

// ImportPackageKey imports a package signing key from uri into the system
// package manager keyring.
func (s *Service) ImportPackageKey(ctx context.Context, uri string) error {
	switch {
	case s.IsDistribution(string(domain.OSCentOS)), s.IsDistribution(string(domain.OSRedHat)):
		result := s.runner.Run(ctx, "rpm", []string{"--import", uri}, false)
		if !result.Success() {
			return fmt.Errorf("import package key %s: rpm exited with %d", uri, result.ExitCode)
		}
		return nil

	case s.UsesApt():
		keyFile := filepath.Join(s.varDir, "gpgkey")
		result := s.runner.Run(ctx, "wget", []string{"-O" + keyFile, uri}, false)
		if !result.Success() {
			return fmt.Errorf("download package key %s: wget exited with %d", uri, result.ExitCode)
		}
		result = s.runner.Run(ctx, "apt-key", []string{"add", keyFile}, false)
		if !result.Success() {
			return fmt.Errorf("add package key %s: apt-key exited with %d", uri, result.ExitCode)
		}
		return nil
	}

	return fmt.Errorf("import package key on %q: %w", s.Distribution(), domain.ErrUnknownPlatform)
}
