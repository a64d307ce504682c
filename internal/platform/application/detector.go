package application

import (
	"log/slog"

	"github.com/kolabsys/phlesk/internal/platform/domain"
)

// Detector maps OS identification onto a supported platform.
type Detector struct {
	logger *slog.Logger
}

// NewDetector creates a new platform detector.
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger}
}

// Detect returns the platform for osName and osVersion, or domain.Unknown.
func (d *Detector) Detect(osName, osVersion string) domain.Platform {
	platform, ok := domain.Match(osName, osVersion)
	if !ok {
		d.logger.Debug("platform is not supported",
			"os", osName,
			"version", osVersion,
		)
	}
	return platform
}
