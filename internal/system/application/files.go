package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	settingsdomain "github.com/kolabsys/phlesk/internal/settings/domain"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/command"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/security"
)

// DefaultPollInterval is how often DownloadRelease re-checks the
// installing flag.
const DefaultPollInterval = 3 * time.Second

// SettingsReader reads a module setting.
type SettingsReader interface {
	Value(ctx context.Context, name string) string
}

// Downloader fetches release artifacts into the extension var directory.
type Downloader struct {
	runner       command.Runner
	settings     SettingsReader
	varDir       string
	releaseURL   string
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewDownloader creates a downloader writing into varDir.
func NewDownloader(runner command.Runner, settings SettingsReader, varDir, releaseURL string, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{
		runner:       runner,
		settings:     settings,
		varDir:       varDir,
		releaseURL:   releaseURL,
		pollInterval: DefaultPollInterval,
		logger:       logger,
	}
}

// SetPollInterval overrides DefaultPollInterval.
func (d *Downloader) SetPollInterval(interval time.Duration) {
	if interval > 0 {
		d.pollInterval = interval
	}
}

// DownloadFile fetches source into dir/name unless that file already exists.
func (d *Downloader) DownloadFile(ctx context.Context, source, dir, name string) bool {
	target, err := security.ResolveInDir(dir, name)
	if err != nil {
		d.logger.Error("invalid download target", "dir", dir, "name", name, "error", err)
		return false
	}
	if fileExists(target) {
		return true
	}
	if err := checkDownloadURL(source); err != nil {
		d.logger.Error("invalid download url", "url", source, "error", err)
		return false
	}

	tmp := filepath.Join(filepath.Dir(target), "."+filepath.Base(target)+".part")
	if result := d.runner.Run(ctx, "wget", []string{"-O" + tmp, source}, true); !result.Success() {
		d.logger.Info("download failed", "url", source, "exit_code", result.ExitCode)
		d.removeTemp(ctx, tmp)
		return false
	}

	if fileExists(target) {
		d.removeTemp(ctx, tmp)
		return true
	}
	return d.runner.Run(ctx, "mv", []string{tmp, target}, false).Success()
}

// removeTemp deletes a partial download with the runner that created it.
func (d *Downloader) removeTemp(ctx context.Context, tmp string) {
	d.runner.Run(ctx, "rm", []string{"-f", tmp}, true)
}

// checkDownloadURL accepts absolute http, https and ftp URLs. Arguments
// reach wget without a shell, so query strings need no escaping.
func checkDownloadURL(source string) error {
	u, err := url.Parse(source)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "http", "https", "ftp":
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// DownloadRelease waits until no installation is in progress, then fetches
// filename from the release URL into the var directory.
func (d *Downloader) DownloadRelease(ctx context.Context, filename string) (bool, error) {
	if err := d.waitForInstallation(ctx); err != nil {
		return false, err
	}
	source := strings.TrimSuffix(d.releaseURL, "/") + "/" + filename
	return d.DownloadFile(ctx, source, d.varDir, filename), nil
}

func (d *Downloader) waitForInstallation(ctx context.Context) error {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for d.settings.Value(ctx, settingsdomain.SettingInstalling) == "true" {
		d.logger.Debug("waiting for installation to finish")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Templates renders text templates stored in the var directory.
type Templates struct {
	varDir string
	logger *slog.Logger
}

// NewTemplates creates a renderer rooted at varDir.
func NewTemplates(varDir string, logger *slog.Logger) *Templates {
	if logger == nil {
		logger = slog.Default()
	}
	return &Templates{varDir: varDir, logger: logger}
}

// Render reads tpl and applies substitutions, longest key first so that a
// key never clobbers a longer key containing it. A missing template
// renders as "".
func (t *Templates) Render(tpl string, substitutions map[string]string) string {
	data, err := security.ReadFileInDir(t.varDir, tpl)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			t.logger.Error("failed to read template", "template", tpl, "error", err)
		}
		return ""
	}

	keys := make([]string, 0, len(substitutions))
	for k := range substitutions {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	out := string(data)
	for _, k := range keys {
		out = strings.ReplaceAll(out, k, substitutions[k])
	}
	return out
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
