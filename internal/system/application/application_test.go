package application

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolabsys/phlesk/internal/shared/infrastructure/command"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/command/commandtest"
	"github.com/kolabsys/phlesk/internal/system/domain"
)

func TestServices(t *testing.T) {
	svc, err := domain.NewService("guam", "Guam", "")
	require.NoError(t, err)

	tests := []struct {
		name           string
		enabledExit    int
		statusExit     int
		wantConfigured bool
		wantInstalled  bool
		wantRunning    bool
	}{
		{name: "running", enabledExit: 0, statusExit: 0, wantConfigured: true, wantInstalled: true, wantRunning: true},
		{name: "stopped", enabledExit: 0, statusExit: 3, wantConfigured: true, wantInstalled: true},
		{name: "disabled", enabledExit: 1, statusExit: 3, wantInstalled: true},
		{name: "missing", enabledExit: 1, statusExit: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := commandtest.NewFakeRunner().
				OnExit("systemctl is-enabled guam.service", tt.enabledExit).
				OnExit("systemctl status guam.service", tt.statusExit)
			services := NewServices(runner, nil)
			ctx := context.Background()

			assert.Equal(t, tt.wantConfigured, services.IsConfigured(ctx, svc))
			assert.Equal(t, tt.wantInstalled, services.IsInstalled(ctx, svc))
			assert.Equal(t, tt.wantRunning, services.IsRunning(ctx, svc))
			assert.Equal(t, domain.Status{
				Configured: tt.wantConfigured,
				Installed:  tt.wantInstalled,
				Running:    tt.wantRunning,
			}, services.Status(ctx, svc))

			for _, call := range runner.Calls() {
				assert.True(t, call.Tolerant)
			}
		})
	}
}

func TestServices_Control(t *testing.T) {
	svc, err := domain.NewService("guam", "", "")
	require.NoError(t, err)
	runner := commandtest.NewFakeRunner().OnExit("systemctl restart guam.service", 1)
	services := NewServices(runner, nil)
	ctx := context.Background()

	assert.True(t, services.Start(ctx, svc))
	assert.True(t, services.Stop(ctx, svc))
	assert.False(t, services.Restart(ctx, svc))
	assert.Equal(t, []string{
		"systemctl start guam.service",
		"systemctl stop guam.service",
		"systemctl restart guam.service",
	}, runner.Lines())
}

func TestComponents_Install(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		runner := commandtest.NewFakeRunner()
		assert.False(t, NewComponents(runner, nil).Install(context.Background(), []string{" ", ""}))
		assert.Empty(t, runner.Calls())
	})

	t.Run("batched", func(t *testing.T) {
		runner := commandtest.NewFakeRunner()
		ok := NewComponents(runner, nil).Install(context.Background(), []string{"postfix", "roundcube"})

		assert.True(t, ok)
		require.Len(t, runner.Calls(), 1)
		assert.Equal(t, "plesk installer add --components postfix,roundcube", runner.Lines()[0])
		assert.False(t, runner.Calls()[0].Tolerant)
	})

	t.Run("failure", func(t *testing.T) {
		runner := commandtest.NewFakeRunner()
		runner.DefaultExitCode = 1
		assert.False(t, NewComponents(runner, nil).Install(context.Background(), []string{"postfix"}))
	})
}

func TestComponents_IsInstalled(t *testing.T) {
	runner := commandtest.NewFakeRunner().On("plesk sbin packagemng --list", command.Result{
		Stdout: "postfix: 3.4.14\nkolab:\n",
	})
	components := NewComponents(runner, nil)
	ctx := context.Background()

	assert.True(t, components.IsInstalled(ctx, "postfix"))
	assert.False(t, components.IsInstalled(ctx, "kolab"))
	assert.False(t, components.IsInstalled(ctx, "dovecot"))

	failing := commandtest.NewFakeRunner()
	failing.DefaultExitCode = 1
	assert.Empty(t, NewComponents(failing, nil).Installed(ctx))
}

type sequenceSettings struct {
	mu     sync.Mutex
	values []string
}

func (s *sequenceSettings) Value(ctx context.Context, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return ""
	}
	v := s.values[0]
	if len(s.values) > 1 {
		s.values = s.values[1:]
	}
	return v
}

func TestDownloader_DownloadFile(t *testing.T) {
	ctx := context.Background()

	t.Run("already present", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "pkg.tgz"), []byte("x"), 0644))
		runner := commandtest.NewFakeRunner()

		ok := NewDownloader(runner, &sequenceSettings{}, dir, "", nil).DownloadFile(ctx, "https://example.com/pkg.tgz", dir, "pkg.tgz")

		assert.True(t, ok)
		assert.Empty(t, runner.Calls())
	})

	t.Run("fetch then move", func(t *testing.T) {
		dir := t.TempDir()
		resolved, err := filepath.EvalSymlinks(dir)
		require.NoError(t, err)
		runner := commandtest.NewFakeRunner()

		ok := NewDownloader(runner, &sequenceSettings{}, dir, "", nil).DownloadFile(ctx, "https://example.com/pkg.tgz", dir, "pkg.tgz")

		assert.True(t, ok)
		tmp := filepath.Join(resolved, ".pkg.tgz.part")
		assert.Equal(t, []string{
			"wget -O" + tmp + " https://example.com/pkg.tgz",
			"mv " + tmp + " " + filepath.Join(resolved, "pkg.tgz"),
		}, runner.Lines())
		assert.True(t, runner.Calls()[0].Tolerant)
		assert.False(t, runner.Calls()[1].Tolerant)
	})

	t.Run("fetch failure removes partial file", func(t *testing.T) {
		dir := t.TempDir()
		resolved, err := filepath.EvalSymlinks(dir)
		require.NoError(t, err)
		runner := commandtest.NewFakeRunner().OnPrefix("wget", command.Result{ExitCode: 8})

		ok := NewDownloader(runner, &sequenceSettings{}, dir, "", nil).DownloadFile(ctx, "https://example.com/pkg.tgz", dir, "pkg.tgz")

		assert.False(t, ok)
		calls := runner.Calls()
		require.Len(t, calls, 2)
		assert.Equal(t, "rm -f "+filepath.Join(resolved, ".pkg.tgz.part"), calls[1].Line())
		assert.True(t, calls[1].Tolerant)
	})

	t.Run("query string url", func(t *testing.T) {
		dir := t.TempDir()
		runner := commandtest.NewFakeRunner()
		source := "https://mirror.example.com/get?file=kolab.tar.gz&arch=x86_64"

		ok := NewDownloader(runner, &sequenceSettings{}, dir, "", nil).DownloadFile(ctx, source, dir, "kolab.tar.gz")

		assert.True(t, ok)
		calls := runner.CallsWithPrefix("wget")
		require.Len(t, calls, 1)
		assert.Equal(t, source, calls[0].Args[1])
	})

	t.Run("rejects unsupported url", func(t *testing.T) {
		tests := []struct {
			name   string
			source string
		}{
			{name: "file scheme", source: "file:///etc/shadow"},
			{name: "relative", source: "pkg.tgz"},
			{name: "no host", source: "https:///pkg.tgz"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				dir := t.TempDir()
				runner := commandtest.NewFakeRunner()

				ok := NewDownloader(runner, &sequenceSettings{}, dir, "", nil).DownloadFile(ctx, tt.source, dir, "pkg.tgz")

				assert.False(t, ok)
				assert.Empty(t, runner.Calls())
			})
		}
	})

	t.Run("rejects escaping name", func(t *testing.T) {
		dir := t.TempDir()
		runner := commandtest.NewFakeRunner()

		ok := NewDownloader(runner, &sequenceSettings{}, dir, "", nil).DownloadFile(ctx, "https://example.com/x", dir, "../x")

		assert.False(t, ok)
		assert.Empty(t, runner.Calls())
	})
}

func TestDownloader_DownloadRelease(t *testing.T) {
	t.Run("waits for installation", func(t *testing.T) {
		dir := t.TempDir()
		runner := commandtest.NewFakeRunner()
		settings := &sequenceSettings{values: []string{"true", "true", "false"}}
		d := NewDownloader(runner, settings, dir, "https://mirror.example.com/release/", nil)
		d.SetPollInterval(time.Millisecond)

		ok, err := d.DownloadRelease(context.Background(), "kolab.tgz")

		require.NoError(t, err)
		assert.True(t, ok)
		calls := runner.CallsWithPrefix("wget")
		require.Len(t, calls, 1)
		assert.Equal(t, "https://mirror.example.com/release/kolab.tgz", calls[0].Args[1])
	})

	t.Run("cancelled while installing", func(t *testing.T) {
		runner := commandtest.NewFakeRunner()
		d := NewDownloader(runner, &sequenceSettings{values: []string{"true"}}, t.TempDir(), "https://x", nil)
		d.SetPollInterval(time.Millisecond)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		ok, err := d.DownloadRelease(ctx, "kolab.tgz")

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, ok)
		assert.Empty(t, runner.Calls())
	})
}

func TestTemplates_Render(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.cf.tpl"),
		[]byte("host=@HOST@ hostname=@HOSTNAME@"), 0644))
	templates := NewTemplates(dir, nil)

	out := templates.Render("main.cf.tpl", map[string]string{
		"@HOST":      "short",
		"@HOSTNAME@": "mail.example.com",
		"@HOST@":     "example.com",
	})
	assert.Equal(t, "host=example.com hostname=mail.example.com", out)

	assert.Empty(t, templates.Render("missing.tpl", nil))
	assert.Empty(t, templates.Render("../escape.tpl", nil))
}
