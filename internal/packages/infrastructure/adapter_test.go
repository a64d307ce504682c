package infrastructure_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/kolabsys/phlesk/internal/packages/infrastructure"
	platform "github.com/kolabsys/phlesk/internal/platform/domain"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/command/commandtest"
	"github.com/stretchr/testify/assert"
)

var aptOptions = []string{
	"--assume-yes",
	"-o", "Dpkg::Options::=--force-confdef",
	"-o", "Dpkg::Options::=--force-confold",
	"-o", "APT::Install-Recommends=no",
	"install",
}

func newAdapter(runner *commandtest.FakeRunner) *infrastructure.Adapter {
	return infrastructure.NewAdapter(runner, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func TestAdapter_InstallCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("apt-get without aptitude", func(t *testing.T) {
		runner := commandtest.NewFakeRunner()
		runner.OnExit("dpkg -l aptitude", 1)

		cmd := newAdapter(runner).InstallCommand(ctx, platform.Buster)

		assert.Equal(t, append([]string{"apt-get"}, aptOptions...), cmd)
	})

	t.Run("aptitude when installed", func(t *testing.T) {
		runner := commandtest.NewFakeRunner()
		runner.OnExit("dpkg -l aptitude", 0)

		cmd := newAdapter(runner).InstallCommand(ctx, platform.Focal)

		assert.Equal(t, append([]string{"aptitude"}, aptOptions...), cmd)
	})

	t.Run("yum", func(t *testing.T) {
		cmd := newAdapter(commandtest.NewFakeRunner()).InstallCommand(ctx, platform.Maipo)
		assert.Equal(t, []string{"yum", "-y", "install"}, cmd)
	})

	t.Run("dnf", func(t *testing.T) {
		cmd := newAdapter(commandtest.NewFakeRunner()).InstallCommand(ctx, platform.Ootpa)
		assert.Equal(t, []string{"dnf", "-y", "install"}, cmd)
	})

	t.Run("unknown platform", func(t *testing.T) {
		runner := commandtest.NewFakeRunner()

		assert.Empty(t, newAdapter(runner).InstallCommand(ctx, platform.Unknown))
		assert.Empty(t, runner.Calls())
	})
}

func TestAdapter_Queries(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		platform  platform.Platform
		installed string
		available string
	}{
		{name: "debian", platform: platform.Stretch, installed: "dpkg -l wget", available: "apt-cache show wget"},
		{name: "centos 7", platform: platform.Maipo, installed: "rpm -qv wget", available: "yum list wget"},
		{name: "centos 6", platform: platform.Santiago, installed: "rpm -qv wget", available: "yum list wget"},
		{name: "centos 8", platform: platform.Ootpa, installed: "rpm -qv wget", available: "dnf list wget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := commandtest.NewFakeRunner()
			runner.OnExit(tt.installed, 1)
			runner.OnExit(tt.available, 0)
			adapter := newAdapter(runner)

			assert.False(t, adapter.IsInstalled(ctx, tt.platform, "wget"))
			assert.True(t, adapter.IsAvailable(ctx, tt.platform, "wget"))

			calls := runner.Calls()
			assert.Len(t, calls, 2)
			for _, c := range calls {
				assert.True(t, c.Tolerant, c.Line())
			}
			assert.Equal(t, []string{tt.installed, tt.available}, runner.Lines())
		})
	}

	t.Run("unknown platform", func(t *testing.T) {
		runner := commandtest.NewFakeRunner()
		adapter := newAdapter(runner)

		assert.False(t, adapter.IsInstalled(ctx, platform.Unknown, "wget"))
		assert.False(t, adapter.IsAvailable(ctx, platform.Unknown, "wget"))
		assert.Empty(t, runner.Calls())
	})
}
