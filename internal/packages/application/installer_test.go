package application_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/kolabsys/phlesk/internal/packages/application"
	"github.com/kolabsys/phlesk/internal/packages/domain"
	"github.com/kolabsys/phlesk/internal/packages/infrastructure"
	platform "github.com/kolabsys/phlesk/internal/platform/domain"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/command"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/command/commandtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedPlatform platform.Platform

func (f fixedPlatform) Platform() platform.Platform {
	return platform.Platform(f)
}

func newInstaller(p platform.Platform, runner *commandtest.FakeRunner) *application.Installer {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	adapter := infrastructure.NewAdapter(runner, logger)
	return application.NewInstaller(fixedPlatform(p), adapter, runner, logger)
}

func TestInstaller_EmptyList(t *testing.T) {
	runner := commandtest.NewFakeRunner()

	ok, err := newInstaller(platform.Unknown, runner).Install(context.Background(), nil)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, runner.Calls())
}

func TestInstaller_AlreadyInstalled(t *testing.T) {
	runner := commandtest.NewFakeRunner()
	runner.OnExit("rpm -qv wget", 0)

	ok, err := newInstaller(platform.Maipo, runner).Install(context.Background(), []string{"wget"})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, runner.CallsWithPrefix("yum -y install"))
}

func TestInstaller_SkipsUnavailable(t *testing.T) {
	tests := []struct {
		name     string
		exitCode int
		expected bool
	}{
		{name: "install succeeds", exitCode: 0, expected: true},
		{name: "install fails", exitCode: 1, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := commandtest.NewFakeRunner()
			runner.OnExit("rpm -qv a", 1)
			runner.OnExit("dnf list a", 1)
			runner.OnExit("rpm -qv b", 1)
			runner.OnExit("dnf list b", 0)
			runner.OnExit("dnf -y install b", tt.exitCode)

			ok, err := newInstaller(platform.Ootpa, runner).Install(context.Background(), []string{"a", "b"})

			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)

			installs := runner.CallsWithPrefix("dnf -y install")
			require.Len(t, installs, 1)
			assert.Equal(t, []string{"-y", "install", "b"}, installs[0].Args)
			assert.False(t, installs[0].Tolerant)
		})
	}
}

func TestInstaller_BatchesPackages(t *testing.T) {
	runner := commandtest.NewFakeRunner()
	runner.OnExit("dpkg -l aptitude", 1)
	runner.OnExit("dpkg -l wget", 1)
	runner.OnExit("dpkg -l curl", 1)
	runner.OnExit("dpkg -l unzip", 0)

	ok, err := newInstaller(platform.Buster, runner).Install(context.Background(), []string{"wget", "curl", "wget", "unzip"})

	require.NoError(t, err)
	assert.True(t, ok)

	installs := runner.CallsWithPrefix("apt-get")
	require.Len(t, installs, 1)
	args := installs[0].Args
	assert.Equal(t, []string{"install", "wget", "curl"}, args[len(args)-3:])
}

func TestInstaller_AllUnavailable(t *testing.T) {
	runner := commandtest.NewFakeRunner()
	runner.OnExit("rpm -qv x", 1)
	runner.OnExit("yum list x", 1)

	ok, err := newInstaller(platform.Maipo, runner).Install(context.Background(), []string{"x"})

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, runner.CallsWithPrefix("yum -y install"))
}

func TestInstaller_MixedInstalledAndUnavailable(t *testing.T) {
	runner := commandtest.NewFakeRunner()
	runner.OnExit("rpm -qv x", 1)
	runner.OnExit("yum list x", 1)
	runner.OnExit("rpm -qv y", 0)

	ok, err := newInstaller(platform.Maipo, runner).Install(context.Background(), []string{"x", "y"})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, runner.CallsWithPrefix("yum -y install"))
}

func TestInstaller_UnsupportedPlatform(t *testing.T) {
	runner := commandtest.NewFakeRunner()

	ok, err := newInstaller(platform.Unknown, runner).Install(context.Background(), []string{"wget"})

	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrUnsupportedPlatform)
	assert.Empty(t, runner.Calls())
}

func TestInstaller_Plan(t *testing.T) {
	runner := commandtest.NewFakeRunner()
	runner.On("rpm -qv a", command.Result{ExitCode: 0})
	runner.OnExit("rpm -qv b", 1)
	runner.OnExit("rpm -qv c", 1)
	runner.OnExit("yum list c", 1)

	plan, err := newInstaller(platform.Maipo, runner).Plan(context.Background(), []string{"a", "b", " ", "c"})

	require.NoError(t, err)
	assert.Equal(t, []string{"yum", "-y", "install"}, plan.Command)
	assert.Equal(t, []string{"a"}, plan.AlreadyInstalled)
	assert.Equal(t, []string{"b"}, plan.Install)
	assert.Equal(t, []string{"c"}, plan.Unavailable)
	assert.Equal(t, 3, plan.Requested)
	assert.False(t, plan.AllUnavailable())
}
