package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolabsys/phlesk/internal/packages/application"
	"github.com/kolabsys/phlesk/internal/packages/domain"
	platform "github.com/kolabsys/phlesk/internal/platform/domain"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/command/commandtest"
)

type keyRecorder struct {
	uris []string
	err  error
}

func (k *keyRecorder) ImportPackageKey(ctx context.Context, uri string) error {
	k.uris = append(k.uris, uri)
	return k.err
}

func TestModulePackages_Install(t *testing.T) {
	ctx := context.Background()

	t.Run("installs missing packages", func(t *testing.T) {
		runner := commandtest.NewFakeRunner()
		runner.OnExit("rpm -qv kolab", 1)
		keys := &keyRecorder{}
		m := application.NewModulePackages(newInstaller(platform.Maipo, runner), keys, "https://mirror.example.com/key.asc", []string{"kolab", "wget"}, nil)

		require.NoError(t, m.PreInstall(ctx))
		require.NoError(t, m.Install(ctx))
		require.NoError(t, m.PostInstall(ctx))

		assert.Equal(t, []string{"https://mirror.example.com/key.asc"}, keys.uris)
		calls := runner.CallsWithPrefix("yum -y install")
		require.Len(t, calls, 1)
		assert.Equal(t, "yum -y install kolab", calls[0].Line())
	})

	t.Run("failed install", func(t *testing.T) {
		runner := commandtest.NewFakeRunner()
		runner.OnExit("rpm -qv kolab", 1)
		runner.OnExit("yum -y install kolab", 1)
		m := application.NewModulePackages(newInstaller(platform.Maipo, runner), &keyRecorder{}, "", []string{"kolab"}, nil)

		err := m.Install(ctx)
		assert.ErrorIs(t, err, domain.ErrInstallFailed)
	})

	t.Run("unsupported platform", func(t *testing.T) {
		runner := commandtest.NewFakeRunner()
		m := application.NewModulePackages(newInstaller(platform.Unknown, runner), &keyRecorder{}, "", []string{"kolab"}, nil)

		assert.ErrorIs(t, m.Install(ctx), domain.ErrUnsupportedPlatform)
	})

	t.Run("no key configured", func(t *testing.T) {
		keys := &keyRecorder{}
		m := application.NewModulePackages(newInstaller(platform.Maipo, commandtest.NewFakeRunner()), keys, "", nil, nil)

		require.NoError(t, m.PreInstall(ctx))
		assert.Empty(t, keys.uris)
	})
}

func TestModulePackages_IsInstalled(t *testing.T) {
	tests := []struct {
		name     string
		missing  []string
		expected bool
	}{
		{name: "all installed", expected: true},
		{name: "one missing", missing: []string{"wget"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := commandtest.NewFakeRunner()
			for _, pkg := range tt.missing {
				runner.OnExit("rpm -qv "+pkg, 1)
			}
			m := application.NewModulePackages(newInstaller(platform.Maipo, runner), &keyRecorder{}, "", []string{"kolab", "wget"}, nil)

			assert.Equal(t, tt.expected, m.IsInstalled(context.Background()))
		})
	}
}

func TestModulePackages_Activate(t *testing.T) {
	ctx := context.Background()

	t.Run("imports the key", func(t *testing.T) {
		keys := &keyRecorder{}
		m := application.NewModulePackages(newInstaller(platform.Buster, commandtest.NewFakeRunner()), keys, "https://mirror.example.com/key.asc", nil, nil)

		assert.True(t, m.Activate(ctx, nil))
		assert.Len(t, keys.uris, 1)
	})

	t.Run("key import failure", func(t *testing.T) {
		keys := &keyRecorder{err: errors.New("wget failed")}
		m := application.NewModulePackages(newInstaller(platform.Buster, commandtest.NewFakeRunner()), keys, "https://mirror.example.com/key.asc", nil, nil)

		assert.False(t, m.Activate(ctx, nil))
	})
}
