package pkg

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolabsys/phlesk/adapter/cli"
	packagesApp "github.com/kolabsys/phlesk/internal/packages/application"
	packagesDomain "github.com/kolabsys/phlesk/internal/packages/domain"
	packagesInfra "github.com/kolabsys/phlesk/internal/packages/infrastructure"
	platformApp "github.com/kolabsys/phlesk/internal/platform/application"
	platformDomain "github.com/kolabsys/phlesk/internal/platform/domain"
	platformInfra "github.com/kolabsys/phlesk/internal/platform/infrastructure"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/command/commandtest"
)

func setInstaller(t *testing.T, name, version string, runner *commandtest.FakeRunner) {
	t.Helper()
	source := platformInfra.StaticSource{Info: platformDomain.OSInfo{Name: name, Version: version}}
	platforms := platformApp.NewService(source, runner, t.TempDir(), nil)
	installer := packagesApp.NewInstaller(platforms, packagesInfra.NewAdapter(runner, nil), runner, nil)
	cli.SetApp(&cli.App{Packages: installer})
	t.Cleanup(func() {
		cli.SetApp(nil)
		dryRun = false
	})
}

func TestInstallCmd_NoApp(t *testing.T) {
	cli.SetApp(nil)
	installCmd.SetContext(context.Background())

	err := installCmd.RunE(installCmd, []string{"kolab"})
	assert.EqualError(t, err, "package installer not configured")
}

func TestInstallCmd_DryRun(t *testing.T) {
	runner := commandtest.NewFakeRunner()
	runner.DefaultExitCode = 1
	runner.OnExit("apt-cache show kolab", 0).OnExit("dpkg -l guam", 0)
	setInstaller(t, "debian", "10", runner)
	dryRun = true

	var out bytes.Buffer
	installCmd.SetOut(&out)
	installCmd.SetContext(context.Background())

	require.NoError(t, installCmd.RunE(installCmd, []string{"kolab", "guam", "nothere"}))

	assert.Contains(t, out.String(), "platform:          buster")
	assert.Contains(t, out.String(), "install:           kolab")
	assert.Contains(t, out.String(), "already installed: guam")
	assert.Contains(t, out.String(), "unavailable:       nothere")
	assert.Contains(t, out.String(), "command:           apt-get --assume-yes")
	assert.Empty(t, runner.CallsWithPrefix("apt-get"))
}

func TestInstallCmd(t *testing.T) {
	tests := []struct {
		name    string
		script  func(r *commandtest.FakeRunner)
		wantErr string
	}{
		{
			name: "installs missing package",
			script: func(r *commandtest.FakeRunner) {
				r.OnExit("yum list kolab", 0).OnExit("yum -y install kolab", 0)
			},
		},
		{
			name: "install command fails",
			script: func(r *commandtest.FakeRunner) {
				r.OnExit("yum list kolab", 0)
			},
			wantErr: "package installation failed",
		},
		{
			name:    "nothing available",
			script:  func(r *commandtest.FakeRunner) {},
			wantErr: "package installation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := commandtest.NewFakeRunner()
			runner.DefaultExitCode = 1
			tt.script(runner)
			setInstaller(t, "CentOS", "7.9", runner)

			var out bytes.Buffer
			installCmd.SetOut(&out)
			installCmd.SetContext(context.Background())

			err := installCmd.RunE(installCmd, []string{"kolab"})
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "packages installed\n", out.String())
		})
	}
}

func TestInstallCmd_UnsupportedPlatform(t *testing.T) {
	setInstaller(t, "Ubuntu", "22.04", commandtest.NewFakeRunner())
	installCmd.SetContext(context.Background())

	err := installCmd.RunE(installCmd, []string{"kolab"})
	assert.ErrorIs(t, err, packagesDomain.ErrUnsupportedPlatform)
}
