package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kolabsys/phlesk/adapter/cli"
	platformApp "github.com/kolabsys/phlesk/internal/platform/application"
	"github.com/kolabsys/phlesk/internal/platform/domain"
	"github.com/kolabsys/phlesk/internal/platform/infrastructure"
	"github.com/kolabsys/phlesk/internal/shared/infrastructure/command/commandtest"
)

func setPlatform(t *testing.T, name, version string, runner *commandtest.FakeRunner) string {
	t.Helper()
	varDir := t.TempDir()
	source := infrastructure.StaticSource{Info: domain.OSInfo{Name: name, Version: version}}
	cli.SetApp(&cli.App{Platform: platformApp.NewService(source, runner, varDir, nil)})
	t.Cleanup(func() { cli.SetApp(nil) })
	return varDir
}

func TestPlatformCmd_NoApp(t *testing.T) {
	cli.SetApp(nil)
	Cmd.SetContext(context.Background())

	err := Cmd.RunE(Cmd, nil)
	assert.EqualError(t, err, "platform service not configured")
}

func TestPlatformCmd(t *testing.T) {
	tests := []struct {
		name     string
		os       string
		version  string
		runner   func() *commandtest.FakeRunner
		platform string
		manager  string
	}{
		{
			name:    "debian with aptitude",
			os:      "debian",
			version: "10",
			runner: func() *commandtest.FakeRunner {
				return commandtest.NewFakeRunner()
			},
			platform: "buster",
			manager:  "aptitude",
		},
		{
			name:    "ubuntu without aptitude",
			os:      "Ubuntu",
			version: "20.04",
			runner: func() *commandtest.FakeRunner {
				return commandtest.NewFakeRunner().OnExit("dpkg -l aptitude", 1)
			},
			platform: "focal",
			manager:  "apt",
		},
		{
			name:     "centos 8",
			os:       "CentOS",
			version:  "8.2",
			runner:   commandtest.NewFakeRunner,
			platform: "ootpa",
			manager:  "dnf",
		},
		{
			name:     "centos 7",
			os:       "CentOS",
			version:  "7.9",
			runner:   commandtest.NewFakeRunner,
			platform: "maipo",
			manager:  "yum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setPlatform(t, tt.os, tt.version, tt.runner())
			platformJSON = true
			t.Cleanup(func() { platformJSON = false })

			var out bytes.Buffer
			Cmd.SetOut(&out)
			Cmd.SetContext(context.Background())

			require.NoError(t, Cmd.RunE(Cmd, nil))

			var payload map[string]string
			require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
			assert.Equal(t, tt.platform, payload["platform"])
			assert.Equal(t, tt.manager, payload["package_manager"])
		})
	}
}

func TestImportKeyCmd(t *testing.T) {
	runner := commandtest.NewFakeRunner()
	varDir := setPlatform(t, "debian", "10", runner)

	var out bytes.Buffer
	importKeyCmd.SetOut(&out)
	importKeyCmd.SetContext(context.Background())

	require.NoError(t, importKeyCmd.RunE(importKeyCmd, []string{"https://obs.example/key.asc"}))

	keyFile := filepath.Join(varDir, "gpgkey")
	assert.Equal(t, []string{
		"wget -O" + keyFile + " https://obs.example/key.asc",
		"apt-key add " + keyFile,
	}, runner.Lines())
	assert.Contains(t, out.String(), "imported https://obs.example/key.asc")
}

func TestImportKeyCmd_Failure(t *testing.T) {
	runner := commandtest.NewFakeRunner().OnExit("rpm --import https://obs.example/key.asc", 1)
	setPlatform(t, "CentOS", "7.9", runner)
	importKeyCmd.SetContext(context.Background())

	err := importKeyCmd.RunE(importKeyCmd, []string{"https://obs.example/key.asc"})
	assert.Error(t, err)
}
