package infrastructure

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kolabsys/phlesk/internal/platform/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOSRelease(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected domain.OSInfo
	}{
		{
			name:     "centos",
			content:  "NAME=\"CentOS Linux\"\nVERSION=\"7 (Core)\"\nID=\"centos\"\nID_LIKE=\"rhel fedora\"\nVERSION_ID=\"7\"\n",
			expected: domain.OSInfo{Name: "CentOS", Version: "7"},
		},
		{
			name:     "rhel",
			content:  "NAME=\"Red Hat Enterprise Linux\"\nID=\"rhel\"\nVERSION_ID=\"8.4\"\n",
			expected: domain.OSInfo{Name: "RedHat", Version: "8.4"},
		},
		{
			name:     "almalinux maps to centos",
			content:  "ID=\"almalinux\"\nVERSION_ID=\"8.5\"\n",
			expected: domain.OSInfo{Name: "CentOS", Version: "8.5"},
		},
		{
			name:     "ubuntu",
			content:  "# comment\nNAME=\"Ubuntu\"\nID=ubuntu\nVERSION_ID=\"20.04\"\n",
			expected: domain.OSInfo{Name: "Ubuntu", Version: "20.04"},
		},
		{
			name:     "debian",
			content:  "PRETTY_NAME=\"Debian GNU/Linux 10 (buster)\"\nID=debian\nVERSION_ID=\"10\"\n",
			expected: domain.OSInfo{Name: "Debian", Version: "10"},
		},
		{
			name:     "unmapped id is passed through",
			content:  "ID=arch\n",
			expected: domain.OSInfo{Name: "arch", Version: ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := ParseOSRelease(strings.NewReader(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, info)
		})
	}
}

func TestParseOSRelease_MissingID(t *testing.T) {
	_, err := ParseOSRelease(strings.NewReader("VERSION_ID=\"7\"\n"))

	assert.ErrorIs(t, err, domain.ErrOSReleaseUnreadable)
}

func TestOSReleaseSource(t *testing.T) {
	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "os-release")
		require.NoError(t, os.WriteFile(path, []byte("ID=debian\nVERSION_ID=\"9\"\n"), 0o644))

		info, err := NewOSReleaseSource(path).OSInfo()

		require.NoError(t, err)
		assert.Equal(t, domain.OSInfo{Name: "Debian", Version: "9"}, info)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewOSReleaseSource(filepath.Join(t.TempDir(), "missing")).OSInfo()

		assert.ErrorIs(t, err, domain.ErrOSReleaseUnreadable)
	})

	t.Run("default path", func(t *testing.T) {
		assert.Equal(t, DefaultOSReleasePath, NewOSReleaseSource("").path)
	})
}

func TestStaticSource(t *testing.T) {
	info, err := StaticSource{Info: domain.OSInfo{Name: "CentOS", Version: "8"}}.OSInfo()

	require.NoError(t, err)
	assert.Equal(t, "CentOS", info.Name)
}
