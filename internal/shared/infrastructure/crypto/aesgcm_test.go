package crypto

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() string {
	return base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
}

func TestNewAESGCMFromBase64Key(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "valid", key: testKey()},
		{name: "empty", key: "", wantErr: true},
		{name: "not base64", key: "!!!", wantErr: true},
		{name: "short", key: base64.StdEncoding.EncodeToString([]byte("short")), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewAESGCMFromBase64Key(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, enc)
		})
	}
}

func TestAESEncrypter_RoundTrip(t *testing.T) {
	enc, err := NewAESGCMFromBase64Key(testKey())
	require.NoError(t, err)

	sealed, err := enc.Encrypt([]byte("secret"))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "secret")

	plain, err := enc.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "secret", string(plain))

	_, err = enc.Decrypt([]byte("x"))
	assert.Error(t, err)
}

func TestPasswords(t *testing.T) {
	enc, err := NewAESGCMFromBase64Key(testKey())
	require.NoError(t, err)

	stored, err := SealPassword(enc, "hunter2")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored, PasswordPrefix))

	plain, err := OpenPassword(enc, stored)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", plain)

	plain, err = OpenPassword(enc, "plain-text")
	require.NoError(t, err)
	assert.Equal(t, "plain-text", plain)

	_, err = OpenPassword(enc, PasswordPrefix+"%%%")
	assert.Error(t, err)

	_, err = OpenPassword(enc, PasswordPrefix+base64.StdEncoding.EncodeToString([]byte(strings.Repeat("z", 40))))
	assert.Error(t, err)
}
