package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProxyURL(t *testing.T) {
	cfg, err := parseProxyURL("ssh+socks5://ops@jumpbox.example.com:22?private-key=/tmp/key")
	require.NoError(t, err)
	assert.Equal(t, proxyConfig{username: "ops", host: "jumpbox.example.com:22", keyPath: "/tmp/key"}, cfg)

	cfg, err = parseProxyURL("socks5://jumpbox:22?private-key=/tmp/key")
	require.NoError(t, err)
	assert.Empty(t, cfg.username)
}

func TestParseProxyURL_Errors(t *testing.T) {
	tests := map[string]string{
		"wrong scheme": "ssh+http://ops@jumpbox:22?private-key=/tmp/key",
		"no host":      "ssh+socks5://?private-key=/tmp/key",
		"no key":       "ssh+socks5://ops@jumpbox:22",
		"bad query":    "ssh+socks5://ops@jumpbox:22?private-key=%zz",
	}
	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseProxyURL(value)
			assert.Error(t, err)
		})
	}
}

func TestNewSOCKS5DialContextFunc_MissingKey(t *testing.T) {
	_, err := NewSOCKS5DialContextFunc("ssh+socks5://ops@jumpbox:22?private-key=/nonexistent/key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading SSH private key")
}

func TestNewSOCKS5DialContextFunc_Lazy(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "id_rsa")
	require.NoError(t, os.WriteFile(keyPath, []byte("not-a-real-key"), 0o600))

	dial, err := NewSOCKS5DialContextFunc("ssh+socks5://ops@jumpbox:22?private-key=" + keyPath)
	require.NoError(t, err)
	assert.NotNil(t, dial)
}
