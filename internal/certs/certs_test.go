package certs

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(t *testing.T, cert tls.Certificate) *x509.Certificate {
	t.Helper()
	require.Len(t, cert.Certificate, 1)
	c, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return c
}

func TestFileManager_GetOrCreateCertificate(t *testing.T) {
	tests := []struct {
		setup    func(t *testing.T, dir string)
		validate func(t *testing.T, dir string, cert tls.Certificate)
		name     string
	}{
		{
			name:  "creates a certificate when none exists",
			setup: func(_ *testing.T, _ string) {},
			validate: func(t *testing.T, dir string, cert tls.Certificate) {
				t.Helper()
				c := leaf(t, cert)
				assert.Equal(t, "Statement Press", c.Subject.Organization[0])
				assert.NoError(t, c.VerifyHostname("localhost"))
				assert.NoError(t, c.VerifyHostname("127.0.0.1"))
				assert.True(t, c.NotAfter.After(time.Now().Add(364*24*time.Hour)))

				info, err := os.Stat(filepath.Join(dir, "localhost.key"))
				require.NoError(t, err)
				assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
			},
		},
		{
			name: "reuses a valid certificate",
			setup: func(t *testing.T, dir string) {
				t.Helper()
				_, err := NewFileManager(dir).GetOrCreateCertificate()
				require.NoError(t, err)
			},
			validate: func(t *testing.T, dir string, cert tls.Certificate) {
				t.Helper()
				again, err := NewFileManager(dir).GetOrCreateCertificate()
				require.NoError(t, err)
				assert.Equal(t, leaf(t, cert).SerialNumber, leaf(t, again).SerialNumber)
			},
		},
		{
			name: "replaces unreadable files",
			setup: func(t *testing.T, dir string) {
				t.Helper()
				require.NoError(t, os.MkdirAll(dir, 0o700))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "localhost.crt"), []byte("garbage"), 0o600))
				require.NoError(t, os.WriteFile(filepath.Join(dir, "localhost.key"), []byte("garbage"), 0o600))
			},
			validate: func(t *testing.T, _ string, cert tls.Certificate) {
				t.Helper()
				assert.NoError(t, leaf(t, cert).VerifyHostname("localhost"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "certs")
			tt.setup(t, dir)

			cert, err := NewFileManager(dir).GetOrCreateCertificate()
			require.NoError(t, err)
			tt.validate(t, dir, cert)
		})
	}
}

func TestFileManager_RegeneratesExpired(t *testing.T) {
	dir := t.TempDir()
	m := NewFileManager(dir)
	m.now = func() time.Time { return time.Now().Add(-2 * Validity) }

	old, err := m.GetOrCreateCertificate()
	require.NoError(t, err)

	fresh, err := NewFileManager(dir).GetOrCreateCertificate()
	require.NoError(t, err)
	assert.NotEqual(t, leaf(t, old).SerialNumber, leaf(t, fresh).SerialNumber)
	assert.True(t, leaf(t, fresh).NotAfter.After(time.Now()))
}

func TestTLSConfig(t *testing.T) {
	cfg, err := TLSConfig(NewFileManager(t.TempDir()))
	require.NoError(t, err)
	assert.Len(t, cfg.Certificates, 1)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
}

type failingManager struct{}

func (failingManager) GetOrCreateCertificate() (tls.Certificate, error) {
	return tls.Certificate{}, os.ErrPermission
}

func TestTLSConfig_Error(t *testing.T) {
	_, err := TLSConfig(failingManager{})
	assert.ErrorIs(t, err, os.ErrPermission)
}
