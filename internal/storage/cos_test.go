package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covergen/pkg/config"
)

func TestNewCOSStorage_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  COSConfig
	}{
		{"missing bucket", COSConfig{Region: "ap-guangzhou", SecretID: "id", SecretKey: "key"}},
		{"missing region", COSConfig{Bucket: "b-125", SecretID: "id", SecretKey: "key"}},
		{"missing credentials", COSConfig{Bucket: "b-125", Region: "ap-guangzhou"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCOSStorage(&tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestNewCOSStorage_URLs(t *testing.T) {
	s, err := NewCOSStorage(&COSConfig{
		Bucket:    "arrays-1250000000",
		Region:    "ap-guangzhou",
		SecretID:  "id",
		SecretKey: "key",
	})
	require.NoError(t, err)

	assert.Equal(t,
		"https://arrays-1250000000.cos.ap-guangzhou.myqcloud.com/runs/x/array.txt",
		s.GetURL("runs/x/array.txt"))
}

func TestNewStorage_Factory(t *testing.T) {
	local, err := NewStorage(&config.StorageConfig{Type: "local", LocalPath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, local)

	cosStore, err := NewStorage(&config.StorageConfig{
		Type:      "cos",
		Bucket:    "arrays-1250000000",
		Region:    "ap-guangzhou",
		SecretID:  "id",
		SecretKey: "key",
	})
	require.NoError(t, err)
	assert.IsType(t, &COSStorage{}, cosStore)
}

func TestValidateConfig(t *testing.T) {
	assert.Error(t, ValidateConfig(nil))
	assert.Error(t, ValidateConfig(&config.StorageConfig{Type: "s3"}))
	assert.Error(t, ValidateConfig(&config.StorageConfig{Type: "local"}))
	assert.Error(t, ValidateConfig(&config.StorageConfig{Type: "cos", Bucket: "b"}))
	assert.NoError(t, ValidateConfig(&config.StorageConfig{Type: "local", LocalPath: "./x"}))
}
