package logging

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "development default", cfg: Config{Env: "development", Level: "debug"}},
		{name: "production", cfg: Config{Env: "production", Level: "warn", AppID: "study"}},
		{name: "empty level falls back to info", cfg: Config{Env: "development"}},
		{name: "unknown level", cfg: Config{Env: "development", Level: "verbose"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := NewLogger(&Config{Env: "production", Level: "info", FilePath: path})
	require.NoError(t, err)
	logger.Info("hello")
	assert.NoError(t, logger.Sync())
	assert.FileExists(t, path)
}

func TestExtractLoggerFromContext(t *testing.T) {
	assert.NotNil(t, ExtractLoggerFromContext(context.Background()), "falls back to a no-op logger")

	base := zap.NewExample()
	ctx := SetLoggerInContext(context.Background(), base)
	assert.Same(t, base, ExtractLoggerFromContext(ctx))
}
