package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{name: "sqlite backend", config: Config{Backend: BackendSQLite, DataDir: "/tmp/x"}},
		{name: "data dir may be empty", config: Config{Backend: BackendSQLite}},
		{name: "empty backend", config: Config{}, wantErr: ErrBackendEmpty},
		{name: "unknown backend", config: Config{Backend: "redis"}, wantErr: ErrBackendUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
