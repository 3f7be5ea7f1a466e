package db

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPoolConfig(t *testing.T) {
	cfg := DefaultPoolConfig()

	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, time.Hour, cfg.ConnMaxLifetime)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxIdleTime)
}

func TestPoolConfigFromEnv(t *testing.T) {
	def := DefaultPoolConfig()

	tests := []struct {
		name string
		env  map[string]string
		want PoolConfig
	}{
		{
			name: "nothing set keeps defaults",
			env:  map[string]string{},
			want: def,
		},
		{
			name: "all bounds overridden",
			env: map[string]string{
				"DB_MAX_OPEN_CONNS":     "100",
				"DB_MAX_IDLE_CONNS":     "50",
				"DB_CONN_MAX_LIFETIME":  "2h",
				"DB_CONN_MAX_IDLE_TIME": "45m",
			},
			want: PoolConfig{
				MaxOpenConns:    100,
				MaxIdleConns:    50,
				ConnMaxLifetime: 2 * time.Hour,
				ConnMaxIdleTime: 45 * time.Minute,
			},
		},
		{
			name: "partial override leaves the rest",
			env: map[string]string{
				"DB_MAX_OPEN_CONNS":    "75",
				"DB_CONN_MAX_LIFETIME": "90m",
			},
			want: PoolConfig{
				MaxOpenConns:    75,
				MaxIdleConns:    def.MaxIdleConns,
				ConnMaxLifetime: 90 * time.Minute,
				ConnMaxIdleTime: def.ConnMaxIdleTime,
			},
		},
		{
			name: "garbage values keep defaults",
			env: map[string]string{
				"DB_MAX_OPEN_CONNS":     "lots",
				"DB_MAX_IDLE_CONNS":     "-3",
				"DB_CONN_MAX_LIFETIME":  "soon",
				"DB_CONN_MAX_IDLE_TIME": "0m",
			},
			want: def,
		},
		{
			name: "zero counts keep defaults",
			env: map[string]string{
				"DB_MAX_OPEN_CONNS": "0",
				"DB_MAX_IDLE_CONNS": "0",
			},
			want: def,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{
				"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
				"DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME",
			} {
				t.Setenv(key, "")
				_ = os.Unsetenv(key)
			}
			for key, val := range tt.env {
				t.Setenv(key, val)
			}

			assert.Equal(t, tt.want, poolConfigFromEnv())
		})
	}
}

// Open calls log.Fatal on a missing DSN or unreachable database, so it is
// only exercised against a real catalog instance.
func TestOpen_AgainstRealDatabase(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool := Open()
	defer func() { _ = pool.Close() }()

	assert.NoError(t, pool.Ping())
}
