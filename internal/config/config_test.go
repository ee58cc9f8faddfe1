package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shoyu-network/shoyu-daemon/internal/config"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		datadir := t.TempDir()
		t.Setenv("SHOYU_DATADIR", datadir)
		t.Setenv("SHOYU_AUTH_SECRET", "secret")
		t.Setenv("SHOYU_FACTORY_OWNER", "0x00000000000000000000000000000000000000aa")

		require.NoError(t, config.InitConfig())
		require.Equal(t, 9945, config.GetInt(config.HTTPListeningPortKey))
		require.Equal(t, 25, config.GetInt(config.ProtocolFeeKey))
		require.Equal(t, 5, config.GetInt(config.OperationalFeeKey))
		require.Equal(t, config.ClockLocal, config.GetString(config.ClockTypeKey))
		require.Equal(t, "badger", config.GetString(config.DBTypeKey))
		require.Equal(
			t, "0x00000000000000000000000000000000000000AA",
			config.GetAddress(config.FactoryOwnerKey).Hex(),
		)

		for _, dir := range []string{config.DbLocation, config.PubSubLocation} {
			info, err := os.Stat(filepath.Join(datadir, dir))
			require.NoError(t, err)
			require.True(t, info.IsDir())
		}
	})

	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing auth secret",
			env:  map[string]string{},
		},
		{
			name: "unsupported db type",
			env:  map[string]string{"SHOYU_DB_TYPE": "postgres"},
		},
		{
			name: "unsupported clock type",
			env:  map[string]string{"SHOYU_CLOCK_TYPE": "sundial"},
		},
		{
			name: "rpc clock without url",
			env:  map[string]string{"SHOYU_CLOCK_TYPE": "rpc"},
		},
		{
			name: "invalid factory owner",
			env:  map[string]string{"SHOYU_FACTORY_OWNER": "owner"},
		},
		{
			name: "protocol fee too high",
			env:  map[string]string{"SHOYU_PROTOCOL_FEE": "101"},
		},
		{
			name: "negative webhook rate limit",
			env:  map[string]string{"SHOYU_WEBHOOK_RATE_LIMIT": "-1"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SHOYU_DATADIR", t.TempDir())
			if tt.name != "missing auth secret" {
				t.Setenv("SHOYU_AUTH_SECRET", "secret")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			require.Error(t, config.InitConfig())
		})
	}
}
