package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "server.yaml", "env: test\nport: \"8081\"\ndriver: sqlite\nsqlite_path: \":memory:\"\nsign_secret: abc\n")
	write(t, dir, "reward.yaml", "checkin_reward: \"7\"\nutc_offset_hours: 3\n")
	t.Setenv("TONIX_SERVER_HOST", "127.0.0.1")

	SetPath(dir)
	Init()

	assert.Equal(t, "test", Server.Env)
	assert.Equal(t, "8081", Server.Port)
	assert.Equal(t, "127.0.0.1", Server.Host)
	assert.Equal(t, "info", Server.LogLevel)
	assert.Equal(t, "sqlite", Server.Driver)
	assert.Equal(t, ":memory:", Server.SqlitePath)

	assert.Equal(t, "7", Reward.CheckinReward)
	assert.Equal(t, "50", Reward.ReferralBonus)
	assert.Equal(t, 3, Reward.UTCOffsetHours)
	assert.Equal(t, 100, Reward.LeaderboardSize)

	assert.Empty(t, Redis.Addr)
	assert.Equal(t, 60, Redis.TTLSeconds)
	assert.Empty(t, Nats.URL)
	assert.Equal(t, "tonix", Nats.SubjectPrefix)
}

func TestInitPanicsWithoutServerFile(t *testing.T) {
	SetPath(t.TempDir())
	assert.Panics(t, Init)
}
