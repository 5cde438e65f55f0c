package dlsim_test

import (
	"strings"
	"testing"
	"time"

	"github.com/db47h/dlsim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig(t *testing.T) {
	cfg, err := dlsim.ReadConfig(strings.NewReader(`
ticks_per_second: 50
seed: 12
publish_interval: 20ms
log_level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.TicksPerSecond)
	assert.Equal(t, int64(12), cfg.Seed)
	assert.Equal(t, 20*time.Millisecond, cfg.PublishInterval)
	assert.Equal(t, "debug", cfg.LogLevel)
	// defaults
	assert.Equal(t, dlsim.DefaultClockDivisor, cfg.ClockDivisor)
	assert.Equal(t, dlsim.DefaultReorderInterval, cfg.ReorderInterval)
	assert.Equal(t, dlsim.DefaultEditQueue, cfg.EditQueue)

	cfg, err = dlsim.ReadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, dlsim.DefaultConfig().TicksPerSecond, cfg.TicksPerSecond)
}

func TestReadConfig_errors(t *testing.T) {
	for _, src := range []string{
		"tps: 4",
		"clock_divisor: 0",
		"reorder_interval: -1",
		"log_level: chatty",
		"publish_interval: soon",
	} {
		_, err := dlsim.ReadConfig(strings.NewReader(src))
		assert.Error(t, err, src)
	}
	_, err := dlsim.LoadConfig("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}

func TestBuild_zeroConfig(t *testing.T) {
	lib := dlsim.Library{}
	lib.Add(&dlsim.ChipDesc{Name: "EMPTY"})
	c, err := dlsim.Build(lib, "EMPTY", dlsim.Config{Seed: 1})
	require.NoError(t, err)
	cfg := c.Config()
	assert.Equal(t, dlsim.DefaultClockDivisor, cfg.ClockDivisor)
	assert.Equal(t, dlsim.DefaultPublishInterval, cfg.PublishInterval)
	assert.Equal(t, dlsim.DefaultEditQueue, cfg.EditQueue)
	// meaningful zero values are kept
	assert.Equal(t, 0, cfg.TicksPerSecond)
	assert.Equal(t, 0, cfg.ReorderInterval)

	c, err = dlsim.Build(lib, "EMPTY", dlsim.Config{ClockDivisor: 2, EditQueue: 3, ReorderInterval: -4})
	require.NoError(t, err)
	cfg = c.Config()
	assert.Equal(t, 2, cfg.ClockDivisor)
	assert.Equal(t, 3, cfg.EditQueue)
	assert.Equal(t, 0, cfg.ReorderInterval)
}
