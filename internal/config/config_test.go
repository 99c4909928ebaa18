package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lezbar/strf/internal/config"
)

func TestLoadRequiresEnv(t *testing.T) {
	t.Setenv(config.EnvDataDir, "")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadAndPaths(t *testing.T) {
	t.Setenv(config.EnvDataDir, "/srv/strf")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/strf/data/sites.txt", cfg.SitesPath())
	assert.Equal(t, "/srv/strf/data/frequencies.txt", cfg.FrequenciesPath())
}
