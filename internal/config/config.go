// Package config resolves the process-wide data directory once at startup
// and threads it explicitly into the catalog-access component, instead of
// reading the ST_DATADIR environment variable ad hoc throughout the code
// base (spec.md section 9's design note on global state).
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvDataDir is the environment variable naming the root of the site table
// and frequency catalog (spec.md section 4.2/6).
const EnvDataDir = "ST_DATADIR"

// Config is the set of process-wide, read-once settings.
type Config struct {
	DataDir string
}

// Load reads ST_DATADIR from the environment. It does not validate that the
// directory exists; catalog accessors surface that failure themselves so
// the caller sees a precise "file not found" rather than a generic startup
// error for a data directory that is only needed by some commands.
func Load() (Config, error) {
	dir := os.Getenv(EnvDataDir)
	if dir == "" {
		return Config{}, fmt.Errorf("config: %s is not set", EnvDataDir)
	}
	return Config{DataDir: dir}, nil
}

// SitesPath returns the path to the site table.
func (c Config) SitesPath() string {
	return filepath.Join(c.DataDir, "data", "sites.txt")
}

// FrequenciesPath returns the path to the frequency catalog.
func (c Config) FrequenciesPath() string {
	return filepath.Join(c.DataDir, "data", "frequencies.txt")
}
