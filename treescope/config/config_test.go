package config

import (
	"os"
	"path/filepath"
	"testing"

	internal "github.com/ZanzyTHEbar/treescope/treescope"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests the config package functionality
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	// Save original directory
	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	// Each test starts from a clean viper state in an empty directory
	viper.Reset()

	tempDir, err := os.MkdirTemp("", "treescope-config-test-*")
	require.NoError(suite.T(), err)
	suite.tempDir = tempDir

	err = os.Chdir(tempDir)
	require.NoError(suite.T(), err)
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		os.Chdir(suite.origDir)
	}

	if suite.tempDir != "" {
		os.RemoveAll(suite.tempDir)
	}
}

func (suite *ConfigTestSuite) TestLoadConfigWithDefaults() {
	cfg, err := LoadConfig("")

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), internal.DefaultMaxDepth, cfg.Treescope.Scan.MaxDepth)
	assert.False(suite.T(), cfg.Treescope.Scan.HumanReadable)
	assert.Equal(suite.T(), internal.DefaultWorkerCount, cfg.Treescope.Scan.WorkerCount)
	assert.False(suite.T(), cfg.Treescope.Scan.SkipHidden)
	assert.Empty(suite.T(), cfg.Treescope.Scan.ExcludePatterns)
	assert.Equal(suite.T(), internal.DefaultSnapshotDBPath, cfg.Treescope.Database.DSN)
	assert.Equal(suite.T(), "libsql", cfg.Treescope.Database.Type)
	assert.Equal(suite.T(), "info", cfg.Treescope.Log.Level)
}

func (suite *ConfigTestSuite) TestLoadConfigWithFile() {
	configContent := `
treescope:
  scan:
    maxDepth: 5
    humanReadable: true
    workerCount: 8
    skipHidden: true
    excludePatterns:
      - "*.log"
      - "node_modules"
  database:
    dsn: "test-snapshots.db"
    type: "libsql"
  log:
    file: "scan.log"
    level: "debug"
`

	configFile := filepath.Join(suite.tempDir, "config.yaml")
	err := os.WriteFile(configFile, []byte(configContent), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), 5, cfg.Treescope.Scan.MaxDepth)
	assert.True(suite.T(), cfg.Treescope.Scan.HumanReadable)
	assert.Equal(suite.T(), 8, cfg.Treescope.Scan.WorkerCount)
	assert.True(suite.T(), cfg.Treescope.Scan.SkipHidden)
	assert.Equal(suite.T(), []string{"*.log", "node_modules"}, cfg.Treescope.Scan.ExcludePatterns)
	assert.Equal(suite.T(), "test-snapshots.db", cfg.Treescope.Database.DSN)
	assert.Equal(suite.T(), "scan.log", cfg.Treescope.Log.File)
	assert.Equal(suite.T(), "debug", cfg.Treescope.Log.Level)
}

func (suite *ConfigTestSuite) TestLoadConfigInvalidFile() {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestLoadConfigMalformedFile() {
	malformedContent := `
treescope:
  scan:
    maxDepth: 3
  invalid_yaml: [unclosed bracket
`

	configFile := filepath.Join(suite.tempDir, "malformed.yaml")
	err := os.WriteFile(configFile, []byte(malformedContent), 0o644)
	require.NoError(suite.T(), err)

	cfg, err := LoadConfig(configFile)

	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestAppConfigGlobal() {
	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), cfg.Treescope.Scan.MaxDepth, AppConfig.Treescope.Scan.MaxDepth)
	assert.Equal(suite.T(), cfg.Treescope.Database.DSN, AppConfig.Treescope.Database.DSN)
}

// TestConfigTypes tests the configuration type definitions
func TestConfigTypes(t *testing.T) {
	config := Config{}
	assert.IsType(t, TreescopeConfig{}, config.Treescope)

	tsConfig := TreescopeConfig{}
	assert.IsType(t, ScanConfig{}, tsConfig.Scan)
	assert.IsType(t, DatabaseConfig{}, tsConfig.Database)
	assert.IsType(t, LogConfig{}, tsConfig.Log)

	scanConfig := ScanConfig{}
	assert.IsType(t, 0, scanConfig.MaxDepth)
	assert.IsType(t, false, scanConfig.HumanReadable)
	assert.IsType(t, []string(nil), scanConfig.ExcludePatterns)

	dbConfig := DatabaseConfig{}
	assert.IsType(t, "", dbConfig.DSN)
	assert.IsType(t, "", dbConfig.Type)
}

// BenchmarkLoadConfig benchmarks config loading performance
func BenchmarkLoadConfig(b *testing.B) {
	for i := 0; i < b.N; i++ {
		cfg, err := LoadConfig("")
		if err != nil {
			b.Fatal(err)
		}
		_ = cfg
	}
}
