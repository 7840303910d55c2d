package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patlytics/patscope/internal/domain/quality"
)

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultServerMode, cfg.Server.Mode)
	assert.Equal(t, DefaultDBHost, cfg.Database.Host)
	assert.Equal(t, DefaultDBPort, cfg.Database.Port)
	assert.Equal(t, DefaultDBName, cfg.Database.DBName)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, DefaultRedisAddr, cfg.Redis.Addr)
	assert.Equal(t, DefaultKafkaTopic, cfg.Kafka.Topic)
	assert.Equal(t, DefaultMinIOBucket, cfg.MinIO.Bucket)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Equal(t, DefaultCombineMode, cfg.Dataset.Combine)
	assert.Equal(t, DefaultExportDir, cfg.Export.Dir)
	assert.Equal(t, []string{"csv", "json"}, cfg.Export.Formats)
	assert.Equal(t, quality.DefaultThresholds(), cfg.Scoring)
}

func TestApplyDefaults_ExplicitValuesWin(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Dataset.Combine = "union"
	cfg.Scoring = quality.DefaultThresholds()
	cfg.Scoring.Applications.Cap = 40
	cfg.Scoring.Citations.Cap = 20

	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "union", cfg.Dataset.Combine)
	assert.Equal(t, 40, cfg.Scoring.Applications.Cap, "non-zero scoring config must not be overwritten")
}

func TestApplyDefaults_NilConfigIsSafe(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}
