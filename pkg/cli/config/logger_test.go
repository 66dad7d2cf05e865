package config_test

import (
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/tracknest/tracknest/pkg/cli/config"
	"github.com/tracknest/tracknest/pkg/utils/logging"
)

func TestLoggerConfigure(t *testing.T) {
	// Configure installs the process default logger; restore it
	original := logging.Default()
	t.Cleanup(func() { logging.SetDefault(original) })

	t.Run("console format", func(t *testing.T) {
		logger := config.NewLoggerForTest("info", "console", "stdout")
		closer, err := logger.Configure()
		gt.NoError(t, err).Required()
		closer()
	})

	t.Run("json format with debug level", func(t *testing.T) {
		logger := config.NewLoggerForTest("debug", "json", "stderr")
		closer, err := logger.Configure()
		gt.NoError(t, err).Required()
		closer()
	})

	t.Run("file output", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tracknest.log")
		logger := config.NewLoggerForTest("warn", "json", path)
		closer, err := logger.Configure()
		gt.NoError(t, err).Required()

		logging.Default().Warn("test entry")
		closer()
	})

	t.Run("invalid level is rejected", func(t *testing.T) {
		logger := config.NewLoggerForTest("verbose", "console", "stdout")
		_, err := logger.Configure()
		gt.Error(t, err)
	})

	t.Run("invalid format is rejected", func(t *testing.T) {
		logger := config.NewLoggerForTest("info", "xml", "stdout")
		_, err := logger.Configure()
		gt.Error(t, err)
	})
}
