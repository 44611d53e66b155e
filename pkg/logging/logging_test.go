package logging

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/deeplinker/pkg/config"
)

func TestSetupWritesToLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	closeFn, err := Setup(&config.Config{LogFile: path})
	require.NoError(t, err)
	log.Printf("hello from the test")
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the test")
}

func TestSetupNoop(t *testing.T) {
	closeFn, err := Setup(&config.Config{})
	require.NoError(t, err)
	closeFn()
}
