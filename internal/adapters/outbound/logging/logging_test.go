package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openkraft/a11ykraft/internal/adapters/outbound/logging"
)

func TestNew_LevelFollowsDebugFlag(t *testing.T) {
	quiet, err := logging.New(false)
	require.NoError(t, err)
	assert.False(t, quiet.Core().Enabled(zap.InfoLevel))
	assert.True(t, quiet.Core().Enabled(zap.WarnLevel))

	verbose, err := logging.New(true)
	require.NoError(t, err)
	assert.True(t, verbose.Core().Enabled(zap.DebugLevel))
}

func TestMust(t *testing.T) {
	assert.NotPanics(t, func() { logging.Must(false) })
}
