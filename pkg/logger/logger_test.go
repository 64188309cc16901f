package logger

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestGetZerologLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, getZerologLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, getZerologLevel("WARN"))
	assert.Equal(t, zerolog.Disabled, getZerologLevel("disabled"))
	assert.Equal(t, zerolog.NoLevel, getZerologLevel("verbose"))
}

func TestPrepareLogFileName(t *testing.T) {
	name := prepareLogFileName("server-%Y%M%D.log")
	assert.Equal(t, "server-"+time.Now().Format("20060102")+".log", name)
	assert.False(t, strings.Contains(name, "%"))
}

func TestNopDuplicate(t *testing.T) {
	log := NewNop()
	dup := log.Duplicate(log.With().Str("layer", "test").Logger())
	assert.False(t, dup.Info().Enabled())
	assert.False(t, dup.Error().Enabled())
}
