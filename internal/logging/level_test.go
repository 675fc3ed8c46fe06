package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevelNames(t *testing.T) {
	cases := map[string]Level{
		"E": Error, "error": Error, "ERROR": Error,
		"W": Warn, "warn": Warn,
		"I": Info, "info": Info,
		"D": Debug, "debug": Debug,
		"T": MaxLevel, "trace": MaxLevel,
	}
	for s, want := range cases {
		got, err := parseLevel(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestParseLevelNumeric(t *testing.T) {
	level, err := parseLevel("3")
	require.NoError(t, err)
	assert.Equal(t, Level(3), level)
}

func TestParseLevelRejectsOutOfRange(t *testing.T) {
	_, err := parseLevel("100")
	assert.Error(t, err)

	_, err = parseLevel("-7")
	assert.Error(t, err)
}

func TestParseLevelRejectsGarbage(t *testing.T) {
	_, err := parseLevel("bogus")
	assert.Error(t, err)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "Error", Error.String())
	assert.Equal(t, "Debug", Debug.String())
	assert.Equal(t, "Trace(5)", Level(5).String())
}

func TestLevelLetter(t *testing.T) {
	assert.Equal(t, byte('E'), Error.letter())
	assert.Equal(t, byte('W'), Warn.letter())
	assert.Equal(t, byte('I'), Info.letter())
	assert.Equal(t, byte('D'), Debug.letter())
	assert.Equal(t, byte('5'), Level(5).letter())
}
