package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPgrepChecker_DefaultPattern(t *testing.T) {
	assert.Equal(t, DefaultProcessPattern, NewPgrepChecker("").Pattern)
	assert.Equal(t, "my-agent", NewPgrepChecker("my-agent").Pattern)
}

func TestPgrepChecker_NoMatchReadsAsNotRunning(t *testing.T) {
	c := NewPgrepChecker("definitely-not-a-real-process-name-xyz")
	assert.False(t, c.Running())
}
