package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServeCmd_TakesNoArgs(t *testing.T) {
	cmd := newServeCmd()
	assert.Error(t, cmd.Args(cmd, []string{"unexpected"}))
	assert.NoError(t, cmd.Args(cmd, []string{}))
}
