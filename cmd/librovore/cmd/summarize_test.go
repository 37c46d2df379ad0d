package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeCmd_DeclaresGroupByFlag(t *testing.T) {
	cmd := newSummarizeCmd()
	assert.NotNil(t, cmd.Flags().Lookup("group-by"))
}
