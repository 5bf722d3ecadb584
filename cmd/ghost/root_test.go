package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCmd_RegistersExpectedSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"run", "status", "execute", "actions", "approve", "deny", "workflows", "record"} {
		assert.True(t, names[want], "expected subcommand %q to be registered", want)
	}
}

func TestWorkflowsCmd_HasListAndExecuteSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range workflowsCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["execute"])
}

func TestRecordCmd_HasStartAndStopSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range recordCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["start"])
	assert.True(t, names["stop"])
}
