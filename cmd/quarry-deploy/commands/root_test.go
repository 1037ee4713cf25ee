package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoot_HasAllSubcommands(t *testing.T) {
	root := Root()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"deploy", "destroy", "status", "invoke", "logs", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRoot_BareInvocationFails(t *testing.T) {
	root := Root()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(nil)

	err := root.Execute()
	require.Error(t, err, "bare invocation must exit non-zero")
	assert.Contains(t, out.String(), "Usage:", "usage must be printed")
}

func TestRoot_UnknownCommandFails(t *testing.T) {
	root := Root()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"frobnicate"})

	require.Error(t, root.Execute())
}

func TestDeploy_Flags(t *testing.T) {
	cmd := Deploy()

	require.NotNil(t, cmd.Flags().Lookup("config"))
	require.NotNil(t, cmd.Flags().Lookup("param"))
	assert.Equal(t, "c", cmd.Flags().Lookup("config").Shorthand)
	assert.Contains(t, cmd.Use, "[Key=Value ...]", "deploy must accept trailing parameter overrides")
}

func TestParseParamFlags(t *testing.T) {
	params, err := parseParamFlags([]string{"MemorySizeMB=6144", "Tag=env=prod"})
	require.NoError(t, err)
	assert.Equal(t, "6144", params["MemorySizeMB"])
	assert.Equal(t, "env=prod", params["Tag"])

	_, err = parseParamFlags([]string{"NoEquals"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected Key=Value")
}
