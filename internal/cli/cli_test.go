package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcfw/agritrace/pkg/validation"
)

func TestYAMLToJSONKeepsOrder(t *testing.T) {
	in := []byte("zinc: 1\ntemperature: 5C\nlimits:\n  max: 3\n")

	out, err := yamlToJSON(in)
	require.NoError(t, err)
	assert.Equal(t, `{"zinc":1,"temperature":"5C","limits":{"max":3}}`, string(out))
}

func TestYAMLToJSONRejectsList(t *testing.T) {
	_, err := yamlToJSON([]byte("- a\n- b\n"))
	assert.ErrorIs(t, err, validation.ErrInvalid)
}

func TestParseAttributes(t *testing.T) {
	attrs, err := parseAttributes(`{"acidity":3.5}`, map[string]string{"temperature": "5C"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"acidity": 3.5, "temperature": "5C"}, attrs)

	attrs, err = parseAttributes("", nil)
	require.NoError(t, err)
	assert.Nil(t, attrs)

	_, err = parseAttributes("[1]", nil)
	assert.Error(t, err)
}

func execute(t *testing.T, args ...string) string {
	t.Helper()

	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetOut(nil)

	if _, err := rootCmd.ExecuteC(); err != nil {
		t.Fatal(err)
	}

	return out.String()
}

func TestComplianceGrantHelpExplainsLockout(t *testing.T) {
	for _, cmd := range []*cobra.Command{compliance_grantCmd, access_issueCmd} {
		assert.Contains(t, cmd.Long, "revoked", cmd.Name())
		assert.Contains(t, cmd.Long, "never be re-issued", cmd.Name())
	}
}

func TestComplianceFlow(t *testing.T) {
	dir := t.TempDir()
	base := []string{"--backend", "sqlite", "--ledger", dir}

	std := filepath.Join(dir, "cold-chain.yaml")
	if err := os.WriteFile(std, []byte("temperature: 5C\n"), 0600); err != nil {
		t.Fatal(err)
	}

	execute(t, append(base, "standard", "register", "S1", std)...)
	execute(t, append(base, "trace", "create", "did:example:sensor", "cold-chain", "ok", "--id", "P1", "--attr", "temperature=5C")...)

	res := map[string]interface{}{}
	out := execute(t, append(base, "compliance", "verify", "P1", "S1")...)
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, true, res["compliant"])

	snap := filepath.Join(dir, "ledger.snap")
	execute(t, append(base, "ledger", "export", snap)...)

	info, err := os.Stat(snap)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}
