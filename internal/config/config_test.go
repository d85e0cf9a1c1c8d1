package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"), "tower.yaml")
	require.NoError(t, err)

	assert.Equal(t, DefaultHidesMembers, cfg.HidesMembers)
	assert.Equal(t, InvokeName, cfg.InvokeName)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.False(t, cfg.Scheduler.DeferInvoke)
	assert.True(t, cfg.IsHidesMembersName(ForEachName))
	assert.False(t, cfg.IsHidesMembersName(GetName))
}

func TestParseConfigOverrides(t *testing.T) {
	data := []byte(`
hides_members: [contains, get, set]
scheduler:
  defer_invoke: true
log:
  level: debug
  format: json
`)
	cfg, err := Parse(data, "tower.yaml")
	require.NoError(t, err)

	assert.True(t, cfg.IsHidesMembersName(ContainsName))
	assert.True(t, cfg.IsHidesMembersName(SetName))
	assert.False(t, cfg.IsHidesMembersName(ForEachName))
	assert.True(t, cfg.Scheduler.DeferInvoke)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, JSONLogFormat, cfg.Log.Format)
}

func TestParseConfigEmptyHidesMembersList(t *testing.T) {
	cfg, err := Parse([]byte("hides_members: []\n"), "tower.yaml")
	require.NoError(t, err)
	assert.Empty(t, cfg.HidesMembers)
	assert.False(t, cfg.IsHidesMembersName(ForEachName))
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty name", "hides_members: [forEach, '']", "hides_members[1]: empty name"},
		{"duplicate", "hides_members: [get, get]", "duplicate name"},
		{"bad invoke", "invoke_name: 'a.b'", "invoke_name"},
		{"bad format", "log: {format: xml}", "log.format"},
		{"bad level", "log: {level: loud}", "log.level"},
		{"bad yaml", "hides_members: {", "parsing tower.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input), "tower.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOverrideLog(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.OverrideLog("debug", ""))
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)

	require.NoError(t, cfg.OverrideLog("", JSONLogFormat))
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, JSONLogFormat, cfg.Log.Format)

	assert.ErrorContains(t, cfg.OverrideLog("verbose", ""), `log.level: unknown level "verbose"`)
	assert.ErrorContains(t, cfg.OverrideLog("", "xml"), "log.format")
	assert.Equal(t, Log{Level: "debug", Format: JSONLogFormat}, cfg.Log, "rejected values leave the config untouched")
}

func TestLiteralConfigNormalize(t *testing.T) {
	cfg := (&Config{HidesMembers: []string{GetName}}).Normalize()
	assert.True(t, cfg.IsHidesMembersName(GetName))
	assert.Equal(t, InvokeName, cfg.InvokeName)
}

func TestLoadAndFind(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	path := filepath.Join(root, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("invoke_name: call\n"), 0o644))

	found, err := Find(nested)
	require.NoError(t, err)
	assert.Equal(t, path, found)

	cfg, err := Load(found)
	require.NoError(t, err)
	assert.Equal(t, "call", cfg.InvokeName)

	_, err = Load(filepath.Join(root, "missing.yaml"))
	require.Error(t, err)
}
