package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/ffs/config"
	"github.com/brettbedarf/ffs/internal/util"
)

// execute runs the root command with args and script on stdin
func execute(t *testing.T, script string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&rootOptions{})
	out := &bytes.Buffer{}
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(script))
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestRoot_MemoryBackend(t *testing.T) {
	got, err := execute(t, "create -a-b\nadd -a-b hello\ncat a-b\nquit\n", "--backend", "memory")
	require.NoError(t, err)
	assert.Equal(t, "ffs> create -a-b\nffs> add -a-b hello\nffs> cat a-b\nhello\nffs> quit\n", got)
}

func TestRoot_NoEcho(t *testing.T) {
	got, err := execute(t, "pwd\n", "--backend", "memory", "--echo=false")
	require.NoError(t, err)
	assert.Equal(t, "-\n", got)
}

func TestRoot_OSBackendPersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "A2dir")

	_, err := execute(t, "create home-alice-notes\nadd home-alice-notes hi there\n", "--dir", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "-home-alice-notes"))
	require.NoError(t, err)
	assert.Equal(t, "hi there", string(data))

	got, err := execute(t, "cd home\nls\ncat alice-notes\n", "--dir", dir, "--echo=false")
	require.NoError(t, err)
	assert.Equal(t, "d: alice\nhi there\n", got, "a new run rebuilds the tree from the flat files")
}

func TestRoot_Rls(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "-x"), nil, 0o644))

	got, err := execute(t, "rls\n", "--dir", dir, "--echo=false")
	require.NoError(t, err)
	assert.Contains(t, got, "-x")
}

func TestRoot_SkipsBadNames(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"-a-b", "-a-b-c", "plain"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}

	got, err := execute(t, "tree\n", "--dir", dir, "--echo=false")
	require.NoError(t, err)
	assert.Equal(t, "-\n=\n    -a-\n    ===\n    b\n", got)
}

func TestRoot_Errors(t *testing.T) {
	_, err := execute(t, "", "--backend", "s3")
	assert.Error(t, err)

	_, err = execute(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = execute(t, "", "--backend", "memory", "--indent=-1")
	assert.Error(t, err)

	_, err = execute(t, "", "extra-arg")
	assert.Error(t, err)
}

func TestBuildConfig_Precedence(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "ffs.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("store_dir: filedir\nindent: 2\nprompt: \"file> \"\n"), 0o644))
	envPath := filepath.Join(tmp, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("FFS_STORE_DIR=envdir\nFFS_INDENT=3\n"), 0o644))

	opts := &rootOptions{}
	cmd := newRootCmd(opts)
	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgPath, "--env-file", envPath, "--indent", "8", "-v", "4"}))

	cfg, err := buildConfig(cmd, opts)
	require.NoError(t, err)

	expCfg := config.NewDefaultConfig()
	expCfg.StoreDir = "envdir"
	expCfg.Indent = 8
	expCfg.Prompt = "file> "
	expCfg.LogLvl = util.DebugLevel
	assert.Equal(t, expCfg, cfg)
}

func TestBuildConfig_ProcessEnv(t *testing.T) {
	t.Setenv(config.EnvBackend, config.MemoryBackend)
	t.Setenv(config.EnvEchoCommands, "false")

	opts := &rootOptions{}
	cmd := newRootCmd(opts)
	require.NoError(t, cmd.ParseFlags(nil))

	cfg, err := buildConfig(cmd, opts)
	require.NoError(t, err)
	assert.Equal(t, config.MemoryBackend, cfg.Backend)
	assert.False(t, cfg.EchoCommands)
	assert.Equal(t, config.DefaultStoreDir, cfg.StoreDir, "unchanged flags do not override")
}
