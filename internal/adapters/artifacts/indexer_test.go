package artifacts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-ignition/internal/domain"
)

const tokenABI = `[{"inputs":[{"internalType":"string","name":"name_","type":"string"},{"internalType":"uint256","name":"supply","type":"uint256"}],"stateMutability":"nonpayable","type":"constructor"}]`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestIndexer_HardhatArtifact(t *testing.T) {
	indexer := NewIndexerAt(filepath.Join("..", "..", "usecase", "testdata", "project", "artifacts"))

	artifact, err := indexer.Get("Aura")
	require.NoError(t, err)
	assert.Equal(t, "Aura", artifact.Name)
	assert.Equal(t, "contracts/Aura.sol", artifact.SourceName)
	assert.NotEmpty(t, artifact.Bytecode)
	assert.Contains(t, artifact.ABI.Methods, "symbol")
	assert.False(t, artifact.HasConstructorArgs())

	again, err := indexer.Get("Aura")
	require.NoError(t, err)
	assert.Same(t, artifact, again)
}

func TestIndexer_ForgeArtifact(t *testing.T) {
	out := t.TempDir()
	writeFile(t, filepath.Join(out, "Token.sol", "Token.json"),
		`{"abi":`+tokenABI+`,"bytecode":{"object":"0x6001600055"}}`)
	writeFile(t, filepath.Join(out, "build-info", "abc.json"), `{"not":"an artifact"}`)

	indexer := NewIndexerAt(out)
	artifact, err := indexer.Get("Token")
	require.NoError(t, err)
	assert.Equal(t, "Token", artifact.Name)
	assert.Equal(t, []byte{0x60, 0x01, 0x60, 0x00, 0x55}, artifact.Bytecode)
	assert.True(t, artifact.HasConstructorArgs())
	assert.Equal(t, []string{"Token"}, indexer.Names())
}

func TestIndexer_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "Dup.sol", "Dup.json"), `{"abi":[],"bytecode":"0x00"}`)
	writeFile(t, filepath.Join(dir, "b", "Dup.sol", "Dup.json"), `{"abi":[],"bytecode":"0x00"}`)
	writeFile(t, filepath.Join(dir, "IFace.sol", "IFace.json"), `{"abi":[],"bytecode":"0x"}`)
	writeFile(t, filepath.Join(dir, "Linked.sol", "Linked.json"), `{"abi":[],"bytecode":"0x73__$abc$__00"}`)

	indexer := NewIndexerAt(dir, filepath.Join(dir, "missing"))

	t.Run("not found", func(t *testing.T) {
		_, err := indexer.Get("Nope")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("ambiguous", func(t *testing.T) {
		_, err := indexer.Get("Dup")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ambiguous")
	})

	t.Run("interface has no bytecode", func(t *testing.T) {
		_, err := indexer.Get("IFace")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no creation bytecode")
	})

	t.Run("unlinked libraries", func(t *testing.T) {
		_, err := indexer.Get("Linked")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unlinked")
	})
}

func TestIndexer_QualifiedName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "contracts", "A.sol", "Dup.json"), `{"abi":[],"bytecode":"0x01"}`)
	writeFile(t, filepath.Join(dir, "contracts", "B.sol", "Dup.json"), `{"abi":[],"bytecode":"0x02"}`)

	indexer := NewIndexerAt(dir)
	artifact, err := indexer.Get("B.sol:Dup")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02}, artifact.Bytecode)
}
