package network

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-ignition/internal/domain"
)

const vaultABI = `[{"type":"constructor","stateMutability":"nonpayable","inputs":[
	{"name":"token","type":"address"},
	{"name":"cap","type":"uint256"},
	{"name":"decimals","type":"uint8"},
	{"name":"paused","type":"bool"},
	{"name":"label","type":"string"},
	{"name":"salt","type":"bytes32"},
	{"name":"owners","type":"address[]"}
]}]`

func testArtifact(t *testing.T, abiJSON string) *domain.Artifact {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	require.NoError(t, err)
	return &domain.Artifact{Name: "Vault", ABI: &parsed, Bytecode: []byte{0x60, 0x80}}
}

func TestEncodeDeployment_CoercesModuleValues(t *testing.T) {
	artifact := testArtifact(t, vaultABI)
	token := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")

	data, err := EncodeDeployment(artifact, []any{
		token,
		"1_000_000_000_000_000_000_000",
		18,
		"true",
		"main vault",
		"0x01",
		[]any{"0x70997970C51812dc3A010C7d01b50e0d17dc79C8", token},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80}, data[:2])

	values, err := artifact.ABI.Constructor.Inputs.Unpack(data[2:])
	require.NoError(t, err)
	assert.Equal(t, token, values[0])
	want, _ := new(big.Int).SetString("1000000000000000000000", 10)
	assert.Equal(t, 0, want.Cmp(values[1].(*big.Int)))
	assert.Equal(t, uint8(18), values[2])
	assert.Equal(t, true, values[3])
	assert.Equal(t, "main vault", values[4])
	assert.Equal(t, byte(0x01), values[5].([32]byte)[0])
	assert.Len(t, values[6], 2)
}

func TestEncodeDeployment_NoConstructor(t *testing.T) {
	artifact := testArtifact(t, `[]`)
	data, err := EncodeDeployment(artifact, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80}, data)

	data[0] = 0
	assert.Equal(t, byte(0x60), artifact.Bytecode[0])
}

func TestEncodeDeployment_Errors(t *testing.T) {
	artifact := testArtifact(t, vaultABI)
	valid := func() []any {
		return []any{"0x5FbDB2315678afecb367f032d93F642f64180aa3", 1, 18, true, "x", "0x01", []any{}}
	}

	tests := []struct {
		name    string
		mutate  func([]any) []any
		wantErr string
	}{
		{"wrong arity", func(a []any) []any { return a[:3] }, "takes 7 arguments, got 3"},
		{"bad address", func(a []any) []any { a[0] = "0x1234"; return a }, "invalid address"},
		{"negative uint", func(a []any) []any { a[1] = -5; return a }, "negative value"},
		{"uint8 overflow", func(a []any) []any { a[2] = 256; return a }, "overflows uint8"},
		{"fractional", func(a []any) []any { a[1] = 1.5; return a }, "not an integer"},
		{"bool from int", func(a []any) []any { a[3] = 1; return a }, "cannot use int as bool"},
		{"bytes32 too long", func(a []any) []any { a[5] = "0x" + strings.Repeat("ab", 33); return a }, "do not fit bytes32"},
		{"list expected", func(a []any) []any { a[6] = "nope"; return a }, "expected a list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EncodeDeployment(artifact, tt.mutate(valid()))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSizedInt_SignedBounds(t *testing.T) {
	int8Type, err := abi.NewType("int8", "", nil)
	require.NoError(t, err)

	v, err := sizedInt(int8Type, big.NewInt(-128))
	require.NoError(t, err)
	assert.Equal(t, int8(-128), v)

	_, err = sizedInt(int8Type, big.NewInt(128))
	assert.Error(t, err)
	_, err = sizedInt(int8Type, big.NewInt(-129))
	assert.Error(t, err)
}
