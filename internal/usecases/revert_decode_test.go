package usecases

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/require"
)

type rpcDataErrorStub struct {
	msg  string
	data interface{}
}

func (e rpcDataErrorStub) Error() string          { return e.msg }
func (e rpcDataErrorStub) ErrorData() interface{} { return e.data }

func encodeErrorString(t *testing.T, reason string) string {
	t.Helper()
	stringType, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: stringType}}.Pack(reason)
	require.NoError(t, err)
	return "0x08c379a0" + hex.EncodeToString(packed)
}

func TestDecodeRevertDataFromError_ErrorString(t *testing.T) {
	err := rpcDataErrorStub{msg: "execution reverted", data: encodeErrorString(t, "Startup not active")}
	decoded, ok := decodeRevertDataFromError(err)
	require.True(t, ok)
	require.Equal(t, "Error", decoded.Name)
	require.Equal(t, "Startup not active", decoded.Message)
}

func TestDecodeRevertDataFromError_Panic(t *testing.T) {
	err := rpcDataErrorStub{
		msg:  "execution reverted",
		data: "0x4e487b710000000000000000000000000000000000000000000000000000000000000011",
	}
	decoded, ok := decodeRevertDataFromError(err)
	require.True(t, ok)
	require.Equal(t, "Panic", decoded.Name)
	require.Equal(t, "panic code: 17", decoded.Message)
}

func TestDecodeRevertDataFromError_StringFallback(t *testing.T) {
	decoded, ok := decodeRevertDataFromError(errors.New("execution reverted: 0xdeadbeef01"))
	require.True(t, ok)
	require.Equal(t, "0xdeadbeef", decoded.Selector)
	require.Empty(t, decoded.Message)
}

func TestDecodeRevertDataFromError_IgnoresAddresses(t *testing.T) {
	_, ok := decodeRevertDataFromError(errors.New("sender 0x71562b71999873DB5b286dF957af199Ec94617F7 not allowed"))
	require.False(t, ok)
}

func TestDecodeRevertDataFromError_NoData(t *testing.T) {
	_, ok := decodeRevertDataFromError(errors.New("execution reverted"))
	require.False(t, ok)
	_, ok = decodeRevertDataFromError(nil)
	require.False(t, ok)
}

func TestParseRevertBytesFromAny(t *testing.T) {
	data, ok := parseRevertBytesFromAny(map[string]interface{}{"data": "0x08c379a0aa"})
	require.True(t, ok)
	require.Len(t, data, 5)

	_, ok = parseRevertBytesFromAny(map[string]string{"result": "0x12"})
	require.False(t, ok)

	data, ok = parseRevertBytesFromAny([]byte{1, 2, 3, 4})
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3, 4}, data)

	_, ok = parseRevertBytesFromAny(42)
	require.False(t, ok)
}
