package usecases

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	errorStringSelector = "0x08c379a0"
	panicSelector       = "0x4e487b71"
)

var revertHexPattern = regexp.MustCompile(`0x[0-9a-fA-F]{8,}`)

// RevertDecoded is the best-effort decoding of revert bytes
type RevertDecoded struct {
	Selector string
	Name     string
	Message  string
}

// decodeRevertDataFromError attempts to parse hex-encoded revert bytes from RPC errors.
// It supports rpc.DataError payloads and fallback extraction from error strings.
func decodeRevertDataFromError(err error) (RevertDecoded, bool) {
	if err == nil {
		return RevertDecoded{}, false
	}

	if data, ok := extractRevertHexFromDataError(err); ok {
		return decodeRevertData(data), true
	}

	if data, ok := extractRevertHexFromErrorString(err.Error()); ok {
		return decodeRevertData(data), true
	}

	return RevertDecoded{}, false
}

func decodeRevertData(data []byte) RevertDecoded {
	if len(data) < 4 {
		return RevertDecoded{}
	}
	result := RevertDecoded{Selector: "0x" + hex.EncodeToString(data[:4])}

	switch result.Selector {
	case errorStringSelector:
		stringType, err := abi.NewType("string", "", nil)
		if err != nil {
			return result
		}
		outputs := abi.Arguments{{Type: stringType}}
		if values, unpackErr := outputs.Unpack(data[4:]); unpackErr == nil && len(values) == 1 {
			if msg, ok := values[0].(string); ok {
				result.Name = "Error"
				result.Message = msg
			}
		}
	case panicSelector:
		if len(data) >= 36 {
			result.Name = "Panic"
			result.Message = fmt.Sprintf("panic code: %s", new(big.Int).SetBytes(data[4:36]).String())
		}
	}
	return result
}

func extractRevertHexFromDataError(err error) ([]byte, bool) {
	type rpcDataError interface {
		ErrorData() interface{}
	}
	var dataErr rpcDataError
	if !errors.As(err, &dataErr) {
		return nil, false
	}
	return parseRevertBytesFromAny(dataErr.ErrorData())
}

func parseRevertBytesFromAny(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case string:
		return parseHexBytes(v)
	case []byte:
		if len(v) == 0 {
			return nil, false
		}
		out := make([]byte, len(v))
		copy(out, v)
		return out, true
	case map[string]interface{}:
		if raw, ok := v["data"]; ok {
			return parseRevertBytesFromAny(raw)
		}
		if raw, ok := v["result"]; ok {
			return parseRevertBytesFromAny(raw)
		}
	case map[string]string:
		if raw, ok := v["data"]; ok {
			return parseHexBytes(raw)
		}
		if raw, ok := v["result"]; ok {
			return parseHexBytes(raw)
		}
	}
	return nil, false
}

func extractRevertHexFromErrorString(message string) ([]byte, bool) {
	for _, candidate := range revertHexPattern.FindAllString(message, -1) {
		// 20-byte addresses show up in node messages and are never revert data
		if len(candidate) == 42 {
			continue
		}
		if data, ok := parseHexBytes(candidate); ok {
			return data, true
		}
	}
	return nil, false
}

func parseHexBytes(raw string) ([]byte, bool) {
	value := strings.TrimSpace(strings.TrimPrefix(raw, "0x"))
	if len(value) < 8 || len(value)%2 != 0 {
		return nil, false
	}
	data, err := hex.DecodeString(value)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}
