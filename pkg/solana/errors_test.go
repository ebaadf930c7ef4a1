package solana

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ybbus/jsonrpc"
)

func decodeRaw(t *testing.T, s string) interface{} {
	d := json.NewDecoder(bytes.NewBufferString(s))
	d.UseNumber()

	var raw interface{}
	require.NoError(t, d.Decode(&raw))
	return raw
}

func TestParseTransactionError_Custom(t *testing.T) {
	e, err := ParseTransactionError(decodeRaw(t, `{"InstructionError":[2,{"Custom":3}]}`))
	require.NoError(t, err)

	assert.Equal(t, TransactionErrorInstructionError, e.ErrorKey())
	require.NotNil(t, e.InstructionError())
	assert.Equal(t, 2, e.InstructionError().Index)
	assert.Equal(t, InstructionErrorCustom, e.InstructionError().ErrorKey())
	require.NotNil(t, e.InstructionError().CustomError())
	assert.Equal(t, CustomError(3), *e.InstructionError().CustomError())
	assert.False(t, e.InstructionError().CustomError().IsProgramDefined())
}

func TestParseTransactionError_Named(t *testing.T) {
	e, err := ParseTransactionError(decodeRaw(t, `{"InstructionError":[0,"InvalidArgument"]}`))
	require.NoError(t, err)

	require.NotNil(t, e.InstructionError())
	assert.Equal(t, 0, e.InstructionError().Index)
	assert.Equal(t, InstructionErrorInvalidArgument, e.InstructionError().ErrorKey())
	assert.Nil(t, e.InstructionError().CustomError())
	assert.EqualError(t, e, "Error processing Instruction 0: InvalidArgument")

	e, err = ParseTransactionError(decodeRaw(t, `"DuplicateSignature"`))
	require.NoError(t, err)
	assert.Equal(t, TransactionErrorDuplicateSignature, e.ErrorKey())
	assert.Nil(t, e.InstructionError())

	e, err = ParseTransactionError(decodeRaw(t, `{"InsufficientFundsForRent":{"account_index":1}}`))
	require.NoError(t, err)
	assert.EqualValues(t, "InsufficientFundsForRent", e.ErrorKey())

	e, err = ParseTransactionError(nil)
	assert.NoError(t, err)
	assert.Nil(t, e)
}

func TestParseTransactionError_Malformed(t *testing.T) {
	for _, raw := range []string{
		`{"AccountInUse":null,"AccountNotFound":null}`,
		`{"InstructionError":[0]}`,
		`{"InstructionError":["x","InvalidArgument"]}`,
		`{"InstructionError":[0,{"Custom":"abc"}]}`,
		`{"InstructionError":[0,true]}`,
		`42`,
	} {
		_, err := ParseTransactionError(decodeRaw(t, raw))
		assert.Error(t, err, raw)
	}
}

func TestNewTransactionError(t *testing.T) {
	e := NewTransactionError(TransactionErrorBlockhashNotFound)
	assert.Equal(t, decodeRaw(t, `"BlockhashNotFound"`), e.raw)
	assert.Equal(t, TransactionErrorBlockhashNotFound, e.ErrorKey())
	assert.EqualError(t, e, "BlockhashNotFound")
}

func TestParseRPCError(t *testing.T) {
	rpcErr := &jsonrpc.RPCError{
		Code:    -32002,
		Message: "Transaction simulation failed: Error processing Instruction 0: custom program error: 0x1770",
		Data: map[string]interface{}{
			"err": map[string]interface{}{
				"InstructionError": []interface{}{json.Number("0"), map[string]interface{}{"Custom": json.Number("6000")}},
			},
			"logs": []interface{}{"Program log: AnchorError occurred."},
		},
	}

	e, err := ParseRPCError(rpcErr)
	require.NoError(t, err)
	require.NotNil(t, e)
	require.NotNil(t, e.InstructionError())
	require.NotNil(t, e.InstructionError().CustomError())
	assert.True(t, e.InstructionError().CustomError().IsProgramDefined())
	assert.EqualError(t, e, "Error processing Instruction 0: custom program error: 0x1770")

	e, err = ParseRPCError(&jsonrpc.RPCError{Code: -32002, Data: map[string]interface{}{}})
	assert.NoError(t, err)
	assert.Nil(t, e)

	e, err = ParseRPCError(nil)
	assert.NoError(t, err)
	assert.Nil(t, e)

	_, err = ParseRPCError(&jsonrpc.RPCError{Code: -32002, Data: "unexpected"})
	assert.Error(t, err)
}

func TestCustomError(t *testing.T) {
	assert.False(t, CustomError(3000).IsProgramDefined())
	assert.True(t, CustomError(6001).IsProgramDefined())
	assert.EqualError(t, CustomError(6001), "custom program error: 0x1771")
}

func TestParseJSONNumber(t *testing.T) {
	for i, c := range []interface{}{"1", 1.0, json.Number("1"), 1, int64(1)} {
		v, err := parseJSONNumber(c)
		assert.NoError(t, err)
		assert.Equal(t, 1, v, i)
	}

	_, err := parseJSONNumber(json.Number("1.5"))
	assert.Error(t, err)
	_, err = parseJSONNumber(true)
	assert.Error(t, err)
}
