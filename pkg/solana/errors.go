package solana

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/ybbus/jsonrpc"
)

// TransactionErrorKey names a transaction level failure reported by the
// cluster, such as "BlockhashNotFound".
type TransactionErrorKey string

const (
	TransactionErrorAccountInUse            TransactionErrorKey = "AccountInUse"
	TransactionErrorAccountNotFound         TransactionErrorKey = "AccountNotFound"
	TransactionErrorInsufficientFundsForFee TransactionErrorKey = "InsufficientFundsForFee"
	TransactionErrorDuplicateSignature      TransactionErrorKey = "DuplicateSignature"
	TransactionErrorBlockhashNotFound       TransactionErrorKey = "BlockhashNotFound"
	TransactionErrorSignatureFailure        TransactionErrorKey = "SignatureFailure"
	TransactionErrorInstructionError        TransactionErrorKey = "InstructionError"
)

// InstructionErrorKey names the failure of a single instruction.
type InstructionErrorKey string

const (
	InstructionErrorInvalidArgument           InstructionErrorKey = "InvalidArgument"
	InstructionErrorInvalidAccountData        InstructionErrorKey = "InvalidAccountData"
	InstructionErrorInsufficientFunds         InstructionErrorKey = "InsufficientFunds"
	InstructionErrorMissingRequiredSignature  InstructionErrorKey = "MissingRequiredSignature"
	InstructionErrorAccountAlreadyInitialized InstructionErrorKey = "AccountAlreadyInitialized"
	InstructionErrorCustom                    InstructionErrorKey = "Custom"
)

// Anchor reserves codes below this for the framework itself.
const anchorUserErrorOffset = 6000

// CustomError is a program specific error code.
type CustomError int

func (c CustomError) Error() string {
	return fmt.Sprintf("custom program error: 0x%x", int(c))
}

// IsProgramDefined reports whether the code was declared by the arena program
// rather than raised by Anchor.
func (c CustomError) IsProgramDefined() bool {
	return int(c) >= anchorUserErrorOffset
}

// InstructionError is the failure of the instruction at Index.
type InstructionError struct {
	Index int
	Err   error
}

func (i InstructionError) Error() string {
	return fmt.Sprintf("Error processing Instruction %d: %v", i.Index, i.Err)
}

func (i InstructionError) ErrorKey() InstructionErrorKey {
	switch e := i.Err.(type) {
	case nil:
		return ""
	case CustomError:
		return InstructionErrorCustom
	default:
		return InstructionErrorKey(e.Error())
	}
}

func (i InstructionError) CustomError() *CustomError {
	if code, ok := i.Err.(CustomError); ok {
		return &code
	}
	return nil
}

// TransactionError is a decoded transaction failure, either from a preflight
// rejection or from a signature status.
type TransactionError struct {
	key         TransactionErrorKey
	instruction *InstructionError
	raw         interface{}
}

func NewTransactionError(key TransactionErrorKey) *TransactionError {
	return &TransactionError{key: key, raw: string(key)}
}

func (t TransactionError) Error() string {
	if t.instruction != nil {
		return t.instruction.Error()
	}
	return string(t.key)
}

func (t TransactionError) ErrorKey() TransactionErrorKey {
	return t.key
}

func (t TransactionError) InstructionError() *InstructionError {
	return t.instruction
}

// ParseRPCError extracts the transaction error carried in the data of a
// rejected request. It returns nil when the data holds no error.
func ParseRPCError(err *jsonrpc.RPCError) (*TransactionError, error) {
	if err == nil {
		return nil, nil
	}

	data, ok := err.Data.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("unexpected rpc error data: %T", err.Data)
	}

	return ParseTransactionError(data["err"])
}

// ParseTransactionError decodes the "err" field of a transaction status. The
// value is either a bare key or a single entry object whose key names the
// failure. InstructionError entries carry an [index, detail] tuple.
func ParseTransactionError(raw interface{}) (*TransactionError, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return &TransactionError{key: TransactionErrorKey(v), raw: raw}, nil
	case map[string]interface{}:
		key, value, err := singleEntry(v)
		if err != nil {
			return nil, errors.Wrap(err, "invalid transaction error")
		}

		result := &TransactionError{key: TransactionErrorKey(key), raw: raw}
		if result.key != TransactionErrorInstructionError {
			return result, nil
		}

		result.instruction, err = parseInstructionError(value)
		if err != nil {
			return nil, errors.Wrap(err, "invalid instruction error")
		}
		return result, nil
	default:
		return nil, errors.Errorf("unexpected transaction error type: %T", raw)
	}
}

func parseInstructionError(v interface{}) (*InstructionError, error) {
	tuple, ok := v.([]interface{})
	if !ok || len(tuple) != 2 {
		return nil, errors.Errorf("expected [index, detail], got %v", v)
	}

	index, err := parseJSONNumber(tuple[0])
	if err != nil {
		return nil, err
	}

	result := &InstructionError{Index: index}

	switch detail := tuple[1].(type) {
	case string:
		result.Err = errors.New(detail)
	case map[string]interface{}:
		key, value, err := singleEntry(detail)
		if err != nil {
			return nil, err
		}
		if InstructionErrorKey(key) != InstructionErrorCustom {
			result.Err = errors.New(key)
			break
		}

		code, err := parseJSONNumber(value)
		if err != nil {
			return nil, errors.Wrap(err, "invalid custom error code")
		}
		result.Err = CustomError(code)
	default:
		return nil, errors.Errorf("unexpected instruction error detail: %T", tuple[1])
	}

	return result, nil
}

func singleEntry(m map[string]interface{}) (string, interface{}, error) {
	if len(m) != 1 {
		return "", nil, errors.Errorf("expected a single entry, got %d", len(m))
	}
	for k, v := range m {
		return k, v, nil
	}
	return "", nil, nil
}

func parseJSONNumber(v interface{}) (int, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, errors.Errorf("non integer value: %v", v)
		}
		return int(i), nil
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, errors.Errorf("non numeric value: %v", v)
		}
		return int(i), nil
	case float64:
		return int(n), nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	default:
		return 0, errors.Errorf("non numeric value: %v", v)
	}
}
