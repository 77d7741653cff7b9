package txscript

import "github.com/pkg/errors"

// ScriptBuilder provides a facility for building scripts while respecting
// canonical data-push encoding, grounded on the standard btcd
// scriptbuilder present (vendored) across the pack.
type ScriptBuilder struct {
	script []byte
	err    error
}

// NewScriptBuilder returns a new instance of a script builder.
func NewScriptBuilder() *ScriptBuilder {
	return &ScriptBuilder{script: make([]byte, 0, 128)}
}

// AddOp pushes the passed opcode to the end of the script.
func (b *ScriptBuilder) AddOp(opcode byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	if len(b.script)+1 > MaxScriptSize {
		b.err = errors.Errorf("adding an opcode would exceed the maximum script length of %d", MaxScriptSize)
		return b
	}
	b.script = append(b.script, opcode)
	return b
}

// AddOps pushes a raw sequence of already-encoded opcodes/data.
func (b *ScriptBuilder) AddOps(opcodes []byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	if len(b.script)+len(opcodes) > MaxScriptSize {
		b.err = errors.Errorf("adding opcodes would exceed the maximum script length of %d", MaxScriptSize)
		return b
	}
	b.script = append(b.script, opcodes...)
	return b
}

// canonicalDataSize returns the number of bytes the data push encoding of
// data would occupy.
func canonicalDataSize(data []byte) int {
	n := len(data)
	switch {
	case n < OpPushData1:
		return 1 + n
	case n <= 0xff:
		return 2 + n
	case n <= 0xffff:
		return 3 + n
	default:
		return 5 + n
	}
}

// AddData pushes the passed data to the end of the script, choosing the
// shortest canonical opcode that encodes its length.
func (b *ScriptBuilder) AddData(data []byte) *ScriptBuilder {
	if b.err != nil {
		return b
	}
	if len(b.script)+canonicalDataSize(data) > MaxScriptSize {
		b.err = errors.Errorf("adding data would exceed the maximum script length of %d", MaxScriptSize)
		return b
	}

	n := len(data)
	switch {
	case n < OpPushData1:
		b.script = append(b.script, byte(n))
	case n <= 0xff:
		b.script = append(b.script, OpPushData1, byte(n))
	case n <= 0xffff:
		b.script = append(b.script, OpPushData2, byte(n), byte(n>>8))
	default:
		b.script = append(b.script, OpPushData4, byte(n), byte(n>>8), byte(n>>16), byte(n>>24))
	}
	b.script = append(b.script, data...)
	return b
}

// Script returns the currently built script, or the first error
// encountered while building it.
func (b *ScriptBuilder) Script() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.script, nil
}
