package wire

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/blackcoin-project/blkd/chainhash"
)

// MaxTxInPerMessage and MaxTxOutPerMessage bound allocation when decoding
// a transaction from an untrusted byte stream.
const (
	MaxTxInPerMessage  = 1_000_000
	MaxTxOutPerMessage = 1_000_000
	MaxScriptSize      = 10_000
	witnessMarker      = 0x00
	witnessFlag        = 0x01
)

// TxIn defines a bitcoin-family transaction input, per spec.md §3: an
// input is (prev_txid, prev_vout, script_sig, sequence, witness).
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
	Witness          [][]byte
}

// HasWitness reports whether this input carries witness data.
func (t *TxIn) HasWitness() bool {
	return len(t.Witness) > 0
}

// TxOut defines a bitcoin-family transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// IsEmpty reports whether this is the empty marker output required at
// vout[0] of a coinstake transaction (value 0, empty script), per
// spec.md §3.
func (t *TxOut) IsEmpty() bool {
	return t.Value == 0 && len(t.PkScript) == 0
}

// MsgTx implements the transaction message, per spec.md §3: version, time,
// vin, vout, lock_time, with optional witness data.
type MsgTx struct {
	Version  int32
	Time     uint32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// IsCoinBase determines whether tx is a coinbase: its only input refers to
// a null previous outpoint.
func (msg *MsgTx) IsCoinBase() bool {
	return len(msg.TxIn) == 1 && msg.TxIn[0].PreviousOutPoint.IsNull()
}

// IsCoinStake determines whether tx is a coinstake transaction per
// spec.md §3: non-empty vin, at least two outputs, vout[0] empty, and it
// is not the coinbase.
func (msg *MsgTx) IsCoinStake() bool {
	if msg.IsCoinBase() {
		return false
	}
	if len(msg.TxIn) == 0 || len(msg.TxOut) < 2 {
		return false
	}
	return msg.TxOut[0].IsEmpty()
}

// HasWitness reports whether any input of the transaction carries witness
// data, the condition under which the segwit marker/flag pair is written.
func (msg *MsgTx) HasWitness() bool {
	for _, txIn := range msg.TxIn {
		if txIn.HasWitness() {
			return true
		}
	}
	return false
}

// TxHash computes the transaction identifier: SHA256d of the
// non-witness serialization of the transaction, matching spec.md §6's
// witness marker/flag rule (witness data is never hashed into the txid).
func (msg *MsgTx) TxHash() chainhash.Hash {
	var buf bytes.Buffer
	// Errors from Serialize into a bytes.Buffer never occur.
	_ = msg.serialize(&buf, false)
	return chainhash.DoubleHashH(buf.Bytes())
}

// WitnessHash computes the transaction's witness identifier (wtxid):
// SHA256d of the full serialization, witness data included. It equals
// TxHash for a transaction that carries no witness data.
func (msg *MsgTx) WitnessHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = msg.serialize(&buf, msg.HasWitness())
	return chainhash.DoubleHashH(buf.Bytes())
}

// Copy returns a deep copy of the transaction.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := &MsgTx{
		Version:  msg.Version,
		Time:     msg.Time,
		LockTime: msg.LockTime,
		TxIn:     make([]*TxIn, len(msg.TxIn)),
		TxOut:    make([]*TxOut, len(msg.TxOut)),
	}
	for i, in := range msg.TxIn {
		newIn := &TxIn{
			PreviousOutPoint: in.PreviousOutPoint,
			SignatureScript:  append([]byte(nil), in.SignatureScript...),
			Sequence:         in.Sequence,
		}
		for _, w := range in.Witness {
			newIn.Witness = append(newIn.Witness, append([]byte(nil), w...))
		}
		newTx.TxIn[i] = newIn
	}
	for i, out := range msg.TxOut {
		newTx.TxOut[i] = &TxOut{
			Value:    out.Value,
			PkScript: append([]byte(nil), out.PkScript...),
		}
	}
	return newTx
}

// Serialize encodes the transaction to w, including witness data (and the
// segwit marker/flag pair) when any input carries one.
func (msg *MsgTx) Serialize(w io.Writer) error {
	return msg.serialize(w, msg.HasWitness())
}

// SerializeSize returns the number of bytes Serialize would write,
// witness data included.
func (msg *MsgTx) SerializeSize() int {
	var buf bytes.Buffer
	_ = msg.serialize(&buf, msg.HasWitness())
	return buf.Len()
}

// BaseSerializeSize returns the number of bytes the transaction occupies
// without witness data, the "base size" half of the weight formula
// (weight = 3*base + total).
func (msg *MsgTx) BaseSerializeSize() int {
	var buf bytes.Buffer
	_ = msg.serialize(&buf, false)
	return buf.Len()
}

func (msg *MsgTx) serialize(w io.Writer, includeWitness bool) error {
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(msg.Version))
	binary.LittleEndian.PutUint32(hdr[4:8], msg.Time)
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	if includeWitness {
		if _, err := w.Write([]byte{witnessMarker, witnessFlag}); err != nil {
			return err
		}
	}

	if err := WriteCompactSize(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeOutPoint(w, &ti.PreviousOutPoint); err != nil {
			return err
		}
		if err := WriteVarBytes(w, ti.SignatureScript); err != nil {
			return err
		}
		var seq [4]byte
		binary.LittleEndian.PutUint32(seq[:], ti.Sequence)
		if _, err := w.Write(seq[:]); err != nil {
			return err
		}
	}

	if err := WriteCompactSize(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		var val [8]byte
		binary.LittleEndian.PutUint64(val[:], uint64(to.Value))
		if _, err := w.Write(val[:]); err != nil {
			return err
		}
		if err := WriteVarBytes(w, to.PkScript); err != nil {
			return err
		}
	}

	if includeWitness {
		for _, ti := range msg.TxIn {
			if err := WriteCompactSize(w, uint64(len(ti.Witness))); err != nil {
				return err
			}
			for _, item := range ti.Witness {
				if err := WriteVarBytes(w, item); err != nil {
					return err
				}
			}
		}
	}

	var lt [4]byte
	binary.LittleEndian.PutUint32(lt[:], msg.LockTime)
	_, err := w.Write(lt[:])
	return err
}

// Deserialize decodes a transaction from r, auto-detecting the segwit
// marker/flag pair: peek the first byte where the input count starts; if
// it is the zero marker, the next byte must be the 0x01 flag (any other
// value is rejected) and the transaction is read as a witness one.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return err
	}
	msg.Version = int32(binary.LittleEndian.Uint32(hdr[0:4]))
	msg.Time = binary.LittleEndian.Uint32(hdr[4:8])

	br := bufioReaderOf(r)

	firstByte, err := br.Peek(1)
	if err != nil {
		return err
	}
	includeWitness := false
	if firstByte[0] == witnessMarker {
		flagBuf := make([]byte, 2)
		if _, err := io.ReadFull(br, flagBuf); err != nil {
			return err
		}
		if flagBuf[1] != witnessFlag {
			return errors.New("invalid segwit marker/flag pair")
		}
		includeWitness = true
	}

	inCount, err := ReadCompactSize(br)
	if err != nil {
		return err
	}
	if inCount > MaxTxInPerMessage {
		return errors.Errorf("too many transaction inputs: %d", inCount)
	}
	msg.TxIn = make([]*TxIn, inCount)
	for i := range msg.TxIn {
		ti := &TxIn{}
		if err := readOutPoint(br, &ti.PreviousOutPoint); err != nil {
			return err
		}
		sig, err := ReadVarBytes(br, MaxScriptSize)
		if err != nil {
			return err
		}
		ti.SignatureScript = sig
		var seq [4]byte
		if _, err := io.ReadFull(br, seq[:]); err != nil {
			return err
		}
		ti.Sequence = binary.LittleEndian.Uint32(seq[:])
		msg.TxIn[i] = ti
	}

	outCount, err := ReadCompactSize(br)
	if err != nil {
		return err
	}
	if outCount > MaxTxOutPerMessage {
		return errors.Errorf("too many transaction outputs: %d", outCount)
	}
	msg.TxOut = make([]*TxOut, outCount)
	for i := range msg.TxOut {
		to := &TxOut{}
		var val [8]byte
		if _, err := io.ReadFull(br, val[:]); err != nil {
			return err
		}
		to.Value = int64(binary.LittleEndian.Uint64(val[:]))
		script, err := ReadVarBytes(br, MaxScriptSize)
		if err != nil {
			return err
		}
		to.PkScript = script
		msg.TxOut[i] = to
	}

	if includeWitness {
		for _, ti := range msg.TxIn {
			witCount, err := ReadCompactSize(br)
			if err != nil {
				return err
			}
			ti.Witness = make([][]byte, witCount)
			for j := range ti.Witness {
				item, err := ReadVarBytes(br, MaxScriptSize)
				if err != nil {
					return err
				}
				ti.Witness[j] = item
			}
		}
	}

	var lt [4]byte
	if _, err := io.ReadFull(br, lt[:]); err != nil {
		return err
	}
	msg.LockTime = binary.LittleEndian.Uint32(lt[:])
	return nil
}
