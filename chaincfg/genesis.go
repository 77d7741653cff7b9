package chaincfg

import (
	"encoding/hex"

	"github.com/blackcoin-project/blkd/chainhash"
	"github.com/blackcoin-project/blkd/wire"
)

// opCheckSig is the OP_CHECKSIG opcode, used verbatim (not through the
// txscript builder) to keep the genesis construction self-contained and
// inspectable, the way the teacher's cmd/genesis/genesis.go hand-builds
// the genesis coinbase script.
const opCheckSig = 0xac

// genesisPubKey is the hex-encoded 65-byte uncompressed public key named
// in spec.md §6's genesis output script.
const genesisPubKey = "040184710fa689ad5023690c80f3a49c8f13f8d45b8c857fbcbc8bc4a8e4d3eb4b10f4d4604fa08dce601aaf0f470216fe1b51850b4acf21b179c45070ac7b03a9"

// genesisTimestampMessage is the coinbase scriptSig message named in
// spec.md §6.
const genesisTimestampMessage = "20 Feb 2014 Bitcoin ATMs come to USA"

func genesisOutputScript() []byte {
	pubKey, err := hex.DecodeString(genesisPubKey)
	if err != nil {
		panic(err)
	}
	script := make([]byte, 0, len(pubKey)+2)
	script = append(script, byte(len(pubKey)))
	script = append(script, pubKey...)
	script = append(script, opCheckSig)
	return script
}

func genesisCoinbaseScriptSig() []byte {
	msg := []byte(genesisTimestampMessage)
	script := make([]byte, 0, len(msg)+1)
	script = append(script, byte(len(msg)))
	script = append(script, msg...)
	return script
}

func genesisCoinbaseTx() *wire.MsgTx {
	return &wire.MsgTx{
		Version: 1,
		Time:    0,
		TxIn: []*wire.TxIn{{
			PreviousOutPoint: wire.OutPoint{Index: 0xffffffff},
			SignatureScript:  genesisCoinbaseScriptSig(),
			Sequence:         0xffffffff,
		}},
		TxOut: []*wire.TxOut{{
			Value:    0,
			PkScript: genesisOutputScript(),
		}},
		LockTime: 0,
	}
}

// hashFromString reverses bitcoin-family display order hex into a Hash,
// matching the big-endian-displayed / little-endian-stored convention
// used throughout the reference client and spec.md §6.
func hashFromString(s string) chainhash.Hash {
	var h chainhash.Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	if len(b) != chainhash.HashSize {
		panic("hash string has wrong length")
	}
	for i := 0; i < chainhash.HashSize; i++ {
		h[i] = b[chainhash.HashSize-1-i]
	}
	return h
}

// newGenesisBlock builds a network's genesis block from the constants
// named in spec.md §6.
func newGenesisBlock(timestamp, bits, nonce uint32, version int32, merkleRoot string) *wire.MsgBlock {
	return &wire.MsgBlock{
		Header: wire.BlockHeader{
			Version:    version,
			PrevBlock:  chainhash.Hash{},
			MerkleRoot: hashFromString(merkleRoot),
			Timestamp:  timestamp,
			Bits:       bits,
			Nonce:      nonce,
		},
		Txs: []*wire.MsgTx{genesisCoinbaseTx()},
	}
}

const genesisMerkleRoot = "12630d16a97f24b287c8c2594dda5fb98c9e6c70fc61d44191931ea2aa08dc90"

var mainGenesisBlock = newGenesisBlock(1393221600, 0x1e0fffff, 164482, 1, genesisMerkleRoot)
var mainGenesisHash = hashFromString("000001faef25dec4fbcf906e6242621df2c183bf232f263d0ba5b101911e4563")

var testNetGenesisBlock = newGenesisBlock(1393221600, 0x1f00ffff, 216178, 1, genesisMerkleRoot)
var testNetGenesisHash = hashFromString("0000724595fb3b9609d441cbfb9577615c292abf07d996d3edabc48de843642d")

// Regtest reuses the testnet genesis values; the reference implementation
// does not mine a distinct regtest genesis and spec.md does not name one.
var regtestGenesisBlock = testNetGenesisBlock
var regtestGenesisHash = testNetGenesisHash
