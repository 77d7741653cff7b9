package chaincfg

import (
	"github.com/btcsuite/btcutil/base58"
)

// opcodes used to hand-build the dev-fund P2SH script without pulling in
// the txscript package (which itself depends on chaincfg for network
// address parameters, so chaincfg cannot import it back).
const (
	opDup         = 0x76
	opHash160     = 0xa9
	opEqualVerify = 0x88
	opEqual       = 0x87
	opCheckSigOp  = 0xac
)

// devFundP2SHScript decodes a base58check address and builds the P2SH
// scriptPubKey (OP_HASH160 <hash> OP_EQUAL) for it, per spec.md §6:
// "encoded as a P2SH scriptPubKey". Returns nil if addr is empty.
func devFundP2SHScript(addr string) []byte {
	if addr == "" {
		return nil
	}
	decoded, _, err := base58.CheckDecode(addr)
	if err != nil {
		panic(err)
	}
	script := make([]byte, 0, len(decoded)+3)
	script = append(script, opHash160, byte(len(decoded)))
	script = append(script, decoded...)
	script = append(script, opEqual)
	return script
}
