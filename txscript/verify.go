package txscript

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/pkg/errors"

	"github.com/blackcoin-project/blkd/blockchain"
	"github.com/blackcoin-project/blkd/wire"
)

// VerifyKernelSignature implements the verifySignature collaborator
// blockchain/kernel.CheckProofOfStake takes: it checks that tx's input
// at inputIndex carries a signature actually made by the key that
// controls coin, classifying coin.PkScript and recovering the signing
// pubkey from either the script itself (bare P2PK) or the spending
// sigScript (P2PKH).
func VerifyKernelSignature(coin *blockchain.Coin, tx *wire.MsgTx, inputIndex int) bool {
	if inputIndex >= len(tx.TxIn) {
		return false
	}
	sigScript := tx.TxIn[inputIndex].SignatureScript
	pubKey, ok := signingPubKey(coin.PkScript, sigScript)
	if !ok {
		return false
	}
	// The signature is the first push: the only one in a bare P2PK spend,
	// followed by the pubkey in a P2PKH spend.
	pushes, err := parsePushes(sigScript)
	if err != nil || len(pushes) == 0 {
		return false
	}
	return VerifySignature(SignHash(coin.PkScript), pushes[0], pubKey)
}

// VerifyBlockSignature implements the VerifyBlockSignature collaborator
// blockchain/validate.CheckBlock takes: the trailing block signature
// must be a valid signature by the coinstake kernel input's pubkey over
// the block hash, per spec.md §4.4 step 4's verify_block_signature.
func VerifyBlockSignature(block *wire.MsgBlock, coin *blockchain.Coin) bool {
	coinstake := block.CoinstakeTx()
	if coinstake == nil || len(coinstake.TxIn) == 0 {
		return false
	}
	pubKey, ok := signingPubKey(coin.PkScript, coinstake.TxIn[0].SignatureScript)
	if !ok {
		return false
	}
	blockHash := block.Header.BlockHash()
	return VerifySignature(blockHash, block.BlockSig, pubKey)
}

// SignBlock produces the trailing block signature VerifyBlockSignature
// checks: a signature by privKey (the coinstake's kernel input key) over
// the block's own header hash, per spec.md §4.8 step 4's "sign it (see
// §4.4)".
func SignBlock(block *wire.MsgBlock, privKey *btcec.PrivateKey) error {
	if block.CoinstakeTx() == nil {
		return errors.New("cannot sign a block with no coinstake transaction")
	}
	blockHash := block.Header.BlockHash()
	block.BlockSig = RawSignature(blockHash, privKey)
	return nil
}

// signingPubKey recovers the public key that must have signed a spend of
// pkScript: embedded directly for a bare P2PK output, or pushed as the
// last item of a standard P2PKH signature script.
func signingPubKey(pkScript, sigScript []byte) ([]byte, bool) {
	switch ExtractScriptClass(pkScript) {
	case PubKeyTy:
		length := int(pkScript[0])
		if length != 33 && length != 65 {
			return nil, false
		}
		return pkScript[1 : 1+length], true
	case PubKeyHashTy:
		return ExtractPubKeyFromSigScript(sigScript)
	default:
		return nil, false
	}
}
