package txscript

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/blackcoin-project/blkd/blockchain"
	"github.com/blackcoin-project/blkd/wire"
)

func testPrivKey() *btcec.PrivateKey {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	priv, _ := btcec.PrivKeyFromBytes(seed)
	return priv
}

func TestScriptBuilderCanonicalPushes(t *testing.T) {
	small := make([]byte, 10)
	got, err := NewScriptBuilder().AddData(small).Script()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1+len(small) || got[0] != byte(len(small)) {
		t.Errorf("expected a direct length-prefix push, got %x", got)
	}

	medium := make([]byte, 0x50)
	got2, err := NewScriptBuilder().AddData(medium).Script()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got2[0] != OpPushData1 || got2[1] != byte(len(medium)) {
		t.Errorf("expected an OP_PUSHDATA1 push, got %x", got2[:2])
	}
}

func TestPayToPubKeyHashRoundTrip(t *testing.T) {
	hash := make([]byte, 20)
	for i := range hash {
		hash[i] = byte(i)
	}
	script, err := PayToPubKeyHashScript(hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ExtractScriptClass(script) != PubKeyHashTy {
		t.Fatalf("expected PubKeyHashTy, got %v", ExtractScriptClass(script))
	}
	got, ok := ExtractPkHash(script)
	if !ok {
		t.Fatalf("expected to extract a pkHash")
	}
	if string(got) != string(hash) {
		t.Errorf("got %x want %x", got, hash)
	}
}

func TestPayToScriptHashClassification(t *testing.T) {
	hash := make([]byte, 20)
	script, err := PayToScriptHashScript(hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ExtractScriptClass(script) != ScriptHashTy {
		t.Fatalf("expected ScriptHashTy, got %v", ExtractScriptClass(script))
	}
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	priv := testPrivKey()
	hash := SignHash([]byte("a spent scriptPubKey"))
	sigScript, err := SignatureScript(hash, priv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sig, ok := ExtractSignatureFromSigScript(sigScript)
	if !ok {
		t.Fatalf("expected to extract a signature")
	}
	pubKey, ok := ExtractPubKeyFromSigScript(sigScript)
	if !ok {
		t.Fatalf("expected to extract a pubkey")
	}

	if !VerifySignature(hash, sig, pubKey) {
		t.Errorf("expected the signature to verify")
	}

	otherHash := SignHash([]byte("a different message"))
	if VerifySignature(otherHash, sig, pubKey) {
		t.Errorf("expected the signature to fail over a different digest")
	}
}

func TestVerifyKernelSignature(t *testing.T) {
	priv := testPrivKey()
	pubKeyHash := Hash160(priv.PubKey().SerializeCompressed())
	pkScript, err := PayToPubKeyHashScript(pubKeyHash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	coin := &blockchain.Coin{PkScript: pkScript}

	sigScript, err := SignatureScript(SignHash(pkScript), priv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tx := &wire.MsgTx{TxIn: []*wire.TxIn{{SignatureScript: sigScript}}}

	if !VerifyKernelSignature(coin, tx, 0) {
		t.Errorf("expected a correctly signed kernel input to verify")
	}

	tx.TxIn[0].SignatureScript[0] ^= 0xff
	if VerifyKernelSignature(coin, tx, 0) {
		t.Errorf("expected a tampered signature script to fail")
	}
}

func TestVerifyBlockSignature(t *testing.T) {
	priv := testPrivKey()
	pubKeyHash := Hash160(priv.PubKey().SerializeCompressed())
	pkScript, err := PayToPubKeyHashScript(pubKeyHash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	coin := &blockchain.Coin{PkScript: pkScript}

	kernelSigScript, err := SignatureScript(SignHash(pkScript), priv)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	coinstake := &wire.MsgTx{
		TxIn:  []*wire.TxIn{{SignatureScript: kernelSigScript}},
		TxOut: []*wire.TxOut{{}, {Value: 1, PkScript: pkScript}},
	}
	block := &wire.MsgBlock{
		Header: wire.BlockHeader{Version: 1, Flags: wire.FlagProofOfStake, Bits: 1},
		Txs:    []*wire.MsgTx{{}, coinstake},
	}
	blockHash := block.Header.BlockHash()
	block.BlockSig = RawSignature(blockHash, priv)

	if !VerifyBlockSignature(block, coin) {
		t.Errorf("expected a correctly signed block to verify")
	}

	block.BlockSig[0] ^= 0xff
	if VerifyBlockSignature(block, coin) {
		t.Errorf("expected a tampered block signature to fail")
	}
}
