package main

import (
	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/blackcoin-project/blkd/mining/stake"
)

// nullWallet is the default stake.CoinProvider/stake.SigningProvider
// this daemon runs with: wallet key management is an explicit
// out-of-scope collaborator (spec.md §1/§9), so blkd ships no key
// derivation of its own, only the empty/always-declining instance
// that leaves the staker loop permanently at "no eligible coins" until
// a real wallet is wired in its place.
type nullWallet struct{}

func (nullWallet) StakeableCoins() ([]stake.StakeableCoin, error) {
	return nil, nil
}

func (nullWallet) PubKeyForHash(pkHash []byte) ([]byte, bool) {
	return nil, false
}

func (nullWallet) PrivateKeyForScript(pkScript []byte) (*btcec.PrivateKey, bool) {
	return nil, false
}
