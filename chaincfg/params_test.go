package chaincfg

import "testing"

func TestForNetworkKnownNames(t *testing.T) {
	names := []string{"main", "testnet", "testnet4", "signet", "regtest"}
	for _, name := range names {
		if _, err := ForNetwork(name); err != nil {
			t.Errorf("ForNetwork(%q): unexpected error %v", name, err)
		}
	}
}

func TestForNetworkUnknown(t *testing.T) {
	if _, err := ForNetwork("not-a-real-network"); err == nil {
		t.Errorf("expected an error for an unknown network name")
	}
}

func TestMainnetGenesisSanity(t *testing.T) {
	params, err := ForNetwork("main")
	if err != nil {
		t.Fatalf("ForNetwork(main): %v", err)
	}
	if params.GenesisBlock == nil {
		t.Fatalf("main genesis block is nil")
	}
	if params.GenesisHash.IsZero() {
		t.Errorf("GenesisHash must not be the zero hash")
	}
	if params.GenesisBlock.Header.IsNull() {
		t.Errorf("genesis header must not decode as null (Bits == 0)")
	}
	if len(params.GenesisBlock.Txs) != 1 {
		t.Errorf("expected exactly one genesis transaction, got %d", len(params.GenesisBlock.Txs))
	}
	if !params.GenesisBlock.Txs[0].IsCoinBase() {
		t.Errorf("expected the genesis transaction to be a coinbase")
	}
}

func TestProtocolGateExceptionsAreIndependent(t *testing.T) {
	params, err := ForNetwork("main")
	if err != nil {
		t.Fatalf("ForNetwork(main): %v", err)
	}

	if params.V1RetargetFixException <= params.V1RetargetFixTime {
		t.Fatalf("test fixture assumption broken: V1's exception must be after its own gate")
	}
	if !params.IsProtocolV1RetargetFixed(params.V1RetargetFixException - 1) {
		t.Errorf("the value just below the exception should pass normally")
	}
	if params.IsProtocolV1RetargetFixed(params.V1RetargetFixException) {
		t.Errorf("V1RetargetFixException must fail IsProtocolV1RetargetFixed even though it is > the gate")
	}

	// V2's own exception value being past V1's gate must still satisfy
	// IsProtocolV1RetargetFixed: each gate's exception is scoped to that
	// gate only.
	if params.V2Exception > params.V1RetargetFixTime && params.V2Exception != params.V1RetargetFixException {
		if !params.IsProtocolV1RetargetFixed(params.V2Exception) {
			t.Errorf("V2's exception value should not suppress V1's gate")
		}
	}
}

func TestTargetSpacingSwitchesAtV2(t *testing.T) {
	params, err := ForNetwork("main")
	if err != nil {
		t.Fatalf("ForNetwork(main): %v", err)
	}
	if params.TargetSpacing(params.V2Time) != params.TargetSpacingV1 {
		t.Errorf("spacing exactly at the V2 gate (not yet past it) should still be V1's")
	}
	if params.TargetSpacing(params.V2Time+1) != params.TargetSpacingV2 {
		t.Errorf("spacing just past the V2 gate should be V2's")
	}
}

func TestActivePosLimitSwitchesAtV2(t *testing.T) {
	params, err := ForNetwork("main")
	if err != nil {
		t.Fatalf("ForNetwork(main): %v", err)
	}
	if params.ActivePosLimit(params.V2Time).Cmp(params.PosLimit) != 0 {
		t.Errorf("pos limit exactly at the V2 gate should still be the pre-V2 limit")
	}
	if params.ActivePosLimit(params.V2Time+1).Cmp(params.PosLimitV2) != 0 {
		t.Errorf("pos limit just past the V2 gate should be the V2 limit")
	}
}

func TestDevFundScriptDerivedForNetworksWithAnAddress(t *testing.T) {
	params, err := ForNetwork("main")
	if err != nil {
		t.Fatalf("ForNetwork(main): %v", err)
	}
	if len(params.DevRewardScript()) == 0 {
		t.Errorf("expected a non-empty dev-fund script for mainnet")
	}
}
