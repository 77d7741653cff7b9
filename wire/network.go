package wire

// BlkNet represents which Blackcoin network a message belongs to, per
// spec.md §6's wire protocol framing.
type BlkNet uint32

const (
	// MainNet represents the main Blackcoin network.
	MainNet BlkNet = 0x05223570
	// TestNet represents the test Blackcoin network.
	TestNet BlkNet = 0xefc0f2cd
	// RegNet represents the regression test network.
	RegNet BlkNet = 0x06223570
)

var netNames = map[BlkNet]string{
	MainNet: "main",
	TestNet: "testnet",
	RegNet:  "regtest",
}

// String returns the human readable name for n, or "unknown" if n is not
// a recognized network magic.
func (n BlkNet) String() string {
	if name, ok := netNames[n]; ok {
		return name
	}
	return "unknown"
}

// GetNetworkForMagic returns the BlkNet identified by the four magic
// bytes, little-endian encoded on the wire, and whether the
// magic was recognized. Signet's magic is derived at ChainParams
// construction time from the signet challenge and is not part of this
// static table; callers that need to recognize signet should compare
// against chaincfg.Params.Net directly.
func GetNetworkForMagic(magic [4]byte) (BlkNet, bool) {
	n := BlkNet(uint32(magic[0]) | uint32(magic[1])<<8 | uint32(magic[2])<<16 | uint32(magic[3])<<24)
	_, ok := netNames[n]
	return n, ok
}

// Bytes returns the little-endian wire encoding of the network magic.
func (n BlkNet) Bytes() [4]byte {
	return [4]byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)}
}
