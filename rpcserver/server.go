// Package rpcserver realizes the CLI surface named in spec.md §6: the
// getstakinginfo/staking/reservebalance/checkkernel command set, each
// answered by a handler function dispatched off the command's concrete
// type the way the teacher's server/rpc package dispatches
// jsonrpc.XxxCmd values — one handleXxx(s *Server, cmd interface{})
// function per command, registered by name in a lookup table, rather
// than the teacher's fuller reflection-based registration machinery
// (rpcmodel.MustRegisterCommand), which no file in the retrieved pack
// defines; see DESIGN.md for that simplification's justification.
package rpcserver

import (
	"github.com/blackcoin-project/blkd/blockchain"
	"github.com/blackcoin-project/blkd/blockchain/validate"
	"github.com/blackcoin-project/blkd/chaincfg"
	"github.com/blackcoin-project/blkd/mining"
	"github.com/blackcoin-project/blkd/mining/mempool"
	"github.com/blackcoin-project/blkd/mining/stake"
	"github.com/blackcoin-project/blkd/rpcmodel"
)

// StakerControl is the subset of the staker goroutine's lifecycle a
// staking/getstakinginfo handler needs, implemented by whatever wires
// up staker.Staker in cmd/blkd.
type StakerControl interface {
	// IsStaking reports whether the staker loop is currently running.
	IsStaking() bool
	// SetStaking starts or stops the staker loop. Starting when the
	// wallet has no staking-eligible keys returns the wallet-state
	// errors spec.md §6 names.
	SetStaking(enable bool) error
	// Weight returns the caller's own eligible stake weight, in the
	// smallest unit, for the currently loaded wallet.
	Weight() int64
	// NetworkWeight estimates the whole network's stake weight.
	NetworkWeight() int64
	// SearchInterval reports the most recent staker round's search
	// window length in seconds (nLastCoinStakeSearchInterval).
	SearchInterval() int64
}

// Config groups the collaborators a Server dispatches commands
// against, grounded on the teacher's rpc.Config shape (a flat struct of
// read-only collaborators the handlers close over via s.cfg).
type Config struct {
	Params    *chaincfg.Params
	ChainName string
	Tip       func() *blockchain.BlockIndex
	CoinView  blockchain.CoinView
	Mempool   mempool.View
	Generator *mining.Generator
	Staker    StakerControl
	StakeCfg  *stake.Params
	Signer    stake.SigningProvider
	Subsidy   validate.SubsidyFunc
	Now       func() int64
}

// Server dispatches one RPC command at a time against its Config. It
// keeps no connection/transport state of its own — that belongs to
// whatever HTTP/IPC front end cmd/blkd wires in front of it.
type Server struct {
	cfg Config
}

// NewServer returns a Server ready to Dispatch commands.
func NewServer(cfg Config) *Server {
	return &Server{cfg: cfg}
}

// handlerFunc is the per-command shape every entry in handlers
// implements, mirroring the teacher's
// func(s *Server, cmd interface{}, closeChan <-chan struct{}) (interface{}, error)
// handler signature minus the close channel, since none of this
// command set runs long enough to need mid-flight cancellation.
type handlerFunc func(s *Server, cmd interface{}) (interface{}, error)

// handlers is the command-name to handler lookup table, the simplified
// stand-in for the teacher's generated rpcHandlers map (see the package
// doc comment).
var handlers = map[string]handlerFunc{
	"getstakinginfo": handleGetStakingInfo,
	"staking":        handleStaking,
	"reservebalance": handleReserveBalance,
	"checkkernel":    handleCheckKernel,
}

// Dispatch resolves method's handler and runs it against cmd, which
// must be the rpcmodel.XxxCmd value matching method.
func (s *Server) Dispatch(method string, cmd interface{}) (interface{}, error) {
	handler, ok := handlers[method]
	if !ok {
		return nil, rpcmodel.NewRPCError(rpcmodel.ErrRPCInvalidParameter, "unknown method %q", method)
	}
	return handler(s, cmd)
}
