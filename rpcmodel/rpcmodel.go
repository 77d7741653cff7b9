// Package rpcmodel defines the request/result struct pairs for the
// staking RPC surface named in spec.md §6, grounded on the teacher's
// rpcmodel.XxxCmd/XxxResult convention (rpcmodel/rpc_commands.go,
// rpc_results.go): plain structs with no marshaling logic of their own,
// one NewXxxCmd constructor per command, json tags on result fields
// only.
package rpcmodel

// TransactionInput names an outpoint by txid/vout, the same shape as
// the teacher's own TransactionInput, reused here for checkkernel's
// candidate list.
type TransactionInput struct {
	TxID string `json:"txId"`
	Vout uint32 `json:"vout"`
}

// GetStakingInfoCmd defines the getstakinginfo command. It takes no
// arguments.
type GetStakingInfoCmd struct{}

// NewGetStakingInfoCmd returns a new instance which can be used to issue
// a getstakinginfo command.
func NewGetStakingInfoCmd() *GetStakingInfoCmd {
	return &GetStakingInfoCmd{}
}

// GetStakingInfoResult models the data returned by getstakinginfo, per
// spec.md §6's field list.
type GetStakingInfoResult struct {
	Enabled        bool    `json:"enabled"`
	Staking        bool    `json:"staking"`
	Blocks         int32   `json:"blocks"`
	PooledTx       uint64  `json:"pooledtx"`
	Difficulty     float64 `json:"difficulty"`
	SearchInterval int64   `json:"search-interval"`
	Weight         int64   `json:"weight"`
	NetStakeWeight int64   `json:"netstakeweight"`
	ExpectedTime   int64   `json:"expectedtime"`
	Chain          string  `json:"chain"`
	Warnings       string  `json:"warnings"`
}

// StakingCmd defines the staking command, which starts or stops the
// staker thread when Enable is non-nil, or merely reports its current
// state when it is nil.
type StakingCmd struct {
	Enable *bool
}

// NewStakingCmd returns a new instance which can be used to issue a
// staking command.
func NewStakingCmd(enable *bool) *StakingCmd {
	return &StakingCmd{Enable: enable}
}

// StakingResult models the data returned by staking.
type StakingResult struct {
	Staking bool `json:"staking"`
}

// ReserveBalanceCmd defines the reservebalance command. Reserve and
// Amount are both nil for a bare query of the current setting.
type ReserveBalanceCmd struct {
	Reserve *bool
	Amount  *float64
}

// NewReserveBalanceCmd returns a new instance which can be used to issue
// a reservebalance command.
func NewReserveBalanceCmd(reserve *bool, amount *float64) *ReserveBalanceCmd {
	return &ReserveBalanceCmd{Reserve: reserve, Amount: amount}
}

// ReserveBalanceResult models the data returned by reservebalance.
type ReserveBalanceResult struct {
	ReserveBalance float64 `json:"reserve,omitempty"`
}

// CheckKernelCmd defines the checkkernel command: a candidate outpoint
// list plus whether a matching candidate should also produce a block
// template.
type CheckKernelCmd struct {
	Inputs         []TransactionInput
	CreateTemplate *bool `jsonrpcdefault:"false"`
}

// NewCheckKernelCmd returns a new instance which can be used to issue a
// checkkernel command.
func NewCheckKernelCmd(inputs []TransactionInput, createTemplate *bool) *CheckKernelCmd {
	return &CheckKernelCmd{Inputs: inputs, CreateTemplate: createTemplate}
}

// CheckKernelResult models the data returned by checkkernel.
type CheckKernelResult struct {
	Found        bool   `json:"found"`
	TxID         string `json:"txid,omitempty"`
	Vout         uint32 `json:"vout,omitempty"`
	BlockTime    int64  `json:"blocktime,omitempty"`
	Template     string `json:"template,omitempty"`
	ChangePubKey string `json:"changekey,omitempty"`
}
