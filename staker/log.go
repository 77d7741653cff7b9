package staker

import "github.com/blackcoin-project/blkd/logs"

var log = logs.RegisterSubSystem("STAK")
