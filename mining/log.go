package mining

import "github.com/blackcoin-project/blkd/logs"

var log = logs.RegisterSubSystem("ASSM")
