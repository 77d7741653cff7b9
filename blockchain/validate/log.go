package validate

import "github.com/blackcoin-project/blkd/logs"

var log = logs.RegisterSubSystem("VLDT")
