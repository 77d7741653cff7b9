// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/blackcoin-project/blkd/config"
	"github.com/blackcoin-project/blkd/logs"
)

func main() {
	if err := config.LoadAndSetActiveConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
	cfg := config.ActiveConfig()

	if cfg.LogFile != "" {
		if err := logs.InitLogRotator(cfg.LogFile); err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize log rotator: %s\n", err)
			os.Exit(1)
		}
	}

	interrupt := interruptListener()

	d, err := newBlkd()
	if err != nil {
		log.Errorf("unable to start blkd: %+v", err)
		os.Exit(1)
	}
	d.start()

	<-interrupt

	if err := d.stop(); err != nil {
		log.Errorf("error during shutdown: %+v", err)
		os.Exit(1)
	}
}
