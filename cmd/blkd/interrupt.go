package main

import (
	"os"
	"os/signal"
	"syscall"
)

// interruptChannel is closed exactly once, the first time a shutdown
// signal arrives, the same single-fire shape the pack's own daemons
// (e.g. teranode's ServiceManager) build around signal.Notify +
// SIGINT/SIGTERM.
var interruptChannel = make(chan struct{})

// interruptListener returns a channel that is closed the first time the
// process receives SIGINT or SIGTERM, and on every signal after that
// logs that a shutdown is already underway instead of listening again.
func interruptListener() <-chan struct{} {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		first := true
		for s := range sig {
			if first {
				first = false
				log.Infof("received signal %s, shutting down", s)
				close(interruptChannel)
				continue
			}
			log.Info("shutdown already in progress")
		}
	}()

	return interruptChannel
}
