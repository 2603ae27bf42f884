//go:build !darwin && !windows

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rusq/gcodethumb/cmd/gct/internal/cfg"
)

func trapSigInfo() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR1)
	go func() {
		for range ch {
			fmt.Fprint(os.Stderr, "GCT STATUS REPORT\n")
			cfg.SigInfo(os.Stderr)
		}
	}()
}
