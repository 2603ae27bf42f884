package cfg

import (
	"io"
	"sync"
)

// InfoReportFunc writes the status report to w.
type InfoReportFunc func(w io.Writer)

var (
	reportMu     sync.Mutex
	sigReporters []InfoReportFunc
)

// RegisterSigInfoReporter adds the reporter, that is called when the process
// receives the status signal (SIGINFO or SIGUSR1).
func RegisterSigInfoReporter(fn InfoReportFunc) {
	if fn == nil {
		return
	}
	reportMu.Lock()
	sigReporters = append(sigReporters, fn)
	reportMu.Unlock()
}

// SigInfo runs all registered reporters.
func SigInfo(w io.Writer) {
	if w == nil {
		return
	}
	reportMu.Lock()
	defer reportMu.Unlock()
	for _, fn := range sigReporters {
		fn(w)
	}
}
