package base

import "strconv"

// StatusCode is the process exit status.
type StatusCode uint8

const (
	SNoError StatusCode = iota
	SGenericError
	SInvalidParameters
	SHelpRequested
	SApplicationError
	SCancelled
)

var statusNames = [...]string{
	SNoError:           "no error",
	SGenericError:      "generic error",
	SInvalidParameters: "invalid parameters",
	SHelpRequested:     "help requested",
	SApplicationError:  "application error",
	SCancelled:         "cancelled",
}

func (s StatusCode) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "StatusCode(" + strconv.Itoa(int(s)) + ")"
}
