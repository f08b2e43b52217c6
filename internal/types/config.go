package types

import (
	ierr "github.com/NinnOgTonic/antaeus/internal/errors"
	"github.com/samber/lo"
)

type RunMode string

const (
	// ModeLocal runs the api server and both scheduled procedures in one process
	ModeLocal RunMode = "local"
	// ModeAPI runs just the api server
	ModeAPI RunMode = "api"
	// ModeWorker runs just the scheduled procedures. Deploy a single instance of it.
	ModeWorker RunMode = "worker"
)

func (m RunMode) Validate() error {
	allowed := []RunMode{ModeLocal, ModeAPI, ModeWorker}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid run mode").
			WithHintf("Run mode must be one of %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// RunsScheduler reports whether the scheduled procedures are started in this mode
func (m RunMode) RunsScheduler() bool {
	return m == ModeLocal || m == ModeWorker
}

// RunsAPI reports whether the api server is started in this mode
func (m RunMode) RunsAPI() bool {
	return m == ModeLocal || m == ModeAPI
}

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

type PaymentProviderType string

const (
	PaymentProviderSimulated PaymentProviderType = "simulated"
	PaymentProviderStripe    PaymentProviderType = "stripe"
)
