package modkit

import (
	"adrelay/internal/adapters/partner"
	"adrelay/internal/platform/config"
	"adrelay/internal/platform/logger"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	Partner *partner.Client
}

// ZeroOK returns true when deps are safe to use with zero values in tests
// consumers should still nil check the partner client
func (d Deps) ZeroOK() bool { return true }
