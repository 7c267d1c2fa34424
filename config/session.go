package config

import (
	"time"

	"github.com/spf13/viper"
)

// Session controls token lifetime and the expired-token sweep.
type Session struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

func getSessionConfig(v *viper.Viper) *Session {
	return &Session{
		TTL:           v.GetDuration("session.ttl"),
		SweepInterval: v.GetDuration("session.sweep_interval"),
	}
}
