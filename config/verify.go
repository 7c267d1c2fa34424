package config

import (
	"time"

	"github.com/spf13/viper"
)

// Verify holds pass verification settings. The default route is used
// when a scan arrives with a bus reference that cannot be resolved; it
// must be configured explicitly, there is no built-in fallback route.
type Verify struct {
	DefaultRouteFrom   string
	DefaultRouteTo     string
	PassValidityDays   int
	PassExpiryInterval time.Duration
}

func getVerifyConfig(v *viper.Viper) *Verify {
	return &Verify{
		DefaultRouteFrom:   v.GetString("verify.default_route.from"),
		DefaultRouteTo:     v.GetString("verify.default_route.to"),
		PassValidityDays:   v.GetInt("verify.pass_validity_days"),
		PassExpiryInterval: v.GetDuration("verify.pass_expiry_interval"),
	}
}
