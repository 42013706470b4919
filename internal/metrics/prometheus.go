package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	SignupSuccessTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atrium_signups_success_total",
		Help: "Total number of successful sign-ups.",
	})
	LoginSuccessTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atrium_logins_success_total",
		Help: "Total number of successful logins.",
	})
	LoginFailureTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atrium_logins_failure_total",
		Help: "Total number of failed logins.",
	})
	OAuthCallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atrium_oauth_callbacks_total",
		Help: "Total number of OAuth callback exchanges attempted.",
	})
	OrgSwitchTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atrium_org_switches_total",
		Help: "Total number of in-place organization switches.",
	})
	StepUpRedirectTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atrium_org_stepup_redirects_total",
		Help: "Total number of organization switches redirected to SSO re-auth.",
	})
	SwitchForbiddenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atrium_org_switch_forbidden_total",
		Help: "Total number of organization switches rejected for missing membership.",
	})
	MirrorSyncFailureTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "atrium_mirror_sync_failure_total",
		Help: "Total number of swallowed mirror database sync failures.",
	})
)

// InitCustomMetrics registers the custom metrics with the given registerer.
// It should be called once at application startup. The counters themselves
// work without registration, so code paths touching them stay safe in tests.
func InitCustomMetrics(reg prometheus.Registerer) {
	if reg == nil {
		return
	}
	for _, c := range []prometheus.Collector{
		SignupSuccessTotal,
		LoginSuccessTotal,
		LoginFailureTotal,
		OAuthCallbackTotal,
		OrgSwitchTotal,
		StepUpRedirectTotal,
		SwitchForbiddenTotal,
		MirrorSyncFailureTotal,
	} {
		if err := reg.Register(c); err != nil {
			log.Warn().Err(err).Msg("Failed to register metric")
		}
	}
}
