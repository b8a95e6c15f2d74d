package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	OtpIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_otp_issued_total",
			Help: "Total number of OTP issuance attempts.",
		},
		[]string{"service", "result"},
	)

	OtpVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_otp_verifications_total",
			Help: "Total number of OTP verification attempts.",
		},
		[]string{"service", "result"},
	)

	PasskeyChallengesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_passkey_challenges_total",
			Help: "Total number of passkey challenge events.",
		},
		[]string{"service", "event"},
	)

	PushRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_push_requests_total",
			Help: "Total number of push auth request events.",
		},
		[]string{"service", "event"},
	)

	SweepRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_sweep_records_total",
			Help: "Total number of records processed by housekeeping sweeps.",
		},
		[]string{"service", "entity", "action"},
	)
)

func MustRegister(serviceName string) {
	HTTPRequestsTotal = HTTPRequestsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	HTTPRequestDurationSeconds = HTTPRequestDurationSeconds.MustCurryWith(prometheus.Labels{"service": serviceName}).(*prometheus.HistogramVec)
	OtpIssuedTotal = OtpIssuedTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	OtpVerificationsTotal = OtpVerificationsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	PasskeyChallengesTotal = PasskeyChallengesTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	PushRequestsTotal = PushRequestsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})
	SweepRecordsTotal = SweepRecordsTotal.MustCurryWith(prometheus.Labels{"service": serviceName})

	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		OtpIssuedTotal,
		OtpVerificationsTotal,
		PasskeyChallengesTotal,
		PushRequestsTotal,
		SweepRecordsTotal,
	)
}
