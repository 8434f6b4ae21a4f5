package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wakai_api_requests_total",
		Help: "Total number of API requests by route and status code",
	}, []string{"route", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wakai_api_request_duration_seconds",
		Help:    "Duration of API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	ScoringComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wakai_scoring_computed_total",
		Help: "Total number of contact-scoring computations",
	})

	RecordsNormalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wakai_records_normalized_total",
		Help: "Total number of raw records normalized, by validity",
	}, []string{"valid"})

	AssistantRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wakai_assistant_requests_total",
		Help: "Total number of assistant chat requests by status",
	}, []string{"status"})

	AssistantRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wakai_assistant_request_duration_seconds",
		Help:    "Duration of assistant chat requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wakai_notifications_sent_total",
		Help: "Total number of appointment notifications by channel and result",
	}, []string{"channel", "result"})

	OutboundCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wakai_outbound_calls_total",
		Help: "Total number of outbound voice calls by result",
	}, []string{"result"})

	VoiceWebhooks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wakai_voice_webhooks_total",
		Help: "Total number of post-call webhooks by storage status",
	}, []string{"status"})

	BotMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wakai_bot_messages_total",
		Help: "Total number of relay bot messages by kind",
	}, []string{"kind"})
)
