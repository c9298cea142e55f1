package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Feed holds the counters of the emitter loop.
type Feed struct {
	snapshotsSent prometheus.Counter
	bytesSent     prometheus.Counter
	sendLatency   prometheus.Histogram
	mqttFailures  prometheus.Counter
}

// NewFeed creates the feed metrics and registers them with reg. A nil reg
// leaves them unregistered, which is what tests and a disabled HTTP surface
// want.
func NewFeed(reg prometheus.Registerer) *Feed {
	f := &Feed{
		snapshotsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "towerfeed_snapshots_sent_total",
			Help: "Snapshots transmitted as datagrams.",
		}),
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "towerfeed_bytes_sent_total",
			Help: "Payload bytes written to the datagram socket.",
		}),
		sendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "towerfeed_send_duration_seconds",
			Help:    "Time spent building, encoding and sending one snapshot.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		mqttFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "towerfeed_mqtt_publish_failures_total",
			Help: "Snapshots the MQTT mirror failed to publish.",
		}),
	}
	if reg != nil {
		reg.MustRegister(f.snapshotsSent, f.bytesSent, f.sendLatency, f.mqttFailures)
	}
	return f
}

func (f *Feed) ObserveSend(bytes int, took time.Duration) {
	f.snapshotsSent.Inc()
	f.bytesSent.Add(float64(bytes))
	f.sendLatency.Observe(took.Seconds())
}

func (f *Feed) IncMQTTFailure() {
	f.mqttFailures.Inc()
}
