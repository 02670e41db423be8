// Copyright 2016 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var requestDuration = prometheus.NewSummaryVec(prometheus.SummaryOpts{
	Namespace: "certauth",
	Subsystem: "handler",
	Name:      "request_duration",
	Help:      "The duration of a web request.",
}, []string{"path_pattern"})

func init() {
	prometheus.MustRegister(requestDuration)
}

// Request records the duration of a single web request.
type Request struct {
	startTime   time.Time
	pathPattern string
}

// NewRequest starts timing a request to the route with the given
// path pattern.
func NewRequest(pathPattern string) Request {
	return Request{
		startTime:   time.Now(),
		pathPattern: pathPattern,
	}
}

// ObserveMetric records the time since the request started.
func (r Request) ObserveMetric() {
	requestDuration.WithLabelValues(r.pathPattern).Observe(float64(time.Since(r.startTime)) / float64(time.Second))
}
