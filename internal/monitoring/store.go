// Copyright 2018 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package monitoring

import (
	"context"

	"github.com/juju/loggo"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/canonical/certauth/store"
)

var logger = loggo.GetLogger("certauth.internal.monitoring")

// StoreCollector is a prometheus.Collector that reports the number of
// users held in a store.
type StoreCollector struct {
	Store store.Store
}

var storeUsersDesc = prometheus.NewDesc(
	"certauth_store_users",
	"Number of stored users",
	nil,
	nil,
)

// Describe implements prometheus.Collector
func (c StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- storeUsersDesc
}

// Collect implements prometheus.Collector
func (c StoreCollector) Collect(ch chan<- prometheus.Metric) {
	users, err := c.Store.Users(context.Background())
	if err != nil {
		logger.Infof("error collecting metrics: %s", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(storeUsersDesc, prometheus.GaugeValue, float64(len(users)))
}
