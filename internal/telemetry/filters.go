// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 UnderNET

package telemetry

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// MetricsFilter decides which metric families are exposed
type MetricsFilter interface {
	ShouldIncludeMetric(name string) bool
}

// PrefixFilter includes or excludes metric families by name prefix.
// Exclusions take precedence. With no include prefixes every family that is
// not excluded is kept.
type PrefixFilter struct {
	IncludePrefixes []string
	ExcludePrefixes []string
}

// ShouldIncludeMetric determines if a metric should be included
func (f *PrefixFilter) ShouldIncludeMetric(name string) bool {
	for _, prefix := range f.ExcludePrefixes {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}

	if len(f.IncludePrefixes) == 0 {
		return true
	}

	for _, prefix := range f.IncludePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// NewApplicationMetricsFilter keeps the service's own metrics and drops runtime,
// process and exporter bookkeeping families.
func NewApplicationMetricsFilter() *PrefixFilter {
	return &PrefixFilter{
		IncludePrefixes: []string{"otp_", "http_", "health_", "uptime_", "version_"},
		ExcludePrefixes: []string{"go_", "process_", "promhttp_", "otel_scope_", "target_info"},
	}
}

// FilterGatherer wraps gatherer so that only families accepted by filter are returned
func FilterGatherer(gatherer prometheus.Gatherer, filter MetricsFilter) prometheus.Gatherer {
	return &filteredGatherer{gatherer: gatherer, filter: filter}
}

// filteredGatherer wraps a prometheus.Gatherer and applies filtering
type filteredGatherer struct {
	gatherer prometheus.Gatherer
	filter   MetricsFilter
}

// Gather implements prometheus.Gatherer
func (fg *filteredGatherer) Gather() ([]*dto.MetricFamily, error) {
	families, err := fg.gatherer.Gather()
	if err != nil {
		return nil, err
	}

	filtered := make([]*dto.MetricFamily, 0, len(families))
	for _, family := range families {
		if family.GetName() == "" || len(family.GetMetric()) == 0 {
			continue
		}
		if fg.filter.ShouldIncludeMetric(family.GetName()) {
			filtered = append(filtered, family)
		}
	}

	return filtered, nil
}
