// Copyright (c) 2025 The Firofarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"os"

	"github.com/elastic/gosigar"
	"github.com/prometheus/client_golang/prometheus"
)

// ProcessCollector reports memory and cpu usage of the running process read through gosigar.
// It implements prometheus.Collector.
type ProcessCollector struct {
	pid          int
	residentDesc *prometheus.Desc
	virtualDesc  *prometheus.Desc
	cpuDesc      *prometheus.Desc
}

// NewProcessCollector creates a new ProcessCollector for the current process.
func NewProcessCollector() *ProcessCollector {
	return &ProcessCollector{
		pid: os.Getpid(),
		residentDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "process", "resident_memory_bytes"),
			"Resident memory size in bytes.", nil, nil),
		virtualDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "process", "virtual_memory_bytes"),
			"Virtual memory size in bytes.", nil, nil),
		cpuDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "process", "cpu_milliseconds_total"),
			"Total user and system cpu time in milliseconds.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *ProcessCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.residentDesc
	ch <- c.virtualDesc
	ch <- c.cpuDesc
}

// Collect implements prometheus.Collector.
func (c *ProcessCollector) Collect(ch chan<- prometheus.Metric) {
	var mem gosigar.ProcMem
	if err := mem.Get(c.pid); err == nil {
		ch <- prometheus.MustNewConstMetric(c.residentDesc, prometheus.GaugeValue, float64(mem.Resident))
		ch <- prometheus.MustNewConstMetric(c.virtualDesc, prometheus.GaugeValue, float64(mem.Size))
	}
	var cpu gosigar.ProcTime
	if err := cpu.Get(c.pid); err == nil {
		ch <- prometheus.MustNewConstMetric(c.cpuDesc, prometheus.CounterValue, float64(cpu.Total))
	}
}

// RegisterProcessCollector registers the ProcessCollector with the default registry.
// Only meaningful once prometheus metrics are initialized.
func RegisterProcessCollector() error {
	if _, ok := metrics.(*prometheusMetrics); !ok {
		return nil
	}
	return prometheus.Register(NewProcessCollector())
}
