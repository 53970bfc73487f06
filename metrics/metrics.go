// This file is part of Padcorder.
//
// Padcorder is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Padcorder is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Padcorder.  If not, see <https://www.gnu.org/licenses/>.

// Package metrics provides Prometheus instrumentation for the recording
// and playback engine. The interesting numbers are the timing ones:
// playback lateness tells you whether the scheduler is keeping up with the
// recorded offsets, and dropped ticks tell you whether the input source
// clock is behaving.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// lateness is measured against sub-millisecond targets so the default
// buckets are far too coarse
var latenessBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 25, 50, 100}

type manager struct {
	eventsCaptured      prometheus.Counter
	ticksDropped        prometheus.Counter
	playbackLateness    prometheus.Histogram
	playbackPasses      prometheus.Counter
	playbackAborts      prometheus.Counter
	interferenceSignals prometheus.Counter
	sessionMode         prometheus.Gauge
	slotsOccupied       prometheus.Gauge
}

// custom registry to avoid the default Go runtime metrics
var registry = prometheus.NewRegistry()

var global *manager

func init() {
	auto := promauto.With(registry)

	global = &manager{
		eventsCaptured: auto.NewCounter(prometheus.CounterOpts{
			Namespace: "padcorder",
			Name:      "events_captured_total",
			Help:      "Total number of input events captured across all recordings",
		}),
		ticksDropped: auto.NewCounter(prometheus.CounterOpts{
			Namespace: "padcorder",
			Name:      "ticks_dropped_total",
			Help:      "Total number of polling ticks dropped due to a non-monotonic clock reading",
		}),
		playbackLateness: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "padcorder",
			Name:      "playback_lateness_milliseconds",
			Help:      "How late each playback event was applied relative to its scheduled time",
			Buckets:   latenessBuckets,
		}),
		playbackPasses: auto.NewCounter(prometheus.CounterOpts{
			Namespace: "padcorder",
			Name:      "playback_passes_total",
			Help:      "Total number of completed playback passes, including loop repetitions",
		}),
		playbackAborts: auto.NewCounter(prometheus.CounterOpts{
			Namespace: "padcorder",
			Name:      "playback_aborts_total",
			Help:      "Total number of playbacks aborted because of an output sink failure",
		}),
		interferenceSignals: auto.NewCounter(prometheus.CounterOpts{
			Namespace: "padcorder",
			Name:      "interference_signals_total",
			Help:      "Total number of confirmed operator interference signals",
		}),
		sessionMode: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: "padcorder",
			Name:      "session_mode",
			Help:      "Current session mode (0 idle, 1 recording, 2 playing)",
		}),
		slotsOccupied: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: "padcorder",
			Name:      "slots_occupied",
			Help:      "Number of slots currently holding a sequence",
		}),
	}
}

// RecordEventCaptured increments the captured events counter.
func RecordEventCaptured() {
	global.eventsCaptured.Inc()
}

// RecordTickDropped increments the dropped ticks counter.
func RecordTickDropped() {
	global.ticksDropped.Inc()
}

// RecordPlaybackLateness records how late an event was applied, in
// milliseconds.
func RecordPlaybackLateness(ms float64) {
	if ms < 0 {
		ms = 0
	}
	global.playbackLateness.Observe(ms)
}

// RecordPlaybackPass increments the completed passes counter.
func RecordPlaybackPass() {
	global.playbackPasses.Inc()
}

// RecordPlaybackAbort increments the aborted playbacks counter.
func RecordPlaybackAbort() {
	global.playbackAborts.Inc()
}

// RecordInterference increments the interference signal counter.
func RecordInterference() {
	global.interferenceSignals.Inc()
}

// UpdateSessionMode sets the session mode gauge.
func UpdateSessionMode(mode int) {
	global.sessionMode.Set(float64(mode))
}

// UpdateSlotsOccupied sets the occupied slots gauge.
func UpdateSlotsOccupied(count int) {
	global.slotsOccupied.Set(float64(count))
}

// Handler returns an http.Handler serving the metrics registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
