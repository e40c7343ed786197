package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			metricPrefixOpt := WithMetricPrefix("test-prefix")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)
			customLabelsOpt := WithCustomLabels(map[string]string{"env": "test"})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(metricPrefixOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
				So(customLabelsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithMetricPrefix("test-prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test", "version": "1.0"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with empty overrides", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithMetricPrefix(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should hold and creation should succeed", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording match metrics", func() {
			Convey("Then it should record match lifecycle", func() {
				So(func() {
					RecordMatchStarted()
					RecordMatchStarted()
					RecordMatchCompleted()
					RecordGoalsPerMatch(3)
					RecordTacticChange()
				}, ShouldNotPanic)
			})

			Convey("And it should record emitted events by type", func() {
				So(func() {
					RecordEventEmitted("goal")
					RecordEventEmitted("yellow_card")
					RecordEventEmitted("red_card")
					RecordEventEmitted("substitution")
					RecordEventEmitted("half-time")
					RecordEventEmitted("full-time")
					RecordEventEmitted("minute_update")
				}, ShouldNotPanic)
			})

			Convey("And it should record generation and stream timings", func() {
				So(func() {
					RecordGenerateLatency(3.5)
					RecordStreamDuration("first", 0.2)
					RecordStreamDuration("second", 54.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording operational metrics", func() {
			Convey("Then it should update session gauges", func() {
				So(func() {
					UpdateActiveSessions(12)
					UpdateActiveSessions(0)
					IncStreamsOpen()
					DecStreamsOpen()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording registry metrics", func() {
			Convey("Then it should update shard gauges", func() {
				So(func() {
					UpdateRegistryShardCount(16)
					UpdateRegistrySessionsTotal(40)
					UpdateRegistrySessionsPerShard("shard-0", 3)
					UpdateRegistrySessionsPerShard("shard-1", 5)
				}, ShouldNotPanic)
			})

			Convey("And it should record registry latencies", func() {
				So(func() {
					RecordRegistryUpdateLatency(1.0)
					RecordRegistryQueryLatency(0.5)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording HTTP metrics", func() {
			Convey("Then it should record HTTP requests", func() {
				So(func() {
					RecordHTTPRequest("/healthz", "GET", "200")
					RecordHTTPRequest("/api/matches", "POST", "201")
					RecordHTTPRequest("/api/matches/{id}", "GET", "200")
				}, ShouldNotPanic)
			})

			Convey("And it should record HTTP request duration", func() {
				So(func() {
					RecordHTTPRequestDuration("/healthz", "GET", "200", 5.0)
					RecordHTTPRequestDuration("/api/matches", "POST", "201", 10.0)
				}, ShouldNotPanic)
			})

			Convey("And it should track in-flight requests", func() {
				So(func() {
					IncHTTPInFlight()
					DecHTTPInFlight()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording error metrics", func() {
			Convey("Then it should record error counters", func() {
				So(func() {
					RecordConfigurationError()
					RecordStateError()
					RecordEnrichmentFallback()
				}, ShouldNotPanic)
			})

			Convey("And it should record errors by component", func() {
				So(func() {
					RecordErrorByComponent("timeline", "generation_failed")
					RecordErrorByComponent("enrich", "provider_unavailable")
				}, ShouldNotPanic)
			})

			Convey("And it should record errors by endpoint", func() {
				So(func() {
					RecordErrorByEndpoint("/api/matches", "POST", "validation_error")
					RecordErrorByEndpoint("/api/matches/{id}/tactic", "POST", "state_error")
				}, ShouldNotPanic)
			})
		})

		Convey("When recording system metrics", func() {
			Convey("Then it should update system gauges", func() {
				So(func() {
					UpdateSystemMemoryUsage(1024 * 1024 * 100)
					UpdateSystemGoroutineCount(42)
					RecordSystemGCPauseTime(1.5)
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsEdgeCases(t *testing.T) {
	Convey("Given metrics edge cases", t, func() {
		Convey("When recording metrics with edge values", func() {
			Convey("And using zero values", func() {
				So(func() {
					UpdateActiveSessions(0)
					RecordGoalsPerMatch(0)
					RecordGenerateLatency(0.0)
					RecordHTTPRequestDuration("/test", "GET", "200", 0.0)
				}, ShouldNotPanic)
			})

			Convey("And using negative gauge values", func() {
				So(func() {
					UpdateActiveSessions(-1)
					UpdateRegistrySessionsTotal(-10)
				}, ShouldNotPanic)
			})

			Convey("And using empty label values", func() {
				So(func() {
					RecordHTTPRequest("", "", "200")
					RecordEventEmitted("")
					RecordErrorByComponent("", "")
					RecordErrorByEndpoint("", "", "")
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		Convey("When recording metrics concurrently", func() {
			done := make(chan bool, 10)

			for i := 0; i < 10; i++ {
				go func(id int) {
					for j := 0; j < 100; j++ {
						RecordEventEmitted("goal")
						UpdateActiveSessions(j)
						RecordGenerateLatency(float64(j))
						RecordHTTPRequest("/test", "GET", "200")
					}
					done <- true
				}(i)
			}

			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then it should handle concurrent access without panics", func() {
				So(true, ShouldBeTrue) // If we get here, no panics occurred
			})
		})
	})
}
