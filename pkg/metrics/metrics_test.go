package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "gambit")
				So(manager.subsystem, ShouldEqual, "rating")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("pgn"),
				WithUpdateBuckets([]float64{1, 10}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "pgn")
				So(manager.updateBuckets, ShouldResemble, []float64{1, 10})
			})
		})

		Convey("When empty options are given", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithUpdateBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "gambit")
				So(manager.subsystem, ShouldEqual, "rating")
				So(len(manager.updateBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording pipeline counters", func() {
			before := testutil.ToFloat64(globalManager.recordsRead)
			RecordRecordRead()
			RecordRecordRead()

			Convey("Then the counter advances", func() {
				So(testutil.ToFloat64(globalManager.recordsRead), ShouldEqual, before+2)
			})
		})

		Convey("When recording skipped records by kind", func() {
			before := testutil.ToFloat64(globalManager.recordsSkipped.WithLabelValues("no_outcome"))
			RecordRecordSkipped("no_outcome")

			Convey("Then only that kind advances", func() {
				So(testutil.ToFloat64(globalManager.recordsSkipped.WithLabelValues("no_outcome")), ShouldEqual, before+1)
			})
		})

		Convey("When setting gauges", func() {
			UpdateCompetitorsTracked(42)
			UpdateLeaderboardEntries(7)
			UpdateRunDuration(1.5)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.competitorsTracked), ShouldEqual, 42)
				So(testutil.ToFloat64(globalManager.leaderboardEntries), ShouldEqual, 7)
				So(testutil.ToFloat64(globalManager.runDuration), ShouldEqual, 1.5)
			})
		})

		Convey("When recording report server requests", func() {
			counter := globalManager.httpRequests.WithLabelValues("leaderboard", "GET", "200")
			before := testutil.ToFloat64(counter)
			RecordHTTPRequest("leaderboard", "GET", "200")
			RecordHTTPRequestDuration("leaderboard", "GET", "200", 0.4)

			Convey("Then the request is counted under its labels", func() {
				So(testutil.ToFloat64(counter), ShouldEqual, before+1)
			})
		})

		Convey("When recording the remaining metrics", func() {
			So(func() {
				RecordOutcomeCollected()
				RecordOutcomeApplied()
				RecordRatingUpdateLatency(3)
				RecordErrorByComponent("collector", "header_encoding")
			}, ShouldNotPanic)
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given a registry with a recorded counter", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))
		m.recordsRead.Add(3)
		path := filepath.Join(t.TempDir(), "gambit.prom")

		Convey("When writing the textfile", func() {
			err := WriteTextfile(registry, path)

			Convey("Then the exposition text contains the metric", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(data), ShouldContainSubstring, "gambit_rating_records_read_total 3")
			})
		})

		Convey("When the target directory does not exist", func() {
			err := WriteTextfile(registry, filepath.Join(t.TempDir(), "missing", "gambit.prom"))

			Convey("Then a write error is returned", func() {
				So(errors.Is(err, ErrWriteFailed), ShouldBeTrue)
			})
		})

		Convey("When gathering fails", func() {
			err := WriteTextfile(failingGatherer{}, path)

			Convey("Then a gather error is returned", func() {
				So(errors.Is(err, ErrGatherFailed), ShouldBeTrue)
			})
		})
	})
}

type failingGatherer struct{}

func (failingGatherer) Gather() ([]*dto.MetricFamily, error) {
	return nil, errors.New("boom")
}
