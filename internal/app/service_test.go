package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	service "github.com/okian/gambit/internal/app"
	"github.com/okian/gambit/internal/adapters/pgn"
	"github.com/okian/gambit/internal/domain/glicko"
	"github.com/okian/gambit/internal/domain/model"
	"github.com/okian/gambit/internal/domain/outcome"
	"github.com/okian/gambit/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
}

func record(white, black, date, result string) string {
	var b strings.Builder
	if white != "" {
		b.WriteString(`[White "` + white + "\"]\n")
	}
	if black != "" {
		b.WriteString(`[Black "` + black + "\"]\n")
	}
	if date != "" {
		b.WriteString(`[Date "` + date + "\"]\n")
	}
	b.WriteString("\n1. e4 e5 " + result + "\n\n")
	return b.String()
}

func archive(records ...string) *pgn.Reader {
	return pgn.NewReader(strings.NewReader(strings.Join(records, "")))
}

func run(svc *service.Service, records ...string) (*service.Report, error) {
	return svc.Run(context.Background(), archive(records...))
}

func TestService_Run(t *testing.T) {
	Convey("Given a service with a loose threshold", t, func() {
		svc := service.New(service.WithThreshold(300))

		Convey("When one decisive game is rated", func() {
			report, err := run(svc, record("Alice", "Bob", "2024.01.01", "1-0"))
			So(err, ShouldBeNil)

			Convey("Then both players are ranked by rating", func() {
				So(report.Leaderboard, ShouldHaveLength, 2)
				So(report.Leaderboard[0].Competitor, ShouldEqual, "Alice")
				So(report.Leaderboard[0].Rank, ShouldEqual, 1)
				So(report.Leaderboard[0].Rating, ShouldAlmostEqual, 1662.3109, 0.001)
				So(report.Leaderboard[1].Competitor, ShouldEqual, "Bob")
				So(report.Leaderboard[1].Rating, ShouldAlmostEqual, 1337.6891, 0.001)
			})

			Convey("And the stats count the record", func() {
				So(report.Stats.Records, ShouldEqual, 1)
				So(report.Stats.Outcomes, ShouldEqual, 1)
				So(report.Stats.Competitors, ShouldEqual, 2)
				So(report.Stats.SkippedTotal(), ShouldEqual, 0)
			})
		})

		Convey("When the archive is empty", func() {
			report, err := run(svc)

			Convey("Then the run succeeds with nothing ranked", func() {
				So(err, ShouldBeNil)
				So(report.Leaderboard, ShouldBeEmpty)
				So(report.Stats.Records, ShouldEqual, 0)
			})
		})

		Convey("When records lack an outcome or a field", func() {
			report, err := run(svc,
				record("Alice", "Bob", "2024.01.01", "*"),
				record("Alice", "", "2024.01.02", "1-0"),
				record("Alice", "Bob", "", "0-1"),
				record("Carol", "Dave", "2024.01.03", "1/2-1/2"),
			)
			So(err, ShouldBeNil)

			Convey("Then they are skipped and counted by kind", func() {
				So(report.Stats.Records, ShouldEqual, 4)
				So(report.Stats.Outcomes, ShouldEqual, 1)
				So(report.Stats.Skipped, ShouldResemble, map[string]int{
					outcome.KindNoOutcome.String():    1,
					outcome.KindMissingField.String(): 2,
				})
				So(report.States, ShouldHaveLength, 2)
				So(report.States, ShouldContainKey, "Carol")
			})
		})
	})

	Convey("Given a service with the default threshold", t, func() {
		svc := service.New()

		Convey("When every competitor played a single game", func() {
			report, err := run(svc, record("Alice", "Bob", "2024.01.01", "1-0"))
			So(err, ShouldBeNil)

			Convey("Then nobody is confident enough to rank", func() {
				So(report.Leaderboard, ShouldBeEmpty)
				So(report.States["Alice"].Deviation, ShouldBeGreaterThanOrEqualTo, 200)
			})
		})
	})
}

func TestService_Ordering(t *testing.T) {
	Convey("Given games written out of date order", t, func() {
		svc := service.New(service.WithThreshold(400))
		shuffled := []string{
			record("Alice", "Bob", "2024.03.01", "0-1"),
			record("Alice", "Bob", "2024.01.01", "1-0"),
		}
		sorted := []string{shuffled[1], shuffled[0]}

		Convey("Then they are rated as if sorted by date", func() {
			a, err := run(svc, shuffled...)
			So(err, ShouldBeNil)
			b, err := run(svc, sorted...)
			So(err, ShouldBeNil)
			So(a.States, ShouldResemble, b.States)
			So(a.States["Alice"].Rating, ShouldAlmostEqual, 1433.0601, 0.001)
		})
	})

	Convey("Given games on the same date", t, func() {
		svc := service.New(service.WithThreshold(400))
		first := record("Alice", "Bob", "2024.01.01", "1-0")
		second := record("Alice", "Carol", "2024.01.01", "0-1")

		Convey("Then archive order is kept between them", func() {
			report, err := run(svc, first, second)
			So(err, ShouldBeNil)

			cfg := glicko.DefaultConfig()
			alice, _ := glicko.Update(glicko.Default(), glicko.Default(), glicko.Win, cfg)
			alice, _ = glicko.Update(alice, glicko.Default(), glicko.Loss, cfg)
			So(report.States["Alice"], ShouldResemble, alice)
		})
	})
}

func TestService_History(t *testing.T) {
	Convey("Given a service tracking Alice", t, func() {
		svc := service.New(service.WithHistory("Alice"))

		Convey("When Alice plays twice on one day and once later", func() {
			report, err := run(svc,
				record("Alice", "Bob", "2024.01.05", "1-0"),
				record("Alice", "Bob", "2024.01.01", "1-0"),
				record("Carol", "Alice", "2024.01.01", "1-0"),
			)
			So(err, ShouldBeNil)

			Convey("Then one point per date is reported in date order", func() {
				So(report.HistoryCompetitor, ShouldEqual, "Alice")
				So(report.History, ShouldHaveLength, 2)
				So(report.History[0].Date, ShouldResemble, model.Date{Year: 2024, Month: time.January, Day: 1})
				So(report.History[1].Date, ShouldResemble, model.Date{Year: 2024, Month: time.January, Day: 5})
			})

			Convey("And the day's point is the rating after the last game that day", func() {
				cfg := glicko.DefaultConfig()
				alice, bob := glicko.Update(glicko.Default(), glicko.Default(), glicko.Win, cfg)
				_, alice = glicko.Update(glicko.Default(), alice, glicko.Win, cfg)
				So(report.History[0].Rating, ShouldEqual, alice.Rating)

				alice, _ = glicko.Update(alice, bob, glicko.Win, cfg)
				So(report.History[1].Rating, ShouldEqual, alice.Rating)
				So(report.States["Alice"].Rating, ShouldEqual, alice.Rating)
			})
		})

		Convey("When Alice never played", func() {
			report, err := run(svc, record("Bob", "Carol", "2024.01.01", "1-0"))

			Convey("Then the history is empty", func() {
				So(err, ShouldBeNil)
				So(report.History, ShouldBeNil)
			})
		})
	})
}

func TestService_Fatal(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := service.New(service.WithThreshold(400))

		Convey("When a name is not valid UTF-8", func() {
			report, err := run(svc,
				record("Alice", "Bob", "2024.01.01", "1-0"),
				record("Al\xffce", "Bob", "2024.01.02", "1-0"),
			)

			Convey("Then the run aborts naming the record", func() {
				So(report, ShouldBeNil)
				So(errors.Is(err, service.ErrCorruptArchive), ShouldBeTrue)
				So(errors.Is(err, outcome.ErrHeaderEncoding), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "record 2")
			})
		})

		Convey("When a date cannot be parsed", func() {
			report, err := run(svc, record("Alice", "Bob", "2024.??.??", "1-0"))

			Convey("Then the run aborts", func() {
				So(report, ShouldBeNil)
				So(errors.Is(err, outcome.ErrInvalidDate), ShouldBeTrue)
			})
		})

		Convey("When the archive cannot be read", func() {
			src := &failingSource{after: 1, err: errors.New("device gone")}
			report, err := svc.Run(context.Background(), src)

			Convey("Then the read error is fatal", func() {
				So(report, ShouldBeNil)
				So(errors.Is(err, service.ErrReadArchive), ShouldBeTrue)
			})
		})

		Convey("When the context is canceled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := svc.Run(ctx, archive(record("Alice", "Bob", "2024.01.01", "1-0")))

			Convey("Then the run stops", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

// failingSource yields complete records until after, then fails.
type failingSource struct {
	after int
	err   error
	n     int
}

func (f *failingSource) ReadGame(v pgn.Visitor) (bool, error) {
	if f.n >= f.after {
		return false, f.err
	}
	f.n++
	v.BeginGame()
	v.Header([]byte("White"), []byte("Alice"))
	v.Header([]byte("Black"), []byte("Bob"))
	v.Header([]byte("Date"), []byte("2024.01.01"))
	r := model.Draw
	v.Outcome(&r)
	return true, nil
}
