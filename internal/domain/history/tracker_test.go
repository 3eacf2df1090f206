package history_test

import (
	"testing"
	"time"

	"github.com/okian/gambit/internal/domain/history"
	"github.com/okian/gambit/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func day(d int) model.Date {
	return model.Date{Year: 2024, Month: time.March, Day: d}
}

func rated(r float64) model.RatingState {
	return model.RatingState{Rating: r, Deviation: 300, Volatility: 0.06}
}

func TestTracker(t *testing.T) {
	Convey("Given a tracker", t, func() {
		tr := history.NewTracker()

		Convey("When a competitor plays twice on one day", func() {
			tr.Observe("alice", day(2), rated(1600))
			tr.Observe("alice", day(2), rated(1550))

			Convey("Then only the last rating of the day is kept", func() {
				So(tr.Series("alice"), ShouldResemble, []model.HistoryPoint{
					{Competitor: "alice", Date: day(2), Rating: 1550},
				})
			})
		})

		Convey("When days are observed out of order", func() {
			tr.Observe("alice", day(9), rated(1700))
			tr.Observe("alice", day(1), rated(1500))
			tr.Observe("alice", day(5), rated(1600))

			Convey("Then the series is in date order", func() {
				s := tr.Series("alice")
				So(s, ShouldHaveLength, 3)
				So(s[0].Date, ShouldResemble, day(1))
				So(s[1].Date, ShouldResemble, day(5))
				So(s[2].Date, ShouldResemble, day(9))
				So(s[2].Rating, ShouldEqual, 1700)
			})
		})

		Convey("When several competitors are observed", func() {
			tr.Observe("carol", day(1), rated(1500))
			tr.Observe("alice", day(1), rated(1500))
			tr.Observe("bob", day(1), rated(1500))

			Convey("Then they are listed by name and kept apart", func() {
				So(tr.Competitors(), ShouldResemble, []string{"alice", "bob", "carol"})
				So(tr.Series("bob"), ShouldHaveLength, 1)
			})
		})

		Convey("When a competitor never played", func() {
			Convey("Then the series is empty", func() {
				So(tr.Series("nobody"), ShouldBeNil)
			})
		})
	})
}
