package glicko_test

import (
	"math"
	"testing"

	"github.com/okian/gambit/internal/domain/glicko"
	"github.com/okian/gambit/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefault(t *testing.T) {
	Convey("Given the baseline state", t, func() {
		d := glicko.Default()

		Convey("Then it is (1500, 350, 0.06)", func() {
			So(d, ShouldResemble, model.RatingState{Rating: 1500, Deviation: 350, Volatility: 0.06})
		})
	})
}

func TestScoreFor(t *testing.T) {
	Convey("Given each game result", t, func() {
		So(glicko.ScoreFor(model.WhiteWin), ShouldEqual, glicko.Win)
		So(glicko.ScoreFor(model.BlackWin), ShouldEqual, glicko.Loss)
		So(glicko.ScoreFor(model.Draw), ShouldEqual, glicko.Draw)
	})
}

func TestUpdate(t *testing.T) {
	Convey("Given two unrated players", t, func() {
		cfg := glicko.DefaultConfig()
		white, black := glicko.Default(), glicko.Default()

		Convey("When White wins", func() {
			w, b := glicko.Update(white, black, glicko.Win, cfg)

			Convey("Then the ratings move symmetrically", func() {
				So(w.Rating, ShouldAlmostEqual, 1662.3109, 0.001)
				So(b.Rating, ShouldAlmostEqual, 1337.6891, 0.001)
				So(w.Deviation, ShouldAlmostEqual, 290.3190, 0.001)
				So(b.Deviation, ShouldAlmostEqual, w.Deviation, 1e-9)
				So(w.Volatility, ShouldAlmostEqual, 0.059999675, 1e-8)
			})

			Convey("And the inputs are untouched", func() {
				So(white, ShouldResemble, glicko.Default())
				So(black, ShouldResemble, glicko.Default())
			})
		})

		Convey("When the game is drawn", func() {
			w, b := glicko.Update(white, black, glicko.Draw, cfg)

			Convey("Then ratings stay at the baseline and deviations shrink", func() {
				So(w.Rating, ShouldEqual, 1500)
				So(b.Rating, ShouldEqual, 1500)
				So(w.Deviation, ShouldBeLessThan, 350)
				So(b.Deviation, ShouldBeLessThan, 350)
			})
		})

		Convey("When the result is reversed in a second game", func() {
			w1, b1 := glicko.Update(white, black, glicko.Win, cfg)
			w2, b2 := glicko.Update(w1, b1, glicko.Loss, cfg)

			Convey("Then the loser of the second game gives rating back", func() {
				So(w2.Rating, ShouldAlmostEqual, 1433.0601, 0.001)
				So(b2.Rating, ShouldAlmostEqual, 1566.9399, 0.001)
				So(w2.Deviation, ShouldAlmostEqual, 260.4888, 0.001)
			})
		})
	})

	Convey("Given an established player beating a stable weaker one", t, func() {
		player := model.RatingState{Rating: 1500, Deviation: 200, Volatility: 0.06}
		opponent := model.RatingState{Rating: 1400, Deviation: 30, Volatility: 0.06}

		w, _ := glicko.Update(player, opponent, glicko.Win, glicko.DefaultConfig())

		Convey("Then the gain is smaller than against an equal", func() {
			So(w.Rating, ShouldAlmostEqual, 1563.5642, 0.001)
			So(w.Deviation, ShouldAlmostEqual, 175.4027, 0.001)
		})
	})

	Convey("Given a zero config", t, func() {
		w1, b1 := glicko.Update(glicko.Default(), glicko.Default(), glicko.Win, glicko.Config{})
		w2, b2 := glicko.Update(glicko.Default(), glicko.Default(), glicko.Win, glicko.DefaultConfig())

		Convey("Then the defaults are used", func() {
			So(w1, ShouldResemble, w2)
			So(b1, ShouldResemble, b2)
		})
	})

	Convey("Given a long series of lopsided games", t, func() {
		cfg := glicko.DefaultConfig()
		strong, weak := glicko.Default(), glicko.Default()
		for i := 0; i < 500; i++ {
			strong, weak = glicko.Update(strong, weak, glicko.Win, cfg)
		}

		Convey("Then every value stays finite", func() {
			for _, v := range []float64{strong.Rating, strong.Deviation, strong.Volatility, weak.Rating, weak.Deviation, weak.Volatility} {
				So(math.IsNaN(v), ShouldBeFalse)
				So(math.IsInf(v, 0), ShouldBeFalse)
			}
			So(strong.Rating, ShouldBeGreaterThan, weak.Rating)
		})
	})
}
