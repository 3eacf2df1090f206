package rating_test

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/okian/gambit/internal/domain/glicko"
	"github.com/okian/gambit/internal/domain/model"
	"github.com/okian/gambit/internal/domain/rating"
	"github.com/okian/gambit/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.InitWithWriter(io.Discard); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type mapStore struct {
	states map[string]model.RatingState
	putErr error
}

func newMapStore() *mapStore {
	return &mapStore{states: map[string]model.RatingState{}}
}

func (s *mapStore) Get(_ context.Context, id string) (model.RatingState, error) {
	st, ok := s.states[id]
	if !ok {
		return model.RatingState{}, rating.ErrUnknownCompetitor
	}
	return st, nil
}

func (s *mapStore) Put(_ context.Context, id string, st model.RatingState) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.states[id] = st
	return nil
}

type observation struct {
	competitor string
	date       model.Date
	state      model.RatingState
}

func day(d int) model.Date {
	return model.Date{Year: 2024, Month: time.January, Day: d}
}

func game(white, black string, d int, r model.Result) model.GameOutcome {
	return model.GameOutcome{White: white, Black: black, Date: day(d), Result: r}
}

func TestEngineState(t *testing.T) {
	Convey("Given an empty engine", t, func() {
		store := newMapStore()
		e := rating.NewEngine(store)
		ctx := context.Background()

		Convey("When an unknown competitor is queried", func() {
			st, err := e.State(ctx, "nobody")

			Convey("Then the baseline is returned without creating an entry", func() {
				So(err, ShouldBeNil)
				So(st, ShouldResemble, glicko.Default())
				So(store.states, ShouldBeEmpty)
			})
		})
	})
}

func TestEngineApply(t *testing.T) {
	ctx := context.Background()

	Convey("Given two new players and an observer", t, func() {
		store := newMapStore()
		var seen []observation
		e := rating.NewEngine(store, rating.WithObserver(rating.ObserverFunc(
			func(c string, d model.Date, st model.RatingState) {
				seen = append(seen, observation{c, d, st})
			})))

		Convey("When White wins their first game", func() {
			So(e.Apply(ctx, game("alice", "bob", 1, model.WhiteWin)), ShouldBeNil)
			wantW, wantB := glicko.Update(glicko.Default(), glicko.Default(), glicko.Win, glicko.DefaultConfig())

			Convey("Then both states match a direct pairwise update", func() {
				alice, _ := e.State(ctx, "alice")
				bob, _ := e.State(ctx, "bob")
				So(alice, ShouldResemble, wantW)
				So(bob, ShouldResemble, wantB)
				So(alice.Rating, ShouldAlmostEqual, 1662.3109, 0.001)
			})

			Convey("And the observer sees both post-game states with the game date", func() {
				So(seen, ShouldHaveLength, 2)
				So(seen[0], ShouldResemble, observation{"alice", day(1), wantW})
				So(seen[1], ShouldResemble, observation{"bob", day(1), wantB})
			})
		})

		Convey("When the result is invalid", func() {
			err := e.Apply(ctx, model.GameOutcome{White: "alice", Black: "bob", Date: day(1)})

			Convey("Then nothing is rated", func() {
				So(errors.Is(err, rating.ErrInvalidResult), ShouldBeTrue)
				So(store.states, ShouldBeEmpty)
				So(seen, ShouldBeEmpty)
			})
		})

		Convey("When the store rejects writes", func() {
			store.putErr = errors.New("full")
			err := e.Apply(ctx, game("alice", "bob", 1, model.Draw))

			Convey("Then the failure is reported as a store error", func() {
				So(errors.Is(err, rating.ErrStore), ShouldBeTrue)
				So(seen, ShouldBeEmpty)
			})
		})
	})

	Convey("Given the same games applied twice from scratch", t, func() {
		games := []model.GameOutcome{
			game("alice", "bob", 1, model.WhiteWin),
			game("bob", "carol", 2, model.Draw),
			game("carol", "alice", 3, model.BlackWin),
			game("dave", "alice", 4, model.WhiteWin),
		}
		run := func() map[string]model.RatingState {
			store := newMapStore()
			e := rating.NewEngine(store)
			for _, g := range games {
				So(e.Apply(ctx, g), ShouldBeNil)
			}
			return store.states
		}

		Convey("Then the final states are identical", func() {
			So(run(), ShouldResemble, run())
		})
	})

	Convey("Given two games between disjoint pairs", t, func() {
		a := game("alice", "bob", 1, model.WhiteWin)
		b := game("carol", "dave", 1, model.BlackWin)

		forward := newMapStore()
		fe := rating.NewEngine(forward)
		So(fe.Apply(ctx, a), ShouldBeNil)
		So(fe.Apply(ctx, b), ShouldBeNil)

		reverse := newMapStore()
		re := rating.NewEngine(reverse)
		So(re.Apply(ctx, b), ShouldBeNil)
		So(re.Apply(ctx, a), ShouldBeNil)

		Convey("Then their order does not matter", func() {
			So(forward.states, ShouldResemble, reverse.states)
		})
	})

	Convey("Given two games sharing a player", t, func() {
		a := game("alice", "bob", 1, model.WhiteWin)
		b := game("alice", "carol", 1, model.BlackWin)

		forward := newMapStore()
		fe := rating.NewEngine(forward)
		So(fe.Apply(ctx, a), ShouldBeNil)
		So(fe.Apply(ctx, b), ShouldBeNil)

		reverse := newMapStore()
		re := rating.NewEngine(reverse)
		So(re.Apply(ctx, b), ShouldBeNil)
		So(re.Apply(ctx, a), ShouldBeNil)

		Convey("Then their order changes the shared player's state", func() {
			So(forward.states["alice"], ShouldNotResemble, reverse.states["alice"])
		})
	})

	Convey("Given a custom tau", t, func() {
		cfg := glicko.Config{Tau: 1.2, Tolerance: 1e-6}
		store := newMapStore()
		e := rating.NewEngine(store, rating.WithConfig(cfg))
		So(e.Apply(ctx, game("alice", "bob", 1, model.WhiteWin)), ShouldBeNil)

		Convey("Then the engine rates with it", func() {
			want, _ := glicko.Update(glicko.Default(), glicko.Default(), glicko.Win, cfg)
			So(store.states["alice"], ShouldResemble, want)
		})
	})

	Convey("Given a store with its own not-found error", t, func() {
		notFound := errors.New("missing")
		store := &customStore{notFound: notFound}
		e := rating.NewEngine(store, rating.WithNotFound(notFound))

		Convey("Then unknown competitors still default", func() {
			st, err := e.State(ctx, "x")
			So(err, ShouldBeNil)
			So(st, ShouldResemble, glicko.Default())
		})
	})
}

type customStore struct {
	notFound error
}

func (s *customStore) Get(context.Context, string) (model.RatingState, error) {
	return model.RatingState{}, s.notFound
}

func (s *customStore) Put(context.Context, string, model.RatingState) error { return nil }
