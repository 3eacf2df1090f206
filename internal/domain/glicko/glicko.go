// Package glicko implements the pairwise Glicko-2 rating update.
//
// Every game is treated as its own rating period: each player is re-rated
// against the opponent's state as it stood before the game. Symbols follow
// Glickman's "Example of the Glicko-2 system":
//   - mu, phi: rating and deviation on the Glicko-2 scale
//   - sigma: volatility
//   - tau: system constant constraining volatility change
//   - v: estimated variance from game outcomes
//   - delta: estimated rating improvement
//
// See https://www.glicko.net/glicko/glicko2.pdf.
package glicko

import (
	"math"

	"github.com/okian/gambit/internal/domain/model"
)

// Baseline values for a competitor that has never been rated.
const (
	DefaultRating     = 1500.0
	DefaultDeviation  = 350.0
	DefaultVolatility = 0.06
)

const (
	defaultTau       = 0.5
	defaultTolerance = 0.000001

	// scale converts between the public and the Glicko-2 scale.
	scale = 173.7178

	// maxIterations bounds the volatility search should the iteration fail
	// to converge on pathological input.
	maxIterations = 1000
)

// Score is a game result from the rated player's perspective.
type Score float64

// Scores a player can earn in one game.
const (
	Loss Score = 0
	Draw Score = 0.5
	Win  Score = 1
)

// ScoreFor returns White's score for r.
func ScoreFor(r model.Result) Score {
	switch r {
	case model.WhiteWin:
		return Win
	case model.BlackWin:
		return Loss
	default:
		return Draw
	}
}

// Config holds the system constants of the update.
type Config struct {
	// Tau constrains the change in volatility over time.
	Tau float64
	// Tolerance is the convergence bound of the volatility iteration.
	Tolerance float64
}

// DefaultConfig returns tau 0.5 and tolerance 1e-6.
func DefaultConfig() Config {
	return Config{Tau: defaultTau, Tolerance: defaultTolerance}
}

func (c Config) normalized() Config {
	if c.Tau <= 0 {
		c.Tau = defaultTau
	}
	if c.Tolerance <= 0 {
		c.Tolerance = defaultTolerance
	}
	return c
}

// Default returns the baseline state (1500, 350, 0.06).
func Default() model.RatingState {
	return model.RatingState{
		Rating:     DefaultRating,
		Deviation:  DefaultDeviation,
		Volatility: DefaultVolatility,
	}
}

// Update returns the post-game states of white and black, where score is
// White's result. Black is scored 1-score. Inputs are not modified.
func Update(white, black model.RatingState, score Score, cfg Config) (model.RatingState, model.RatingState) {
	cfg = cfg.normalized()
	newWhite := rate(white, black, float64(score), cfg)
	newBlack := rate(black, white, 1-float64(score), cfg)
	return newWhite, newBlack
}

// rate re-rates player after one game against opponent.
func rate(player, opponent model.RatingState, s float64, cfg Config) model.RatingState {
	// Step 2.
	mu := toMu(player.Rating)
	phi := toPhi(player.Deviation)
	muJ := toMu(opponent.Rating)
	phiJ := toPhi(opponent.Deviation)

	// Step 3.
	g := calcG(phiJ)
	e := calcE(mu, muJ, g)
	v := 1 / (pow2(g) * e * (1 - e))

	// Step 4.
	delta := v * g * (s - e)

	// Step 5.
	sigma := newVolatility(player.Volatility, delta, phi, v, cfg)

	// Step 6.
	phiStar := math.Sqrt(pow2(phi) + pow2(sigma))

	// Step 7.
	phiPrime := 1 / math.Sqrt(1/pow2(phiStar)+1/v)
	muPrime := mu + pow2(phiPrime)*g*(s-e)

	// Step 8.
	return model.RatingState{
		Rating:     scale*muPrime + DefaultRating,
		Deviation:  scale * phiPrime,
		Volatility: sigma,
	}
}

// newVolatility solves f(x) = 0 with the Illinois variant of regula falsi.
func newVolatility(sigma, delta, phi, v float64, cfg Config) float64 {
	tau2 := pow2(cfg.Tau)
	a := math.Log(pow2(sigma))
	f := func(x float64) float64 {
		ex := math.Exp(x)
		d := pow2(phi) + v + ex
		return ex*(pow2(delta)-pow2(phi)-v-ex)/(2*pow2(d)) - (x-a)/tau2
	}

	A := a
	var B float64
	if pow2(delta) > pow2(phi)+v {
		B = math.Log(pow2(delta) - pow2(phi) - v)
	} else {
		k := 1.0
		for f(a-k*cfg.Tau) < 0 && k < maxIterations {
			k++
		}
		B = a - k*cfg.Tau
	}

	fA, fB := f(A), f(B)
	for i := 0; math.Abs(B-A) > cfg.Tolerance && i < maxIterations; i++ {
		C := A + (A-B)*fA/(fB-fA)
		fC := f(C)
		if fC*fB <= 0 {
			A, fA = B, fB
		} else {
			fA /= 2
		}
		B, fB = C, fC
	}
	return math.Exp(A / 2)
}

func toMu(rating float64) float64 { return (rating - DefaultRating) / scale }

func toPhi(deviation float64) float64 { return deviation / scale }

func calcG(phi float64) float64 {
	return 1 / math.Sqrt(1+3*pow2(phi)/pow2(math.Pi))
}

func calcE(mu, muJ, g float64) float64 {
	return 1 / (1 + math.Exp(-g*(mu-muJ)))
}

func pow2(x float64) float64 { return x * x }
