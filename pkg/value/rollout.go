package value

import (
	"fmt"
	"runtime"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/bgsearch/pkg/engine"
)

// maxRolloutWorkers bounds the goroutines of one evaluation
const maxRolloutWorkers = 256

// RolloutOptions controls a Monte Carlo rollout evaluation
type RolloutOptions struct {
	Trials  int    // Number of random games per evaluation (default 36)
	Seed    uint64 // Base seed; worker i uses Seed + i*1000000
	Workers int    // Number of parallel workers (0 = GOMAXPROCS)
}

// DefaultRolloutOptions returns sensible defaults
func DefaultRolloutOptions() RolloutOptions {
	return RolloutOptions{
		Trials:  36,
		Seed:    1,
		Workers: 0,
	}
}

// Rollout scores a position by the share of uniformly random playouts that
// side wins, starting with the side on roll. The seeds are fixed, so the
// same position always gets the same score.
type Rollout struct {
	opts RolloutOptions
}

// NewRollout returns a rollout value function.
func NewRollout(opts RolloutOptions) *Rollout {
	if opts.Trials <= 0 {
		opts.Trials = DefaultRolloutOptions().Trials
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Workers > maxRolloutWorkers {
		opts.Workers = maxRolloutWorkers
	}
	if opts.Workers > opts.Trials {
		opts.Workers = opts.Trials
	}
	return &Rollout{opts: opts}
}

// Evaluate plays the configured number of random games from st.
func (r *Rollout) Evaluate(st *engine.State, side engine.Side) float64 {
	if winner, over := st.Winner(); over {
		if winner == side {
			return 1
		}
		return 0
	}

	// Distribute trials across workers
	trialsPerWorker := r.opts.Trials / r.opts.Workers
	extraTrials := r.opts.Trials % r.opts.Workers
	wins := make([]int, r.opts.Workers)

	var g errgroup.Group
	for i := 0; i < r.opts.Workers; i++ {
		i := i
		workerTrials := trialsPerWorker
		if i < extraTrials {
			workerTrials++
		}
		workerSeed := r.opts.Seed + uint64(i)*1000000

		g.Go(func() error {
			rng := rand.New(rand.NewSource(workerSeed))
			for t := 0; t < workerTrials; t++ {
				game := *st
				winner, err := engine.RandomPlayout(&game, st.Turn, rng)
				if err != nil {
					return err
				}
				if winner == side {
					wins[i]++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Playouts always terminate for positions reached by legal play
		panic(fmt.Sprintf("value: rollout failed: %v", err))
	}

	total := 0
	for _, w := range wins {
		total += w
	}
	return float64(total) / float64(r.opts.Trials)
}

// Trials returns the number of playouts per evaluation.
func (r *Rollout) Trials() int {
	return r.opts.Trials
}

func (r *Rollout) Name() string {
	return fmt.Sprintf("rollout(%d)", r.opts.Trials)
}
