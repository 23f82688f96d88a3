package player

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/exp/rand"

	"github.com/yourusername/bgsearch/internal/neuralnet"
	"github.com/yourusername/bgsearch/pkg/engine"
	"github.com/yourusername/bgsearch/pkg/search"
	"github.com/yourusername/bgsearch/pkg/value"
)

// DefaultPlayerConfig is used when no configuration is given.
var DefaultPlayerConfig = "greedy:value=way_to_go"

// module builds a strategy from its parameters, consuming the ones it
// understands.
type module func(params map[string]string) (search.Strategy, error)

var modules = map[string]module{
	"random": func(map[string]string) (search.Strategy, error) {
		return search.Random{}, nil
	},
	"greedy":         lookaheadModule(0),
	"twoply":         lookaheadModule(1),
	"threeply":       lookaheadModule(2),
	"expectiminimax": lookaheadModule(-1),
	"mcts":           mctsModule,
}

func init() {
	// modelModule looks strategies up in modules
	modules["model"] = modelModule
}

// Modules returns the known strategy names, sorted.
func Modules() []string {
	names := lo.Keys(modules)
	sort.Strings(names)
	return names
}

// New creates a player for side from a configuration string.
//
// The config is a strategy name, optionally followed by a colon and a
// comma-separated list of key=value parameters:
//
//	random
//	greedy:value=blocker
//	twoply:value=way_to_go*2+singleton,workers=4
//	expectiminimax:depth=2,value=single_to_go
//	mcts:iterations=200,value=blocker,c=1.2
//	model:path=weights.txt,strategy=twoply,reference=black
//
// Value parameters shared by all strategies: value (a heuristic name,
// "rollout", "model", or a weighted mix such as "way_to_go*2+blocker"),
// path and reference for models, trials for rollouts, and cache to
// memoise evaluations.
func New(side engine.Side, config string, rng *rand.Rand) (*Player, error) {
	strategy, err := NewStrategy(config)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRng(0)
	}
	return &Player{Side: side, Strategy: strategy, Rng: rng, Config: config}, nil
}

// NewStrategy parses a configuration string as described for New.
func NewStrategy(config string) (search.Strategy, error) {
	if config == "" {
		config = DefaultPlayerConfig
	}

	moduleName, rest, _ := strings.Cut(config, ":")
	moduleName = strings.ToLower(strings.TrimSpace(moduleName))
	build, ok := modules[moduleName]
	if !ok {
		return nil, errors.Errorf("unknown player %q (known: %s)", moduleName, strings.Join(Modules(), ", "))
	}

	params := splitConfigString(rest)
	strategy, err := build(params)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create player %q", moduleName)
	}
	if len(params) > 0 {
		unknown := lo.Keys(params)
		sort.Strings(unknown)
		return nil, errors.Errorf("player %q: unknown parameters %s", moduleName, strings.Join(unknown, ", "))
	}
	return strategy, nil
}

// splitConfigString splits "a=1,b,c=x" into a map; keys without a value
// map to "".
func splitConfigString(config string) map[string]string {
	params := make(map[string]string)
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, _ := strings.Cut(part, "=")
		params[strings.ToLower(key)] = val
	}
	return params
}

// ConfigParam returns the raw value of key in a configuration string.
func ConfigParam(config, key string) (string, bool) {
	_, rest, _ := strings.Cut(config, ":")
	v, ok := splitConfigString(rest)[strings.ToLower(key)]
	return v, ok
}

// WithParam returns config with key set to val, replacing an existing
// setting of key.
func WithParam(config, key, val string) string {
	moduleName, rest, _ := strings.Cut(config, ":")
	parts := make([]string, 0, 4)
	replaced := false
	for _, part := range strings.Split(rest, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, _, _ := strings.Cut(part, "=")
		if strings.EqualFold(k, key) {
			if replaced {
				continue
			}
			part, replaced = key+"="+val, true
		}
		parts = append(parts, part)
	}
	if !replaced {
		parts = append(parts, key+"="+val)
	}
	return moduleName + ":" + strings.Join(parts, ",")
}

// popParamOr parses and removes params[key], or returns defaultValue if
// the key is absent.
func popParamOr[T interface{ int | uint64 | float64 | string }](params map[string]string, key string, defaultValue T) (T, error) {
	raw, exists := params[key]
	if !exists {
		return defaultValue, nil
	}
	delete(params, key)

	var t T
	switch any(defaultValue).(type) {
	case int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return t, errors.Wrapf(err, "failed to parse configuration %s=%q to int", key, raw)
		}
		return any(v).(T), nil
	case uint64:
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return t, errors.Wrapf(err, "failed to parse configuration %s=%q to uint", key, raw)
		}
		return any(v).(T), nil
	case float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return t, errors.Wrapf(err, "failed to parse configuration %s=%q to float", key, raw)
		}
		return any(v).(T), nil
	case string:
		return any(raw).(T), nil
	}
	return defaultValue, nil
}

func lookaheadModule(depth int) module {
	return func(params map[string]string) (search.Strategy, error) {
		v, err := valueFromParams(params)
		if err != nil {
			return nil, err
		}
		workers, err := popParamOr(params, "workers", 0)
		if err != nil {
			return nil, err
		}

		var l *search.Lookahead
		switch depth {
		case 0:
			l = search.NewGreedy(v)
		case 1:
			l = search.NewTwoPly(v)
		case 2:
			l = search.NewThreePly(v)
		default:
			d, err := popParamOr(params, "depth", 1)
			if err != nil {
				return nil, err
			}
			if d < 0 {
				return nil, errors.Errorf("depth must be >= 0, got %d", d)
			}
			l = search.NewExpectiminimax(v, d)
		}
		l.Workers = workers
		return l, nil
	}
}

func mctsModule(params map[string]string) (search.Strategy, error) {
	v, err := valueFromParams(params)
	if err != nil {
		return nil, err
	}
	iterations, err := popParamOr(params, "iterations", search.DefaultMCTSIterations)
	if err != nil {
		return nil, err
	}
	if iterations < 1 {
		return nil, errors.Errorf("iterations must be positive, got %d", iterations)
	}
	options := []search.Option{search.WithIterations(iterations)}
	if c, err := popParamOr(params, "c", -1.0); err != nil {
		return nil, err
	} else if c >= 0 {
		options = append(options, search.WithExploration(c))
	}
	return search.NewMCTS(v, options...), nil
}

// modelModule is a shortcut for a strategy driven by a learned model:
// "model:path=net.txt,strategy=twoply" equals
// "twoply:value=model,path=net.txt".
func modelModule(params map[string]string) (search.Strategy, error) {
	strategy, err := popParamOr(params, "strategy", "greedy")
	if err != nil {
		return nil, err
	}
	if strategy == "model" {
		return nil, errors.New("strategy=model would recurse")
	}
	build, ok := modules[strategy]
	if !ok {
		return nil, errors.Errorf("unknown strategy %q", strategy)
	}
	params["value"] = "model"
	return build(params)
}

// valueFromParams builds the value function named by the value parameter.
func valueFromParams(params map[string]string) (value.Function, error) {
	spec, err := popParamOr(params, "value", "way_to_go")
	if err != nil {
		return nil, err
	}

	var v value.Function
	switch spec {
	case "model":
		v, err = modelFromParams(params)
	case "rollout":
		v, err = rolloutFromParams(params)
	default:
		v, err = mixFromSpec(spec)
	}
	if err != nil {
		return nil, err
	}

	size, err := popParamOr(params, "cache", 0)
	if err != nil {
		return nil, err
	}
	if size > 0 {
		v = value.NewCached(v, size)
	}
	return v, nil
}

// mixFromSpec parses a heuristic name or a weighted sum of them such as
// "way_to_go*2+blocker".
func mixFromSpec(spec string) (value.Function, error) {
	terms := strings.Split(spec, "+")
	functions := make([]value.Function, 0, len(terms))
	weights := make([]float64, 0, len(terms))
	for _, term := range terms {
		name, weight, hasWeight := strings.Cut(term, "*")
		h, err := value.ParseHeuristic(name)
		if err != nil {
			return nil, err
		}
		w := 1.0
		if hasWeight {
			if w, err = strconv.ParseFloat(weight, 64); err != nil {
				return nil, errors.Wrapf(err, "bad weight in %q", term)
			}
		}
		functions = append(functions, h)
		weights = append(weights, w)
	}
	if len(functions) == 1 && weights[0] == 1 {
		return functions[0], nil
	}
	l, err := value.NewLinear(functions, weights)
	if err != nil {
		return nil, errors.WithMessagef(err, "value %q", spec)
	}
	return l, nil
}

func modelFromParams(params map[string]string) (value.Function, error) {
	path, err := popParamOr(params, "path", "")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, errors.New("value=model needs path=<weights file>")
	}
	ref, err := popParamOr(params, "reference", "black")
	if err != nil {
		return nil, err
	}
	side, err := engine.ParseSide(ref)
	if err != nil {
		return nil, errors.WithMessage(err, "reference")
	}

	var net value.Network
	if strings.EqualFold(filepath.Ext(path), ".json") {
		net, err = value.LoadDeepNetwork(path)
	} else {
		var nn *neuralnet.Net
		if nn, err = neuralnet.Load(path); err == nil && nn.Inputs != engine.NumFeatures {
			err = errors.Errorf("network has %d inputs, want %d", nn.Inputs, engine.NumFeatures)
		}
		net = nn
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "loading model %s", path)
	}

	m := value.NewModel(net, filepath.Base(path))
	m.Reference = side
	return m, nil
}

func rolloutFromParams(params map[string]string) (value.Function, error) {
	opts := value.DefaultRolloutOptions()
	var err error
	if opts.Trials, err = popParamOr(params, "trials", opts.Trials); err != nil {
		return nil, err
	}
	if opts.Seed, err = popParamOr(params, "seed", opts.Seed); err != nil {
		return nil, err
	}
	if opts.Workers, err = popParamOr(params, "rollout_workers", opts.Workers); err != nil {
		return nil, err
	}
	return value.NewRollout(opts), nil
}
