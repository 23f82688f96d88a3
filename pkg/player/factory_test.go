package player

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/yourusername/bgsearch/internal/neuralnet"
	"github.com/yourusername/bgsearch/pkg/engine"
	"github.com/yourusername/bgsearch/pkg/search"
	"github.com/yourusername/bgsearch/pkg/value"
)

func TestNewStrategyNames(t *testing.T) {
	tests := []struct {
		config string
		name   string
	}{
		{"", "Greedy [way_to_go]"},
		{"random", "Random"},
		{"greedy:value=blocker", "Greedy [blocker]"},
		{"twoply:value=singleton", "TwoPly [singleton]"},
		{"threeply", "ThreePly [way_to_go]"},
		{"expectiminimax:depth=3,value=single_to_go", "Expectiminimax(3) [single_to_go]"},
		{"mcts:iterations=10", "MCTS [way_to_go]"},
		{"Greedy:value=way_to_go*2+blocker", "Greedy [linear(way_to_go*2,blocker*1)]"},
	}
	for _, tt := range tests {
		t.Run(tt.config, func(t *testing.T) {
			s, err := NewStrategy(tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.name, s.Name())
		})
	}
}

func TestNewStrategyParameters(t *testing.T) {
	s, err := NewStrategy("mcts:iterations=123,c=0.5,value=blocker")
	require.NoError(t, err)
	require.IsType(t, &search.MCTS{}, s)
	assert.Equal(t, 123, s.(*search.MCTS).Iterations())

	s, err = NewStrategy("twoply:workers=4,cache=1024")
	require.NoError(t, err)
	l := s.(*search.Lookahead)
	assert.Equal(t, 4, l.Workers)
	assert.Equal(t, 1, l.Depth)
	assert.IsType(t, &value.Cached{}, l.Value)

	s, err = NewStrategy("greedy:value=rollout,trials=8,seed=3")
	require.NoError(t, err)
	assert.Equal(t, "Greedy [rollout(8)]", s.Name())
}

func TestNewStrategyErrors(t *testing.T) {
	for _, config := range []string{
		"alphabeta",
		"greedy:value=pip_race",
		"greedy:value=way_to_go*x",
		"greedy:depth=2",
		"expectiminimax:depth=-1",
		"expectiminimax:depth=two",
		"mcts:iterations=0",
		"greedy:value=model",
		"greedy:value=model,path=/nonexistent/net.txt",
		"model:path=x.txt,strategy=model",
		"model:path=x.txt,strategy=minimax",
		"greedy:value=model,path=x.txt,reference=red",
	} {
		_, err := NewStrategy(config)
		assert.Error(t, err, config)
	}
}

func TestModelPlayers(t *testing.T) {
	dir := t.TempDir()
	nn, err := neuralnet.NewRandom(neuralnet.DefaultInputs, 8, 0.5, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	textPath := filepath.Join(dir, "net.txt")
	require.NoError(t, nn.Save(textPath))
	deepNet, err := value.DeepFromNet(nn)
	require.NoError(t, err)
	jsonPath := filepath.Join(dir, "net.json")
	require.NoError(t, deepNet.Save(jsonPath))

	st := engine.StartingPosition()
	actions := engine.LegalMoves(st, engine.Roll{D1: 3, D2: 1}, engine.Black)

	var choices []engine.Action
	for _, config := range []string{
		"greedy:value=model,path=" + textPath,
		"model:path=" + jsonPath,
		"model:path=" + textPath + ",reference=white",
	} {
		p, err := New(engine.Black, config, rand.New(rand.NewSource(1)))
		require.NoError(t, err, config)
		a, ok := p.Action(st, actions)
		require.True(t, ok)
		choices = append(choices, a)
	}
	// The go-deep copy computes the same function as the original net
	assert.Equal(t, choices[0], choices[1])
	assert.Contains(t, actions, choices[2])
}

func TestModelRejectsWrongInputSize(t *testing.T) {
	nn, err := neuralnet.New(10, 4)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "small.txt")
	require.NoError(t, nn.Save(path))

	for _, config := range []string{
		"greedy:value=model,path=" + path,
		"model:path=" + path + ",strategy=mcts",
	} {
		_, err := NewStrategy(config)
		require.ErrorContains(t, err, "10 inputs", config)
	}
}

func TestSplitConfigString(t *testing.T) {
	assert.Equal(t, map[string]string{"a": "1", "b": "", "c": "x=y"}, splitConfigString(" a=1, B ,c=x=y,,"))
	assert.Empty(t, splitConfigString(""))
}

func TestConfigParam(t *testing.T) {
	v, ok := ConfigParam("model:Path=net.txt,strategy=twoply", "path")
	require.True(t, ok)
	require.Equal(t, "net.txt", v)

	_, ok = ConfigParam("greedy", "path")
	require.False(t, ok)
}

func TestWithParam(t *testing.T) {
	assert.Equal(t, "model:path=/models/net.txt,strategy=twoply",
		WithParam("model:PATH=net.txt,strategy=twoply", "path", "/models/net.txt"))
	assert.Equal(t, "greedy:value=model,path=a.txt", WithParam("greedy:value=model", "path", "a.txt"))
	assert.Equal(t, "random:seed=3", WithParam("random", "seed", "3"))
}

func TestPopParamOr(t *testing.T) {
	params := map[string]string{"n": "7", "f": "0.25", "s": "abc", "bad": "x"}

	n, err := popParamOr(params, "n", 1)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	f, err := popParamOr(params, "f", 1.0)
	require.NoError(t, err)
	assert.Equal(t, 0.25, f)

	s, err := popParamOr(params, "s", "")
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	missing, err := popParamOr(params, "missing", uint64(9))
	require.NoError(t, err)
	assert.Equal(t, uint64(9), missing)

	_, err = popParamOr(params, "bad", 0)
	assert.Error(t, err)
	assert.Empty(t, params)
}

func TestModules(t *testing.T) {
	assert.Equal(t, []string{"expectiminimax", "greedy", "mcts", "model", "random", "threeply", "twoply"}, Modules())
}
