// Command bgserver runs the bgsearch HTTP and WebSocket API server.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/bgsearch/pkg/api"
	"github.com/yourusername/bgsearch/pkg/external"
	"github.com/yourusername/bgsearch/pkg/player"
)

const version = "0.1.0"

func main() {
	defaults := api.DefaultConfig()

	host := flag.String("host", defaults.Host, "Host to bind to (use 0.0.0.0 for all interfaces)")
	port := flag.Int("port", defaults.Port, "Port to listen on")
	readTimeout := flag.Duration("read-timeout", defaults.ReadTimeout, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", defaults.WriteTimeout, "HTTP write timeout (0 = none)")
	moveWorkers := flag.Int("move-workers", defaults.MaxMoveWorkers, "Max concurrent move searches")
	matchWorkers := flag.Int("match-workers", defaults.MaxMatchWorkers, "Max concurrent matches")
	maxGames := flag.Int("max-games", defaults.Limits.MaxGames, "Max games per match request")
	gameWorkers := flag.Int("game-workers", defaults.Limits.MaxWorkers, "Max concurrent games per match")
	maxIterations := flag.Int("max-iterations", defaults.Limits.MaxIterations, "Max MCTS iterations a request may ask for")
	maxDepth := flag.Int("max-depth", defaults.Limits.MaxDepth, "Max lookahead depth a request may ask for")
	maxTrials := flag.Int("max-trials", defaults.Limits.MaxTrials, "Max rollout trials a request may ask for")
	modelDir := flag.String("model-dir", "", "Directory of model files requests may name with path= (default none)")
	externalAddr := flag.String("external", "", "Also serve the external player protocol on this address, e.g. :1234")
	externalPlayer := flag.String("external-player", player.DefaultPlayerConfig, "Player configuration of external player connections")
	jsonLogs := flag.Bool("json", false, "Log JSON instead of console output")
	verbose := flag.Bool("v", false, "Debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("bgsearch API Server v%s\n", version)
		os.Exit(0)
	}

	if !*jsonLogs {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	config := defaults
	config.Host = *host
	config.Port = *port
	config.ReadTimeout = *readTimeout
	config.WriteTimeout = *writeTimeout
	config.MaxMoveWorkers = *moveWorkers
	config.MaxMatchWorkers = *matchWorkers
	config.Limits = api.Limits{
		MaxGames:      *maxGames,
		MaxWorkers:    *gameWorkers,
		MaxIterations: *maxIterations,
		MaxDepth:      *maxDepth,
		MaxTrials:     *maxTrials,
	}
	config.ModelDir = *modelDir

	if *externalAddr != "" {
		ext, err := external.NewServer(external.ServerOptions{
			Addr:          *externalAddr,
			Player:        *externalPlayer,
			PromptEnabled: true,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("invalid external player")
		}
		if err := ext.Start(); err != nil {
			log.Fatal().Err(err).Msg("external player server error")
		}
		defer ext.Stop()
	}

	server := api.NewServer(config, version)
	if err := server.ListenAndServeWithGracefulShutdown(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
