package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/cbodonnell/gameservices/client/game"
	"github.com/cbodonnell/gameservices/pkg/gameservices"
	"github.com/cbodonnell/gameservices/pkg/gameservices/firebase"
	"github.com/cbodonnell/gameservices/pkg/log"
	"github.com/cbodonnell/gameservices/pkg/version"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	logLevel := flag.String("log-level", "info", "Log level")
	debug := flag.Bool("debug", false, "draw the debug overlay")
	authURL := flag.String("auth-url", "http://localhost:8080", "auth server URL")
	apiURL := flag.String("api-url", "http://localhost:9090", "leaderboard API URL")
	credentialsFile := flag.String("credentials", "gameservices-client.db", "SQLite file for stored credentials, empty keeps them in memory")
	leaderboardID := flag.String("leaderboard", game.DefaultLeaderboardID, "leaderboard that runs are reported to")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting client version %s", version.Get())

	if v := os.Getenv("FLYWHEEL_AUTH_URL"); v != "" {
		*authURL = v
	}
	if v := os.Getenv("FLYWHEEL_API_URL"); v != "" {
		*apiURL = v
	}

	var credentials firebase.CredentialStore = firebase.NewMemoryCredentialStore()
	if *credentialsFile != "" {
		store, err := firebase.NewSQLiteCredentialStore(context.Background(), *credentialsFile)
		if err != nil {
			panic(fmt.Sprintf("Failed to open credential store: %v", err))
		}
		defer store.Close()
		credentials = store
	}

	factory := firebase.NewFactory(firebase.Options{
		AuthURL:     *authURL,
		APIURL:      *apiURL,
		Credentials: credentials,
		Logger:      logger.WithCategory("Firebase"),
	})
	defer factory.Close()

	session := gameservices.NewSession(gameservices.NewSessionOptions{
		Factory: factory,
		Logger:  logger.WithCategory("GPG"),
		OnStateChange: func(from, to gameservices.AuthState) {
			log.Info("Game services %s -> %s", from, to)
		},
	})

	g, err := game.NewGame(game.NewGameOptions{
		Debug:         *debug,
		Session:       session,
		LeaderboardID: *leaderboardID,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create game: %v", err))
	}

	ebiten.SetWindowSize(game.DefaultScreenWidth, game.DefaultScreenHeight)
	ebiten.SetWindowTitle("Flywheel")
	if err := ebiten.RunGame(g); err != nil {
		log.Error("Failed to run game: %v", err)
	}
}
