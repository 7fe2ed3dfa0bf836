// Package main provides the game server binary: it loads content, builds
// the world simulation, and serves the websocket gateway.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/seiyria/landoftherair/internal/config"
	"github.com/seiyria/landoftherair/internal/game/dice"
	"github.com/seiyria/landoftherair/internal/game/effect"
	"github.com/seiyria/landoftherair/internal/game/item"
	"github.com/seiyria/landoftherair/internal/game/npc"
	"github.com/seiyria/landoftherair/internal/game/party"
	"github.com/seiyria/landoftherair/internal/game/session"
	"github.com/seiyria/landoftherair/internal/game/world"
	"github.com/seiyria/landoftherair/internal/gameserver"
	"github.com/seiyria/landoftherair/internal/gateway"
	"github.com/seiyria/landoftherair/internal/observability"
	"github.com/seiyria/landoftherair/internal/scripting"
	"github.com/seiyria/landoftherair/internal/server"
	"github.com/seiyria/landoftherair/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	contentDir := cfg.Content.Dir
	rnd := dice.NewSource()

	logger.Info("starting game server",
		zap.String("gateway_addr", cfg.Gateway.Addr()),
		zap.String("content_dir", contentDir),
	)

	// Load world maps.
	mapStart := time.Now()
	maps, err := world.LoadMapsFromDir(filepath.Join(contentDir, "maps"))
	if err != nil {
		logger.Fatal("loading maps", zap.Error(err))
	}
	worldMgr, err := world.NewManager(maps)
	if err != nil {
		logger.Fatal("creating world manager", zap.Error(err))
	}
	if err := worldMgr.ValidateTeleports(); err != nil {
		logger.Fatal("validating teleports", zap.Error(err))
	}
	logger.Info("world loaded",
		zap.Int("maps", worldMgr.MapCount()),
		zap.Duration("elapsed", time.Since(mapStart)),
	)

	// Load item, effect, and NPC content.
	items, err := item.LoadItems(filepath.Join(contentDir, "items"))
	if err != nil {
		logger.Fatal("loading items", zap.Error(err))
	}
	logger.Info("loaded item definitions", zap.Int("count", items.Count()))

	effects, err := effect.LoadDirectory(filepath.Join(contentDir, "effects"))
	if err != nil {
		logger.Fatal("loading effects", zap.Error(err))
	}

	templates, err := npc.LoadTemplates(filepath.Join(contentDir, "npcs"))
	if err != nil {
		logger.Fatal("loading npc templates", zap.Error(err))
	}
	logger.Info("loaded npc templates", zap.Int("count", len(templates)))

	// Connect to PostgreSQL for account and player persistence.
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	accountRepo := postgres.NewAccountRepository(pool.DB())
	playerRepo := postgres.NewPlayerRepository(pool.DB())

	// Initialise scripting: one global VM plus a VM per map that ships
	// scripts.
	scriptStart := time.Now()
	roller := dice.NewRoller(rnd, logger)
	scriptMgr := scripting.NewManager(roller, logger)
	instLimit := cfg.Simulation.ScriptInstructionLimit

	globalScriptDir := filepath.Join(contentDir, "scripts", "global")
	if info, statErr := os.Stat(globalScriptDir); statErr == nil && info.IsDir() {
		if err := scriptMgr.LoadGlobal(globalScriptDir, instLimit); err != nil {
			logger.Fatal("loading global scripts", zap.Error(err))
		}
	}
	for _, mp := range worldMgr.AllMaps() {
		mapScriptDir := filepath.Join(contentDir, "scripts", "maps", mp.Name)
		info, statErr := os.Stat(mapScriptDir)
		if statErr != nil || !info.IsDir() {
			continue
		}
		if err := scriptMgr.LoadMap(mp.Name, mapScriptDir, instLimit); err != nil {
			logger.Fatal("loading map scripts",
				zap.String("map", mp.Name), zap.Error(err))
		}
		logger.Info("map scripts loaded", zap.String("map", mp.Name))
	}
	logger.Info("scripting engine initialized",
		zap.Duration("elapsed", time.Since(scriptStart)))

	sessions := session.NewManager()
	parties := party.NewManager()

	sim := gameserver.NewWorld(gameserver.WorldConfig{
		Maps:      worldMgr,
		Items:     items,
		Effects:   effects,
		Templates: templates,
		Sessions:  sessions,
		Scripts:   scriptMgr,
		Store:     playerRepo,
		Parties:   parties,
		Sim:       cfg.Simulation,
		Rand:      rnd,
		Log:       logger,
	})

	gw := gateway.NewServer(cfg.Gateway, accountRepo, playerRepo, sim, sessions, logger)
	sim.SetSink(gw)

	runner := server.NewRunner(logger)
	runner.Add("world", sim)
	runner.Add("gateway", gw)

	logger.Info("game server initialized",
		zap.Duration("startup", time.Since(start)),
	)

	if err := runner.Run(ctx); err != nil {
		logger.Fatal("server terminated", zap.Error(err))
	}
}
