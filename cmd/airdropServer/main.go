package main

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-airdrop-go/pkg/airdrop"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/allocations"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/claimEvents"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/claimEvents/natsEventPublisher"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/config"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/logger"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/persistence"
	badgerPersistence "github.com/Layr-Labs/merkle-airdrop-go/pkg/persistence/badger"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/persistence/memory"
	redisPersistence "github.com/Layr-Labs/merkle-airdrop-go/pkg/persistence/redis"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/server"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/token"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/token/erc20Token"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/token/inMemoryToken"
	"github.com/Layr-Labs/merkle-airdrop-go/pkg/typedData"
)

const shutdownTimeout = 30 * time.Second

func main() {
	app := &cli.App{
		Name:  "airdrop-server",
		Usage: "Merkle airdrop claim server",
		Description: `Serves a one-time token airdrop committed to as a merkle root.

Each eligible account can claim its allocation exactly once by presenting
a merkle proof and an EIP-712 signature over (account, amount). Anyone may
submit the claim on the account's behalf.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   config.DefaultPort,
				Usage:   "HTTP server port",
				EnvVars: []string{config.EnvAirdropPort},
			},
			&cli.Uint64Flag{
				Name:     "chain-id",
				Aliases:  []string{"chain"},
				Usage:    fmt.Sprintf("Ethereum chain ID bound into claim signatures: %s", config.GetSupportedChainIDsString()),
				EnvVars:  []string{config.EnvAirdropChainID},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "verifying-contract",
				Usage:    "Address bound into the EIP-712 domain of claim signatures",
				EnvVars:  []string{config.EnvAirdropVerifyingContract},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "merkle-file",
				Usage:    "Output of `airdropTool make-merkle`",
				EnvVars:  []string{config.EnvAirdropMerkleFile},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "token-type",
				Usage:   "Token backend: memory or erc20",
				Value:   string(config.TokenType_Memory),
				EnvVars: []string{config.EnvAirdropTokenType},
			},
			&cli.StringFlag{
				Name:     "token-address",
				Usage:    "Airdrop token address",
				EnvVars:  []string{config.EnvAirdropTokenAddress},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "rpc-url",
				Aliases: []string{"rpc"},
				Usage:   "Ethereum RPC endpoint URL (erc20 only)",
				Value:   "http://localhost:8545",
				EnvVars: []string{config.EnvAirdropRPCURL},
			},
			&cli.StringFlag{
				Name:    "reserve-private-key",
				Usage:   "Private key of the account holding the airdrop reserve (erc20 only)",
				EnvVars: []string{config.EnvAirdropReservePrivateKey},
			},
			&cli.StringFlag{
				Name:    "reserve-funding",
				Usage:   "Base units minted into the reserve at startup (memory token only)",
				EnvVars: []string{config.EnvAirdropReserveFunding},
			},
			&cli.StringFlag{
				Name:    "persistence-type",
				Usage:   "Claim store: memory, badger or redis",
				Value:   string(config.PersistenceType_Memory),
				EnvVars: []string{config.EnvAirdropPersistenceType},
			},
			&cli.StringFlag{
				Name:    "data-path",
				Usage:   "Badger data directory",
				Value:   "./data",
				EnvVars: []string{config.EnvAirdropDataPath},
			},
			&cli.StringFlag{
				Name:    "redis-address",
				Usage:   "Redis address (host:port)",
				EnvVars: []string{config.EnvAirdropRedisAddress},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				EnvVars: []string{config.EnvAirdropRedisPassword},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number",
				EnvVars: []string{config.EnvAirdropRedisDB},
			},
			&cli.StringFlag{
				Name:    "nats-url",
				Usage:   "Publish Claimed events to this NATS server",
				EnvVars: []string{config.EnvAirdropNatsURL},
			},
			&cli.StringFlag{
				Name:    "nats-subject",
				Usage:   "NATS subject for Claimed events",
				Value:   natsEventPublisher.DefaultSubject,
				EnvVars: []string{config.EnvAirdropNatsSubject},
			},
			&cli.Float64Flag{
				Name:    "rate-limit",
				Usage:   "Claim requests per second",
				Value:   config.DefaultRateLimit,
				EnvVars: []string{config.EnvAirdropRateLimit},
			},
			&cli.IntFlag{
				Name:    "rate-burst",
				Usage:   "Claim request burst size",
				Value:   config.DefaultRateBurst,
				EnvVars: []string{config.EnvAirdropRateBurst},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvAirdropVerbose},
			},
		},
		Action: runAirdropServer,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func runAirdropServer(c *cli.Context) error {
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	cfg := parseAirdropConfig(c)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l.Sugar().Infow("Using chain", "name", cfg.ChainName, "chain_id", cfg.ChainID)

	proofs, err := allocations.ReadOutput(cfg.MerkleFile)
	if err != nil {
		return fmt.Errorf("failed to load merkle file: %w", err)
	}
	root, err := proofs.Root()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tok, err := newToken(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	store, err := newPersistence(cfg, l)
	if err != nil {
		return fmt.Errorf("failed to create persistence: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			l.Sugar().Errorw("Failed to close persistence", "error", err)
		}
	}()

	publishers := []claimEvents.IClaimEventPublisher{claimEvents.NewLogPublisher(l)}
	if cfg.NatsURL != "" {
		np, err := natsEventPublisher.NewNatsEventPublisher(&natsEventPublisher.NatsEventPublisherConfig{
			URL:     cfg.NatsURL,
			Subject: cfg.NatsSubject,
		}, l)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publishers = append(publishers, np)
	}
	defer func() {
		for _, p := range publishers {
			if err := p.Close(); err != nil {
				l.Sugar().Errorw("Failed to close event publisher", "publisher", p.Name(), "error", err)
			}
		}
	}()

	eventHandler := claimEvents.NewClaimEventHandler(l, claimEvents.DefaultChannelCapacity)
	listenerCtx, stopListener := context.WithCancel(context.Background())
	listenerDone := make(chan struct{})
	go func() {
		defer close(listenerDone)
		eventHandler.ListenToChannel(listenerCtx, eventHandler.PublishTo(listenerCtx, publishers...))
	}()

	ledger, err := airdrop.NewClaimLedger(&airdrop.ClaimLedgerConfig{
		MerkleRoot:   root,
		Domain:       typedData.NewDomain(cfg.ChainID.BigInt(), common.HexToAddress(cfg.VerifyingContract)),
		Token:        tok,
		Persistence:  store,
		EventHandler: eventHandler,
		Logger:       l,
	})
	if err != nil {
		stopListener()
		<-listenerDone
		return fmt.Errorf("failed to create claim ledger: %w", err)
	}

	srv := server.NewServer(&server.ServerConfig{
		Port:      cfg.Port,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	}, ledger, proofs, l)

	if err := srv.Start(); err != nil {
		stopListener()
		<-listenerDone
		return fmt.Errorf("failed to start server: %w", err)
	}

	l.Sugar().Infow("Airdrop server running",
		"port", cfg.Port,
		"merkle_root", proofs.MerkleRoot,
		"eligible_accounts", len(proofs.Claims),
		"total_amount", proofs.TotalAmount,
		"token", tok.Address().Hex(),
		"persistence", cfg.PersistenceType,
	)
	l.Sugar().Info("Press Ctrl+C to stop")

	<-ctx.Done()
	l.Sugar().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		l.Sugar().Errorw("HTTP server shutdown error", "error", err)
	}

	// drain queued Claimed events before the publishers close
	for len(eventHandler.EventChannel) > 0 && shutdownCtx.Err() == nil {
		time.Sleep(50 * time.Millisecond)
	}
	stopListener()
	<-listenerDone

	return nil
}

func parseAirdropConfig(c *cli.Context) *config.AirdropServerConfig {
	return &config.AirdropServerConfig{
		Port:              c.Int("port"),
		ChainID:           config.ChainId(c.Uint64("chain-id")),
		VerifyingContract: c.String("verifying-contract"),
		MerkleFile:        c.String("merkle-file"),
		TokenType:         config.TokenType(c.String("token-type")),
		TokenAddress:      c.String("token-address"),
		RpcUrl:            c.String("rpc-url"),
		ReservePrivateKey: c.String("reserve-private-key"),
		ReserveFunding:    c.String("reserve-funding"),
		PersistenceType:   config.PersistenceType(c.String("persistence-type")),
		DataPath:          c.String("data-path"),
		RedisAddress:      c.String("redis-address"),
		RedisPassword:     c.String("redis-password"),
		RedisDB:           c.Int("redis-db"),
		NatsURL:           c.String("nats-url"),
		NatsSubject:       c.String("nats-subject"),
		RateLimit:         c.Float64("rate-limit"),
		RateBurst:         c.Int("rate-burst"),
		Debug:             c.Bool("verbose"),
		Verbose:           c.Bool("verbose"),
	}
}

func newToken(ctx context.Context, cfg *config.AirdropServerConfig, l *zap.Logger) (token.IAirdropToken, error) {
	tokenAddress := common.HexToAddress(cfg.TokenAddress)

	switch cfg.TokenType {
	case config.TokenType_ERC20:
		client, err := ethclient.DialContext(ctx, cfg.RpcUrl)
		if err != nil {
			return nil, fmt.Errorf("failed to dial %s: %w", cfg.RpcUrl, err)
		}
		return erc20Token.NewERC20Token(&erc20Token.ERC20TokenConfig{
			TokenAddress: tokenAddress,
			PrivateKey:   cfg.ReservePrivateKey,
			ChainID:      cfg.ChainID.BigInt(),
		}, client, l)
	default:
		// the verifying contract holds the reserve, as it would on chain
		t := inMemoryToken.NewInMemoryToken(tokenAddress, common.HexToAddress(cfg.VerifyingContract))
		if cfg.ReserveFunding != "" {
			funding, _ := new(big.Int).SetString(cfg.ReserveFunding, 10)
			if funding.Sign() > 0 {
				if err := t.Mint(t.Reserve(), funding); err != nil {
					return nil, err
				}
			}
		}
		l.Sugar().Warnw("Using in-memory token, balances are lost on restart", "reserve", t.Reserve().Hex())
		return t, nil
	}
}

func newPersistence(cfg *config.AirdropServerConfig, l *zap.Logger) (persistence.IClaimPersistence, error) {
	switch cfg.PersistenceType {
	case config.PersistenceType_Badger:
		return badgerPersistence.NewBadgerPersistence(cfg.DataPath, l)
	case config.PersistenceType_Redis:
		return redisPersistence.NewRedisPersistence(&redisPersistence.RedisConfig{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, l)
	default:
		return memory.NewMemoryPersistence(), nil
	}
}
