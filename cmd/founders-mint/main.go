// ====================================
// File: cmd/founders-mint/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/founders-mint/internal/client"
	"github.com/rovshanmuradov/founders-mint/internal/config"
	"github.com/rovshanmuradov/founders-mint/internal/logger"
	"github.com/rovshanmuradov/founders-mint/internal/minter"
	"github.com/rovshanmuradov/founders-mint/internal/wallet"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "path to config file")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(context.Background(), cfg, log, flag.Args()); err != nil {
		log.LogError("command failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, args []string) error {
	programID, err := solana.PublicKeyFromBase58(cfg.ProgramID)
	if err != nil {
		return fmt.Errorf("invalid program_id: %w", err)
	}
	masterMint, err := solana.PublicKeyFromBase58(cfg.MasterMint)
	if err != nil {
		return fmt.Errorf("invalid master_mint: %w", err)
	}

	c := client.New(cfg.RPCList[0], programID, cfg.Retries, log.WithComponent("client"))
	opLog := log.WithOperation(args[0])

	w, err := wallet.FromFile(cfg.WalletFile)
	if err != nil {
		return fmt.Errorf("load wallet: %w", err)
	}

	switch args[0] {
	case "initialize":
		sig, err := c.Initialize(ctx, w, masterMint)
		if err != nil {
			return err
		}
		opLog.Info("initialized", zap.String("signature", sig.String()))

	case "mint", "mint-discounted":
		var sig solana.Signature
		var editionMint solana.PublicKey
		if args[0] == "mint" {
			sig, editionMint, err = c.MintEdition(ctx, w, masterMint)
		} else {
			sig, editionMint, err = c.MintDiscounted(ctx, w, masterMint)
		}
		if err != nil {
			return err
		}
		log.WithMint(editionMint.String()).Info("minted",
			zap.String("operation", args[0]),
			zap.String("signature", sig.String()))

	case "update-pricing":
		if len(args) < 3 {
			return fmt.Errorf("usage: update-pricing <standard|-> <discounted|->")
		}
		newStandard, err := parseOptionalPrice(args[1])
		if err != nil {
			return err
		}
		newDiscounted, err := parseOptionalPrice(args[2])
		if err != nil {
			return err
		}
		sig, err := c.UpdatePricing(ctx, w, newStandard, newDiscounted)
		if err != nil {
			return err
		}
		opLog.Info("pricing updated", zap.String("signature", sig.String()))

	case "withdraw":
		if len(args) < 2 {
			return fmt.Errorf("usage: withdraw <lamports>")
		}
		amount, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}
		sig, err := c.Withdraw(ctx, w, amount)
		if err != nil {
			return err
		}
		opLog.Info("withdrawn", zap.String("signature", sig.String()))

	case "show-config":
		params := minter.CollectionParams{
			NamePrefix: cfg.CollectionName,
			Symbol:     cfg.Symbol,
			URI:        cfg.MetadataURI,
			RoyaltyBps: uint16(cfg.RoyaltyBps),
		}

		var snapshot minter.Config
		var vaultBalance, authorityBalance uint64

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			snapshot, err = c.FetchConfig(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			vaultBalance, err = c.VaultBalance(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			authorityBalance, err = c.Balance(gctx, w.PublicKey)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}
		opLog.Info("minter config",
			zap.String("authority", snapshot.Authority.String()),
			zap.String("master_mint", snapshot.MasterMint.String()),
			zap.Uint64("mint_price", snapshot.MintPrice),
			zap.Uint64("discounted_price", snapshot.DiscountedPrice),
			zap.Uint64("total_minted", snapshot.TotalMinted),
			zap.String("next_edition", params.EditionName(snapshot.TotalMinted+1)),
			zap.String("symbol", params.Symbol),
			zap.String("metadata_uri", params.URI),
			zap.Uint16("royalty_bps", params.RoyaltyBps),
			zap.Uint64("vault_balance", vaultBalance),
			zap.Uint64("wallet_balance", authorityBalance))

	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func parseOptionalPrice(arg string) (*uint64, error) {
	if arg == "-" {
		return nil, nil
	}
	v, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", arg, err)
	}
	return &v, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: founders-mint [-config path] <command> [args]

commands:
  initialize                               create the config record
  mint                                     mint at the standard price
  mint-discounted                          mint at the discounted price
  update-pricing <standard|-> <discounted|->  overwrite price tiers
  withdraw <lamports>                      move funds from the vault
  show-config                              show config and balances`)
}
