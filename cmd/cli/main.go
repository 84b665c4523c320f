package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"homeledger/internal/categorize"
	"homeledger/internal/config"
	bqstore "homeledger/internal/infra/bigquery"
	"homeledger/internal/logger"
	"homeledger/internal/simplefin"
	syncsvc "homeledger/internal/sync"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "claim":
		runClaim(log)
	case "sync":
		runSync(log)
	case "categorize":
		runCategorize(log)
	case "accounts":
		runAccounts(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Home Ledger CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  claim       Exchange a SimpleFIN setup token for an access URL")
	fmt.Println("  sync        Pull balances or transactions from the SimpleFIN bridge")
	fmt.Println("  categorize  Classify uncategorized transactions")
	fmt.Println("  accounts    List cash accounts")
	fmt.Println("  help        Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func newStore(ctx context.Context, log zerolog.Logger) *bqstore.Store {
	cfg := config.Load(log)
	if cfg.GCPProject == "" {
		log.Fatal().Msg("GCP_PROJECT is required")
	}

	store, err := bqstore.NewStore(ctx, cfg.GCPProject, cfg.BQDataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create store")
	}
	return store
}

func runClaim(log zerolog.Logger) {
	fs := flag.NewFlagSet("claim", flag.ExitOnError)
	token := fs.String("token", "", "Base64 setup token from the SimpleFIN bridge")
	fs.Parse(os.Args[2:])

	if *token == "" {
		log.Fatal().Msg("Error: --token is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store := newStore(ctx, log)
	defer store.Close()

	service := syncsvc.NewService(simplefin.NewClient(), store, log)
	if err := service.Claim(ctx, *token); err != nil {
		log.Fatal().Err(err).Msg("Claim failed")
	}

	fmt.Println("SimpleFIN access URL claimed and stored.")
}

func runSync(log zerolog.Logger) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	mode := fs.String("mode", "transactions", "Sync mode: balances or transactions")
	accountID := fs.String("account", "", "SimpleFIN account id filter (optional)")
	days := fs.Int("days", 0, "Transaction lookback window in days (default 30)")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store := newStore(ctx, log)
	defer store.Close()

	service := syncsvc.NewService(simplefin.NewClient(), store, log)
	res, err := service.Run(ctx, syncsvc.Options{
		Mode:      syncsvc.Mode(*mode),
		AccountID: *accountID,
		Days:      *days,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Printf("Synced %d accounts, %d new transactions.\n", res.Accounts, res.Transactions)
	for _, warn := range res.Warnings {
		fmt.Printf("  warning: %s\n", warn)
	}
}

func runCategorize(log zerolog.Logger) {
	fs := flag.NewFlagSet("categorize", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Print the step log")
	fs.Parse(os.Args[2:])

	cfg := config.Load(log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store := newStore(ctx, log)
	defer store.Close()

	service := categorize.NewService(categorize.NewGeminiOracle(cfg.GeminiModel), store, log)
	res, err := service.Run(ctx)
	if err != nil {
		if res != nil && *verbose {
			for _, line := range res.Logs {
				fmt.Println("  " + line)
			}
		}
		log.Fatal().Err(err).Msg("Categorization failed")
	}

	if *verbose {
		for _, line := range res.Logs {
			fmt.Println("  " + line)
		}
	}
	fmt.Printf("Categorized %d transactions.\n", res.Categorized)
}

func runAccounts(log zerolog.Logger) {
	fs := flag.NewFlagSet("accounts", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store := newStore(ctx, log)
	defer store.Close()

	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list accounts")
	}

	if len(accounts) == 0 {
		fmt.Println("No accounts. Run 'cli claim' and 'cli sync' first.")
		return
	}

	for _, a := range accounts {
		status := ""
		if !a.IsActive {
			status = "  (inactive)"
		}
		fmt.Printf("%-36s  %-24s  %-6s  %12s %s%s\n",
			a.ID, a.Name, a.Owner, a.Balance.StringFixed(2), a.Currency, status)
	}
}
