// Command logctl is the administrative trigger for the logging core: it
// flushes the buffers or runs lifecycle maintenance once, then exits. Meant
// to be driven by cron or an operator, not by trading code.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/rxtech-lab/tradelog/internal/config"
	"github.com/rxtech-lab/tradelog/internal/logger"
	"github.com/rxtech-lab/tradelog/internal/tradelog"
	"github.com/urfave/cli/v3"
)

func buildLogger(configPath string) (*tradelog.TradingLogger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	zapLogger, err := logger.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return tradelog.New(cfg, zapLogger)
}

func flushAction(ctx context.Context, cmd *cli.Command) error {
	tl, err := buildLogger(cmd.String("config"))
	if err != nil {
		return err
	}
	defer tl.Close()

	if err := tl.FlushAll(); err != nil {
		return fmt.Errorf("flush failed: %w", err)
	}

	log.Println("Flush completed successfully.")

	return nil
}

func lifecycleAction(ctx context.Context, cmd *cli.Command) error {
	tl, err := buildLogger(cmd.String("config"))
	if err != nil {
		return err
	}
	defer tl.Close()

	report := tl.RunLifecycle(ctx)

	for _, pass := range report.Passes {
		log.Printf("Pass %s: processed %d, failures %d", pass.Pass, pass.Processed, len(pass.Failures))

		for _, failure := range pass.Failures {
			log.Printf("  failure: %s", failure)
		}
	}

	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:     "config",
		Aliases:  []string{"c"},
		Usage:    "Path to the YAML configuration file",
		Required: true,
	}

	cmd := &cli.Command{
		Name:  "logctl",
		Usage: "Administrative operations for the tiered trade log store",
		Commands: []*cli.Command{
			{
				Name:   "flush",
				Usage:  "Flush both tier buffers once",
				Flags:  []cli.Flag{configFlag},
				Action: flushAction,
			},
			{
				Name:   "lifecycle",
				Usage:  "Run all lifecycle maintenance passes once",
				Flags:  []cli.Flag{configFlag},
				Action: lifecycleAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
