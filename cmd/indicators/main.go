package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/rxtech-lab/argo-ta/internal/presentation"
	"github.com/rxtech-lab/argo-ta/internal/version"
	"github.com/rxtech-lab/argo-ta/internal/writer"
	"github.com/urfave/cli/v3"
)

var dateLayouts = cli.TimestampConfig{
	Layouts: []string{"2006-01-02", "2006-01-02T15:04:05Z07:00"},
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "indicators",
		Usage:   "Compute technical indicators over stored OHLCV bars",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override log.level from the config",
			},
		},
		Commands: []*cli.Command{
			computeCommand(),
			batchCommand(),
			symbolsCommand(),
			schemaCommand(),
		},
	}
}

func dataFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "data",
			Aliases:  []string{"d"},
			Usage:    "Path to a .parquet or .csv file with time, symbol, open, high, low, close, volume",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "reader",
			Usage: fmt.Sprintf("Data reader to use (%s or %s)", readerDuckDB, readerCSV),
			Value: readerDuckDB,
		},
		&cli.TimestampFlag{
			Name:   "start",
			Usage:  "First bar to load, `YYYY-MM-DD`",
			Config: dateLayouts,
		},
		&cli.TimestampFlag{
			Name:   "end",
			Usage:  "Last bar to load, `YYYY-MM-DD`",
			Config: dateLayouts,
		},
	}
}

func computeCommand() *cli.Command {
	return &cli.Command{
		Name:  "compute",
		Usage: "Compute indicators for one symbol",
		Flags: append(dataFlags(),
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"s"},
				Usage:    "Symbol to compute",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "market",
				Usage: fmt.Sprintf("Resolve the symbol for a market (%s tries .TW then .TWO, %s)", presentation.MarketTW, presentation.MarketUS),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write a .csv or .parquet file instead of JSON on stdout",
			},
			&cli.StringFlag{
				Name:  "period",
				Usage: "Keep only the display window (1mo, 2mo, 3mo, 1y, 5y)",
			},
			&cli.IntFlag{
				Name:  "tail",
				Usage: "Keep only the last N rows",
			},
			&cli.IntFlag{
				Name:  "precision",
				Usage: "Decimals kept in CSV output",
				Value: int64(writer.DefaultPrecision),
			},
		),
		Action: computeAction,
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Compute indicators for many symbols and write one file per symbol",
		Flags: append(dataFlags(),
			&cli.StringSliceFlag{
				Name:  "symbols",
				Usage: "Symbols to compute. Defaults to every symbol in the data file",
			},
			&cli.StringFlag{
				Name:     "output-dir",
				Aliases:  []string{"o"},
				Usage:    "Directory for the output files",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format (csv or parquet)",
				Value: "csv",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Symbols computed in parallel. 0 uses one per CPU",
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "Stop at the first failing symbol",
			},
			&cli.IntFlag{
				Name:  "precision",
				Usage: "Decimals kept in CSV output",
				Value: int64(writer.DefaultPrecision),
			},
		),
		Action: batchAction,
	}
}

func symbolsCommand() *cli.Command {
	return &cli.Command{
		Name:   "symbols",
		Usage:  "List the symbols in a data file",
		Flags:  dataFlags(),
		Action: symbolsAction,
	}
}

func schemaCommand() *cli.Command {
	return &cli.Command{
		Name:  "schema",
		Usage: "Print the JSON schema of the config file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the schema to a file instead of stdout",
			},
		},
		Action: schemaAction,
	}
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
