package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strangerchat/backend/internal/config"
	"strangerchat/backend/internal/storage"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
)

const usage = `Usage: admin <command> [args]

Commands:
  stats [days]   print persisted daily totals, newest first (default 7)
  migrate        create or update the daily_stats table`

var errUsage = errors.New("invalid arguments")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, openStorage); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("admin command failed")
	}
}

func openStorage() (storage.Storage, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := config.SetupLogger(cfg.LogLevel, true); err != nil {
		return nil, err
	}
	if !cfg.DatabaseEnabled() {
		return nil, errors.New("DATABASE_DSN is not set")
	}
	db, err := storage.Open(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	return storage.NewStorageService(db), nil
}

func run(ctx context.Context, args []string, out io.Writer, open func() (storage.Storage, error)) error {
	if len(args) < 1 {
		return errUsage
	}

	switch args[0] {
	case "stats":
		days := 7
		if len(args) > 2 {
			return errUsage
		}
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("%w: days must be a positive integer", errUsage)
			}
			days = n
		}
		s, err := open()
		if err != nil {
			return err
		}
		return printStats(ctx, s, days, out)
	case "migrate":
		if len(args) != 1 {
			return errUsage
		}
		s, err := open()
		if err != nil {
			return err
		}
		if err := s.Migrate(); err != nil {
			return err
		}
		fmt.Fprintln(out, "daily_stats is up to date.")
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func printStats(ctx context.Context, s storage.Storage, days int, out io.Writer) error {
	rows, err := s.RecentStats(ctx, days)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No stats recorded yet.")
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Day", "Matches", "Messages", "Rotations"})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	var total [3]int64
	for _, row := range rows {
		table.Append([]string{
			row.Day.Format("2006-01-02"),
			strconv.FormatInt(row.Matches, 10),
			strconv.FormatInt(row.Messages, 10),
			strconv.FormatInt(row.Rotations, 10),
		})
		total[0] += row.Matches
		total[1] += row.Messages
		total[2] += row.Rotations
	}
	table.SetFooter([]string{
		"Total",
		strconv.FormatInt(total[0], 10),
		strconv.FormatInt(total[1], 10),
		strconv.FormatInt(total[2], 10),
	})
	table.Render()
	return nil
}
