package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/urfave/cli/v3"

	"github.com/JaimeStill/route-lab/pkg/routes"
)

func printRoutes(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runtime := NewRuntime(cfg)
	quiet := slog.New(slog.DiscardHandler)

	rs, summary, err := composeRoutes(cfg, runtime, quiet)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, renderTable(rs.Routes()))
	fmt.Fprintf(
		os.Stdout,
		"%d routes, %d mounts, %d modules (backend %s)\n",
		summary.Routes, summary.Mounts, summary.Modules, cfg.Router.Backend,
	)
	return nil
}

func renderTable(entries []routes.Route) string {
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		method := string(e.Method)
		if e.Kind == routes.KindMount {
			method = "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			string(e.Kind),
			method,
			e.Pattern,
			strings.Join(e.Middleware, " > "),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "KIND", "METHOD", "PATH", "MIDDLEWARE").
		Rows(rows...).
		Render()
}
