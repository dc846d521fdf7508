package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen"
	bigscreenservice "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/application"
	bigscreenupstream "github.com/Black-And-White-Club/arcade-bigscreen/app/modules/bigscreen/infrastructure/upstream"
	"github.com/Black-And-White-Club/arcade-bigscreen/app/observability"
	"github.com/Black-And-White-Club/arcade-bigscreen/config"
	"github.com/olekukonko/tablewriter"
)

type scheduleOptions struct {
	JSON    bool
	PerPage int
	Now     time.Time
}

func runSchedule(ctx context.Context, cfg *config.Config, obs observability.Observability, opts scheduleOptions, out io.Writer) error {
	svcCfg := bigscreen.ServiceConfig(cfg)
	if opts.PerPage > 0 {
		svcCfg.CardsPerPage = opts.PerPage
	}
	if svcCfg.CardsPerPage <= 0 {
		svcCfg.CardsPerPage = bigscreenservice.DefaultConfig().CardsPerPage
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	client := bigscreenupstream.NewClient(cfg.Upstream.URL, cfg.Upstream.Timeout, obs.Logger, obs.Tracer)
	summary, err := client.FetchSummary(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch summary: %w", err)
	}

	rows := bigscreenservice.ScheduleReport(*summary, svcCfg.PriorityRules, svcCfg.CardsPerPage, now)
	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	return printSchedule(out, rows)
}

func printSchedule(out io.Writer, rows []bigscreenservice.ScheduleRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "No scores have been recorded yet.")
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Header("Page", "Slot", "Type", "Status", "Weight", "Updated", "Card")
	for _, row := range rows {
		updated := row.UpdatedAt
		if updated == "" {
			updated = "-"
		}
		err := table.Append([]string{
			strconv.Itoa(row.Page),
			strconv.Itoa(row.Slot),
			row.Type,
			row.Status,
			strconv.Itoa(row.Weight),
			updated,
			row.Eyebrow + " / " + row.Title,
		})
		if err != nil {
			return fmt.Errorf("failed to add schedule row: %w", err)
		}
	}
	return table.Render()
}
