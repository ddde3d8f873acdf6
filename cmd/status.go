package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"github.com/urfave/cli/v2"
)

type hubStats struct {
	TotalShoppers     int `json:"totalShoppers"`
	ConnectedShoppers int `json:"connectedShoppers"`
	AssignedShoppers  int `json:"assignedShoppers"`
	WaitingShoppers   int `json:"waitingShoppers"`
	Representatives   int `json:"representatives"`
}

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Live terminal dashboard of queue state polled from a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: "http://127.0.0.1:3000", Usage: "base URL of the running server"},
			&cli.DurationFlag{Name: "interval", Value: time.Second, Usage: "poll interval"},
		},
		Action: func(c *cli.Context) error {
			return runStatusDashboard(c.String("addr"), c.Duration("interval"))
		},
	}
}

func runStatusDashboard(addr string, interval time.Duration) error {
	if err := ui.Init(); err != nil {
		return fmt.Errorf("initialize terminal ui: %w", err)
	}
	defer ui.Close()

	table := widgets.NewParagraph()
	table.Title = "floorqueue status"
	table.SetRect(0, 0, 50, 10)

	render := func() {
		stats, err := fetchStats(addr)
		if err != nil {
			table.Text = fmt.Sprintf("polling %s failed:\n%s", addr, err.Error())
			ui.Render(table)
			return
		}
		table.Text = fmt.Sprintf(
			"Total shoppers:      %d\nConnected shoppers:  %d\nAssigned shoppers:   %d\nWaiting shoppers:    %d\nRepresentatives:     %d\n",
			stats.TotalShoppers, stats.ConnectedShoppers, stats.AssignedShoppers, stats.WaitingShoppers, stats.Representatives,
		)
		ui.Render(table)
	}

	render()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	events := ui.PollEvents()
	for {
		select {
		case e := <-events:
			switch e.ID {
			case "q", "<C-c>":
				return nil
			}
		case <-ticker.C:
			render()
		}
	}
}

func fetchStats(addr string) (hubStats, error) {
	resp, err := http.Get(addr + "/api/admin/stats")
	if err != nil {
		return hubStats{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return hubStats{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var stats hubStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return hubStats{}, err
	}
	return stats, nil
}
