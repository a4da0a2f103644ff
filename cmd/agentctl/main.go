package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/manikanta7cheruku/agent-fetch/internal/dashboard"
)

const defaultBaseURL = "http://localhost:8000/api"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	baseURL := os.Getenv("AGENT_FETCH_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	board := dashboard.New(dashboard.NewClient(baseURL, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "weather":
		err = runLookup(ctx, board, dashboard.ModeWeather, os.Args[2:])
	case "crypto":
		err = runLookup(ctx, board, dashboard.ModeCrypto, os.Args[2:])
	case "chat":
		err = runChat(ctx, board, os.Args[2:])
	case "history":
		err = runHistory(ctx, board, os.Args[2:])
	case "schedules":
		err = runSchedules(ctx, board, os.Args[2:])
	case "alerts":
		err = runAlerts(ctx, dashboard.NewClient(baseURL, nil), os.Args[2:])
	case "panel":
		err = runPanel(ctx, board)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: agentctl <command> [flags]

commands:
  weather   -city <name> [-raw]     look up current weather
  crypto    -coin <id> [-raw]       look up a coin's USD price
  chat      -m <message>            ask the agent a question
  history   [-limit n]              show the server's recent activity
  schedules <list|create|toggle|delete> [flags]
  alerts    <list|create|toggle|delete> [flags]
  panel                             open the automation panel view

AGENT_FETCH_URL overrides the backend base URL (default `+defaultBaseURL+`)`)
}

func runLookup(ctx context.Context, board *dashboard.Dashboard, mode dashboard.Mode, args []string) error {
	fs := flag.NewFlagSet(mode.String(), flag.ExitOnError)
	city := fs.String("city", "", "city name")
	coin := fs.String("coin", "", "coin id (e.g. bitcoin)")
	raw := fs.Bool("raw", false, "print the provider's raw payload")
	fs.Parse(args)

	input := *city
	if mode == dashboard.ModeCrypto {
		input = *coin
	}

	board.SetMode(mode)
	if err := board.SubmitLookup(ctx, input); err != nil {
		return err
	}

	view := board.Lookup()
	if view.Reading == nil {
		return fmt.Errorf("no result")
	}
	fmt.Println(view.Reading.Summary())

	if series, ok := board.CurrentChart(); ok {
		for i := range series.Labels {
			fmt.Printf("  %s  %.2f\n", series.Labels[i], series.Values[i])
		}
	}
	if *raw && len(view.Raw) > 0 {
		fmt.Println(string(view.Raw))
	}
	return nil
}

func runChat(ctx context.Context, board *dashboard.Dashboard, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	message := fs.String("m", "", "message for the agent")
	fs.Parse(args)

	if err := board.SubmitChat(ctx, *message); err != nil {
		return err
	}
	view := board.Chat()
	if view.Exchange == nil {
		return fmt.Errorf("no answer")
	}
	fmt.Println(view.Exchange.Answer)
	return nil
}

func runHistory(ctx context.Context, board *dashboard.Dashboard, args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", dashboard.DefaultHistoryLimit, "max entries to fetch")
	fs.Parse(args)

	if err := board.LoadHistoryFeed(ctx, *limit); err != nil {
		return err
	}
	for _, item := range board.History().Items {
		fmt.Printf("%s  [%s]  %s\n", item.Timestamp, item.Kind, item.Query)
	}
	return nil
}

func runSchedules(ctx context.Context, board *dashboard.Dashboard, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("schedules needs a subcommand: list, create, toggle or delete")
	}

	switch args[0] {
	case "list":
		if err := board.RefreshSchedules(ctx); err != nil {
			return err
		}
		printSchedules(board.Schedules().Items)
		return nil

	case "create":
		fs := flag.NewFlagSet("schedules create", flag.ExitOnError)
		name := fs.String("name", "", "schedule name")
		at := fs.String("at", "", "time of day, HH:MM in IST")
		city := fs.String("city", "", "city to check")
		coin := fs.String("coin", "", "coin to check")
		fs.Parse(args[1:])

		if err := board.CreateSchedule(ctx, *name, *at, *city, *coin); err != nil {
			return err
		}
		printSchedules(board.Schedules().Items)
		return nil

	case "toggle":
		fs := flag.NewFlagSet("schedules toggle", flag.ExitOnError)
		id := fs.String("id", "", "schedule id")
		enabled := fs.Bool("enabled", true, "target enabled state")
		fs.Parse(args[1:])

		return board.SetScheduleEnabled(ctx, *id, *enabled)

	case "delete":
		fs := flag.NewFlagSet("schedules delete", flag.ExitOnError)
		id := fs.String("id", "", "schedule id")
		fs.Parse(args[1:])

		return board.DeleteSchedule(ctx, *id)

	default:
		return fmt.Errorf("unknown schedules subcommand %q", args[0])
	}
}

func runAlerts(ctx context.Context, client *dashboard.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("alerts needs a subcommand: list, create, toggle or delete")
	}

	switch args[0] {
	case "list":
		items, err := client.ListAlerts(ctx)
		if err != nil {
			return err
		}
		printAlerts(items)
		return nil

	case "create":
		fs := flag.NewFlagSet("alerts create", flag.ExitOnError)
		name := fs.String("name", "", "alert name")
		typ := fs.String("type", "crypto_change", "crypto_change or weather_temp")
		op := fs.String("op", ">", "comparison operator, > or <")
		threshold := fs.Float64("threshold", 0, "threshold value")
		city := fs.String("city", "", "city for weather_temp alerts")
		coin := fs.String("coin", "", "coin for crypto_change alerts")
		fs.Parse(args[1:])

		draft := dashboard.AlertDraft{Name: *name, Type: *typ, Operator: *op, Threshold: *threshold}
		if *city != "" {
			draft.City = city
		}
		if *coin != "" {
			draft.Coin = coin
		}

		alert, err := client.CreateAlert(ctx, draft)
		if err != nil {
			return err
		}
		printAlerts([]dashboard.Alert{alert})
		return nil

	case "toggle":
		fs := flag.NewFlagSet("alerts toggle", flag.ExitOnError)
		id := fs.String("id", "", "alert id")
		enabled := fs.Bool("enabled", true, "target enabled state")
		fs.Parse(args[1:])

		_, err := client.SetAlertEnabled(ctx, *id, *enabled)
		return err

	case "delete":
		fs := flag.NewFlagSet("alerts delete", flag.ExitOnError)
		id := fs.String("id", "", "alert id")
		fs.Parse(args[1:])

		return client.DeleteAlert(ctx, *id)

	default:
		return fmt.Errorf("unknown alerts subcommand %q", args[0])
	}
}

func printAlerts(items []dashboard.Alert) {
	for _, a := range items {
		state := "off"
		if a.Enabled {
			state = "on"
		}
		target := a.City
		if a.Coin != "" {
			target = a.Coin
		}
		fmt.Printf("  %s  %-20s %s %s %s %.2f (%s)\n", a.ID, a.Name, target, a.Type, a.Operator, a.Threshold, state)
		if a.LastStatus != "" {
			fmt.Printf("      last: %s\n", a.LastStatus)
		}
	}
}

func runPanel(ctx context.Context, board *dashboard.Dashboard) error {
	board.OpenAutomationPanel(ctx)

	fmt.Println("Schedules:")
	visible := board.VisibleSchedules()
	if len(visible) == 0 {
		fmt.Println("  (none)")
	}
	printSchedules(visible)

	fmt.Println("Recent activity:")
	feed := board.History()
	if feed.Err != nil {
		return feed.Err
	}
	for _, item := range feed.Items {
		fmt.Printf("  %s  [%s]  %s\n", item.Timestamp, item.Kind, item.Query)
	}
	return nil
}

func printSchedules(items []dashboard.Schedule) {
	for _, s := range items {
		state := "off"
		if s.Enabled {
			state = "on"
		}
		target := s.City
		if s.Coin != "" {
			if target != "" {
				target += ", "
			}
			target += s.Coin
		}
		fmt.Printf("  %s  %-20s %s @ %s IST (%s)\n", s.ID, s.Name, target, s.TimeOfDay, state)
	}
}
