package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"meal-window-planner/internal/api"
	"meal-window-planner/internal/app"
	"meal-window-planner/internal/config"
	"meal-window-planner/internal/database"
	"meal-window-planner/internal/logger"
	"meal-window-planner/internal/meal"
	"meal-window-planner/internal/profile"
	"meal-window-planner/internal/strategy"
	"meal-window-planner/internal/window"
)

func main() {
	ctx := context.Background()

	// A missing .env file is fine; real env vars win either way.
	_ = godotenv.Load()

	logger.Init()
	defer logger.Close()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	table := strategy.Defaults()
	if cfg.StrategyTablePath != "" {
		table, err = strategy.Load(cfg.StrategyTablePath)
		if err != nil {
			log.Fatalf("Failed to load strategy table: %v", err)
		}
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	windowRepo := window.NewRepository(db.SQL)
	profileRepo := profile.NewRepository(db.SQL)
	mealRepo := meal.NewRepository(db.SQL)

	application := app.NewApp(windowRepo, profileRepo, mealRepo, table)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		runServe(application, cfg)
	case "plan":
		planCmd := flag.NewFlagSet("plan", flag.ExitOnError)
		user := planCmd.String("user", "", "User id to plan for")
		date := planCmd.String("date", time.Now().Format("2006-01-02"), "Day to plan (YYYY-MM-DD)")
		planCmd.Parse(os.Args[2:])

		day, err := time.ParseInLocation("2006-01-02", *date, time.Local)
		if err != nil {
			log.Fatalf("Invalid date: %v", err)
		}
		windows, err := application.PlanDay(ctx, *user, day, time.Now())
		if err != nil {
			log.Fatalf("Planning failed: %v", err)
		}
		printWindows(windows)
	case "first-day":
		fdCmd := flag.NewFlagSet("first-day", flag.ExitOnError)
		user := fdCmd.String("user", "", "User id that just finished onboarding")
		fdCmd.Parse(os.Args[2:])

		plan, err := application.PlanFirstDay(ctx, *user, time.Now())
		if err != nil {
			log.Fatalf("First-day planning failed: %v", err)
		}
		fmt.Printf("Windows today: %d (%.1fh remaining, %d kcal prorated)\n",
			plan.NumberOfWindows, plan.RemainingHours, plan.ProratedCalories)
		if plan.ShowTomorrowPlan {
			fmt.Printf("Too late today; tomorrow planned at %d kcal.\n", plan.NextDayCalories)
		}
	case "check":
		checkCmd := flag.NewFlagSet("check", flag.ExitOnError)
		user := checkCmd.String("user", "", "User id to check")
		date := checkCmd.String("date", time.Now().Format("2006-01-02"), "Day to check (YYYY-MM-DD)")
		checkCmd.Parse(os.Args[2:])

		day, err := time.ParseInLocation("2006-01-02", *date, time.Local)
		if err != nil {
			log.Fatalf("Invalid date: %v", err)
		}
		res, err := application.PreviewRedistribution(ctx, *user, day, time.Now())
		if err != nil {
			log.Fatalf("Redistribution check failed: %v", err)
		}
		if res == nil {
			fmt.Println("Plan still holds; nothing to redistribute.")
			return
		}
		fmt.Printf("Proposal (%s): %s\n", res.Trigger, res.Explanation)
		printWindows(res.AdjustedWindows)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServe(application *app.App, cfg *config.Config) {
	c := cron.New()
	_, err := c.AddFunc(cfg.SweepSchedule, func() {
		if err := application.RunRedistributionSweep(context.Background(), time.Now()); err != nil {
			logger.Error("redistribution sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		log.Fatalf("Invalid sweep schedule %q: %v", cfg.SweepSchedule, err)
	}
	c.Start()
	defer c.Stop()

	server := api.NewServer(application)
	logger.Info("starting server", zap.String("addr", cfg.ListenAddr))
	if err := server.Router().Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func printWindows(windows []window.MealWindow) {
	for _, w := range windows {
		marker := ""
		if w.IsAdjusted() {
			marker = " (adjusted)"
		}
		fmt.Printf("%s - %s  %-20s %5d kcal  P%d/C%d/F%d%s\n",
			w.StartTime.Format("15:04"), w.EndTime.Format("15:04"),
			w.Purpose, w.EffectiveCalories(),
			w.EffectiveMacros().ProteinG, w.EffectiveMacros().CarbsG, w.EffectiveMacros().FatG,
			marker)
	}
}

func printUsage() {
	fmt.Println("Usage: window-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  serve        Run the HTTP API and the periodic redistribution sweep")
	fmt.Println("  plan         Generate (or fetch) a user's windows for a day")
	fmt.Println("  first-day    Plan the remainder of an onboarding day")
	fmt.Println("  check        Preview a redistribution proposal for a day")
}
