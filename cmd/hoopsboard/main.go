package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/abrezinsky/hoopsboard/internal/app"
	"github.com/abrezinsky/hoopsboard/internal/auth"
	"github.com/abrezinsky/hoopsboard/internal/config"
	"github.com/abrezinsky/hoopsboard/internal/logger"
	"github.com/abrezinsky/hoopsboard/pkg/nbaapi"
	"github.com/abrezinsky/hoopsboard/web"
)

var version = "dev"

var (
	accent  = color.New(color.FgHiYellow, color.Bold)
	frame   = color.New(color.FgCyan)
	good    = color.New(color.FgGreen)
	warning = color.New(color.FgYellow)
	failure = color.New(color.FgRed)
	key     = color.New(color.FgCyan, color.Bold)
)

var logo = []string{
	` _   _                       ____                      _ `,
	`| | | | ___   ___  _ __  ___| __ )  ___   __ _ _ __ __| |`,
	`| |_| |/ _ \ / _ \| '_ \/ __|  _ \ / _ \ / _' | '__/ _' |`,
	`|  _  | (_) | (_) | |_) \__ \ |_) | (_) | (_| | | | (_| |`,
	`|_| |_|\___/ \___/| .__/|___/____/ \___/ \__,_|_|  \__,_|`,
	`                  |_|                                    `,
}

// printBanner draws the logo in a box, with a small bouncing ball unless noAnimate
func printBanner(w io.Writer, noAnimate bool) {
	width := 62
	border := strings.Repeat("═", width)

	frame.Fprintf(w, "\n  ╔%s╗\n", border)
	for _, line := range logo {
		frame.Fprint(w, "  ║")
		accent.Fprintf(w, "  %-*s", width-2, line)
		frame.Fprintln(w, "║")
	}
	frame.Fprintf(w, "  ╚%s╝\n", border)
	if !noAnimate {
		bounce(w, width)
	}
	fmt.Fprintf(w, "  Leaderboard comparison and what-if simulation (%s)\n\n", version)
}

type options struct {
	cfg         *config.Config
	showVersion bool
}

// parseFlags layers command-line flags over cfg. Only flags given explicitly override.
func parseFlags(args []string, cfg *config.Config) (*options, error) {
	fs := flag.NewFlagSet("hoopsboard", flag.ContinueOnError)

	port := fs.Int("port", cfg.Port, "HTTP server port")
	dbPath := fs.String("db", cfg.DBPath, "SQLite database path")
	apiURL := fs.String("api", cfg.APIBaseURL, "Contest API base URL")
	season := fs.String("season", cfg.DefaultSeason, "Default season slug")
	baseURL := fs.String("baseurl", cfg.BaseURL, "Public URL used in share links")
	adminPw := fs.String("adminpw", cfg.AdminPassword, "Admin password (auto-generated if not set)")
	logLevel := fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	noAnimate := fs.Bool("noanimate", cfg.NoAnimate, "Skip the startup animation")
	noKeyboard := fs.Bool("nokeyboard", cfg.NoKeyboard, "Disable keyboard shortcuts")
	showVersion := fs.Bool("version", false, "Show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), `HoopsBoard - NBA prediction contest leaderboard

Usage:
  hoopsboard [options]

Configuration is read from defaults, the YAML file named by %s,
%s* environment variables and finally these flags.

Options:
`, config.EnvConfigFile, config.EnvPrefix)
		fs.PrintDefaults()
		fmt.Fprint(fs.Output(), `
Keyboard Shortcuts (when enabled):
  o              Open the leaderboard in a browser
  a              Open the admin page in a browser
  h              Toggle HTTP request logging
  l              Cycle log level (debug, info, warn, error)
  s              Show mounted pages and open sockets
  q              Quit server
  ?              Show keyboard help
`)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.Port = *port
	cfg.DBPath = *dbPath
	cfg.APIBaseURL = *apiURL
	cfg.DefaultSeason = *season
	cfg.BaseURL = *baseURL
	cfg.AdminPassword = *adminPw
	cfg.LogLevel = *logLevel
	cfg.NoAnimate = *noAnimate
	cfg.NoKeyboard = *noKeyboard

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &options{cfg: cfg, showVersion: *showVersion}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		failure.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	opts, err := parseFlags(os.Args[1:], cfg)
	if err == flag.ErrHelp {
		os.Exit(0)
	}
	if err != nil {
		failure.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.showVersion {
		fmt.Printf("hoopsboard %s\n", version)
		return
	}

	printBanner(os.Stdout, cfg.NoAnimate)

	password := cfg.AdminPassword
	if password == "" {
		password = auth.GeneratePassword()
	}
	adminAuth := auth.New(password)

	// Raw terminal mode turns off output post-processing, so log lines need explicit CRs
	var out io.Writer = os.Stdout
	if !cfg.NoKeyboard {
		out = crlfWriter{w: os.Stdout}
	}
	appLog := logger.NewWithWriter(out, logger.ParseLevel(cfg.LogLevel))

	client := nbaapi.NewHTTPClient(cfg.APIBaseURL, cfg.APITimeout, appLog)
	client.SetToken(cfg.APIToken)

	a, err := app.New(appLog, cfg, client, web.GetTemplatesFS(), web.GetStaticFS(), adminAuth)
	if err != nil {
		appLog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	addr := cfg.Addr()
	appLog.Info("Admin password", "password", password)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(addr)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.NoKeyboard {
		kb := &keyboard{
			out:            out,
			log:            appLog,
			stats:          a.Stats,
			leaderboardURL: fmt.Sprintf("http://localhost:%d/leaderboard/%s", cfg.Port, cfg.DefaultSeason),
			adminURL:       fmt.Sprintf("http://localhost:%d/admin", cfg.Port),
			quit:           stop,
		}
		kb.printHelp()
		restore, err := kb.start(ctx)
		if err != nil {
			warning.Fprintf(out, "Keyboard shortcuts unavailable: %v\n", err)
		} else {
			defer restore()
		}
	} else {
		warning.Fprintln(out, "Keyboard shortcuts disabled")
	}

	select {
	case err := <-serverErr:
		if err != nil {
			appLog.Error("Server stopped", "error", err)
		}
	case <-ctx.Done():
		good.Fprintln(out, "Shutting down server...")
	}
}
