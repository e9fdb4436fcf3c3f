package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/alecthomas/kong"
	"github.com/spf13/afero"

	"github.com/borgmon/review-nudger/pkg/host"
	"github.com/borgmon/review-nudger/pkg/logger"
	"github.com/borgmon/review-nudger/pkg/store"
)

const appID = "io.github.borgmon.review-nudger"

// Globals are flags shared by every command
type Globals struct {
	ConfigPath string `name:"config" help:"Read and write settings from this JSON file instead of the app preferences." type:"path" env:"NUDGER_CONFIG"`
	Debug      bool   `help:"Log at debug level and mirror logs to stderr." env:"NUDGER_DEBUG"`
	LogDir     string `help:"Directory for the rotating log file." type:"path" env:"NUDGER_LOG_DIR"`
}

var CLI struct {
	Globals

	Version kong.VersionFlag

	Run    RunCmd `cmd:"" help:"Run the tray reminder." default:"1"`
	Config struct {
		Show ConfigShowCmd `cmd:"" help:"Print the effective settings." default:"1"`
	} `cmd:"" help:"Inspect settings."`
	Decks DecksCmd `cmd:"" help:"List the decks in the collection."`
}

// RunCmd starts the tray app
type RunCmd struct {
	Tick         time.Duration `help:"How often the reminder checks whether a prompt is due." default:"15s" env:"NUDGER_TICK"`
	CancelDelay  time.Duration `help:"How long a cancelled prompt waits before asking again." default:"2m" env:"NUDGER_CANCEL_DELAY"`
	HostProcess  string        `help:"Executable name of the flashcard app, used to detect it running." default:"anki" env:"NUDGER_HOST_PROCESS"`
	Collection   string        `help:"Path to the flashcard collection database." type:"path" env:"NUDGER_COLLECTION"`
	Launch       string        `help:"Command that opens a review; {deck} and {deck_id} are replaced with the target deck." env:"NUDGER_LAUNCH"`
	ReviewWindow time.Duration `help:"A collection write this recent means the user is reviewing." default:"90s" env:"NUDGER_REVIEW_WINDOW"`
}

func (c *RunCmd) Run(g *Globals) error {
	if err := initLogging(g); err != nil {
		return err
	}
	defer logger.Close()

	a := app.NewWithID(appID)
	cfgStore := configStore(g, a)

	n, err := NewNudger(a, cfgStore, g, c)
	if err != nil {
		return err
	}
	n.Run()
	return nil
}

// ConfigShowCmd prints the settings as JSON
type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(g *Globals) error {
	if err := initLogging(g); err != nil {
		return err
	}

	var cfgStore store.ConfigStore
	if g.ConfigPath != "" {
		cfgStore = store.NewFileStore(afero.NewOsFs(), g.ConfigPath)
	} else {
		cfgStore = store.NewPrefsStore(app.NewWithID(appID))
	}

	cfg, err := cfgStore.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(cfg.ToMap())
}

// DecksCmd lists decks from the collection database
type DecksCmd struct {
	Collection string `help:"Path to the flashcard collection database." type:"existingfile" required:"" env:"NUDGER_COLLECTION"`
}

func (c *DecksCmd) Run(g *Globals) error {
	if err := initLogging(g); err != nil {
		return err
	}

	decks, err := host.NewCollection(c.Collection).Decks(context.Background())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, d := range decks {
		fmt.Fprintf(w, "%d\t%s\n", d.ID, d.Name)
	}
	return w.Flush()
}

func initLogging(g *Globals) error {
	dir := g.LogDir
	if dir == "" {
		dir = logger.DefaultDir()
	}
	if err := logger.Init(logger.Config{Debug: g.Debug, LogDir: dir}); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("review-nudger"),
		kong.Description("Tray reminder that nudges you back to your flashcard reviews"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": "v0.1.0"},
	)

	if err := ctx.Run(&CLI.Globals); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
