package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/mvens/tubefrage/internal/applog"
	"github.com/mvens/tubefrage/internal/bridge"
	"github.com/mvens/tubefrage/internal/firefox"
	"github.com/mvens/tubefrage/internal/qa"
	"github.com/mvens/tubefrage/internal/storage"
	"github.com/mvens/tubefrage/internal/tui"
	"github.com/mvens/tubefrage/internal/types"
	"github.com/mvens/tubefrage/internal/watch"
)

const defaultPort = 19292

func main() {
	// Optional .env in the working directory; absence is fine.
	godotenv.Load()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "ask":
			runAsk(os.Args[2:])
			return
		case "recents":
			runRecents(os.Args[2:])
			return
		case "profiles":
			runProfiles()
			return
		case "help", "--help", "-h":
			printHelp()
			return
		}
	}

	fs := flag.NewFlagSet("tubefrage", flag.ExitOnError)
	profileName := fs.String("profile", "", "Firefox profile name (env: TUBEFRAGE_PROFILE)")
	port := fs.Int("port", resolvePort(), "WebSocket port for the companion extension")
	chatURL := fs.String("chat-url", "", "question-answering service URL (env: TUBEFRAGE_CHAT_URL)")
	fs.Parse(os.Args[1:])

	if dir := dataDir(); dir != "" {
		if err := applog.Init(dir); err == nil {
			defer applog.Close()
		}
	}

	// The panel can run on the extension bridge alone; a missing Firefox
	// profile just disables the offline tab source.
	var profile types.Profile
	hasProfile := false
	if profiles, err := firefox.DiscoverProfiles(); err == nil && len(profiles) > 0 {
		p, err := firefox.ResolveProfile(profiles, resolveProfileName(*profileName))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		profile = p
		hasProfile = true
	} else if resolveProfileName(*profileName) != "" {
		fmt.Fprintln(os.Stderr, "Error: no usable Firefox profiles found.")
		os.Exit(1)
	}

	db := openDBOrNil()
	if db != nil {
		defer db.Close()
	}

	srv := bridge.New(*port)
	client := qa.New(resolveChatURL(*chatURL))

	model := tui.NewModel(client, srv, profile, hasProfile, db)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Print(`tubefrage — chat with the YouTube video in your active browser tab

Usage:
  tubefrage                               Start the panel (default)
    --profile <name>     Firefox profile name (env: TUBEFRAGE_PROFILE)
    --port <n>           WebSocket port for the extension (default: 19292)
    --chat-url <url>     QA service URL (default: http://localhost:5000)

  tubefrage ask [flags] "question..."     One-shot question, answer on stdout
    --video <id>         Video ID (default: taken from the active tab)
    --profile <name>     Firefox profile name
    --chat-url <url>     QA service URL

  tubefrage recents                       Videos you have asked about
    --limit <n>          Max rows (default: 20)

  tubefrage profiles                      List usable Firefox profiles

Environment:
  TUBEFRAGE_PROFILE    Default Firefox profile (overridden by --profile)
  TUBEFRAGE_CHAT_URL   QA service URL (overridden by --chat-url)
  TUBEFRAGE_PORT       Extension WebSocket port (overridden by --port)
  TUBEFRAGE_DB         Recents database path
`)
}

func runAsk(args []string) {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	videoID := fs.String("video", "", "Video ID (default: active tab)")
	profileName := fs.String("profile", "", "Firefox profile name")
	chatURL := fs.String("chat-url", "", "question-answering service URL")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: tubefrage ask [--video <id>] \"question...\"")
		os.Exit(1)
	}
	question := fs.Arg(0)

	id := *videoID
	if id == "" {
		var err error
		id, err = activeVideoID(resolveProfileName(*profileName))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	client := qa.New(resolveChatURL(*chatURL))
	answer, err := client.Ask(context.Background(), id, question)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if db := openDBOrNil(); db != nil {
		storage.TouchRecent(db, id, "")
		db.Close()
	}

	fmt.Println(answer)
}

func runRecents(args []string) {
	fs := flag.NewFlagSet("recents", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum number of rows")
	fs.Parse(args)

	dbPath, err := resolveDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	db, err := storage.OpenDB(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	recents, err := storage.ListRecents(db, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing recents: %v\n", err)
		os.Exit(1)
	}

	if len(recents) == 0 {
		fmt.Println("No videos asked about yet.")
		return
	}

	fmt.Printf("%-12s %9s  %-16s  %s\n", "VIDEO", "QUESTIONS", "LAST ASKED", "TITLE")
	for _, r := range recents {
		fmt.Printf("%-12s %9d  %-16s  %s\n",
			r.VideoID,
			r.Questions,
			r.LastAskedAt.Local().Format("2006-01-02 15:04"),
			r.Title,
		)
	}
}

func runProfiles() {
	profiles, err := firefox.DiscoverProfiles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error discovering Firefox profiles: %v\n", err)
		os.Exit(1)
	}
	if len(profiles) == 0 {
		fmt.Fprintln(os.Stderr, "No Firefox profiles found.")
		os.Exit(1)
	}

	for _, p := range profiles {
		suffix := ""
		if p.IsDefault {
			suffix = " [default]"
		}
		fmt.Printf("%s (%s)%s\n", p.Name, p.Path, suffix)
	}
}

// activeVideoID resolves the video in the active tab of the given (or
// default) Firefox profile.
func activeVideoID(profileName string) (string, error) {
	profiles, err := firefox.DiscoverProfiles()
	if err != nil {
		return "", fmt.Errorf("discover profiles: %w", err)
	}
	profile, err := firefox.ResolveProfile(profiles, profileName)
	if err != nil {
		return "", err
	}
	url, err := firefox.ActiveTabURL(profile.Path)
	if err != nil {
		return "", err
	}
	id, err := watch.VideoID(url)
	if err != nil {
		return "", fmt.Errorf("active tab is not a YouTube video (%s)", url)
	}
	return id, nil
}

func openDBOrNil() *sql.DB {
	dbPath, err := resolveDBPath()
	if err != nil {
		applog.Error("db.path", err)
		return nil
	}
	db, err := storage.OpenDB(dbPath)
	if err != nil {
		// The panel works without the recents store.
		applog.Error("db.open", err)
		return nil
	}
	return db
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "tubefrage")
}

func resolveProfileName(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("TUBEFRAGE_PROFILE")
}

func resolveChatURL(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("TUBEFRAGE_CHAT_URL"); env != "" {
		return env
	}
	return qa.DefaultBaseURL
}

func resolvePort() int {
	if env := os.Getenv("TUBEFRAGE_PORT"); env != "" {
		if p, err := strconv.Atoi(env); err == nil {
			return p
		}
	}
	return defaultPort
}

func resolveDBPath() (string, error) {
	if env := os.Getenv("TUBEFRAGE_DB"); env != "" {
		return env, nil
	}
	return storage.DefaultDBPath()
}
