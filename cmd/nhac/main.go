package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/trmanh/nhac/internal/config"
	"github.com/trmanh/nhac/internal/nlp"
	"github.com/trmanh/nhac/internal/store"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(os.Args[2:])
	case "parse":
		err = runParse(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "search":
		err = runSearch(os.Args[2:])
	case "upcoming":
		err = runUpcoming(os.Args[2:])
	case "watch":
		err = runWatch(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "delete":
		err = runDelete(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "mcp":
		err = runMCP(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("nhac %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cmdOptions holds flags shared by every command plus the positionals.
type cmdOptions struct {
	configPath string
	dbPath     string
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// boolFlagNames are flags that take no value.
var boolFlagNames = map[string]bool{
	"--day":   true,
	"--week":  true,
	"--month": true,
}

// parseArgs splits args into flags and positionals. Flags accept both
// "--flag value" and "--flag=value".
func parseArgs(args []string) (cmdOptions, error) {
	opts := cmdOptions{
		flags:     map[string]string{},
		boolFlags: map[string]bool{},
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			opts.positional = append(opts.positional, arg)
			continue
		}

		name, value := arg, ""
		hasValue := false
		if idx := strings.Index(arg, "="); idx >= 0 {
			name, value = arg[:idx], arg[idx+1:]
			hasValue = true
		}

		if boolFlagNames[name] {
			if hasValue {
				return opts, fmt.Errorf("flag %s takes no value", name)
			}
			opts.boolFlags[name] = true
			continue
		}

		if !hasValue {
			if i+1 >= len(args) {
				return opts, fmt.Errorf("flag %s needs a value", name)
			}
			i++
			value = args[i]
		}

		switch name {
		case "--config":
			opts.configPath = value
		case "--db":
			opts.dbPath = value
		default:
			opts.flags[name] = value
		}
	}

	return opts, nil
}

// openStore resolves configuration and opens the event store.
func openStore(opts cmdOptions) (store.Store, config.ResolvedConfig, error) {
	cfg, err := config.ResolveConfig(config.ResolveOptions{
		ConfigPath: opts.configPath,
		CLIDBPath:  opts.dbPath,
		CLIPoll:    opts.flags["--poll"],
	})
	if err != nil {
		return nil, cfg, err
	}

	dbPath := cfg.DBPath.Value
	if dbPath != ":memory:" {
		dbPath = store.ExpandPath(dbPath)
	}

	s, err := store.NewStore(store.StoreConfig{DBPath: dbPath})
	if err != nil {
		return nil, cfg, fmt.Errorf("opening store: %w", err)
	}
	return s, cfg, nil
}

// referenceInstant reads the --at flag; empty means now.
func referenceInstant(opts cmdOptions) (time.Time, error) {
	at := opts.flags["--at"]
	if at == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation(nlp.TimeLayout, at, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at must look like 2025-11-03T08:00:00: %w", err)
	}
	return t, nil
}

func printUsage() {
	fmt.Printf(`nhac %s — natural-language schedule assistant

Usage:
  nhac <command> [arguments]

Commands:
  add "<sentence>"    Parse a sentence and store the event
  parse "<sentence>"  Parse a sentence without storing (dry run)
  list                List events (--day default, --week, --month, --on <date>)
  search <keyword>    Search events by title or location
  upcoming            Deliver reminders that are due right now
  watch               Poll for due reminders until interrupted
  export              Export all events (--format json|ics, --out <file>)
  update <id>         Update fields of an event
  delete <id>         Delete an event
  stats               Show store statistics
  mcp                 Serve the MCP surface over stdio
  version             Print version

Common Flags:
  --db <path>         Database path (default %s)
  --config <path>     Config file path
  --at <timestamp>    Reference instant for add/parse (2006-01-02T15:04:05)

Update Flags:
  --title <text>  --start <timestamp>  --location <text>  --reminder <minutes>

Flags:
  -h, --help          Show this help message
  -v, --version       Print version
`, version, store.DefaultDBPath)
}
