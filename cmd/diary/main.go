package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pbaille/diary/internal/api"
	"github.com/pbaille/diary/internal/config"
	"github.com/pbaille/diary/internal/diary"
	"github.com/pbaille/diary/internal/logging"
	"github.com/pbaille/diary/internal/metrics"
	"github.com/pbaille/diary/internal/register"
	"github.com/pbaille/diary/internal/seed"
	"github.com/pbaille/diary/internal/store"
)

var (
	configPath string
	corpusPath string

	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "diary",
		Short:         "Index and query a corpus of diary entries",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVar(&corpusPath, "corpus", "", "YAML corpus to load (default: built-in sample)")

	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(authorsCmd())
	rootCmd.AddCommand(entriesCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

type app struct {
	cfg      config.Config
	log      zerolog.Logger
	registry *prometheus.Registry
	svc      *diary.Service
}

// loadService builds the corpus from config and the seed file.
func loadService() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if corpusPath != "" {
		cfg.Seed.Path = corpusPath
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc, err := diary.New(diary.Options{
		MaxWordsPerPage: cfg.Diary.MaxWordsPerPage,
		SearchLimit:     cfg.Diary.SearchLimit,
		CacheSize:       cfg.Diary.CacheSize,
		Logger:          log,
		Metrics:         metrics.New(reg),
	})
	if err != nil {
		return nil, err
	}

	corpus, err := seed.Load(cfg.Seed.Path)
	if err != nil {
		return nil, err
	}
	if err := corpus.Apply(svc); err != nil {
		return nil, err
	}
	log.Debug().Int("authors", len(corpus.Authors)).Str("corpus", cfg.Seed.Path).Msg("corpus loaded")

	return &app{cfg: cfg, log: log, registry: reg, svc: svc}, nil
}

func searchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search [word]",
		Short: "Find entries containing a word, most prolific authors first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadService()
			if err != nil {
				return err
			}

			res, err := a.svc.Search(diary.Query{Kind: diary.KindWord, Word: args[0], Limit: limit})
			if err != nil {
				return err
			}
			byWord := res.(diary.ByWord)

			if len(byWord.Entries) == 0 {
				fmt.Println("No matching entries found.")
				return nil
			}

			for _, e := range byWord.Entries {
				fmt.Printf("%s  %s  %s\n",
					cyan(e.Author), bold(e.Title), gray(fmt.Sprintf("(%d×)", e.WordCount.Get(args[0]))))
				pages, err := a.svc.PagesContaining(diary.EntryRef{Author: e.Author, Title: e.Title}, args[0])
				if err != nil {
					return err
				}
				for _, p := range pages {
					fmt.Printf("    %d. %s: %s\n", p.Number, p.Title, truncate(p.Text, 60))
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of entries (default from config)")
	return cmd
}

func authorsCmd() *cobra.Command {
	var first, last, nick string
	var prefix bool

	cmd := &cobra.Command{
		Use:   "authors",
		Short: "List authors, optionally filtered by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadService()
			if err != nil {
				return err
			}

			authors := a.svc.Authors()
			if first != "" || last != "" || nick != "" {
				authors, err = a.svc.FindAuthors(diary.AuthorQuery{
					First: first, Last: last, Nickname: nick,
					FirstPrefix: prefix, LastPrefix: prefix, NickPrefix: prefix,
				})
				if err != nil {
					return err
				}
			}

			if len(authors) == 0 {
				fmt.Println("No authors found.")
				return nil
			}

			for _, au := range authors {
				fmt.Printf("%s  %s\n", cyan(au.DisplayName), gray(fmt.Sprintf("%d entries, %d words", au.Entries, au.WordCount.Total())))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&first, "first", "", "first name")
	cmd.Flags().StringVar(&last, "last", "", "last name")
	cmd.Flags().StringVar(&nick, "nickname", "", "nickname")
	cmd.Flags().BoolVarP(&prefix, "prefix", "p", false, "match name prefixes")
	return cmd
}

func entriesCmd() *cobra.Command {
	var author, created, changed, from, to string

	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List entries by author or by date",
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := entriesQuery(author, created, changed, from, to)
			if err != nil {
				return err
			}

			a, err := loadService()
			if err != nil {
				return err
			}

			res, err := a.svc.Search(q)
			if err != nil {
				return err
			}

			switch r := res.(type) {
			case diary.ByAuthor:
				printEntries(r.Entries)
			case diary.ByDateRange:
				printGroups(r.Groups)
			case diary.ByCreatedDate:
				printGroups(r.Groups)
			case diary.ByChangedDate:
				printGroups(r.Groups)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "author display name")
	cmd.Flags().StringVar(&created, "created", "", "entries created on date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&changed, "changed", "", "entries changed on date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&from, "from", "", "start of date range (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end of date range (YYYY-MM-DD)")
	return cmd
}

func entriesQuery(author, created, changed, from, to string) (diary.Query, error) {
	switch {
	case author != "":
		return diary.Query{Kind: diary.KindAuthor, Author: author}, nil
	case created != "":
		d, err := register.ParseDate(created)
		return diary.Query{Kind: diary.KindCreatedDate, Date: d}, err
	case changed != "":
		d, err := register.ParseDate(changed)
		return diary.Query{Kind: diary.KindChangedDate, Date: d}, err
	case from != "" || to != "":
		if from == "" || to == "" {
			return diary.Query{}, fmt.Errorf("--from and --to must be used together")
		}
		start, err := register.ParseDate(from)
		if err != nil {
			return diary.Query{}, err
		}
		end, err := register.ParseDate(to)
		if err != nil {
			return diary.Query{}, err
		}
		return diary.Query{Kind: diary.KindDateRange, Range: register.DateRange{Start: start, End: end}}, nil
	default:
		return diary.Query{}, fmt.Errorf("one of --author, --created, --changed or --from/--to is required")
	}
}

func printEntries(entries []diary.EntryView) {
	if len(entries) == 0 {
		fmt.Println("No entries.")
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  %s  %s\n", bold(e.Title),
			gray(fmt.Sprintf("%d pages", len(e.Pages))),
			gray(e.TimeChanged.Format("2006-01-02 15:04")))
	}
}

func printGroups(groups []diary.GroupView) {
	if len(groups) == 0 {
		fmt.Println("No entries.")
		return
	}
	for _, g := range groups {
		fmt.Println(cyan(g.Author.DisplayName))
		for _, e := range g.Entries {
			fmt.Printf("  %s  %s\n", bold(e.Title), gray(e.TimeChanged.Format("2006-01-02 15:04")))
		}
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [author] [title]",
		Short: "Show an entry with its pages",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadService()
			if err != nil {
				return err
			}

			e, err := a.svc.Entry(diary.EntryRef{Author: args[0], Title: args[1]})
			if err != nil {
				return err
			}

			fmt.Printf("Title:   %s\n", bold(e.Title))
			fmt.Printf("Author:  %s\n", cyan(e.Author))
			fmt.Printf("Created: %s\n", e.TimeCreated.Format("2006-01-02 15:04:05"))
			fmt.Printf("Changed: %s\n", e.TimeChanged.Format("2006-01-02 15:04:05"))

			for _, p := range e.Pages {
				fmt.Printf("\n%s %s\n%s\n", yellow(fmt.Sprintf("[%d]", p.Number)), bold(p.Title), p.Text)
			}

			if words := e.WordCount.Words(); len(words) > 0 {
				fmt.Printf("\nWords:\n")
				for _, w := range words {
					fmt.Printf("  %s %d\n", w, e.WordCount[w])
				}
			}
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a snapshot of the corpus to a SQLite file",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadService()
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
				return fmt.Errorf("create export dir: %w", err)
			}
			s, err := store.New(out)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := context.Background()
			if err := s.WriteSnapshot(ctx, a.svc.Snapshot()); err != nil {
				return err
			}

			authors, entries, err := s.Counts(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%s %d authors, %d entries to %s\n", green("Exported"), authors, entries, out)

			top, err := s.TopWords(ctx, 5)
			if err != nil {
				return err
			}
			for _, w := range top {
				fmt.Printf("  %s %d\n", w.Word, w.Count)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "diary.db", "output database path")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadService()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			server := api.New(a.svc, a.log, a.registry)
			return server.Run(addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (default from config)")
	return cmd
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
