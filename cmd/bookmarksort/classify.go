package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/use-agent/bookmarksort/bookmarks"
	"github.com/use-agent/bookmarksort/classify"
	"github.com/use-agent/bookmarksort/crawl"
	"github.com/use-agent/bookmarksort/engine"
	"github.com/use-agent/bookmarksort/models"
)

var (
	classifyMethod     string
	classifyCategories string
	classifyOut        string
	classifyTitle      string
)

var classifyCmd = &cobra.Command{
	Use:   "classify <bookmarks.html>",
	Short: "Classify a bookmark file offline",
	Long: `Parses an exported bookmark file, classifies every bookmark and prints a
per-category summary. With --out the result is written as a bookmark file
(or Markdown when the name ends in .md).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configFrom(cmd.Context())
		if err != nil {
			return err
		}
		method, err := classify.ParseMethod(classifyMethod)
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		parsed, err := bookmarks.ParseBytes(raw)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Parsed %d bookmarks from %s\n", len(parsed), args[0])

		// Only the live-fetch method needs an engine; skip launching a browser otherwise.
		var eng engine.Engine
		if method == classify.MethodSmartKeyword {
			var closeEngine func()
			eng, closeEngine, err = buildEngine(cfg)
			if err != nil {
				return err
			}
			defer closeEngine()
		}

		cl, err := buildClassifier(cfg, eng, nil, classifyCategories)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var result []models.Bookmark
		if method == classify.MethodSmartKeyword {
			result, err = crawlWithProgress(ctx, cmd.ErrOrStderr(), cl, parsed)
		} else {
			var out *classify.Outcome
			out, err = cl.Run(ctx, string(method), parsed, nil)
			if out != nil {
				result = out.Bookmarks
			}
		}
		if err != nil {
			return err
		}

		printSummary(cmd.OutOrStdout(), result)

		if classifyOut != "" {
			if err := writeExport(classifyOut, result, classifyTitle); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.GreenString("Wrote"), classifyOut)
		}
		return nil
	},
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyMethod, "method", "m", "keyword", "keyword, tfidf, folder, domain or smart_keyword")
	classifyCmd.Flags().StringVar(&classifyCategories, "categories", "", "YAML category table merged over the defaults")
	classifyCmd.Flags().StringVarP(&classifyOut, "out", "o", "", "write the classified bookmarks to this file")
	classifyCmd.Flags().StringVar(&classifyTitle, "title", bookmarks.DefaultTitle, "title of the exported document")
	rootCmd.AddCommand(classifyCmd)
}

// crawlWithProgress runs the live-fetch strategy, printing each progress
// line as it arrives.
func crawlWithProgress(ctx context.Context, w io.Writer, cl *classify.Classifier, in []models.Bookmark) ([]models.Bookmark, error) {
	events, err := cl.Stream(ctx, in, nil)
	if err != nil {
		return nil, err
	}
	for ev := range events {
		switch {
		case ev.Kind == crawl.EventResult:
			return ev.Result, nil
		case strings.HasPrefix(ev.Log, "success:"):
			fmt.Fprintln(w, color.GreenString(ev.Log))
		case strings.HasPrefix(ev.Log, "failed:"):
			fmt.Fprintln(w, color.RedString(ev.Log))
		default:
			fmt.Fprintln(w, color.CyanString(ev.Log))
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, context.Canceled
}

// printSummary renders a category/count table, largest categories first.
func printSummary(w io.Writer, result []models.Bookmark) {
	groups := bookmarks.GroupByCategory(result)
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].Bookmarks) > len(groups[j].Bookmarks)
	})

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Bookmarks"})
	table.SetBorder(true)
	for _, g := range groups {
		table.Append([]string{g.Category, strconv.Itoa(len(g.Bookmarks))})
	}
	table.SetFooter([]string{"Total", strconv.Itoa(len(result))})
	table.Render()
}

func writeExport(path string, result []models.Bookmark, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".md") {
		err = bookmarks.WriteMarkdown(f, result, title)
	} else {
		err = bookmarks.WriteHTML(f, result, title)
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return f.Close()
}
