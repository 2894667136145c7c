// Command evg builds, stores, visualizes and exports event graphs from KNP
// analysis output.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kotonoha-nlp/eventgraph"
	"github.com/kotonoha-nlp/eventgraph/knp"
	"github.com/kotonoha-nlp/eventgraph/report"
	"github.com/kotonoha-nlp/eventgraph/store"
	"github.com/kotonoha-nlp/eventgraph/viz"
)

var (
	flagConfig  string
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "evg",
		Short:         "Convert KNP analyses into event graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if flagVerbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "print debug information")

	root.AddCommand(buildCmd(), visualizeCmd(), exportCmd(), listCmd(), searchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "evg:", err)
		os.Exit(1)
	}
}

func loadConfig() (eventgraph.Config, error) {
	if flagConfig == "" {
		return eventgraph.DefaultConfig(), nil
	}
	return eventgraph.LoadConfig(flagConfig)
}

func buildCmd() *cobra.Command {
	var (
		output   string
		saveName string
	)
	cmd := &cobra.Command{
		Use:   "build [KNP-FILE]",
		Short: "Build an event graph from KNP output (stdin if no file)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var analyses []*knp.Sentence
			if len(args) == 1 {
				analyses, err = knp.ReadFile(args[0])
			} else {
				analyses, err = knp.ReadAll(os.Stdin)
			}
			if err != nil {
				return err
			}

			g, err := eventgraph.Build(analyses, eventgraph.WithConfig(cfg))
			if err != nil {
				return err
			}

			if saveName != "" {
				s, err := store.New(cfg.DBFilePath())
				if err != nil {
					return err
				}
				defer s.Close()
				id, err := s.SaveGraph(context.Background(), saveName, g)
				if err != nil {
					return err
				}
				slog.Info("stored event graph", "name", saveName, "document_id", id)
			}

			if output != "" {
				return g.SaveFile(output)
			}
			return g.Save(os.Stdout)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "path to the output JSON file (default stdout)")
	cmd.Flags().StringVar(&saveName, "store", "", "also store the graph under this document name")
	return cmd
}

func visualizeCmd() *cobra.Command {
	var opts viz.Options
	cmd := &cobra.Command{
		Use:   "visualize IN OUT",
		Short: "Render a saved event graph as a Graphviz DOT file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := eventgraph.LoadFile(args[0])
			if err != nil {
				return err
			}
			return viz.WriteFile(args[1], g, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.ExcludeDetail, "exclude-detail", false, "exclude detail information of events")
	cmd.Flags().BoolVar(&opts.ExcludeOriginalText, "exclude-original-text", false, "exclude original texts")
	return cmd
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export IN OUT",
		Short: "Export a saved event graph as an Excel workbook",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := eventgraph.LoadFile(args[0])
			if err != nil {
				return err
			}
			return report.Write(args[1], g)
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored event graph documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := store.New(cfg.DBFilePath())
			if err != nil {
				return err
			}
			defer s.Close()

			docs, err := s.ListDocuments(context.Background())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSENTENCES\tEVENTS\tUPDATED")
			for _, doc := range docs {
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", doc.Name, doc.SentenceCount, doc.EventCount, doc.UpdatedAt)
			}
			return w.Flush()
		},
	}
}

func searchCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Full-text search over stored event surfaces",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := store.New(cfg.DBFilePath())
			if err != nil {
				return err
			}
			defer s.Close()

			results, err := s.SearchEvents(context.Background(), args[0], limit)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Printf("%s\t#%d\t%s\n", r.DocumentName, r.EventID, r.Surf)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of results")
	return cmd
}
