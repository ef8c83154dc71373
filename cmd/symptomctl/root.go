package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mediaid/platform/pkg/analysis"
	"github.com/mediaid/platform/pkg/client"
	"github.com/mediaid/platform/pkg/common/logger"
	"github.com/mediaid/platform/pkg/symptoms"
	"github.com/mediaid/platform/pkg/terminology"
)

const envPrefix = "SYMPTOMS"

var demoTexts = []string{
	"Patient complains of severe headache and high fever",
	"Experiencing chest pain with shortness of breath",
	"I have nausea and muscle pain after exercise",
	"Feeling dizzy and very tired lately with palpitations",
	"No headache today, feeling much better",
}

type cli struct {
	v       *viper.Viper
	backend backend
}

func newRootCommand() *cobra.Command {
	c := &cli{v: viper.New()}
	var cfgFile string

	root := &cobra.Command{
		Use:          "symptomctl",
		Short:        "Detect medical symptoms in free text",
		Long:         "symptomctl runs the keyword symptom detector locally against text, the concept database and its statistics.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cfgFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml)")
	flags.String("concepts", "", "concept catalog YAML (default: built-in set)")
	flags.String("rules", "", "matching rules YAML (default: built-in rules)")
	flags.String("negation-scope", "", "negation scope: all or direct")
	flags.StringP("output", "o", "table", "output format: table or json")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("server", "", "base URL of a running symptom service; analyze locally when empty")
	flags.Duration("timeout", 10*time.Second, "request timeout in server mode")
	flags.Int("retries", 3, "attempts per request in server mode")

	c.v.BindPFlag("concepts_path", flags.Lookup("concepts"))
	c.v.BindPFlag("rules_path", flags.Lookup("rules"))
	c.v.BindPFlag("negation_scope", flags.Lookup("negation-scope"))
	c.v.BindPFlag("output", flags.Lookup("output"))
	c.v.BindPFlag("debug", flags.Lookup("debug"))
	c.v.BindPFlag("server", flags.Lookup("server"))
	c.v.BindPFlag("timeout", flags.Lookup("timeout"))
	c.v.BindPFlag("retries", flags.Lookup("retries"))

	root.AddCommand(
		c.analyzeCommand(),
		c.searchCommand(),
		c.conceptCommand(),
		c.statsCommand(),
		c.demoCommand(),
	)
	return root
}

func (c *cli) init(cfgFile string) error {
	c.v.SetEnvPrefix(envPrefix)
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	c.v.AutomaticEnv()

	if cfgFile != "" {
		c.v.SetConfigFile(cfgFile)
		if err := c.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	logger.Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.Log.SetOutput(os.Stderr)
	logger.Log.SetLevel(logrus.WarnLevel)
	if c.v.GetBool("debug") {
		logger.Log.SetLevel(logrus.DebugLevel)
	}

	switch c.v.GetString("output") {
	case "table", "json":
	default:
		return fmt.Errorf("unsupported output format %q", c.v.GetString("output"))
	}

	if server := c.v.GetString("server"); server != "" {
		c.backend = client.New(server, c.v.GetDuration("timeout"), c.v.GetInt("retries"))
		return nil
	}

	detector, err := symptoms.LoadDetector(
		c.v.GetString("concepts_path"),
		c.v.GetString("rules_path"),
		symptoms.NegationScope(c.v.GetString("negation_scope")),
	)
	if err != nil {
		return fmt.Errorf("building detector: %w", err)
	}
	svc := analysis.NewService(detector, analysis.NewValidator(c.v.GetInt("max_text_length")), analysis.Options{})
	c.backend = localBackend{svc: svc}
	return nil
}

func (c *cli) jsonOutput() bool {
	return c.v.GetString("output") == "json"
}

func (c *cli) analyzeCommand() *cobra.Command {
	var minConfidence float64

	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Detect symptoms in text (reads stdin when no text is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = string(data)
			}

			req := analysis.AnalyzeRequest{Text: &text, Source: analysis.SourceCLI}
			if cmd.Flags().Changed("min-confidence") {
				req.MinConfidence = &minConfidence
			}
			resp, err := c.backend.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}
			if c.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			return writeSymptoms(cmd.OutOrStdout(), resp.Symptoms)
		},
	}
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "drop symptoms below this confidence")
	return cmd
}

func (c *cli) searchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search concepts by name or keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.backend.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if c.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CUI\tNAME\tCATEGORY\tMATCH")
			for _, r := range resp.Results {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Category, r.MatchIn)
			}
			return tw.Flush()
		},
	}
}

func (c *cli) conceptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "concept <cui>",
		Short: "Show one concept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			concept, err := c.backend.Concept(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), concept)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s\n", concept.ID, concept.Name)
			fmt.Fprintf(out, "category:   %s\n", concept.Category)
			fmt.Fprintf(out, "confidence: %.2f\n", concept.BaseConfidence)
			fmt.Fprintf(out, "keywords:   %s\n", strings.Join(concept.Keywords, ", "))
			return nil
		},
	}
}

func (c *cli) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show concept database statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.backend.Statistics(cmd.Context())
			if err != nil {
				return err
			}
			stats := resp.Database
			if c.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "concepts:          %d\n", stats.TotalConcepts)
			fmt.Fprintf(out, "keywords:          %d\n", stats.TotalKeywords)
			fmt.Fprintf(out, "indexed keywords:  %d\n", stats.IndexedKeywords)
			fmt.Fprintf(out, "avg per concept:   %.1f\n", stats.AvgKeywordsPerConcept)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tCONCEPTS")
			for _, cat := range terminology.Categories() {
				if n := stats.Categories[cat]; n > 0 {
					fmt.Fprintf(tw, "%s\t%d\n", cat, n)
				}
			}
			return tw.Flush()
		},
	}
}

func (c *cli) demoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Analyze a fixed set of sample texts",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			results := make([]*analysis.AnalyzeResponse, 0, len(demoTexts))
			for i, text := range demoTexts {
				resp, err := c.backend.Analyze(cmd.Context(), analysis.AnalyzeRequest{Text: &text, Source: analysis.SourceCLI})
				if err != nil {
					return err
				}
				results = append(results, resp)
				if c.jsonOutput() {
					continue
				}
				fmt.Fprintf(out, "%d. %q (%d found, %.3fms)\n", i+1, text, resp.Count, resp.ProcessingTimeMs)
				if err := writeSymptoms(out, resp.Symptoms); err != nil {
					return err
				}
				fmt.Fprintln(out)
			}
			if c.jsonOutput() {
				return writeJSON(out, results)
			}
			return nil
		},
	}
}

func writeSymptoms(w io.Writer, found []symptoms.Symptom) error {
	if len(found) == 0 {
		_, err := fmt.Fprintln(w, "no symptoms detected")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CUI\tNAME\tTEXT\tSPAN\tCONFIDENCE\tSTRATEGY")
	for _, s := range found {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d-%d\t%.2f\t%s\n", s.ConceptID, s.Name, s.DetectedText, s.Start, s.End, s.Confidence, s.Strategy)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
