package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vivian-xia/reviewrag/config"
	"github.com/vivian-xia/reviewrag/corpus"
	"github.com/vivian-xia/reviewrag/embedding"
	"github.com/vivian-xia/reviewrag/evaluation"
	"github.com/vivian-xia/reviewrag/experiment"
	"github.com/vivian-xia/reviewrag/generator"
	"github.com/vivian-xia/reviewrag/index"
	"github.com/vivian-xia/reviewrag/ingest"
	"github.com/vivian-xia/reviewrag/llm"
	"github.com/vivian-xia/reviewrag/pipeline"
	"github.com/vivian-xia/reviewrag/retriever"
	"github.com/vivian-xia/reviewrag/sentiment"
)

var rootCmd = &cobra.Command{
	Use:           "reviewrag",
	Short:         "Question answering and evaluation over a shampoo review corpus",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	askCmd.Flags().String("product", "", "restrict retrieval to one product title")
	askCmd.Flags().Int("top-k", 0, "number of reviews to retrieve (default from config)")
	askCmd.Flags().Bool("evaluate", false, "score the answer and append it to the evaluation log")

	experimentCmd.Flags().String("product", "", "restrict retrieval to one product title")
	experimentCmd.Flags().String("param", "", "parameter to modify (temperature, top_p, max_tokens, frequency_penalty, presence_penalty)")
	experimentCmd.Flags().Float64("value", 0, "value for the modified parameter")
	experimentCmd.Flags().String("export", "", "write the comparison to this CSV file")
	_ = experimentCmd.MarkFlagRequired("param")
	_ = experimentCmd.MarkFlagRequired("value")

	rootCmd.AddCommand(ingestCmd, productsCmd, askCmd, experimentCmd, exportCmd)
}

// deps is everything a command can need, built once per invocation.
type deps struct {
	cfg       *config.Config
	corpus    *corpus.Corpus
	engine    *pipeline.Engine
	runner    *experiment.Runner
	retriever *retriever.ReviewRetriever
}

func buildDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	c, err := corpus.NewLoader().Load(cfg.CorpusPath)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}

	idx, err := index.LoadFlatIndex(cfg.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("loading index (run `reviewrag ingest` first): %w", err)
	}

	embed := embedding.NewOpenAIEmbedding(cfg.APIKey, cfg.EmbeddingModel, embedding.WithLogger(logger))
	model := llm.NewOpenAILLM("", cfg.ChatModel, cfg.APIKey, llm.WithLogger(logger))

	ret, err := retriever.New(c, idx, embed, retriever.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	annotator := sentiment.New(model, sentiment.WithLogger(logger))
	gen, err := generator.New(model, generator.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	judge := evaluation.NewRubricJudge(model)
	evaluator := evaluation.New(embed, judge, evaluation.NewLog(cfg.LogPath), evaluation.WithLogger(logger))

	return &deps{
		cfg:       cfg,
		corpus:    c,
		engine:    pipeline.New(ret, annotator, gen, evaluator, pipeline.WithLogger(logger)),
		runner:    experiment.NewRunner(ret, annotator, gen, evaluator, experiment.WithLogger(logger)),
		retriever: ret,
	}, nil
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Embed the review corpus and build the vector index",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

		c, err := corpus.NewLoader().Load(cfg.CorpusPath)
		if err != nil {
			return fmt.Errorf("loading corpus: %w", err)
		}

		embed := embedding.NewOpenAIEmbedding(cfg.APIKey, cfg.EmbeddingModel, embedding.WithLogger(logger))
		builder, err := ingest.NewBuilder(embed,
			ingest.WithLogger(logger),
			ingest.WithProgress(func(current, total int) {
				fmt.Fprintf(cmd.ErrOrStderr(), "embedded %d/%d reviews\n", current, total)
			}),
		)
		if err != nil {
			return err
		}

		idx, err := index.NewFlatIndex(embed.Info().Dimensions)
		if err != nil {
			return err
		}

		if err := builder.Build(cmd.Context(), c, idx); err != nil {
			return err
		}
		if err := idx.Save(cfg.IndexPath); err != nil {
			return fmt.Errorf("saving index: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "indexed %d reviews to %s\n", c.Len(), cfg.IndexPath)
		return nil
	},
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the distinct product titles in the corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		c, err := corpus.NewLoader().Load(cfg.CorpusPath)
		if err != nil {
			return fmt.Errorf("loading corpus: %w", err)
		}
		for _, product := range c.ProductList() {
			fmt.Fprintln(cmd.OutOrStdout(), product)
		}
		return nil
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the review corpus",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		product, _ := cmd.Flags().GetString("product")
		topK, _ := cmd.Flags().GetInt("top-k")
		evaluate, _ := cmd.Flags().GetBool("evaluate")

		d, err := buildDeps()
		if err != nil {
			return err
		}
		if topK == 0 {
			topK = d.cfg.TopK
		}

		if !evaluate {
			result, err := d.engine.Ask(cmd.Context(), args[0], product, topK, generator.Policy{})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Answer)
			return nil
		}

		result, record, err := d.engine.AskAndEvaluate(cmd.Context(), args[0], product, topK, generator.Policy{})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Answer)
		fmt.Fprintf(cmd.OutOrStdout(), "\nrouge1=%.4f rouge2=%.4f rougeL=%.4f meteor=%.4f cosine=%.4f\n",
			record.Rouge1, record.Rouge2, record.RougeL, record.Meteor, record.CosineSimilarity)
		for _, dimension := range evaluation.Dimensions {
			fmt.Fprintf(cmd.OutOrStdout(), "%s=%s ", dimension, record.Rubric[dimension])
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [destination]",
	Short: "Copy the evaluation log to a standalone CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := evaluation.NewLog(cfg.LogPath).Export(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", cfg.LogPath, args[0])
		return nil
	},
}

var experimentCmd = &cobra.Command{
	Use:   "experiment [question]",
	Short: "Compare the baseline generation policy against one modified parameter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		product, _ := cmd.Flags().GetString("product")
		param, _ := cmd.Flags().GetString("param")
		value, _ := cmd.Flags().GetFloat64("value")
		exportPath, _ := cmd.Flags().GetString("export")

		d, err := buildDeps()
		if err != nil {
			return err
		}

		comparison, err := d.runner.Compare(cmd.Context(), args[0], product, d.cfg.TopK, param, value)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "run %s\n\n", comparison.RunID)
		for _, outcome := range []experiment.Outcome{comparison.Baseline, comparison.Modified} {
			fmt.Fprintf(out, "[%s]\n%s\n", outcome.Setting, outcome.Answer)
			fmt.Fprintf(out, "rouge1=%.4f meteor=%.4f cosine=%.4f\n\n",
				outcome.Record.Rouge1, outcome.Record.Meteor, outcome.Record.CosineSimilarity)
		}

		if exportPath != "" {
			if err := experiment.ExportCSV(exportPath, comparison); err != nil {
				return err
			}
			fmt.Fprintf(out, "exported comparison to %s\n", exportPath)
		}
		return nil
	},
}
