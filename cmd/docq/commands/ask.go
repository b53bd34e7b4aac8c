package commands

import (
	"bufio"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/docq-ai/docq-go/internal/answer"
	"github.com/docq-ai/docq-go/internal/history"
	"github.com/docq-ai/docq-go/internal/provider"
	"github.com/docq-ai/docq-go/internal/rag"
	"github.com/docq-ai/docq-go/internal/tracing"
)

// NewAskCmd constructs the `docq ask` command, which retrieves relevant
// chunks and synthesizes an answer with the configured chat model.
func NewAskCmd() *cobra.Command {
	var topK int
	var showChunks bool
	var maxContextTokens int

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about the ingested document",
		Long: `Retrieve the chunks most relevant to a question and synthesize an
answer grounded in them. When the question is omitted, docq prompts for it
interactively and offers to show the retrieved chunks.

Examples:
  docq ask "what is the late penalty?"
  docq ask --top-k 3 --show-chunks "how are grades weighted?"
  docq ask`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := slog.Default()

			interactive := len(args) == 0
			question := strings.Join(args, " ")

			reader := bufio.NewReader(cmd.InOrStdin())
			if interactive {
				fmt.Fprint(cmd.OutOrStdout(), "Enter your question: ")
				line, _ := reader.ReadString('\n')
				question = strings.TrimSpace(line)
				if question == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "empty query — nothing to ask")
					return nil
				}
			}

			// Langfuse tracing — opt-in, no-op if keys are absent.
			if handler, flush, ok := tracing.Setup(); ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			}

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			idx, err := buildIndex(log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer idx.Close()

			retriever, err := rag.NewRetriever(emb, idx, topK)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			results, err := retriever.Retrieve(ctx, question, topK)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			if interactive && len(results) > 0 {
				fmt.Print("Show retrieved chunks? (y/n): ")
				line, _ := reader.ReadString('\n')
				if strings.EqualFold(strings.TrimSpace(line), "y") {
					printResults(results)
				}
			} else if showChunks {
				printResults(results)
			}

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("ask: failed to initialise model provider: %w", err)
			}

			synth, err := answer.NewSynthesizer(chatModel, maxContextTokens)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			reply, err := synth.Answer(ctx, question, results)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			fmt.Println(reply)

			if h := openHistory(log); h != nil {
				defer h.Close()
				if herr := h.RecordExchange(ctx, history.Exchange{
					Question: question,
					Answer:   reply,
					TopK:     topK,
				}); herr != nil {
					log.Warn("failed to record exchange", slog.String("error", herr.Error()))
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 5, "Number of chunks to ground the answer in")
	cmd.Flags().BoolVar(&showChunks, "show-chunks", false, "Print the retrieved chunks before the answer")
	cmd.Flags().IntVar(&maxContextTokens, "max-context-tokens", 0, "Context budget for chunk text (0 = default)")

	return cmd
}
