package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rafael-2109/frete-sistema-sub023/internal/reviewer"
)

type reviewOptions struct {
	response    string
	contextFile string
	state       string
	domain      string
	query       string
}

func newReviewCmd(root *rootOptions) *cobra.Command {
	opts := &reviewOptions{}

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Check a generated answer against its data context",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.response == "" {
				return errors.New("--response is required")
			}

			contextText, err := readContext(cmd.InOrStdin(), opts.contextFile)
			if err != nil {
				return err
			}

			rv := reviewer.NewReviewer(
				reviewer.WithMaxContextBytes(root.cfg.Assistant.MaxContextBytes),
				reviewer.WithMaxResponseBytes(root.cfg.Assistant.MaxResponseBytes),
			)
			result := rv.Review(reviewer.Request{
				Query:           opts.query,
				Response:        opts.response,
				Context:         contextText,
				Domain:          opts.domain,
				StructuredState: opts.state,
			})

			return printReview(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&opts.response, "response", "", "generated answer to review")
	cmd.Flags().StringVar(&opts.contextFile, "context-file", "", `file with the data context ("-" reads stdin)`)
	cmd.Flags().StringVar(&opts.state, "state", "", "structured conversation state as JSON")
	cmd.Flags().StringVar(&opts.domain, "domain", reviewer.DefaultDomain, "business domain of the answer")
	cmd.Flags().StringVar(&opts.query, "query", "", "original question")
	return cmd
}

func readContext(stdin io.Reader, path string) (string, error) {
	switch path {
	case "":
		return "", nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read context from stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read context file: %w", err)
		}
		return string(data), nil
	}
}

func printReview(w io.Writer, result reviewer.Result) error {
	md := result.Metadata()

	switch md.Revisao {
	case reviewer.StatusOK:
		success(w, "revisão: %s", md.Revisao)
	case reviewer.StatusInvalidContext:
		warning(w, "revisão: %s", md.Revisao)
	default:
		failure(w, "revisão: %s (%d problema(s))", md.Revisao, len(md.Problemas))
	}
	for _, issue := range md.Problemas {
		fmt.Fprintf(w, "  - [%s] %s: %s\n", issue.Action, issue.Kind, issue.Description)
	}

	header(w, "Resposta final:")
	fmt.Fprintln(w, result.FinalText)

	header(w, "Metadados:")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(md)
}
