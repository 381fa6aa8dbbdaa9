package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/completion-estimator/internal"
	"github.com/spf13/cobra"
)

var (
	chunkText     string
	chunkSizeFlag int
	chunkFormat   string
	chunkPreview  int
)

type chunkInfo struct {
	Chunk   int    `json:"chunk"`
	Words   int    `json:"words"`
	Preview string `json:"preview"`
}

// chunkCmd represents the chunk command
var chunkCmd = &cobra.Command{
	Use:   "chunk [file|-]",
	Short: "Preview how a document will be chunked",
	Long: `Split a document into word chunks without contacting the analysis service.

This shows how many requests an analyze run will make and how many words each
chunk carries. The last chunk holds the remainder.

Examples:
  completion-estimator chunk notes.txt
  completion-estimator chunk --chunk-size 200 --format json notes.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readText(args, chunkText, cmd.InOrStdin())
		if err != nil {
			return err
		}

		size := cfg.ChunkSize
		if chunkSizeFlag > 0 {
			size = chunkSizeFlag
		}

		chunks := internal.ChunkText(text, size)
		infos := make([]chunkInfo, len(chunks))
		for i, c := range chunks {
			infos[i] = chunkInfo{
				Chunk:   c.Index + 1,
				Words:   c.WordCount(),
				Preview: preview(c.Text, chunkPreview),
			}
		}

		switch chunkFormat {
		case "json":
			return outputChunksJSON(cmd.OutOrStdout(), internal.WordCount(text), size, infos)
		case "text":
			return outputChunksText(cmd.OutOrStdout(), internal.WordCount(text), size, infos)
		default:
			return fmt.Errorf("unsupported format: %s (supported: text, json)", chunkFormat)
		}
	},
}

func outputChunksText(out io.Writer, words, size int, infos []chunkInfo) error {
	_, _ = fmt.Fprintf(out, "📊 %d word(s) in %d chunk(s) of up to %d words\n\n", words, len(infos), size)
	for _, info := range infos {
		_, _ = fmt.Fprintf(out, "Chunk %d: %d words", info.Chunk, info.Words)
		if info.Preview != "" {
			_, _ = fmt.Fprintf(out, "  %s", idStyle.Render(info.Preview))
		}
		_, _ = fmt.Fprintln(out)
	}
	return nil
}

func outputChunksJSON(out io.Writer, words, size int, infos []chunkInfo) error {
	result := map[string]interface{}{
		"words":      words,
		"chunk_size": size,
		"chunks":     infos,
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// preview returns the first n words of text, with an ellipsis when cut
func preview(text string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + " …"
}

func init() {
	rootCmd.AddCommand(chunkCmd)
	chunkCmd.Flags().StringVarP(&chunkText, "text", "t", "", "Chunk this text instead of a file")
	chunkCmd.Flags().IntVar(&chunkSizeFlag, "chunk-size", 0, "Words per chunk (default from config)")
	chunkCmd.Flags().StringVarP(&chunkFormat, "format", "f", "text", "Output format (text, json)")
	chunkCmd.Flags().IntVar(&chunkPreview, "preview", 6, "Words of each chunk to show (0 to hide)")
}
