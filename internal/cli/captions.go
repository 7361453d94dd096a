package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"shortpost/internal/media"
	"shortpost/internal/subtitle"
)

var captionsCmd = &cobra.Command{
	Use:   "captions [text_file] [audio_file]",
	Short: "Generate a timed SRT caption file for a narration",
	Long: `Generate SRT captions for a narration by distributing the text's
sentences proportionally across the audio's duration.

No transcription is involved: the text is assumed to be exactly what the
audio says, which holds for synthesized voiceovers.

Examples:
  shortpost captions story.txt voiceover.mp3
  shortpost captions story.txt voiceover.mp3 -o captions.srt`,
	Args: cobra.ExactArgs(2),
	RunE: runCaptions,
}

func init() {
	rootCmd.AddCommand(captionsCmd)

	captionsCmd.Flags().
		StringP("output", "o", "", "Output SRT path (defaults next to the audio file)")
}

func runCaptions(cmd *cobra.Command, args []string) error {
	textPath, audioPath := args[0], args[1]

	text, err := os.ReadFile(textPath)
	if err != nil {
		return fmt.Errorf("read narration: %w", err)
	}

	duration, err := media.NewProcessor().Duration(cmd.Context(), audioPath)
	if err != nil {
		return fmt.Errorf("probe audio duration: %w", err)
	}

	cues, err := subtitle.NewTimer().Synthesize(string(text), duration)
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".srt"
	}

	if err := subtitle.WriteSRT(cues, outputPath); err != nil {
		return err
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Captions written: %s\n", absOutput)
	fmt.Printf("  Cues: %d\n", len(cues))
	fmt.Printf("  Audio duration: %s\n", duration)

	return nil
}
