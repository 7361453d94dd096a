package cli

import (
	"shortpost/internal/logging"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "shortpost",
	Short: "Automated short-form video creation and cross-posting",
	Long: `Shortpost turns top subreddit posts into short videos and publishes
them to Instagram and YouTube.

Video posts are downloaded and remuxed directly. Text posts get an AI
voiceover over a background clip with burned-in captions.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}
