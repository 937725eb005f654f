package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/articlerec/internal/aggregate"
	"github.com/yungbote/articlerec/internal/domain"
	"github.com/yungbote/articlerec/internal/recommend"
)

var (
	searchQuery string
	recTopic    string
	recWeighted bool
	recTopN     int
	byTitle     bool
)

// searchCmd merges the ontology and content signals for a topic
var searchCmd = &cobra.Command{
	Use:   "search [topic]",
	Short: "Search articles for a topic",
	Long: `Runs the ontology and topic-content signals for a topic and prints the
merged result. Without a topic the configured default is used.

Example:
  articlerec search "Neural Networks" --query transformer`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

// recommendCmd personalizes results for one user
var recommendCmd = &cobra.Command{
	Use:   "recommend [user-id]",
	Short: "Recommend articles for a user",
	Long: `Runs every signal for a user. With --weighted the scored path ranks
results and attaches a score to each.

Examples:
  articlerec recommend User_0
  articlerec recommend User_0 --weighted --top-n 5`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Filter by title or abstract text")
	searchCmd.Flags().BoolVar(&byTitle, "by-title", false, "Order output by title instead of item id")

	recommendCmd.Flags().StringVarP(&recTopic, "topic", "t", "", "Topic for the ontology signal (default: configured topic)")
	recommendCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "Filter by title or abstract text")
	recommendCmd.Flags().BoolVar(&recWeighted, "weighted", false, "Use weighted scoring")
	recommendCmd.Flags().IntVarP(&recTopN, "top-n", "n", 0, "Result limit for weighted scoring (default: configured top_n)")
	recommendCmd.Flags().BoolVar(&byTitle, "by-title", false, "Order output by title instead of rank")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, ctx, cancel, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer a.Close(ctx)

	topic := ""
	if len(args) > 0 {
		topic = args[0]
	}
	recs, err := a.Service.Search(ctx, topic, searchQuery)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if byTitle {
		aggregate.SortByTitle(recs)
	}
	return printJSON(cmd.OutOrStdout(), domain.Views(recs))
}

func runRecommend(cmd *cobra.Command, args []string) error {
	a, ctx, cancel, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer cancel()
	defer a.Close(ctx)

	recs, err := a.Service.Recommend(ctx, recommend.RecommendRequest{
		UserID:      strings.TrimSpace(args[0]),
		Topic:       recTopic,
		SearchQuery: searchQuery,
		Weighted:    recWeighted,
		TopN:        recTopN,
	})
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if byTitle {
		aggregate.SortByTitle(recs)
	}
	return printJSON(cmd.OutOrStdout(), domain.Views(recs))
}
