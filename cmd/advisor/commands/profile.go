package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aristath/portfolio-advisor/internal/modules/risk"
	"github.com/spf13/cobra"
)

var profileAnswers []string

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Score a risk assessment questionnaire",
	Long: `Score the risk questionnaire from question_id=value pairs.

Example:
  go run ./cmd/advisor profile -a 1=30s -a 2=long -a 3=some ...`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profiler := risk.NewProfiler()
		answers, err := parseAnswers(profileAnswers)
		if err != nil {
			return err
		}
		if len(answers) != profiler.QuestionCount() {
			return fmt.Errorf("expected %d answers, got %d", profiler.QuestionCount(), len(answers))
		}
		return printJSON(cmd.OutOrStdout(), profiler.Calculate(answers))
	},
}

func parseAnswers(raw []string) ([]risk.Answer, error) {
	answers := make([]risk.Answer, 0, len(raw))
	for _, r := range raw {
		id, value, ok := strings.Cut(r, "=")
		if !ok {
			return nil, fmt.Errorf("answer %q must be question_id=value", r)
		}
		qid, err := strconv.Atoi(strings.TrimSpace(id))
		if err != nil {
			return nil, fmt.Errorf("invalid question id in %q: %w", r, err)
		}
		answers = append(answers, risk.Answer{QuestionID: qid, Value: strings.TrimSpace(value)})
	}
	return answers, nil
}

func init() {
	profileCmd.Flags().StringArrayVarP(&profileAnswers, "answer", "a", nil, "answer as question_id=value (repeatable)")
	rootCmd.AddCommand(profileCmd)
}
