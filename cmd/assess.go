package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/harborview-living/directory-cli/internal/assessment"
	"github.com/harborview-living/directory-cli/internal/model"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Care assessment tools",
	Long:  "Inspect the assessment question bank or run the care assessment wizard in the terminal.",
}

var assessQuestionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Print the question bank",
	RunE: func(cmd *cobra.Command, _ []string) error {
		bank, err := initBank()
		if err != nil {
			return err
		}

		for i, q := range bank.Questions() {
			fmt.Printf("%d. %s [%s]\n", i+1, q.Prompt, q.Mode)
			if q.Subtext != "" {
				fmt.Printf("   %s\n", q.Subtext)
			}
			for _, opt := range q.Options {
				fmt.Printf("   - %s: %s\n", opt.Value, opt.Label)
			}
			fmt.Println()
		}
		return nil
	},
}

var assessRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the assessment wizard interactively",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		bank, err := initBank()
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		communities, err := st.ListCommunities(ctx)
		if err != nil {
			return eris.Wrap(err, "assess: list communities")
		}

		answers, err := runWizard(bank, os.Stdin)
		if err != nil {
			return err
		}

		rec, err := assessment.NewScorer(bank).Score(answers, communities)
		if err != nil {
			return eris.Wrap(err, "assess: score")
		}

		printRecommendation(rec)
		return nil
	},
}

// runWizard drives the wizard state machine over a line-based prompt.
// "back" returns to the previous question; "restart" starts over.
func runWizard(bank *assessment.Bank, in *os.File) (model.AssessmentAnswers, error) {
	scanner := bufio.NewScanner(in)
	state := assessment.Begin(assessment.NewState())

	fmt.Println("Answer each question with the option number. Separate multiple choices with commas.")
	fmt.Println()

	for state.Stage == assessment.StageInProgress {
		q, ok := bank.Question(state.Index)
		if !ok {
			return nil, eris.Errorf("assess: no question at index %d", state.Index)
		}

		fmt.Printf("%s\n", q.Prompt)
		if q.Subtext != "" {
			fmt.Printf("  %s\n", q.Subtext)
		}
		for i, opt := range q.Options {
			fmt.Printf("  %d) %s\n", i+1, opt.Label)
		}
		fmt.Print("> ")

		if !scanner.Scan() {
			return nil, eris.New("assess: input closed before the assessment finished")
		}
		line := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(line) {
		case "back":
			state = assessment.Back(state)
			if state.Stage == assessment.StageIntro {
				state = assessment.Begin(state)
			}
			continue
		case "restart":
			state = assessment.Begin(assessment.Restart(state))
			continue
		}

		selections, err := parseSelections(line, q)
		if err != nil {
			fmt.Println(err)
			continue
		}

		next, err := assessment.Advance(state, bank, selections)
		if err != nil {
			fmt.Println(eris.Cause(err))
			continue
		}
		state = next
		fmt.Println()
	}

	return state.Answers, nil
}

// parseSelections maps 1-based option numbers to option values.
func parseSelections(line string, q model.AssessmentQuestion) ([]string, error) {
	if line == "" {
		return nil, eris.New("pick at least one option")
	}

	var selections []string
	for _, part := range strings.Split(line, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > len(q.Options) {
			return nil, eris.Errorf("pick a number between 1 and %d", len(q.Options))
		}
		selections = append(selections, q.Options[n-1].Value)
	}
	return selections, nil
}

func printRecommendation(rec *model.Recommendation) {
	fmt.Println()
	fmt.Printf("Recommendation: %s\n", rec.Title)
	fmt.Printf("Estimated cost: %s\n", rec.CostRange)
	fmt.Println()
	fmt.Println(rec.Description)

	if len(rec.Reasons) > 0 {
		fmt.Println()
		fmt.Println("Based on your answers:")
		for _, r := range rec.Reasons {
			fmt.Printf("  - %s\n", r)
		}
	}

	if len(rec.Matches) > 0 {
		fmt.Println()
		fmt.Println("Communities to consider:")
		for _, m := range rec.Matches {
			fmt.Printf("  - %s (%s)\n", m.Community.Name, m.Community.Zip)
			fmt.Printf("    %s\n", m.Reason)
		}
	}
}

func init() {
	assessCmd.AddCommand(assessQuestionsCmd)
	assessCmd.AddCommand(assessRunCmd)
	rootCmd.AddCommand(assessCmd)
}
