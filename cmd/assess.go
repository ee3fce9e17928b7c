package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zirakhr/zirak/internal/assessment"
	"github.com/zirakhr/zirak/internal/questionbank"
	"github.com/zirakhr/zirak/internal/ui/components"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Create and manage assessments",
}

var assessGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a pending assessment for a skill",
	RunE: func(cmd *cobra.Command, args []string) error {
		skill, _ := cmd.Flags().GetString("skill")
		level, _ := cmd.Flags().GetString("level")
		typ, _ := cmd.Flags().GetString("type")

		return withEngine(cmd, func(ctx context.Context, e *engine, p assessment.Principal) error {
			a, created, err := e.assessments.Create(ctx, p, assessment.CreateRequest{Skill: skill, Level: level, Type: typ})
			if err != nil {
				return err
			}
			if !created {
				fmt.Println("Reusing pending assessment.")
			}
			printAssessment(a, false)
			return nil
		})
	},
}

var assessStartCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Start the timer of a pending assessment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, func(ctx context.Context, e *engine, p assessment.Principal) error {
			a, err := e.assessments.Start(ctx, p, args[0])
			if err != nil {
				return err
			}
			if d, ok := a.Deadline(); ok {
				fmt.Printf("Started %s. Submit before %s.\n", a.ID, d.Local().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Printf("Started %s.\n", a.ID)
			}
			return nil
		})
	},
}

var assessSubmitCmd = &cobra.Command{
	Use:   "submit <id>",
	Short: "Submit answers, code or external scores and show the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		answerSpecs, _ := cmd.Flags().GetStringArray("answer")
		scores, _ := cmd.Flags().GetFloat64Slice("score")
		codeFiles, _ := cmd.Flags().GetStringArray("code")
		language, _ := cmd.Flags().GetString("language")
		spent, _ := cmd.Flags().GetDuration("time-spent")

		return withEngine(cmd, func(ctx context.Context, e *engine, p assessment.Principal) error {
			a, err := e.assessments.Get(ctx, p, args[0])
			if err != nil {
				return err
			}

			sub := assessment.Submission{Scores: scores, TimeSpentSecs: int(spent.Seconds())}
			if sub.Answers, err = parseAnswers(a.Questions, answerSpecs); err != nil {
				return err
			}
			for _, path := range codeFiles {
				b, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read code: %w", err)
				}
				lang := language
				if lang == "" {
					lang = strings.TrimPrefix(filepath.Ext(path), ".")
				}
				sub.Code = append(sub.Code, assessment.CodeSubmission{Language: lang, Code: string(b)})
			}

			a, res, err := e.assessments.Submit(ctx, p, a.ID, sub)
			if err != nil {
				return err
			}
			printResult(a, res)
			return nil
		})
	},
}

var assessShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an assessment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		return withEngine(cmd, func(ctx context.Context, e *engine, p assessment.Principal) error {
			a, err := e.assessments.Get(ctx, p, args[0])
			if err != nil {
				return err
			}
			reveal := a.Status == assessment.StatusCompleted
			if asJSON {
				if !reveal {
					a.Questions = hideAnswers(a.Questions)
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(a)
			}
			printAssessment(a, reveal)
			if res, ok := a.Result(); ok {
				fmt.Println()
				printResult(a, res)
			}
			return nil
		})
	},
}

var assessListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your assessments, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		skill, _ := cmd.Flags().GetString("skill")
		limit, _ := cmd.Flags().GetInt("limit")

		return withEngine(cmd, func(ctx context.Context, e *engine, p assessment.Principal) error {
			f := assessment.ListFilter{Status: assessment.Status(status), Limit: limit}
			if skill != "" {
				s, err := e.catalog.Find(skill)
				if err != nil {
					return err
				}
				f.SkillID = s.ID
			}

			list, err := e.assessments.List(ctx, p, f)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No assessments found.")
				return nil
			}

			fmt.Printf("%-36s  %-19s  %-20s  %-16s  %-12s  %-11s  %5s\n",
				"ID", "Created", "Skill", "Type", "Level", "Status", "Score")
			fmt.Println(strings.Repeat("─", 131))
			for _, a := range list {
				score := "-"
				if a.Score != nil {
					score = strconv.Itoa(*a.Score)
				}
				fmt.Printf("%-36s  %-19s  %-20s  %-16s  %-12s  %-11s  %5s\n",
					a.ID, a.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					truncate(a.SkillName, 20), a.Type, a.Level, a.Status, score)
			}
			return nil
		})
	},
}

var assessExpireCmd = &cobra.Command{
	Use:   "expire [id]",
	Short: "Expire an open assessment, or with --overdue every assessment past its time limit",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		overdue, _ := cmd.Flags().GetBool("overdue")
		if overdue == (len(args) == 1) {
			return fmt.Errorf("give an assessment id or --overdue")
		}

		return withEngine(cmd, func(ctx context.Context, e *engine, p assessment.Principal) error {
			if overdue {
				n, err := e.assessments.ExpireOverdue(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Expired %d overdue assessments.\n", n)
				return nil
			}
			a, err := e.assessments.Expire(ctx, p, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Assessment %s is now %s.\n", a.ID, a.Status)
			return nil
		})
	},
}

func init() {
	assessCmd.PersistentFlags().String("user", "", "User id to act as (default $ZIRAK_USER or the OS user)")

	assessGenerateCmd.Flags().String("skill", "", "Skill id or name")
	assessGenerateCmd.Flags().String("level", "intermediate", "Target level (beginner, intermediate, advanced, expert)")
	assessGenerateCmd.Flags().String("type", "quiz", "Assessment type (quiz, coding_challenge, project, interview)")
	_ = assessGenerateCmd.MarkFlagRequired("skill")

	assessSubmitCmd.Flags().StringArrayP("answer", "a", nil, "Answer as <question>=<option>; question is an id or 1-based number, option an id, letter or number")
	assessSubmitCmd.Flags().Float64Slice("score", nil, "External score 0-100 (repeatable)")
	assessSubmitCmd.Flags().StringArray("code", nil, "File with submitted code (repeatable)")
	assessSubmitCmd.Flags().String("language", "", "Language of the code files (default from extension)")
	assessSubmitCmd.Flags().Duration("time-spent", 0, "Time spent, defaults to the time since start")

	assessShowCmd.Flags().Bool("json", false, "Print as JSON")

	assessListCmd.Flags().String("status", "", "Filter by status (pending, in_progress, completed, expired)")
	assessListCmd.Flags().String("skill", "", "Filter by skill id or name")
	assessListCmd.Flags().IntP("limit", "n", 20, "Number of assessments to show")

	assessExpireCmd.Flags().Bool("overdue", false, "Expire every assessment past its time limit")

	assessCmd.AddCommand(assessGenerateCmd)
	assessCmd.AddCommand(assessStartCmd)
	assessCmd.AddCommand(assessSubmitCmd)
	assessCmd.AddCommand(assessShowCmd)
	assessCmd.AddCommand(assessListCmd)
	assessCmd.AddCommand(assessExpireCmd)
}

// withEngine opens the engine for one command and closes it afterwards.
func withEngine(cmd *cobra.Command, fn func(ctx context.Context, e *engine, p assessment.Principal) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e, err := newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer e.close()

	return fn(ctx, e, resolvePrincipal(cmd))
}

// resolvePrincipal picks the acting user: --user, then ZIRAK_USER, then
// the OS account name.
func resolvePrincipal(cmd *cobra.Command) assessment.Principal {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		return assessment.Principal{UserID: u}
	}
	if u := os.Getenv("ZIRAK_USER"); u != "" {
		return assessment.Principal{UserID: u}
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return assessment.Principal{UserID: u.Username}
	}
	return assessment.Principal{UserID: "local"}
}

// parseAnswers turns "<question>=<option>" specs into answers.
func parseAnswers(qs []questionbank.Question, specs []string) ([]assessment.Answer, error) {
	out := make([]assessment.Answer, 0, len(specs))
	for _, arg := range specs {
		qref, oref, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("%w: answer %q must be <question>=<option>", assessment.ErrInvalidInput, arg)
		}
		q, ok := findQuestion(qs, strings.TrimSpace(qref))
		if !ok {
			return nil, fmt.Errorf("%w: unknown question %q", assessment.ErrInvalidInput, qref)
		}
		opt, ok := findOption(q, strings.TrimSpace(oref))
		if !ok {
			return nil, fmt.Errorf("%w: question %s has no option %q", assessment.ErrInvalidInput, q.ID, oref)
		}
		out = append(out, assessment.Answer{QuestionID: q.ID, SelectedOptionID: opt})
	}
	return out, nil
}

func findQuestion(qs []questionbank.Question, ref string) (questionbank.Question, bool) {
	for _, q := range qs {
		if q.ID == ref {
			return q, true
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(qs) {
		return qs[n-1], true
	}
	return questionbank.Question{}, false
}

func findOption(q questionbank.Question, ref string) (string, bool) {
	if i := q.OptionIndex(ref); i >= 0 {
		return ref, true
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(q.Options) {
		return q.Options[n-1].ID, true
	}
	for i, o := range q.Options {
		if strings.EqualFold(components.Label(i), ref) {
			return o.ID, true
		}
	}
	return "", false
}

func hideAnswers(qs []questionbank.Question) []questionbank.Question {
	out := make([]questionbank.Question, len(qs))
	for i, q := range qs {
		q.CorrectOptionID = ""
		q.Explanation = ""
		out[i] = q
	}
	return out
}

func printAssessment(a *assessment.Assessment, reveal bool) {
	fmt.Printf("ID:        %s\n", a.ID)
	fmt.Printf("Title:     %s\n", a.Title)
	fmt.Printf("Skill:     %s (%s)\n", a.SkillName, a.SkillID)
	fmt.Printf("Type:      %s\n", a.Type)
	fmt.Printf("Level:     %s\n", a.Level.DisplayName())
	fmt.Printf("Status:    %s\n", a.Status)
	fmt.Printf("Passing:   %d\n", a.PassingScore)
	if a.TimeLimitMins > 0 {
		fmt.Printf("Time:      %d min\n", a.TimeLimitMins)
	}
	if a.StartedAt != nil {
		fmt.Printf("Started:   %s\n", a.StartedAt.Local().Format(time.DateTime))
	}
	if a.Description != "" {
		fmt.Printf("\n%s\n", a.Description)
	}

	if c := a.Challenge; c != nil {
		fmt.Printf("\n%s\n", c.Title)
		for _, r := range c.Requirements {
			fmt.Printf("  - %s\n", r)
		}
		for i, tc := range c.TestCases {
			fmt.Printf("  Test %d: %s -> %s\n", i+1, tc.Input, tc.ExpectedOutput)
		}
	}

	for i, q := range a.Questions {
		fmt.Printf("\n%2d. [%s, %d pt] %s\n", i+1, q.Difficulty, q.Points, q.Text)
		for j, o := range q.Options {
			mark := " "
			if reveal && o.ID == q.CorrectOptionID {
				mark = "✓"
			}
			fmt.Printf("    %s %s) %s\n", mark, components.Label(j), o.Text)
		}
		if reveal && q.Explanation != "" {
			fmt.Printf("    %s\n", q.Explanation)
		}
	}
}

func printResult(a *assessment.Assessment, res assessment.Result) {
	verdict := "NOT PASSED"
	if res.Passed {
		verdict = "PASSED"
	}
	fmt.Printf("Score:     %d/100 (passing %d) %s\n", res.Score, a.PassingScore, verdict)
	if res.Total > 0 && res.Correct > 0 {
		fmt.Printf("Correct:   %d of %d\n", res.Correct, res.Total)
	}
	if a.TimeSpentSecs > 0 {
		fmt.Printf("Time:      %s\n", (time.Duration(a.TimeSpentSecs) * time.Second).String())
	}
	fmt.Printf("\n%s\n", res.Feedback)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
