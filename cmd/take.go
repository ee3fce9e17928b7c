package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zirakhr/zirak/internal/assessment"
	"github.com/zirakhr/zirak/internal/take"
)

var takeCmd = &cobra.Command{
	Use:   "take [id]",
	Short: "Take a quiz in the terminal",
	Long:  "Take a quiz interactively. Give an assessment id, or --skill to generate (or reuse) a pending quiz for that skill.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		skill, _ := cmd.Flags().GetString("skill")
		level, _ := cmd.Flags().GetString("level")
		if (skill == "") == (len(args) == 0) {
			return fmt.Errorf("give an assessment id or --skill")
		}

		return withEngine(cmd, func(ctx context.Context, e *engine, p assessment.Principal) error {
			var a *assessment.Assessment
			var err error
			if skill != "" {
				a, _, err = e.assessments.Create(ctx, p, assessment.CreateRequest{Skill: skill, Level: level})
			} else {
				a, err = e.assessments.Get(ctx, p, args[0])
			}
			if err != nil {
				return err
			}

			// Log lines would tear the alternate screen.
			quiet := zerolog.New(io.Discard).WithContext(ctx)
			out, err := take.Run(quiet, e.assessments, p, a)
			if err != nil {
				return err
			}
			switch {
			case out.Err != nil:
				return out.Err
			case out.Completed:
				printResult(out.Assessment, out.Result)
			case out.Expired:
				fmt.Printf("Assessment %s expired before it was submitted.\n", a.ID)
			default:
				fmt.Printf("Assessment %s is still open. Resume with: zirak take %s\n", a.ID, a.ID)
			}
			return nil
		})
	},
}

func init() {
	takeCmd.Flags().String("user", "", "User id to act as (default $ZIRAK_USER or the OS user)")
	takeCmd.Flags().String("skill", "", "Skill id or name to generate a quiz for")
	takeCmd.Flags().String("level", "intermediate", "Target level when generating")
}
