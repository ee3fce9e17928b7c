package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zirakhr/zirak/internal/analytics"
	"github.com/zirakhr/zirak/internal/skills"
	"github.com/zirakhr/zirak/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats [skill]",
	Short: "Show assessment statistics per skill",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, s *store.Store) error {
			if len(args) == 1 {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				catalog, err := loadCatalog(cfg)
				if err != nil {
					return err
				}
				skill, err := catalog.Find(args[0])
				if err != nil {
					return err
				}
				st, err := s.Analytics().SkillStats(ctx, skill.ID)
				if err != nil {
					return err
				}
				if st == nil {
					fmt.Printf("No assessments recorded for %s.\n", skill.Name)
					return nil
				}
				printSkillStats(*st)
				return nil
			}

			all, err := s.Analytics().AllSkillStats(ctx)
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Println("No assessments recorded yet.")
				return nil
			}

			fmt.Printf("%-24s  %6s  %8s  %9s  %6s  %6s  %7s  %9s  %8s\n",
				"Skill", "Taken", "Started", "Completed", "Passed", "Failed", "Expired", "Avg score", "Pass %")
			fmt.Println(strings.Repeat("─", 104))
			for _, st := range all {
				fmt.Printf("%-24s  %6d  %8d  %9d  %6d  %6d  %7d  %9.1f  %7.0f%%\n",
					truncate(st.SkillName, 24), st.Taken, st.Started, st.Completed,
					st.Passed, st.Failed, st.Expired, st.AverageScore(), st.PassRate()*100)
			}
			return nil
		})
	},
}

func printSkillStats(st analytics.SkillStats) {
	fmt.Printf("Skill:          %s (%s)\n", st.SkillName, st.SkillID)
	fmt.Printf("Taken:          %d\n", st.Taken)
	fmt.Printf("Started:        %d\n", st.Started)
	fmt.Printf("Completed:      %d (%d passed, %d failed)\n", st.Completed, st.Passed, st.Failed)
	fmt.Printf("Expired:        %d\n", st.Expired)
	fmt.Printf("Verified users: %d\n", st.Verified)
	fmt.Printf("Average score:  %.1f\n", st.AverageScore())
	fmt.Printf("Average time:   %s\n", time.Duration(st.AverageTimeSecs()*float64(time.Second)).Round(time.Second))
	fmt.Printf("Pass rate:      %.0f%%\n", st.PassRate()*100)

	if len(st.ByLevel) == 0 {
		return
	}
	fmt.Println("By level:")
	for _, l := range skills.AllLevels() {
		if n, ok := st.ByLevel[l]; ok {
			fmt.Printf("  %-14s %d\n", l.DisplayName(), n)
		}
	}
}
