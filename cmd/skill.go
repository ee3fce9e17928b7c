package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zirakhr/zirak/internal/skills"
)

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Browse the skill catalog",
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all skills (optionally filtered by category)",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		catalog, err := loadCatalog(cfg)
		if err != nil {
			return err
		}

		list := catalog.All()
		if category != "" {
			list = catalog.ByCategory(skills.Category(category))
			if len(list) == 0 {
				return fmt.Errorf("no skills found for category %q", category)
			}
		}

		fmt.Printf("%-20s  %-28s  %-22s  %s\n", "ID", "Name", "Category", "Description")
		fmt.Println(strings.Repeat("─", 115))
		for _, s := range list {
			fmt.Printf("%-20s  %-28s  %-22s  %s\n",
				s.ID, truncate(s.Name, 28), skills.CategoryDisplayName(s.Category), truncate(s.Description, 40))
		}
		fmt.Printf("\n%d skills\n", len(list))
		return nil
	},
}

func init() {
	skillListCmd.Flags().String("category", "", "Filter by category (languages, frontend, backend, data, cloud)")

	skillCmd.AddCommand(skillListCmd)
}
