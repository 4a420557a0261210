package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/adaptiq/internal/catalog"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Validate and browse question catalogs",
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Check a catalog file or directory for errors",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		c, err := catalog.Load(args[0])
		if err != nil {
			printProblems(out, err)
			return fmt.Errorf("catalog %s is invalid", args[0])
		}
		color.New(color.FgGreen).Fprintf(out, "✓ %s: %d questions in %d skill areas\n",
			args[0], c.Len(), len(c.SkillAreas()))
		printCounts(out, c)
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the questions of the active catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		skill, _ := cmd.Flags().GetString("skill")

		c, err := loadCatalog(cmd)
		if err != nil {
			return err
		}

		questions := c.Filter(skill)
		if len(questions) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No questions found.")
			return nil
		}

		w := cmd.OutOrStdout()
		headingColor.Fprintf(w, "%-24s  %-24s  %-8s  %-16s  %s\n",
			"ID", "Skill", "Level", "Type", "Question")
		fmt.Fprintln(w, strings.Repeat("─", 110))
		for _, q := range questions {
			content := strings.Join(strings.Fields(q.Content), " ")
			if len(content) > 40 {
				content = content[:37] + "..."
			}
			fmt.Fprintf(w, "%-24s  %-24s  %-8s  %-16s  %s\n",
				truncate(q.ID, 24), truncate(q.SkillArea, 24), q.Difficulty, q.Type, content)
		}
		fmt.Fprintf(w, "\n%d questions\n", len(questions))
		return nil
	},
}

// printProblems lists each error joined by the loader on its own line.
func printProblems(w io.Writer, err error) {
	red := color.New(color.FgRed)
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			red.Fprintf(w, "✗ %v\n", e)
		}
		return
	}
	red.Fprintf(w, "✗ %v\n", err)
}

func printCounts(w io.Writer, c *catalog.Catalog) {
	for _, n := range c.CountBy() {
		fmt.Fprintf(w, "  %-28s  %-8s  %d\n", truncate(n.SkillArea, 28), n.Difficulty, n.Questions)
	}
}

func init() {
	catalogListCmd.Flags().String("skill", "", "Only list questions for this skill area")

	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogListCmd)
}
