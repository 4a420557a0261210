package cmd

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/abhisek/adaptiq/internal/adaptive"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect and manage learner skill profiles",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a learner's skill profile and recent results",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		limit, _ := cmd.Flags().GetInt("history")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		p, err := s.ProfileRepo().Load(ctx, user)
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		if p == nil {
			return fmt.Errorf("no profile for %q", user)
		}

		results, err := session.NewStoreRecorder(s).History(ctx, user, limit)
		if err != nil {
			return err
		}

		printProfile(cmd.OutOrStdout(), *p, results)
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		profiles, err := s.ProfileRepo().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list profiles: %w", err)
		}
		printProfileList(cmd.OutOrStdout(), profiles)
		return nil
	},
}

var profileResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete a learner's profile, responses and results",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		yes, _ := cmd.Flags().GetBool("yes")
		out := cmd.OutOrStdout()

		if !yes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete all data for %q?", user)) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		existed, err := s.ProfileRepo().Reset(cmd.Context(), user)
		if err != nil {
			return fmt.Errorf("reset profile: %w", err)
		}
		if !existed {
			fmt.Fprintf(out, "No profile for %q.\n", user)
			return nil
		}
		fmt.Fprintf(out, "Profile %q deleted.\n", user)
		return nil
	},
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	dimColor     = color.New(color.Faint)
)

func scoreColor(score float64) *color.Color {
	switch {
	case score >= 70:
		return color.New(color.FgGreen)
	case score >= 40:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func printProfile(w io.Writer, p adaptive.SkillProfile, results []session.Result) {
	headingColor.Fprintf(w, "Profile: %s\n", p.UserID)
	fmt.Fprintln(w, strings.Repeat("─", 48))

	last := "never"
	if p.LastAssessmentAt != nil {
		last = p.LastAssessmentAt.Local().Format("2006-01-02 15:04")
	}
	fmt.Fprintf(w, "Assessments:   %d (last %s)\n", p.TotalAssessments, last)
	fmt.Fprintf(w, "Answered:      %d questions\n", len(p.AnsweredQuestions))
	fmt.Fprintf(w, "Avg response:  %.1fs\n", p.AverageResponseTimeMs/1000)

	if len(p.QuestionTypeCounts) > 0 {
		types := make([]string, 0, len(p.QuestionTypeCounts))
		for t, n := range p.QuestionTypeCounts {
			types = append(types, fmt.Sprintf("%s %d", t, n))
		}
		sort.Strings(types)
		fmt.Fprintf(w, "By type:       %s\n", strings.Join(types, ", "))
	}

	fmt.Fprintln(w)
	headingColor.Fprintln(w, "Skills")
	if len(p.Skills) == 0 {
		dimColor.Fprintln(w, "  No skill scores yet.")
	}
	names := make([]string, 0, len(p.Skills))
	for name := range p.Skills {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		score := p.Skills[name]
		fmt.Fprintf(w, "  %-28s ", truncate(name, 28))
		scoreColor(score).Fprintf(w, "%5.1f  %s\n", score, scoreBar(score, 20))
	}

	if weakest, ok := adaptive.WeakestSkill(p); ok {
		fmt.Fprintf(w, "\nFocus next on: %s\n", color.YellowString(weakest))
	}

	if len(results) == 0 {
		return
	}
	fmt.Fprintln(w)
	headingColor.Fprintln(w, "Recent results")
	for _, r := range results {
		fmt.Fprintf(w, "  %s  %3d questions  %-8s  ",
			r.CompletedAt.Local().Format("2006-01-02 15:04"),
			len(r.Responses),
			(time.Duration(r.TimeSpentMs) * time.Millisecond).Round(time.Second))
		scoreColor(r.Score).Fprintf(w, "%5.1f%%", r.Score)
		fmt.Fprintf(w, "  next %s\n", r.NextDifficulty)
	}
}

func printProfileList(w io.Writer, profiles []adaptive.SkillProfile) {
	if len(profiles) == 0 {
		fmt.Fprintln(w, "No profiles found.")
		return
	}
	headingColor.Fprintf(w, "%-24s  %11s  %8s  %6s  %s\n", "User", "Assessments", "Answered", "Skills", "Weakest")
	fmt.Fprintln(w, strings.Repeat("─", 72))
	for _, p := range profiles {
		weakest, ok := adaptive.WeakestSkill(p)
		if !ok {
			weakest = "-"
		}
		fmt.Fprintf(w, "%-24s  %11d  %8d  %6d  %s\n",
			truncate(p.UserID, 24), p.TotalAssessments, len(p.AnsweredQuestions), len(p.Skills), weakest)
	}
}

func scoreBar(score float64, width int) string {
	filled := int(score / 100 * float64(width))
	filled = min(max(filled, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func init() {
	profileShowCmd.Flags().StringP("user", "u", "", "Learner ID (required)")
	profileShowCmd.Flags().IntP("history", "n", 5, "Number of recent results to show")
	_ = profileShowCmd.MarkFlagRequired("user")

	profileResetCmd.Flags().StringP("user", "u", "", "Learner ID (required)")
	profileResetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	_ = profileResetCmd.MarkFlagRequired("user")

	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileResetCmd)
}
