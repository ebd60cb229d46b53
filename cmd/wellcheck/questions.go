package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dshills/wellcheck/internal/config"
	"github.com/dshills/wellcheck/internal/profile"
	"github.com/spf13/cobra"
)

func newQuestionsCmd(cfg *config.Config) *cobra.Command {
	var (
		profileName string
		profileFile string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Print the questionnaire and scoring rules of a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuestions(os.Stdout, profileName, profileFile, asJSON)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&profileName, "profile", cfg.Profile, "Built-in profile name")
	flags.StringVar(&profileFile, "profile-file", cfg.ProfileFile, "Profile YAML file (overrides --profile)")
	flags.BoolVar(&asJSON, "json", false, "Print the profile as JSON")

	return cmd
}

func runQuestions(w io.Writer, name, file string, asJSON bool) error {
	p, err := loadProfile(name, file)
	if err != nil {
		return exitError(3, "failed to load profile: %v", err)
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	_, err = io.WriteString(w, profile.FormatQuestions(p))
	return err
}

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List built-in profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfiles(os.Stdout)
		},
	}
}

func runProfiles(w io.Writer) error {
	names, err := profile.List()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, name := range names {
		p, err := profile.LoadBuiltin(name)
		if err != nil {
			return err
		}
		marker := ""
		if name == profile.DefaultName {
			marker = " (default)"
		}
		fmt.Fprintf(tw, "%s%s\tv%d\t%d questions\n", name, marker, p.Version, len(p.Questions))
	}
	return tw.Flush()
}
