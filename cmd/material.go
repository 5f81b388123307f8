package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyloop/internal/material"
	"github.com/abhisek/studyloop/internal/session"
	"github.com/abhisek/studyloop/internal/tutor"
)

func addMaterialFlags(cmd *cobra.Command) {
	cmd.Flags().String("text", "", "Study material given inline")
	cmd.Flags().String("session", "", "Reuse a stored session instead of loading material (needs STUDYLOOP_REDIS_URL across runs)")
}

// loadSession resolves the material for a command: a stored session, a
// file argument, --text, or the built-in sample in that order.
func loadSession(cmd *cobra.Command, t *tutor.Tutor, args []string) (*session.Session, error) {
	ctx := cmd.Context()
	if id, _ := cmd.Flags().GetString("session"); id != "" {
		return t.Session(ctx, id)
	}

	m := tutor.Material{}
	text, _ := cmd.Flags().GetString("text")
	switch {
	case len(args) > 0:
		m.Path = args[0]
	case text != "":
		m.Text = text
	default:
		fmt.Fprintln(cmd.ErrOrStderr(), "No material given, using the built-in machine learning primer.")
		m.Text = material.SampleText
	}

	s, err := t.ProcessMaterial(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("process material: %w", err)
	}
	return s, nil
}
