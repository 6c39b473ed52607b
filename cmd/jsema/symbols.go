package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"jsema/internal/diagfmt"
	"jsema/internal/driver"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols [flags] [file.java|directory]...",
	Short: "List declared symbols with their types and usage counts",
	RunE:  runSymbols,
}

func init() {
	symbolsCmd.Flags().String("format", "text", "output format (text|json)")
	symbolsCmd.Flags().Bool("locals", false, "include parameters and local variables")
}

var (
	unitHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	failedStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	kindStyle       = lipgloss.NewStyle().Width(9).Foreground(lipgloss.Color("241"))
	nameStyle       = lipgloss.NewStyle().Width(36)
	typeStyle       = lipgloss.NewStyle().Width(36).Foreground(lipgloss.Color("42"))
	countStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func runSymbols(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	locals, err := cmd.Flags().GetBool("locals")
	if err != nil {
		return fmt.Errorf("failed to get locals flag: %w", err)
	}
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q (must be text or json)", format)
	}

	sess, opts, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()
	files, err := sess.settings.sourceFiles(args)
	if err != nil {
		return err
	}
	run, err := driver.Analyze(cmd.Context(), files, opts)
	if err != nil {
		return err
	}

	inputs := make([]*diagfmt.SemanticsInput, 0, len(run.Units))
	for _, u := range run.Units {
		if u.Result == nil {
			continue
		}
		inputs = append(inputs, &diagfmt.SemanticsInput{Table: run.Table, Result: u.Result, Path: u.Path})
	}
	out := cmd.OutOrStdout()
	if format == "json" {
		return diagfmt.SemanticsJSON(out, inputs)
	}

	for _, u := range run.Units {
		if u.Result == nil {
			fmt.Fprintln(out, failedStyle.Render(fmt.Sprintf("%s: %v", u.Path, u.Err)))
			continue
		}
		dump, err := diagfmt.BuildSemanticsOutput(&diagfmt.SemanticsInput{Table: run.Table, Result: u.Result, Path: u.Path})
		if err != nil {
			return err
		}
		writeSymbols(out, dump, locals)
	}
	return nil
}

func writeSymbols(w io.Writer, dump *diagfmt.SemanticsOutput, locals bool) {
	fmt.Fprintln(w, unitHeaderStyle.Render(fmt.Sprintf("%s (%s)", dump.File, dump.State)))
	for _, s := range dump.Symbols {
		if !locals && s.Kind == "variable" && strings.Contains(s.Owner, "(") {
			continue
		}
		name := s.Name
		if s.Signature != "" {
			name = s.Signature
		}
		if s.Owner != "" && s.Kind != "variable" {
			name = s.Owner + "." + name
		} else if s.Owner != "" {
			name = s.Owner + "#" + name
		}
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			kindStyle.Render(s.Kind),
			nameStyle.Render(name),
			typeStyle.Render(s.Type),
			countStyle.Render(strconv.Itoa(s.Usages)+" uses"),
		)
		fmt.Fprintf(w, "  %4d  %s\n", s.Line, row)
	}
}
