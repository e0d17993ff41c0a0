package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"dlvm/internal/ir"
)

// Level is the severity of a reported diagnostic.
type Level string

const (
	Error Level = "error"
	Note  Level = "note"
	Help  Level = "help"
)

// Report pairs an ir.Diagnostic with its code, level, and optional
// follow-up help text, mirroring the shape a caller building tooling on
// top of this library (a REPL, a lint command) wants to print.
type Report struct {
	Level    Level
	Code     string
	Message  string
	Location string // identity path, e.g. "@f/entry/%v0"
	HelpText string
}

// NewReport builds a Report from a raw ir.Diagnostic, deriving its code
// from the diagnostic's kind and its location from the entity chain
// Verify attached (function/block/instruction by name, since the IR
// carries no source positions).
func NewReport(d ir.Diagnostic) Report {
	return Report{
		Level:    Error,
		Code:     CodeForKind(d.Kind.String()),
		Message:  d.Message,
		Location: locationOf(d),
		HelpText: Description(CodeForKind(d.Kind.String())),
	}
}

func locationOf(d ir.Diagnostic) string {
	var b strings.Builder
	if d.Function != nil {
		b.WriteString("@" + d.Function.Name)
	}
	if d.Block != nil {
		b.WriteString("/" + d.Block.Name)
	}
	if d.Instruction != nil && d.Instruction.Name != "" {
		b.WriteString("/%" + d.Instruction.Name)
	}
	if b.Len() == 0 {
		return "<module>"
	}
	return b.String()
}

// Reporter formats Reports for a terminal, in the teacher's Rust-like
// compiler-diagnostic style, minus the source-line context a real
// source file would provide (spec §6: the IR is a pure in-memory
// library with no source text to quote).
type Reporter struct{}

// NewReporter builds a Reporter. It holds no state: unlike a
// source-backed error reporter, there is no file or line table to
// carry between calls.
func NewReporter() *Reporter { return &Reporter{} }

// Format renders one Report as a multi-line, colorized diagnostic.
func (r *Reporter) Format(rep Report) string {
	var out strings.Builder

	levelColor := r.levelColor(rep.Level)
	dim := color.New(color.Faint).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	if rep.Code != "" {
		out.WriteString(fmt.Sprintf("%s[%s]: %s\n", levelColor(string(rep.Level)), rep.Code, rep.Message))
	} else {
		out.WriteString(fmt.Sprintf("%s: %s\n", levelColor(string(rep.Level)), rep.Message))
	}

	out.WriteString(fmt.Sprintf("  %s %s\n", dim("-->"), bold(rep.Location)))

	if rep.HelpText != "" {
		helpColor := color.New(color.FgGreen).SprintFunc()
		out.WriteString(fmt.Sprintf("  %s %s %s\n", dim("="), helpColor("help:"), rep.HelpText))
	}

	return out.String()
}

// FormatAll renders a batch of diagnostics, in order, separated by a
// blank line.
func (r *Reporter) FormatAll(diags []ir.Diagnostic) string {
	var out strings.Builder
	for _, d := range diags {
		out.WriteString(r.Format(NewReport(d)))
		out.WriteString("\n")
	}
	return out.String()
}

func (r *Reporter) levelColor(level Level) func(...interface{}) string {
	switch level {
	case Error:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Help:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}
