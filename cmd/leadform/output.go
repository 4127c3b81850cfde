package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"charm.land/glamour/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/colorprofile"

	"github.com/terrasite/leadform/internal/notice"
	"github.com/terrasite/leadform/internal/tui/theme"
)

// highlightJSON writes data to w, colored when w is a terminal that
// supports it.
func highlightJSON(w io.Writer, data []byte) error {
	var name string
	switch colorprofile.Detect(w, os.Environ()) {
	case colorprofile.TrueColor:
		name = "terminal16m"
	case colorprofile.ANSI256:
		name = "terminal256"
	case colorprofile.ANSI:
		name = "terminal16"
	default:
		_, err := fmt.Fprintln(w, string(data))
		return err
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	formatter := formatters.Get(name)
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, string(data))
	if err != nil {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	if err := formatter.Format(w, style, iterator); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

// renderMarkdown renders markdown with glamour, falling back to the
// source on failure.
func renderMarkdown(content string, width int) string {
	if width > 120 {
		width = 120
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSuffix(rendered, "\n")
}

// renderNotice formats a notice line for the terminal.
func renderNotice(kind notice.Kind, text string) string {
	s := theme.Current().S()
	switch kind {
	case notice.KindError:
		return s.ToastError.Render("✗ " + text)
	case notice.KindSuccess:
		return s.ToastSuccess.Render("✓ " + text)
	default:
		return s.ToastInfo.Render("ℹ " + text)
	}
}
