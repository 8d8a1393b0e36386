package terminal

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/accepted/internal/engine"
	"github.com/dshills/accepted/internal/syntax"
)

// Theme holds the styles the screen draws with.
type Theme struct {
	Text      tcell.Style
	Gutter    tcell.Style
	Selection tcell.Style

	// Kinds maps a highlight kind to its style. Missing kinds draw as Text.
	Kinds map[syntax.Kind]tcell.Style

	Status      tcell.Style
	StatusMode  tcell.Style
	Message     tcell.Style
	MessageErr  tcell.Style
	OutputTitle tcell.Style
	OutputError tcell.Style

	Popup         tcell.Style
	PopupSelected tcell.Style
	PopupDetail   tcell.Style
}

// DefaultTheme uses the terminal's 16-color palette so it follows the
// user's color scheme.
func DefaultTheme() Theme {
	text := tcell.StyleDefault
	return Theme{
		Text:      text,
		Gutter:    text.Foreground(tcell.ColorGray),
		Selection: text.Reverse(true),
		Kinds: map[syntax.Kind]tcell.Style{
			syntax.KindKeyword:      text.Foreground(tcell.ColorPurple).Bold(true),
			syntax.KindType:         text.Foreground(tcell.ColorTeal),
			syntax.KindFunction:     text.Foreground(tcell.ColorBlue),
			syntax.KindString:       text.Foreground(tcell.ColorGreen),
			syntax.KindNumber:       text.Foreground(tcell.ColorOlive),
			syntax.KindComment:      text.Foreground(tcell.ColorGray).Italic(true),
			syntax.KindPreprocessor: text.Foreground(tcell.ColorFuchsia),
			syntax.KindOperator:     text.Foreground(tcell.ColorSilver),
		},
		Status:        text.Reverse(true),
		StatusMode:    text.Reverse(true).Bold(true),
		Message:       text,
		MessageErr:    text.Foreground(tcell.ColorRed).Bold(true),
		OutputTitle:   text.Bold(true).Underline(true),
		OutputError:   text.Foreground(tcell.ColorRed),
		Popup:         text.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite),
		PopupSelected: text.Background(tcell.ColorWhite).Foreground(tcell.ColorNavy),
		PopupDetail:   text.Background(tcell.ColorNavy).Foreground(tcell.ColorSilver),
	}
}

// kind returns the style for highlight kind k.
func (t Theme) kind(k syntax.Kind) tcell.Style {
	if s, ok := t.Kinds[k]; ok {
		return s
	}
	return t.Text
}

// severityColor returns the gutter and underline color for a diagnostic level.
func severityColor(s engine.Severity) tcell.Color {
	switch s {
	case engine.SeverityError:
		return tcell.ColorRed
	case engine.SeverityWarning:
		return tcell.ColorYellow
	case engine.SeverityInfo:
		return tcell.ColorBlue
	default:
		return tcell.ColorGray
	}
}
