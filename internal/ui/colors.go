package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	infoStyle    lipgloss.Style
	dimStyle     lipgloss.Style
	headerStyle  lipgloss.Style
	titleStyle   lipgloss.Style
	pathStyle    lipgloss.Style
	roleStyles   map[string]lipgloss.Style
)

func init() {
	initStyles()
}

func initStyles() {
	if !IsTerminal() {
		plain := lipgloss.NewStyle()
		successStyle, errorStyle, warningStyle, infoStyle = plain, plain, plain, plain
		dimStyle, headerStyle, titleStyle, pathStyle = plain, plain, plain, plain
		roleStyles = map[string]lipgloss.Style{}
		return
	}

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	pathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	roleStyles = map[string]lipgloss.Style{
		"movie":          lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"movie_extra":    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		"subtitle":       lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		"subtitle_extra": lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		"trailer":        lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"leftover":       dimStyle,
	}
}

func Success(text string) string { return successStyle.Render(text) }
func Error(text string) string   { return errorStyle.Render(text) }
func Warning(text string) string { return warningStyle.Render(text) }
func Info(text string) string    { return infoStyle.Render(text) }
func Dim(text string) string     { return dimStyle.Render(text) }
func Path(text string) string    { return pathStyle.Render(text) }

// Title renders a movie title.
func Title(text string) string {
	return titleStyle.Render(text)
}

// Role renders a file role name in its color.
func Role(role string) string {
	if style, ok := roleStyles[role]; ok {
		return style.Render(role)
	}
	return role
}

// SuccessMsg writes a success message
func SuccessMsg(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, Success("✓")+" "+fmt.Sprintf(format, args...))
}

// ErrorMsg writes an error message
func ErrorMsg(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, Error("✗")+" "+fmt.Sprintf(format, args...))
}

// WarningMsg writes a warning message
func WarningMsg(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, Warning("⚠")+" "+fmt.Sprintf(format, args...))
}

// InfoMsg writes an info message
func InfoMsg(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, Info("ℹ")+" "+fmt.Sprintf(format, args...))
}
