package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/momentum/internal/constants"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

func Warn(format string, args ...interface{}) {
	fmt.Println(warnStyle.Render("⚠ " + fmt.Sprintf(format, args...)))
}

func Fail(format string, args ...interface{}) {
	fmt.Println(failStyle.Render("❌ " + fmt.Sprintf(format, args...)))
}

func Muted(s string) string {
	return mutedStyle.Render(s)
}

func Header(s string) string {
	return headerStyle.Render(s)
}

// Percent renders a [0, 1] ratio as a whole percentage.
func Percent(ratio float64) string {
	return fmt.Sprintf("%.0f%%", ratio*100)
}

// Date renders an optional timestamp as YYYY-MM-DD, or "never".
func Date(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format(constants.DateFormat)
}
