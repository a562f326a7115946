package cli

import (
	"time"

	"github.com/fatih/color"
)

const timeLayout = "2006-01-02 15:04"

// tierColor returns the display color for a stamp tier.
func tierColor(tier string) *color.Color {
	switch tier {
	case "bronze":
		return color.New(color.FgYellow)
	case "silver":
		return color.New(color.FgWhite)
	case "gold":
		return color.New(color.FgHiYellow, color.Bold)
	case "platinum":
		return color.New(color.FgHiCyan)
	case "diamond":
		return color.New(color.FgHiBlue, color.Bold)
	case "spark":
		return color.New(color.FgHiMagenta)
	}
	return color.New(color.Reset)
}

func colorTier(tier string) string {
	return tierColor(tier).Sprint(tier)
}

func colorStatus(status string) string {
	switch status {
	case "sent":
		return color.New(color.FgHiBlack).Sprint(status)
	case "delivered":
		return color.New(color.FgHiGreen).Sprint(status)
	case "opened":
		return color.New(color.FgCyan).Sprint(status)
	case "purged":
		return color.New(color.FgHiBlack).Sprint(status)
	}
	return status
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
