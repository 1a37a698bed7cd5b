package goSession

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/session"
)

func classLabel(class SessionClass) string {
	switch class {
	case session.ClassSmartAuth:
		return "🚀 Smart Auth"
	case session.ClassManualLogin:
		return "🔐 Manual Login"
	case session.ClassAdmin:
		return "👨‍💼 Admin Session"
	default:
		return "🔐 Login"
	}
}

// remainingText renders d as "N hours" from two hours up, "1h Mm" within the
// last two hours and "Mm" under one hour. Minutes are floored, never below 1.
func remainingText(d time.Duration) string {
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	switch {
	case hours >= 2:
		return fmt.Sprintf("%d hours", hours)
	case hours == 1:
		return fmt.Sprintf("1h %dm", minutes)
	}
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%dm", minutes)
}

func warningMessage(info SessionInfo) string {
	var b strings.Builder
	b.WriteString("⏰ Session Timeout Warning\n\n")
	fmt.Fprintf(&b, "🔓 Session Type: %s\n", classLabel(info.Class))
	fmt.Fprintf(&b, "⌛ Time Remaining: %s\n\n", remainingText(info.TimeUntilInactive))
	b.WriteString("Your session will expire soon due to inactivity.\n\n")
	b.WriteString("💡 To keep your session active:\n")
	b.WriteString("• Use /menu to access main menu\n")
	b.WriteString("• Use /my_tickets to view your tickets\n")
	b.WriteString("• Use /new_ticket to create a ticket\n")
	b.WriteString("• Use /me for quick re-authentication\n\n")
	fmt.Fprintf(&b, "📊 Activities: %d commands used", info.ActivityCount)
	return b.String()
}

func forcedLogoutMessage(reason string) string {
	return fmt.Sprintf(
		"🔒 Your session has been terminated.\n\nReason: %s\n\nUse /login or /me to authenticate again.",
		reasonOrDefault(reason, "administrative action"),
	)
}

func extensionMessage(hours int, reason string) string {
	return fmt.Sprintf("⏰ Your session has been extended by %d hours.\n\nReason: %s", hours, reasonOrDefault(reason, "manual"))
}

func adminReportMessage(stats ServiceStats) string {
	var b strings.Builder
	b.WriteString("📊 Session Management Report\n\n")
	status := "❌ Stopped"
	if stats.Running {
		status = "✅ Running"
	}
	fmt.Fprintf(&b, "🔧 Service Status: %s\n", status)
	fmt.Fprintf(&b, "⏰ Uptime: %s\n", stats.Uptime.Truncate(time.Second))
	fmt.Fprintf(&b, "📈 Active Sessions: %d\n", stats.ActiveSessions)
	fmt.Fprintf(&b, "⚠️ Sessions with Warnings: %d\n\n", stats.WarnedSessions)

	b.WriteString("📊 Session Types:\n")
	classes := make([]SessionClass, 0, len(stats.SessionsByClass))
	for class := range stats.SessionsByClass {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	for _, class := range classes {
		fmt.Fprintf(&b, "%s: %d\n", classLabel(class), stats.SessionsByClass[class])
	}

	b.WriteString("\n📈 Statistics:\n")
	fmt.Fprintf(&b, "📨 Total Warnings Sent: %d\n", stats.WarningsSent)
	fmt.Fprintf(&b, "🚫 Total Warnings Failed: %d\n", stats.WarningsFailed)
	fmt.Fprintf(&b, "🧹 Total Sessions Cleaned: %d\n", stats.SessionsCleaned)
	fmt.Fprintf(&b, "🕐 Last Cleanup: %s", timeOrNever(stats.LastSweep))
	return b.String()
}

func reasonOrDefault(reason, fallback string) string {
	if reason = strings.TrimSpace(reason); reason == "" {
		return fallback
	}
	return reason
}

func timeOrNever(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
