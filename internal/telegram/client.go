// Package telegram provides a client for sending turnout summaries via the
// Telegram Bot API. It formats per-entity round comparisons into a
// human-readable message and handles delivery with retry logic.
package telegram

import (
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/prezmon/prezmon/internal/models"
)

// EntityLine is one entity's row in a summary message.
type EntityLine struct {
	Name     string
	Snapshot models.EntitySnapshot
}

// Summary is the per-cycle digest sent after an aggregation cycle completes.
type Summary struct {
	GeneratedAt time.Time
	Entities    []EntityLine
	LiveTotal   int64
	// LiveDelta is the live total minus the last hourly snapshot's total,
	// i.e. votes counted since the top of the hour.
	LiveDelta int64
}

// Client handles Telegram notifications.
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client.
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// Send delivers a turnout summary, retrying with a linear backoff.
func (c *Client) Send(summary Summary) error {
	msg := tgbotapi.NewMessage(c.chatID, formatMessage(summary))
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// formatMessage formats a summary into a MarkdownV2 message.
func formatMessage(summary Summary) string {
	message := "🗳 *Turnout Update*\n\n"
	message += fmt.Sprintf("📅 %s\n\n", escapeMarkdownV2(summary.GeneratedAt.Format("2006-01-02 15:04")))

	for _, line := range summary.Entities {
		snap := line.Snapshot

		trendEmoji := "📈"
		if snap.Difference() < 0 {
			trendEmoji = "📉"
		}

		name := escapeMarkdownV2(line.Name)
		votesStr := escapeMarkdownV2(formatVotes(snap.Round2Votes))
		deltaStr := escapeMarkdownV2(fmt.Sprintf("%+.1f%%", snap.DeltaPercent()))
		hourlyStr := escapeMarkdownV2(formatVotes(snap.HourlyIncrease))

		message += fmt.Sprintf("*%s*: %s %s %s vs round 1\n", name, votesStr, trendEmoji, deltaStr)
		message += fmt.Sprintf("   last hour: \\+%s\n", hourlyStr)
	}

	liveStr := escapeMarkdownV2(formatVotes(summary.LiveTotal))
	liveDeltaStr := escapeMarkdownV2(formatVotes(summary.LiveDelta))
	message += fmt.Sprintf("\n⏱ Live total: %s \\(\\+%s this hour\\)\n", liveStr, liveDeltaStr)

	return message
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	result := ""
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			result += "\\" + string(char)
		default:
			result += string(char)
		}
	}
	return result
}

// formatVotes renders a vote count with thousands separators, e.g. 1234567 -> "1,234,567".
func formatVotes(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	s := strconv.FormatInt(v, 10)
	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	groups = append([]string{s}, groups...)

	out := groups[0]
	for _, g := range groups[1:] {
		out += "," + g
	}
	return sign + out
}
