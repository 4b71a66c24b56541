package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsDedup/internal/domain"
	"NewsDedup/internal/ports"
)

const defaultAPIURL = "https://api.telegram.org"

// Notifier sends stage summaries to a Telegram chat via bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiURL   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier. apiURL overrides the
// Bot API host and defaults to api.telegram.org.
func NewNotifier(botToken, chatID, apiURL string) *Notifier {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		apiURL:   strings.TrimRight(apiURL, "/"),
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishSummary posts a Markdown summary of one stage report.
func (n *Notifier) PublishSummary(ctx context.Context, report domain.Report) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiURL, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", FormatSummary(report))
	form.Set("parse_mode", "Markdown")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

// FormatSummary renders the counters of a report as a chat message.
func FormatSummary(r domain.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Deduplication: %s*", r.Stage)
	if r.DryRun {
		b.WriteString(" (dry run)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Groups: %d\n", r.Summary.TotalDuplicateGroups)
	fmt.Fprintf(&b, "Kept: %d\n", r.Summary.TotalKept)
	fmt.Fprintf(&b, "Deleted: %d (archive %d, duplicates %d)\n",
		r.Summary.TotalDeleted, r.Summary.TotalArchiveDeleted, r.Summary.TotalInternalDeleted)
	fmt.Fprintf(&b, "Strategic kept: %d\n", r.Summary.TotalStrategicKept)
	if r.Summary.TotalRelevanceKept > 0 {
		fmt.Fprintf(&b, "Relevance kept: %d\n", r.Summary.TotalRelevanceKept)
	}
	return b.String()
}
