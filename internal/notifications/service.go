package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/aiseo/brand-visibility/internal/config"
	"github.com/aiseo/brand-visibility/internal/models"
	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Service handles sending notifications via various channels
type Service struct {
	config *config.Config
	client *resty.Client
	dialer mailDialer
}

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Ensure Service implements NotificationInterface
var _ NotificationInterface = (*Service)(nil)

// TeamsMessage represents a Microsoft Teams message
type TeamsMessage struct {
	Type       string         `json:"@type"`
	Context    string         `json:"@context"`
	ThemeColor string         `json:"themeColor,omitempty"`
	Title      string         `json:"title"`
	Text       string         `json:"text"`
	Sections   []TeamsSection `json:"sections,omitempty"`
}

type TeamsSection struct {
	ActivityTitle    string      `json:"activityTitle,omitempty"`
	ActivitySubtitle string      `json:"activitySubtitle,omitempty"`
	ActivityText     string      `json:"activityText,omitempty"`
	Facts            []TeamsFact `json:"facts,omitempty"`
	Markdown         bool        `json:"markdown,omitempty"`
}

type TeamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewService creates a new notification service
func NewService(cfg *config.Config) *Service {
	return &Service{
		config: cfg,
		client: resty.New().SetTimeout(30 * time.Second),
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

// SendReport sends a report via configured notification channels
func (s *Service) SendReport(report *models.Report) error {
	var errors []string

	if s.config.TeamsWebhookURL != "" {
		if err := s.postToTeams(s.buildTeamsMessage(report)); err != nil {
			logrus.Errorf("Failed to send Teams notification: %v", err)
			errors = append(errors, fmt.Sprintf("Teams: %v", err))
		} else {
			logrus.Info("Successfully sent report to Teams")
		}
	}

	if s.config.NotificationEmail != "" {
		if err := s.sendEmail(report); err != nil {
			logrus.Errorf("Failed to send email notification: %v", err)
			errors = append(errors, fmt.Sprintf("Email: %v", err))
		} else {
			logrus.Info("Successfully sent report via email")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("notification errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// SendAlert posts a visibility alert to Teams, falling back to email
func (s *Service) SendAlert(alert *models.Alert) error {
	if s.config.TeamsWebhookURL != "" {
		return s.postToTeams(s.buildTeamsAlert(alert))
	}

	if s.config.NotificationEmail != "" {
		m := gomail.NewMessage()
		m.SetHeader("From", s.config.SMTPUsername)
		m.SetHeader("To", s.config.NotificationEmail)
		m.SetHeader("Subject", fmt.Sprintf("[%s] %s", strings.ToUpper(alert.Type), alert.Title))
		m.SetBody("text/plain", alert.Message)
		if err := s.dialer.DialAndSend(m); err != nil {
			return fmt.Errorf("failed to send alert email: %w", err)
		}
		return nil
	}

	logrus.Infof("No notification channel configured, alert dropped: %s - %s", alert.Type, alert.Title)
	return nil
}

func (s *Service) postToTeams(message *TeamsMessage) error {
	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(message).
		Post(s.config.TeamsWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Teams message: %w", err)
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("Teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	return nil
}

func (s *Service) buildTeamsMessage(report *models.Report) *TeamsMessage {
	message := &TeamsMessage{
		Type:    "MessageCard",
		Context: "https://schema.org/extensions",
		Title:   fmt.Sprintf("AI Visibility Report - %s", titleCase(report.Period)),
		Text:    fmt.Sprintf("Brand visibility across %d AI answer runs", report.TotalRuns),
	}

	facts := []TeamsFact{
		{Name: "Generated", Value: report.GeneratedAt.Format("2006-01-02 15:04:05 UTC")},
	}
	if report.Primary != nil {
		facts = append(facts,
			TeamsFact{Name: report.Primary.Name + " Visibility", Value: formatVisibility(report.Primary.Visibility, report.Primary.Trend)},
			TeamsFact{Name: "Average Position", Value: formatPosition(report.Primary.AvgPosition)},
		)
	}
	message.Sections = append(message.Sections, TeamsSection{
		ActivityTitle: "Summary",
		Facts:         facts,
		Markdown:      true,
	})

	if len(report.Brands) > 0 {
		var lines []string
		for i, b := range report.Brands {
			lines = append(lines, fmt.Sprintf("%d. **%s** - %s, avg position %s",
				i+1, b.Name, formatVisibility(b.Visibility, b.Trend), formatPosition(b.AvgPosition)))
		}
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Brand Ranking",
			ActivityText:  strings.Join(lines, "\n\n"),
			Markdown:      true,
		})
	}

	if len(report.TopSources) > 0 {
		var sourceFacts []TeamsFact
		for _, src := range report.TopSources {
			sourceFacts = append(sourceFacts, TeamsFact{Name: src.Domain, Value: formatNumber(src.UsageRate) + "% usage"})
		}
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: "Top Cited Sources",
			Facts:         sourceFacts,
		})
	}

	return message
}

func (s *Service) buildTeamsAlert(alert *models.Alert) *TeamsMessage {
	color := "FFA500"
	if alert.Type == "critical" {
		color = "D13438"
	}

	message := &TeamsMessage{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: color,
		Title:      alert.Title,
		Text:       alert.Message,
	}

	if alert.Brand != nil {
		message.Sections = append(message.Sections, TeamsSection{
			ActivityTitle: alert.Brand.Name,
			Facts: []TeamsFact{
				{Name: "Visibility", Value: formatVisibility(alert.Brand.Visibility, alert.Brand.Trend)},
				{Name: "Mentions", Value: strconv.Itoa(alert.Brand.Mentions)},
				{Name: "Negative Mentions", Value: strconv.Itoa(alert.Brand.Sentiment.Negative)},
			},
		})
	}

	return message
}

func (s *Service) sendEmail(report *models.Report) error {
	subject := fmt.Sprintf("AI Visibility Report - %s", titleCase(report.Period))
	if report.Primary != nil {
		subject = fmt.Sprintf("%s (%s %s%%)", subject, report.Primary.Name, formatNumber(report.Primary.Visibility))
	}

	htmlBody, err := s.buildEmailHTML(report)
	if err != nil {
		return fmt.Errorf("failed to build email HTML: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.SMTPUsername)
	m.SetHeader("To", s.config.NotificationEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", s.buildEmailText(report))
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

const emailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>AI Visibility Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        .header { background-color: #0e7490; color: white; padding: 20px; border-radius: 5px; }
        table { border-collapse: collapse; width: 100%; margin: 20px 0; }
        th, td { text-align: left; padding: 8px; border-bottom: 1px solid #ddd; }
        .up { color: #107c10; }
        .down { color: #d13438; }
        .stable { color: #605e5c; }
        .primary { font-weight: bold; }
    </style>
</head>
<body>
    <div class="header">
        <h1>AI Visibility Report</h1>
        <p>{{.Period | title}} report generated on {{.GeneratedAt.Format "January 2, 2006 at 3:04 PM UTC"}}</p>
    </div>

    <h2>Brands</h2>
    <table>
        <tr><th>Brand</th><th>Visibility</th><th>Avg Position</th><th>Mentions</th><th>Trend</th></tr>
        {{range .Brands}}
        <tr class="{{.Kind}}">
            <td>{{.Name}}</td>
            <td>{{.Visibility | number}}%</td>
            <td>{{.AvgPosition | position}}</td>
            <td>{{.Mentions}}</td>
            <td class="{{.Trend.Direction}}">{{.Trend.Direction}}{{if not .Trend.Provisional}} ({{.Trend.Delta | number}}){{end}}</td>
        </tr>
        {{end}}
    </table>

    {{if .TopSources}}
    <h2>Top Cited Sources</h2>
    <ul>
    {{range .TopSources}}
        <li>{{.Domain}} - {{.UsageRate | number}}% usage</li>
    {{end}}
    </ul>
    {{end}}

    <hr>
    <p><small>This report was generated automatically by the brand visibility service.</small></p>
</body>
</html>
`

func (s *Service) buildEmailHTML(report *models.Report) (string, error) {
	t, err := template.New("email").Funcs(template.FuncMap{
		"title":    titleCase,
		"number":   formatNumber,
		"position": formatPosition,
	}).Parse(emailTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, report); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Service) buildEmailText(report *models.Report) string {
	var text strings.Builder

	text.WriteString(fmt.Sprintf("AI Visibility Report - %s\n", titleCase(report.Period)))
	text.WriteString(fmt.Sprintf("Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC")))

	text.WriteString("BRANDS\n")
	text.WriteString("======\n")
	for i, b := range report.Brands {
		text.WriteString(fmt.Sprintf("%d. %s: %s, avg position %s, %d mentions\n",
			i+1, b.Name, formatVisibility(b.Visibility, b.Trend), formatPosition(b.AvgPosition), b.Mentions))
	}

	if len(report.TopSources) > 0 {
		text.WriteString("\nTOP CITED SOURCES\n")
		text.WriteString("=================\n")
		for _, src := range report.TopSources {
			text.WriteString(fmt.Sprintf("- %s (%s%% usage)\n", src.Domain, formatNumber(src.UsageRate)))
		}
	}

	text.WriteString("\n---\nThis report was generated automatically by the brand visibility service.\n")

	return text.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPosition(v float64) string {
	if v <= 0 {
		return "-"
	}
	return "#" + formatNumber(v)
}

func formatVisibility(v float64, trend models.Trend) string {
	out := formatNumber(v) + "%"
	if trend.Provisional {
		return out
	}
	switch trend.Direction {
	case models.TrendUp:
		out += fmt.Sprintf(" (up %s)", formatNumber(trend.Delta))
	case models.TrendDown:
		out += fmt.Sprintf(" (down %s)", formatNumber(-trend.Delta))
	}
	return out
}
