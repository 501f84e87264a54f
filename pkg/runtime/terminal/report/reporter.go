package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/de-tools/entra-atlas/pkg/models/domain"
	"github.com/de-tools/entra-atlas/pkg/services/auth"
	"github.com/de-tools/entra-atlas/pkg/services/scan"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00CEC9"))
	metaStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#636e72"))
	fixedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#636e72")).Strikethrough(true)

	badgeStyles = map[domain.RiskBadge]lipgloss.Style{
		domain.RiskBadgeGood:             lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2ecc71")),
		domain.RiskBadgeNeedsImprovement: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f1c40f")),
		domain.RiskBadgeCritical:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e74c3c")),
	}
	severityStyles = map[domain.Severity]lipgloss.Style{
		domain.SeverityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c")),
		domain.SeverityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("#f1c40f")),
		domain.SeverityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("#3498db")),
	}
)

type TableConfig struct {
	IDWidth       int
	SeverityWidth int
	CategoryWidth int
	TitleWidth    int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		IDWidth:       30,
		SeverityWidth: 8,
		CategoryWidth: 16,
		TitleWidth:    44,
	}
}

// Reporter renders scans, histories and session details as terminal text.
type Reporter struct {
	writer  io.Writer
	config  TableConfig
	scanTpl *template.Template
	histTpl *template.Template
}

type scanView struct {
	Data    domain.ScanData
	Current int
	Badge   domain.RiskBadge
	Open    int
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	r := &Reporter{writer: writer, config: DefaultTableConfig()}
	funcs := r.funcs()
	r.scanTpl = template.Must(template.New("scan").Funcs(funcs).Parse(scanTemplate))
	r.histTpl = template.Must(template.New("history").Funcs(funcs).Parse(historyTemplate))
	return r
}

const scanTemplate = `
{{title .Data.Summary.TenantName}} {{meta .Data.Summary.TenantID}}
Scan {{.Data.Summary.ID}} at {{.Data.Summary.Timestamp.Format "2006-01-02 15:04 MST"}} ({{source .Data.UsesRealData}} data)

Risk score: {{badge .Current .Badge}}{{if ne .Current .Data.Summary.OverallRiskScore}} {{meta (printf "was %d at scan time" .Data.Summary.OverallRiskScore)}}{{end}}
Open issues: {{.Open}} of {{len .Data.Issues}}, fixed: {{.Data.IssuesFixed}}
{{range $category, $score := .Data.Summary.CategoryScores}}
  {{printf "%-18s" $category}} {{$score}}{{end}}

{{separator}}
{{row "ID" "SEVERITY" "CATEGORY" "ISSUE"}}
{{separator}}
{{range .Data.Issues}}{{issueRow .}}
{{end}}{{separator}}
{{if .Data.AccessWarnings}}
Access warnings (not scored):
{{range .Data.AccessWarnings}}- {{.Type}}: {{.Description}}
{{end}}{{end}}`

const historyTemplate = `{{if not .}}No scans recorded.
{{else}}{{range .}}{{.Timestamp.Format "2006-01-02 15:04"}}  {{printf "%-36s" .ID}}  {{badge .OverallRiskScore .RiskBadge}}  {{.TenantName}}
{{end}}{{end}}`

func (r *Reporter) funcs() template.FuncMap {
	cfg := r.config
	return template.FuncMap{
		"title": func(s string) string {
			if s == "" {
				s = "Unknown tenant"
			}
			return titleStyle.Render(s)
		},
		"meta": func(s string) string { return metaStyle.Render(s) },
		"source": func(real bool) string {
			if real {
				return "live"
			}
			return "demo"
		},
		"badge": func(score int, badge domain.RiskBadge) string {
			return badgeStyles[badge].Render(fmt.Sprintf("%d/100 %s", score, badge))
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", cfg.IDWidth+2),
				strings.Repeat("-", cfg.SeverityWidth+2),
				strings.Repeat("-", cfg.CategoryWidth+2),
				strings.Repeat("-", cfg.TitleWidth+2))
		},
		"row": func(id, severity, category, title string) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %-*s |",
				cfg.IDWidth, truncate(id, cfg.IDWidth),
				cfg.SeverityWidth, severity,
				cfg.CategoryWidth, truncate(category, cfg.CategoryWidth),
				cfg.TitleWidth, truncate(title, cfg.TitleWidth))
		},
		"issueRow": func(issue domain.SecurityIssue) string {
			category := "Other"
			if c, ok := domain.CategoryOf(issue); ok {
				category = string(c)
			}
			severity := fmt.Sprintf("%-*s", cfg.SeverityWidth, issue.Severity)
			title := fmt.Sprintf("%-*s", cfg.TitleWidth, truncate(issue.Type, cfg.TitleWidth))
			if issue.IsOpen() {
				severity = severityStyles[issue.Severity].Render(severity)
			} else {
				title = fixedStyle.Render(title)
			}
			return fmt.Sprintf("| %-*s | %s | %-*s | %s |",
				cfg.IDWidth, truncate(issue.ID, cfg.IDWidth),
				severity,
				cfg.CategoryWidth, truncate(category, cfg.CategoryWidth),
				title)
		},
	}
}

func (r *Reporter) Scan(data domain.ScanData) error {
	current := scan.RiskScore(data.Issues)
	view := scanView{
		Data:    data,
		Current: current,
		Badge:   scan.Badge(current),
		Open:    len(data.OpenIssues()),
	}
	if err := r.scanTpl.Execute(r.writer, view); err != nil {
		return fmt.Errorf("failed to render scan: %w", err)
	}
	return nil
}

func (r *Reporter) History(summaries []domain.ScanSummary) error {
	if err := r.histTpl.Execute(r.writer, summaries); err != nil {
		return fmt.Errorf("failed to render history: %w", err)
	}
	return nil
}

func (r *Reporter) Login(claims auth.Claims) error {
	user := claims.UPN
	if user == "" {
		user = "(unknown user)"
	}
	_, err := fmt.Fprintf(r.writer, "Signed in as %s to tenant %s. Token valid until %s.\n",
		user, claims.TenantID, claims.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return err
}

func (r *Reporter) Messagef(format string, args ...any) error {
	_, err := fmt.Fprintf(r.writer, format+"\n", args...)
	return err
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
