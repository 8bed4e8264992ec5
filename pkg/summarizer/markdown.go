package summarizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/ideamans/go-l10n"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	translate func(string) string
	version   string
}

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator replaces the label translator (l10n.T by default).
func WithTranslator(fn func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.translate = fn
	}
}

// WithVersion adds the tool version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{translate: l10n.T}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.translate
	var b strings.Builder

	title := "Encode Summary"
	if s.Operation == "decode" {
		title = "Decode Summary"
	}
	fmt.Fprintf(&b, "# %s\n\n", t(title))

	b.WriteString("| | |\n|---|---|\n")
	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "| %s | %s |\n", t(label), value)
		}
	}

	row("Run ID", s.Run.ID)
	row("Input", s.Run.Input)
	row("Handle", s.Run.Handle)
	row("Output", s.Run.Output)
	if s.Run.Duration > 0 {
		row("Duration", s.Run.Duration.Round(time.Millisecond).String())
	}

	fmt.Fprintf(&b, "\n## %s\n\n| | |\n|---|---|\n", t("Payload"))
	row("Payload Size", formatBytes(s.Payload.Length))
	if s.Payload.Compressed {
		row("Compressed Size", formatBytes(s.Payload.StoredLength))
		if s.Payload.Length > 0 {
			row("Ratio", fmt.Sprintf("%.1f%%", float64(s.Payload.StoredLength)*100/float64(s.Payload.Length)))
		}
	}
	row("SHA-256", codeSpan(s.Payload.SHA256))

	fmt.Fprintf(&b, "\n## %s\n\n| | |\n|---|---|\n", t("Frames"))
	row("Frame Size", fmt.Sprintf("%dx%d", s.Frames.Width, s.Frames.Height))
	row("Bytes per Frame", formatBytes(int64(s.Frames.Capacity())))
	row("Frame Count", fmt.Sprintf("%d", s.Frames.Count))
	row("Header", s.Frames.Header)

	fmt.Fprintf(&b, "\n## %s\n\n| | |\n|---|---|\n", t("Transport"))
	row("Kind", s.Transport.Kind)
	row("Codec", s.Transport.Codec)
	if s.Transport.FPS > 0 && s.Transport.Codec != "" {
		row("FPS", fmt.Sprintf("%g", s.Transport.FPS))
	}

	fmt.Fprintf(&b, "\n## %s\n\n| | |\n|---|---|\n", t("Checks"))
	row("Read-back Verification", f.yesNo(s.Checks.Verified))
	row("Manifest", s.Checks.ManifestPath)
	if s.Operation == "decode" {
		row("Digest Match", f.yesNo(s.Checks.DigestChecked))
	}

	b.WriteString("\n---\n\n")
	footer := t("Generated at") + " " + s.GeneratedAt.Format(time.RFC3339)
	if f.version != "" {
		footer += " · data2video " + f.version
	}
	b.WriteString(footer + "\n")

	return b.String()
}

func (f *MarkdownFormatter) yesNo(v bool) string {
	if v {
		return f.translate("Yes")
	}
	return f.translate("No")
}

func codeSpan(s string) string {
	if s == "" {
		return ""
	}
	return "`" + s + "`"
}

// formatBytes renders n with binary units.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 2; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %s", float64(n)/float64(div), []string{"KB", "MB", "GB"}[exp])
}
