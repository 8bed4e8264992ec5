package summarizer

// Formatter renders a Summary for a report file. MarkdownFormatter is the
// one the CLI uses.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc lets a plain function act as a Formatter.
type FormatFunc func(summary *Summary) string

func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}
