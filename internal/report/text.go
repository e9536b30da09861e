package report

import (
	"fmt"
	"strings"

	"github.com/leefowlercu/compage/engine"
)

// TextFormatter renders a report for terminals.
type TextFormatter struct{}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter() *TextFormatter {
	return &TextFormatter{}
}

// Name returns the formatter name.
func (f *TextFormatter) Name() string {
	return "text"
}

// ContentType returns the MIME content type.
func (f *TextFormatter) ContentType() string {
	return "text/plain"
}

// Format renders the components section followed by the instances section.
func (f *TextFormatter) Format(r *Report) ([]byte, error) {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Components (%d)", len(r.Components))))
	b.WriteString("\n")
	for _, c := range r.Components {
		b.WriteString(sectionStyle.Render(componentLine(c)))
		b.WriteString("\n")
		for _, fi := range c.Fields {
			line := fmt.Sprintf("  %s %s = %s", labelStyle.Render(fi.Name), mutedStyle.Render(fi.Kind), fi.Default)
			b.WriteString(sectionStyle.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(fmt.Sprintf("Instances (%d)", len(r.Instances))))
	b.WriteString("\n")
	if len(r.Instances) == 0 {
		b.WriteString(sectionStyle.Render(mutedStyle.Render("none loaded")))
		b.WriteString("\n")
	}
	for _, in := range r.Instances {
		line := fmt.Sprintf("#%d %s [%s] enabled=%s %s",
			in.ID, labelStyle.Render(in.SID), in.Name, engine.FormatEnabled(in.Enabled), stateStyle(in.State).Render(in.State))
		if in.Error != "" {
			line += " " + errorStyle.Render(in.Error)
		}
		b.WriteString(sectionStyle.Render(line))
		b.WriteString("\n")
	}

	return []byte(b.String()), nil
}

func componentLine(c ComponentInfo) string {
	if c.Error != "" {
		return fmt.Sprintf("%s %s", labelStyle.Render(c.Name), errorStyle.Render(c.Error))
	}

	var handlers []string
	for _, h := range []struct {
		name string
		ok   bool
	}{{"init", c.Init}, {"loop", c.Loop}, {"exit", c.Exit}} {
		if h.ok {
			handlers = append(handlers, h.name)
		}
	}
	hs := "no handlers"
	if len(handlers) > 0 {
		hs = strings.Join(handlers, "+")
	}

	data := "no data"
	if c.DataType != "" {
		data = fmt.Sprintf("%s, %d bytes", c.DataType, c.DataSize)
	}
	return fmt.Sprintf("%s %s %s", labelStyle.Render(c.Name), hs, mutedStyle.Render("("+data+")"))
}
