package harness

import (
	"fmt"
	"strings"
)

// FormatTranscript renders a result as the plain text stored in golden
// files:
//
//	# mutual_match
//
//	1. 100 say "hello"
//	   reply #1 -> 100: welcome [thumbsup]
//	     | Hi!
//	     | ...
func FormatTranscript(name string, r *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", name)

	for _, e := range r.Transcript {
		fmt.Fprintf(&b, "\n%d. %d %s\n", e.Step, e.User, e.Input)
		if e.Action != "" {
			fmt.Fprintf(&b, "   action: %s\n", e.Action)
		}
		for _, m := range e.Deliveries {
			fmt.Fprintf(&b, "   %s #%d -> %d: %s", m.Role, m.MessageID, m.Recipient, m.Prompt)
			if len(m.Reactions) > 0 {
				names := make([]string, len(m.Reactions))
				for i, em := range m.Reactions {
					names[i] = em.Name()
				}
				fmt.Fprintf(&b, " [%s]", strings.Join(names, " "))
			}
			b.WriteString("\n")
			for _, line := range strings.Split(m.Text, "\n") {
				fmt.Fprintf(&b, "     | %s\n", line)
			}
		}
		if e.Ignored {
			b.WriteString("   ignored\n")
		}
		if e.Error != "" {
			fmt.Fprintf(&b, "   error: %s\n", e.Error)
		}
	}

	if len(r.Errors) > 0 {
		b.WriteString("\nFAILED\n")
		for _, err := range r.Errors {
			fmt.Fprintf(&b, "  %s\n", err)
		}
	}
	return b.String()
}
