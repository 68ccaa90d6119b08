package slack

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/receiptsync/internal/core/domain"
)

// payload is an incoming-webhook message. Text is the notification
// fallback shown by clients that do not render blocks.
type payload struct {
	Text   string  `json:"text"`
	Blocks []block `json:"blocks,omitempty"`
}

type block struct {
	Type     string  `json:"type"`
	Text     *text   `json:"text,omitempty"`
	Elements []*text `json:"elements,omitempty"`
}

type text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

var mrkdwnEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// buildPayload renders a report as Block Kit: a title section, a section
// listing the items, and a context block linking the folder.
func buildPayload(report domain.Report) payload {
	p := payload{
		Text: report.Title,
		Blocks: []block{
			{Type: "section", Text: mrkdwn("*" + escape(report.Title) + "*")},
		},
	}

	if len(report.Lines) > 0 {
		lines := make([]string, 0, len(report.Lines)+1)
		for _, line := range report.Lines {
			lines = append(lines, "• "+escape(line))
		}
		if report.Omitted > 0 {
			lines = append(lines, fmt.Sprintf("… and %d more", report.Omitted))
		}
		p.Blocks = append(p.Blocks, block{Type: "section", Text: mrkdwn(strings.Join(lines, "\n"))})
	}

	if report.Link != "" {
		p.Blocks = append(p.Blocks, block{
			Type:     "context",
			Elements: []*text{mrkdwn(fmt.Sprintf("<%s|Open folder>", report.Link))},
		})
	}
	return p
}

// plainPayload is the fallback sent when the block payload is rejected.
func plainPayload(report domain.Report) payload {
	return payload{Text: report.PlainText()}
}

func mrkdwn(s string) *text {
	return &text{Type: "mrkdwn", Text: s}
}

func escape(s string) string {
	return mrkdwnEscaper.Replace(s)
}
