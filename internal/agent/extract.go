package agent

import (
	"strings"

	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

// collector accumulates the final answer from runner events.
type collector struct {
	texts        []string
	searchUsed   bool
	finishReason genai.FinishReason
	events       int
}

func (c *collector) add(event *session.Event) {
	c.events++
	if searchUsed(event.GroundingMetadata) {
		c.searchUsed = true
	}
	if event.FinishReason != "" {
		c.finishReason = event.FinishReason
	}
	if event.Partial || event.Content == nil || event.Content.Role == genai.RoleUser {
		return
	}
	c.texts = append(c.texts, textParts(event.Content)...)
}

func (c *collector) reply() Reply {
	return Reply{
		Text:       strings.TrimSpace(strings.Join(c.texts, "\n\n")),
		SearchUsed: c.searchUsed,
	}
}

// textParts returns the non-empty, non-thought text parts of content.
func textParts(content *genai.Content) []string {
	var out []string
	for _, p := range content.Parts {
		if p == nil || p.Thought {
			continue
		}
		if t := strings.TrimSpace(p.Text); t != "" {
			out = append(out, p.Text)
		}
	}
	return out
}

// searchUsed reports whether grounding metadata shows a web search: either a
// chunk with a web URI or at least one search query.
func searchUsed(gm *genai.GroundingMetadata) bool {
	if gm == nil {
		return false
	}
	for _, ch := range gm.GroundingChunks {
		if ch != nil && ch.Web != nil && ch.Web.URI != "" {
			return true
		}
	}
	return len(gm.WebSearchQueries) > 0
}
