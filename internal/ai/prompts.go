package ai

import (
	"fmt"

	"github.com/hoanghai1803/cyberdigest/internal/models"
)

const (
	hackerNewsPromptTmpl = "Summarize this HackerNews story with a cybersecurity focus:\n\n%s"
	bleepingPromptTmpl   = "Summarize this BleepingComputer story with a focus on the key threats and takeaways:\n\n%s"
	genericPromptTmpl    = "Summarize the following content:\n\n%s"
)

// SummarizePrompt wraps text in the instruction template for the story's
// source. Unknown tags use the generic template.
func SummarizePrompt(text string, tag models.SourceTag) string {
	switch tag {
	case models.SourceHackerNews:
		return fmt.Sprintf(hackerNewsPromptTmpl, text)
	case models.SourceBleepingComputer:
		return fmt.Sprintf(bleepingPromptTmpl, text)
	default:
		return fmt.Sprintf(genericPromptTmpl, text)
	}
}
