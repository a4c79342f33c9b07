package conversation

import (
	"fmt"
	"strings"

	_ "embed"

	"github.com/elliotchance/pie/v2"
)

//go:embed prompt_template.txt
var promptTemplate string

const contextWindow = 6

// Persona is how the assistant introduces itself in the prompt.
type Persona struct {
	AssistantName string
	AgencyName    string
	Contact       string
}

func formatHistory(history []Turn, assistantName string) string {
	window := history
	if len(window) > contextWindow {
		window = window[len(window)-contextWindow:]
	}

	if len(window) == 0 {
		return "No previous messages"
	}

	lines := pie.Map(window, func(t Turn) string {
		role := "User"
		if t.Sender == SenderAssistant {
			role = assistantName
		}

		return fmt.Sprintf("%s: %s", role, t.Text)
	})

	return strings.Join(lines, "\n")
}

func buildPrompt(persona Persona, utterance string, history []Turn) string {
	replacer := strings.NewReplacer(
		"{assistant}", persona.AssistantName,
		"{agency}", persona.AgencyName,
		"{contact}", persona.Contact,
		"{chat_history}", formatHistory(history, persona.AssistantName),
		"{last_message}", utterance,
	)

	return replacer.Replace(promptTemplate)
}
