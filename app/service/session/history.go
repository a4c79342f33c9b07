package session

import "agencychat/app/service/conversation"

const messageHistorySize = 20

// ChatHistory is the transcript a session keeps for surfaces that don't send one.
type ChatHistory struct {
	turns []conversation.Turn
}

func (h *ChatHistory) add(sender conversation.Sender, text string) {
	turn := conversation.Turn{Sender: sender, Text: text}

	if len(h.turns) >= messageHistorySize {
		h.turns = append(h.turns[1:], turn)
	} else {
		h.turns = append(h.turns, turn)
	}
}

func (h *ChatHistory) snapshot() []conversation.Turn {
	return append([]conversation.Turn(nil), h.turns...)
}
