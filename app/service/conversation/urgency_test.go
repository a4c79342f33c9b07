package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsUrgent(t *testing.T) {
	urgent := []string{
		"This is URGENT",
		"my site is down!",
		"Checkout is not working",
		"we got Hacked last night",
		"I need this ASAP",
		"there's a bug in the menu",
	}
	for _, u := range urgent {
		assert.True(t, IsUrgent(u), u)
	}

	calm := []string{
		"",
		"hi",
		"How much does a website cost?",
		"Can I see your portfolio?",
	}
	for _, u := range calm {
		assert.False(t, IsUrgent(u), u)
	}
}
