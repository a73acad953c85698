package session_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/annavdvet2000/chatbot11directanswers/internal/domain"
	"github.com/annavdvet2000/chatbot11directanswers/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendAndRecent(t *testing.T) {
	s := session.NewStore()

	s.Append("s1",
		domain.ConversationTurn{Role: domain.RoleUser, Content: "q1"},
		domain.ConversationTurn{Role: domain.RoleAssistant, Content: "a1"},
	)
	s.Append("s1",
		domain.ConversationTurn{Role: domain.RoleUser, Content: "q2"},
		domain.ConversationTurn{Role: domain.RoleAssistant, Content: "a2"},
	)

	recent := s.Recent("s1", 3)
	require.Len(t, recent, 3)
	assert.Equal(t, "a1", recent[0].Content)
	assert.Equal(t, "q2", recent[1].Content)
	assert.Equal(t, "a2", recent[2].Content)
}

func TestStore_RecentOnUnknownSession(t *testing.T) {
	s := session.NewStore()

	assert.Nil(t, s.Recent("missing", 4))
	assert.Equal(t, 0, s.Len("missing"))
}

func TestStore_SessionsAreIndependent(t *testing.T) {
	s := session.NewStore()

	s.Append("a", domain.ConversationTurn{Role: domain.RoleUser, Content: "from a"})
	s.Append("b", domain.ConversationTurn{Role: domain.RoleUser, Content: "from b"})

	require.Len(t, s.Recent("a", 10), 1)
	assert.Equal(t, "from a", s.Recent("a", 10)[0].Content)
	assert.Equal(t, "from b", s.Recent("b", 10)[0].Content)
}

func TestStore_ConcurrentAppendsSameKey(t *testing.T) {
	s := session.NewStore()
	const writers = 32

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Append("shared",
				domain.ConversationTurn{Role: domain.RoleUser, Content: fmt.Sprintf("q%d", n)},
				domain.ConversationTurn{Role: domain.RoleAssistant, Content: fmt.Sprintf("a%d", n)},
			)
		}(i)
	}
	wg.Wait()

	require.Equal(t, writers*2, s.Len("shared"))

	// Each exchange must have stayed adjacent despite the contention.
	turns := s.Recent("shared", writers*2)
	for i := 0; i < len(turns); i += 2 {
		assert.Equal(t, domain.RoleUser, turns[i].Role)
		assert.Equal(t, domain.RoleAssistant, turns[i+1].Role)
		assert.Equal(t, turns[i].Content[1:], turns[i+1].Content[1:])
	}
}
