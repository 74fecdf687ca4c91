package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/pageza/mealsearch/backend/internal/model"
)

const (
	unknownErrorMessage = "Unknown error"

	// subscriberBuffer bounds how many unread states an observer may lag behind.
	subscriberBuffer = 8
)

// SearchStateMachine owns the state of one search screen. Every transition
// starts from SubmitQuery; the state is replaced wholesale, never mutated.
type SearchStateMachine struct {
	searcher RecipeSearcher

	mu          sync.RWMutex
	state       model.SearchState
	seq         uint64
	subscribers map[uint64]chan model.SearchState
	nextSubID   uint64
}

// NewSearchStateMachine creates a state machine in the Empty state
func NewSearchStateMachine(searcher RecipeSearcher) *SearchStateMachine {
	return &SearchStateMachine{
		searcher:    searcher,
		state:       model.EmptyState{},
		subscribers: make(map[uint64]chan model.SearchState),
	}
}

// State returns the current state
func (m *SearchStateMachine) State() model.SearchState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// SubmitQuery starts a search for query and returns a channel that receives
// the final state computed for it, then closes.
//
// A blank query moves to Empty without touching the network. Otherwise the
// machine moves to Loading and the search runs on its own goroutine bounded
// by ctx; callers that return before the result must pass a detached context.
// Only the most recent submission may publish its result: a superseded
// request still resolves its channel but leaves the state alone.
func (m *SearchStateMachine) SubmitQuery(ctx context.Context, query string) <-chan model.SearchState {
	done := make(chan model.SearchState, 1)
	query = strings.TrimSpace(query)

	if query == "" {
		m.mu.Lock()
		m.seq++
		m.publishLocked(model.EmptyState{})
		m.mu.Unlock()

		done <- model.EmptyState{}
		close(done)
		return done
	}

	m.mu.Lock()
	m.seq++
	ticket := m.seq
	m.publishLocked(model.LoadingState{Query: query})
	m.mu.Unlock()

	go func() {
		final := m.resolve(ctx, query)

		m.mu.Lock()
		if ticket == m.seq {
			m.publishLocked(final)
		} else {
			log.Printf("[SearchStateMachine] dropping superseded result for %q", query)
		}
		m.mu.Unlock()

		done <- final
		close(done)
	}()

	return done
}

func (m *SearchStateMachine) resolve(ctx context.Context, query string) model.SearchState {
	recipes, err := m.searcher.SearchRecipes(ctx, query)
	if err != nil {
		log.Printf("[SearchStateMachine] search %q failed: %v", query, err)
		msg := err.Error()
		if strings.TrimSpace(msg) == "" {
			msg = unknownErrorMessage
		}
		return model.ErrorState{Query: query, Message: msg}
	}

	if len(recipes) == 0 {
		return model.ErrorState{Query: query, Message: fmt.Sprintf("No meals found for \"%s\"", query)}
	}

	return model.SuccessState{Query: query, Recipes: recipes}
}

// Subscribe registers an observer for every state published from now on.
// A slow observer loses its oldest unread states, never the newest. The
// returned func unsubscribes and closes the channel.
func (m *SearchStateMachine) Subscribe() (<-chan model.SearchState, func()) {
	ch := make(chan model.SearchState, subscriberBuffer)

	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = ch
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subscribers, id)
			m.mu.Unlock()
			close(ch)
		})
	}
}

// SubscriberCount returns the number of active observers
func (m *SearchStateMachine) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers)
}

// publishLocked must be called with mu held for writing.
func (m *SearchStateMachine) publishLocked(s model.SearchState) {
	m.state = s
	for _, ch := range m.subscribers {
		select {
		case ch <- s:
		default:
			// drop the oldest unread state to make room
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}
