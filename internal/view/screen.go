// Package view turns search states into screens. Rendering is a pure
// function of the state; presentation layers never mutate it.
package view

import (
	"fmt"
	"strings"

	"github.com/pageza/mealsearch/backend/internal/model"
	"github.com/pageza/mealsearch/backend/internal/types"
)

const (
	// SnippetLength is how many characters of instructions a card shows
	SnippetLength = 100

	EmptyPrompt   = "Search for a meal to get started"
	untitledTitle = "Untitled"
)

// Card is one recipe in the result list
type Card struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url,omitempty"`
	Snippet  string `json:"snippet,omitempty"`
}

// Screen is everything a presentation layer needs to draw one state
type Screen struct {
	Kind    model.StateKind `json:"state"`
	Query   string          `json:"query,omitempty"`
	Message string          `json:"message,omitempty"`
	Cards   []Card          `json:"cards,omitempty"`
}

// Render builds the screen for a state
func Render(state model.SearchState) Screen {
	switch s := state.(type) {
	case model.EmptyState:
		return Screen{Kind: model.StateEmpty, Message: EmptyPrompt}
	case model.LoadingState:
		return Screen{Kind: model.StateLoading, Query: s.Query, Message: fmt.Sprintf("Searching for \"%s\"...", s.Query)}
	case model.SuccessState:
		cards := make([]Card, 0, len(s.Recipes))
		for _, r := range s.Recipes {
			cards = append(cards, NewCard(r))
		}
		return Screen{Kind: model.StateSuccess, Query: s.Query, Cards: cards}
	case model.ErrorState:
		return Screen{Kind: model.StateError, Query: s.Query, Message: s.Message}
	default:
		panic(fmt.Sprintf("view: unhandled search state %T", state))
	}
}

// NewCard builds the card for a single recipe
func NewCard(r types.Recipe) Card {
	title := types.StringValue(r.Name)
	if strings.TrimSpace(title) == "" {
		title = untitledTitle
	}
	return Card{
		ID:       r.ID,
		Title:    title,
		ImageURL: types.StringValue(r.ImageURL),
		Snippet:  Truncate(types.StringValue(r.Instructions), SnippetLength),
	}
}

// Truncate shortens s to at most n characters, appending "..." when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// Text renders a screen for a terminal
func Text(s Screen) string {
	if s.Kind != model.StateSuccess {
		return s.Message + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d results for \"%s\"\n", len(s.Cards), s.Query)
	for _, c := range s.Cards {
		fmt.Fprintf(&b, "\n[%s] %s\n", c.ID, c.Title)
		if c.ImageURL != "" {
			fmt.Fprintf(&b, "  %s\n", c.ImageURL)
		}
		if c.Snippet != "" {
			fmt.Fprintf(&b, "  %s\n", strings.Join(strings.Fields(c.Snippet), " "))
		}
	}
	return b.String()
}
