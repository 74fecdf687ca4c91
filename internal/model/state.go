package model

import "github.com/pageza/mealsearch/backend/internal/types"

// StateKind names the active variant of a SearchState
type StateKind string

const (
	// StateEmpty means no query has been submitted, or the last one was blank
	StateEmpty StateKind = "empty"

	// StateLoading means a request is in flight
	StateLoading StateKind = "loading"

	// StateSuccess means the last query returned at least one recipe
	StateSuccess StateKind = "success"

	// StateError means the last query failed or matched nothing
	StateError StateKind = "error"
)

// String returns the string representation of StateKind
func (k StateKind) String() string {
	return string(k)
}

// IsTerminal returns true if the state ends a query attempt
func (k StateKind) IsTerminal() bool {
	return k == StateSuccess || k == StateError
}

// SearchState is the state of one search screen. Exactly one of EmptyState,
// LoadingState, SuccessState or ErrorState; the set is closed.
type SearchState interface {
	Kind() StateKind
	searchState()
}

// EmptyState is the initial state.
type EmptyState struct{}

// LoadingState is published while the query is in flight.
type LoadingState struct {
	Query string
}

// SuccessState carries the recipes matched by Query, never empty.
type SuccessState struct {
	Query   string
	Recipes []types.Recipe
}

// ErrorState carries a display message for a failed or empty query.
type ErrorState struct {
	Query   string
	Message string
}

func (EmptyState) Kind() StateKind   { return StateEmpty }
func (LoadingState) Kind() StateKind { return StateLoading }
func (SuccessState) Kind() StateKind { return StateSuccess }
func (ErrorState) Kind() StateKind   { return StateError }

func (EmptyState) searchState()   {}
func (LoadingState) searchState() {}
func (SuccessState) searchState() {}
func (ErrorState) searchState()   {}

// QueryOf returns the query a state was produced for, or "" for EmptyState.
func QueryOf(s SearchState) string {
	switch st := s.(type) {
	case LoadingState:
		return st.Query
	case SuccessState:
		return st.Query
	case ErrorState:
		return st.Query
	default:
		return ""
	}
}
