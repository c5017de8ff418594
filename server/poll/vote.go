package poll

import (
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	"github.com/profiq/open-poll/server/utils"
)

// VoteAction describes how a vote changed the votes of a user.
type VoteAction int

const (
	// ActionAdded means a new vote was counted.
	ActionAdded VoteAction = iota + 1
	// ActionRemoved means an existing vote was toggled off.
	ActionRemoved
	// ActionChanged means the vote of a single choice poll moved to another option.
	ActionChanged
)

func (a VoteAction) String() string {
	switch a {
	case ActionAdded:
		return "added"
	case ActionRemoved:
		return "removed"
	case ActionChanged:
		return "changed"
	}
	return "unknown"
}

// VoteErrorKind is the reason a vote was not applied.
type VoteErrorKind int

const (
	VotePollNotFound VoteErrorKind = iota + 1
	VotePollClosed
	VoteMaxVotesExceeded
	VoteInvalidOption
	// VoteTransactionFailed is a transient store failure. The vote may be retried.
	VoteTransactionFailed
)

func (k VoteErrorKind) String() string {
	switch k {
	case VotePollNotFound:
		return "poll not found"
	case VotePollClosed:
		return "poll closed"
	case VoteMaxVotesExceeded:
		return "max votes exceeded"
	case VoteInvalidOption:
		return "invalid option"
	case VoteTransactionFailed:
		return "transaction failed"
	}
	return "unknown"
}

// VoteError is returned when a vote is rejected. Every kind maps to a distinct message for the voter.
type VoteError struct {
	Kind     VoteErrorKind
	MaxVotes int
	Err      error
}

// NewTransactionFailedError wraps a store error.
func NewTransactionFailedError(err error) *VoteError {
	return &VoteError{Kind: VoteTransactionFailed, Err: err}
}

func (e *VoteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
	}
	return e.Message().Error()
}

func (e *VoteError) Unwrap() error {
	return e.Err
}

// Retryable returns true if repeating the same vote may succeed.
func (e *VoteError) Retryable() bool {
	return e.Kind == VoteTransactionFailed
}

// Message returns the localizable explanation shown to the voter.
func (e *VoteError) Message() *utils.ErrorMessage {
	switch e.Kind {
	case VotePollNotFound:
		return &utils.ErrorMessage{
			Message: &i18n.Message{
				ID:    "poll.vote.notFound",
				Other: "This poll does not exist anymore.",
			},
		}
	case VotePollClosed:
		return &utils.ErrorMessage{
			Message: &i18n.Message{
				ID:    "poll.vote.closed",
				Other: "This poll is closed. Votes can no longer be changed.",
			},
		}
	case VoteMaxVotesExceeded:
		return &utils.ErrorMessage{
			Message: &i18n.Message{
				ID:    "poll.vote.maxVotes",
				One:   "You can vote for at most {{.MaxVotes}} option. Remove your vote before choosing another one.",
				Other: "You can vote for at most {{.MaxVotes}} options. Remove one of your votes before choosing another one.",
			},
			Data: map[string]interface{}{
				"MaxVotes": e.MaxVotes,
			},
			PluralCount: e.MaxVotes,
		}
	case VoteInvalidOption:
		return &utils.ErrorMessage{
			Message: &i18n.Message{
				ID:    "poll.vote.invalidOption",
				Other: "This option is not available anymore.",
			},
		}
	}
	return &utils.ErrorMessage{
		Message: &i18n.Message{
			ID:    "poll.vote.transactionFailed",
			Other: "Something went wrong while saving your vote. Please try again.",
		},
	}
}

// NextVotes computes the votes of the poll after the given vote was toggled.
// It does not modify the poll and only depends on its current state, so it can be rerun on a fresh copy.
func (p *Poll) NextVotes(vote Vote) ([]Vote, VoteAction, *VoteError) {
	if p.Closed {
		return nil, 0, &VoteError{Kind: VotePollClosed}
	}
	if o := p.GetOption(vote.OptionID); o == nil || o.Deleted {
		return nil, 0, &VoteError{Kind: VoteInvalidOption}
	}

	userVotes := p.GetVotesForUser(vote.UserID)
	hasVotedForOption := false
	for _, v := range userVotes {
		if v.OptionID == vote.OptionID {
			hasVotedForOption = true
			break
		}
	}

	votes := make([]Vote, 0, len(p.Votes)+1)

	if !p.Settings.Multiple {
		// Single Answer Mode
		for _, v := range p.Votes {
			if v.UserID != vote.UserID {
				votes = append(votes, v)
			}
		}
		switch {
		case hasVotedForOption:
			return votes, ActionRemoved, nil
		case len(userVotes) > 0:
			return append(votes, vote), ActionChanged, nil
		default:
			return append(votes, vote), ActionAdded, nil
		}
	}

	// Multi Answer Mode
	if hasVotedForOption {
		for _, v := range p.Votes {
			if v != vote {
				votes = append(votes, v)
			}
		}
		return votes, ActionRemoved, nil
	}
	if len(userVotes) >= p.Settings.MaxVotes {
		return nil, 0, &VoteError{Kind: VoteMaxVotesExceeded, MaxVotes: p.Settings.MaxVotes}
	}
	votes = append(votes, p.Votes...)
	return append(votes, vote), ActionAdded, nil
}
