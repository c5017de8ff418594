// Package voting applies votes to polls inside store transactions.
package voting

import (
	"context"

	"github.com/pkg/errors"

	"github.com/profiq/open-poll/server/poll"
	"github.com/profiq/open-poll/server/store"
)

// Outcome describes a successfully applied vote.
type Outcome struct {
	PollID string
	Vote   poll.Vote
	Action poll.VoteAction
}

// Engine applies vote toggles to polls.
type Engine struct {
	polls store.PollStore
	log   store.Logger
}

// NewEngine creates an Engine working on the given poll store.
func NewEngine(polls store.PollStore, log store.Logger) *Engine {
	return &Engine{
		polls: polls,
		log:   log,
	}
}

// Vote toggles the vote of a user for an option.
// Rejections are returned as *poll.VoteError and leave the poll untouched.
// Store failures are returned as a *poll.VoteError of kind poll.VoteTransactionFailed.
func (e *Engine) Vote(ctx context.Context, pollID string, vote poll.Vote) (*Outcome, error) {
	if vote.UserID == "" {
		return nil, errors.New("invalid userID")
	}

	var outcome *Outcome
	err := e.polls.RunTransaction(ctx, func(tx store.PollTx) error {
		// Reset on every attempt, the transaction may be retried.
		outcome = nil

		p, err := tx.Get(pollID)
		if errors.Is(err, store.ErrNotFound) {
			return &poll.VoteError{Kind: poll.VotePollNotFound}
		}
		if err != nil {
			return err
		}

		votes, action, voteErr := p.NextVotes(vote)
		if voteErr != nil {
			return voteErr
		}
		if err := tx.Update(pollID, poll.Patch{Votes: votes}); err != nil {
			return err
		}

		outcome = &Outcome{PollID: pollID, Vote: vote, Action: action}
		return nil
	})

	var voteErr *poll.VoteError
	switch {
	case err == nil:
		e.log.LogDebug("Vote applied", "pollID", pollID, "userID", vote.UserID, "optionID", vote.OptionID, "action", outcome.Action.String())
		return outcome, nil
	case errors.As(err, &voteErr):
		return nil, voteErr
	default:
		e.log.LogWarn("Vote transaction failed", "pollID", pollID, "userID", vote.UserID, "error", err.Error())
		return nil, poll.NewTransactionFailedError(err)
	}
}
