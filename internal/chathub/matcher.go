package chathub

import (
	"errors"
	"strangerchat/backend/internal/models"

	"github.com/rs/zerolog/log"
)

// MatchResult is the outcome of a match request. Paired is false when the
// requester was queued instead.
type MatchResult struct {
	Partner models.UserID
	Paired  bool
}

// UsageRecorder receives anonymous counters about hub activity.
type UsageRecorder interface {
	RecordMatch()
	RecordMessage()
	RecordRotation()
}

type noopRecorder struct{}

func (noopRecorder) RecordMatch()    {}
func (noopRecorder) RecordMessage()  {}
func (noopRecorder) RecordRotation() {}

// MatcherService pairs a requester with the longest-waiting user, or queues
// the requester when nobody is waiting. Matching is strictly FIFO with no
// filtering: every waiting user is eligible for every new joiner.
type MatcherService struct {
	Registry *PartnerRegistry
	Usage    UsageRecorder
}

// NewMatcherService creates a new Matcher. A nil recorder disables counting.
func NewMatcherService(r *PartnerRegistry, usage UsageRecorder) *MatcherService {
	if usage == nil {
		usage = noopRecorder{}
	}
	return &MatcherService{Registry: r, Usage: usage}
}

// RequestMatch runs the whole lookup-and-pair sequence as one registry
// transaction, so two concurrent joiners can never both dequeue the same
// waiting user.
func (m *MatcherService) RequestMatch(u models.UserID) (MatchResult, error) {
	var result MatchResult
	err := m.Registry.Transaction(func(tx *RegistryTx) error {
		// Callers check state first; this guards the registry itself.
		if _, paired := tx.PartnerOf(u); paired || tx.IsWaiting(u) {
			return ErrAlreadyActive
		}

		if candidate, ok := tx.DequeueOldest(); ok && candidate != u {
			// A candidate that cannot be paired was already in the pair map,
			// so it is not put back in the queue.
			if err := tx.Pair(u, candidate); err != nil {
				return err
			}
			result = MatchResult{Partner: candidate, Paired: true}
			return nil
		}

		return tx.Enqueue(u)
	})
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			log.Error().Err(err).Str("user_id", u.String()).Msg("Match aborted")
		}
		return MatchResult{}, err
	}

	if result.Paired {
		m.Usage.RecordMatch()
		log.Debug().Str("user_id", u.String()).Msg("Match found")
	} else {
		log.Debug().Str("user_id", u.String()).Msg("Added to wait queue")
	}
	return result, nil
}
