package friends

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odalea-app/odalea-api/internal/features/auth"
	"github.com/odalea-app/odalea-api/internal/features/chat"
	apperrors "github.com/odalea-app/odalea-api/pkg/errors"
)

// Service owns the friendship lifecycle: request, response, and the
// conversation bootstrap that follows an accepted request.
type Service struct {
	repo          *Repository
	users         *auth.Repository
	conversations *chat.Repository
}

func NewService(repo *Repository, users *auth.Repository, conversations *chat.Repository) *Service {
	return &Service{
		repo:          repo,
		users:         users,
		conversations: conversations,
	}
}

// SendRequest creates a pending friend request from the caller. Sending is
// idempotent per pair: a repeat send is rejected, a declined pair is
// reopened, and a crossing request from the other side is treated as an
// acceptance of ours.
func (s *Service) SendRequest(ctx context.Context, from *auth.User, toID primitive.ObjectID) (*FriendRequest, error) {
	if toID == from.ID {
		return nil, fmt.Errorf("%w: cannot friend yourself", apperrors.ErrValidation)
	}
	if from.HasFriend(toID) {
		return nil, fmt.Errorf("%w: already friends", apperrors.ErrDuplicate)
	}

	recipient, err := s.users.GetUser(ctx, toID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, apperrors.ErrNotFound
	}

	pairID := chat.PairKey(from.ID, toID)

	existing, err := s.repo.Get(ctx, pairID)
	if err != nil {
		return nil, err
	}

	switch {
	case existing == nil:
		req := &FriendRequest{
			PairID:    pairID,
			FromID:    from.ID,
			ToID:      toID,
			Status:    StatusPending,
			CreatedAt: time.Now(),
		}
		if err := s.repo.Create(ctx, req); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				// Lost a race against the same pair; re-read and fall through
				existing, err = s.repo.Get(ctx, pairID)
				if err != nil || existing == nil {
					return nil, apperrors.ErrDuplicate
				}
				return s.resolveExisting(ctx, existing, from, toID)
			}
			return nil, err
		}
		return req, nil

	default:
		return s.resolveExisting(ctx, existing, from, toID)
	}
}

func (s *Service) resolveExisting(ctx context.Context, existing *FriendRequest, from *auth.User, toID primitive.ObjectID) (*FriendRequest, error) {
	switch existing.Status {
	case StatusPending:
		if existing.FromID == from.ID {
			return nil, fmt.Errorf("%w: friend request already sent", apperrors.ErrDuplicate)
		}
		// The other side already asked; sending back counts as accepting
		return s.accept(ctx, existing.PairID, from.ID)
	case StatusAccepted:
		return nil, fmt.Errorf("%w: already friends", apperrors.ErrDuplicate)
	case StatusDeclined:
		return s.repo.Reopen(ctx, existing.PairID, from.ID, toID)
	}
	return nil, apperrors.ErrInternal
}

// Accept accepts the pending request from the given user. On success both
// users become friends and a conversation for the pair is created so they can
// message each other immediately.
func (s *Service) Accept(ctx context.Context, responder *auth.User, otherID primitive.ObjectID) (*FriendRequest, error) {
	return s.accept(ctx, chat.PairKey(responder.ID, otherID), responder.ID)
}

func (s *Service) accept(ctx context.Context, pairID string, responderID primitive.ObjectID) (*FriendRequest, error) {
	req, err := s.repo.Resolve(ctx, pairID, responderID, StatusAccepted)
	if err != nil {
		return nil, err
	}

	if err := s.users.AddFriend(ctx, req.FromID, req.ToID); err != nil {
		return nil, err
	}
	if err := s.users.AddFriend(ctx, req.ToID, req.FromID); err != nil {
		return nil, err
	}

	// Bootstrap the pair's conversation. System-created threads carry no
	// creator, so they never count against anyone's monthly quota.
	if _, _, err := s.conversations.GetOrCreate(ctx, req.FromID, req.ToID, primitive.NilObjectID); err != nil {
		return nil, err
	}

	return req, nil
}

// Decline declines the pending request from the given user
func (s *Service) Decline(ctx context.Context, responder *auth.User, otherID primitive.ObjectID) (*FriendRequest, error) {
	return s.repo.Resolve(ctx, chat.PairKey(responder.ID, otherID), responder.ID, StatusDeclined)
}

// Unfriend removes the friendship in both directions and clears the pair's
// request document so a new request can be sent later. The conversation and
// its history are kept.
func (s *Service) Unfriend(ctx context.Context, user *auth.User, otherID primitive.ObjectID) error {
	if !user.HasFriend(otherID) {
		return apperrors.ErrNotFound
	}

	if err := s.users.RemoveFriend(ctx, user.ID, otherID); err != nil {
		return err
	}
	if err := s.users.RemoveFriend(ctx, otherID, user.ID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, chat.PairKey(user.ID, otherID))
}
