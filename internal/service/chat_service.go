package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/clauseiq/clauseiq/internal/cache"
	"github.com/clauseiq/clauseiq/internal/domain"
	"github.com/clauseiq/clauseiq/internal/logging"
	"github.com/clauseiq/clauseiq/internal/repository"
)

const historyKey = "history"

type chatService struct {
	repo        repository.MessageRepository
	broadcaster Broadcaster
	cache       cache.MessageCache
	cacheTTL    time.Duration
	sf          singleflight.Group
}

// NewChatService creates the chat relay. cache may be nil, in which case
// History always reads from the repository.
func NewChatService(
	repo repository.MessageRepository,
	broadcaster Broadcaster,
	msgCache cache.MessageCache,
	cacheTTL time.Duration,
) ChatService {
	return &chatService{
		repo:        repo,
		broadcaster: broadcaster,
		cache:       msgCache,
		cacheTTL:    cacheTTL,
	}
}

// Relay implements the two-phase relay: optimistic broadcast before
// durability, then the enriched echo once the store has assigned id and
// timestamp. A persistence failure does not retract the optimistic
// broadcast and nothing is retried.
func (s *chatService) Relay(ctx context.Context, ev *domain.SendMessageEvent) (*domain.Message, error) {
	l := logging.Ctx(ctx)

	msg, err := buildMessage(ev.Text, ev.Sender)
	if err != nil {
		return nil, err
	}

	optimistic := &domain.ReceiveMessageEvent{
		Type:          domain.EventReceiveMessage,
		Text:          msg.Content,
		Sender:        msg.Sender,
		CorrelationID: ev.CorrelationID,
	}
	if err := s.broadcaster.Broadcast(optimistic); err != nil {
		l.Error().Err(err).Msg("optimistic broadcast failed")
		return nil, fmt.Errorf("broadcast: %w", err)
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		l.Error().Err(err).Str(logging.FieldCorrelationID, ev.CorrelationID).Msg("failed to persist relayed message")
		return nil, fmt.Errorf("persist: %w", err)
	}

	s.invalidateHistory(ctx)

	durable := &domain.ReceiveMessageEvent{
		Type:          domain.EventReceiveMessage,
		Text:          msg.Content,
		Sender:        msg.Sender,
		CorrelationID: ev.CorrelationID,
		ID:            msg.ID,
		CreatedAt:     msg.CreatedAt.UnixMilli(),
	}
	if err := s.broadcaster.Broadcast(durable); err != nil {
		l.Error().Err(err).Str(logging.FieldMessageID, msg.ID).Msg("durable broadcast failed")
	}

	l.Debug().
		Str(logging.FieldMessageID, msg.ID).
		Str(logging.FieldCorrelationID, ev.CorrelationID).
		Msg("message relayed")

	return msg, nil
}

// Post persists a message submitted over HTTP. The original surface does
// not relay these to connected sockets.
func (s *chatService) Post(ctx context.Context, req *domain.CreateMessageRequest) (*domain.Message, error) {
	msg, err := buildMessage(req.Content, req.Sender)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}

	s.invalidateHistory(ctx)
	return msg, nil
}

// History returns the ordered chat log, served from cache when warm.
// Concurrent cold reads are collapsed through singleflight.
func (s *chatService) History(ctx context.Context) ([]domain.Message, error) {
	if s.cache == nil {
		return s.repo.ListAll(ctx)
	}

	result, err, _ := s.sf.Do(historyKey, func() (interface{}, error) {
		return s.fetchWithCache(ctx)
	})
	if err != nil {
		return nil, err
	}

	messages, ok := result.([]domain.Message)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from singleflight")
	}
	return messages, nil
}

func (s *chatService) fetchWithCache(ctx context.Context) ([]domain.Message, error) {
	cached, err := s.cache.Get(ctx)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logging.Ctx(ctx).Warn().Err(err).Msg("cache get error")
	}

	messages, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	// Set synchronously: an async set could land after a concurrent
	// relay's invalidate and re-cache a list missing the new message.
	if err := s.cache.Set(ctx, messages, s.cacheTTL); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("cache set error")
	}

	return messages, nil
}

func (s *chatService) invalidateHistory(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("cache invalidate error")
	}
}

func buildMessage(content string, sender domain.Sender) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if sender == "" {
		sender = domain.SenderUser
	}
	if !sender.Valid() {
		return nil, ErrInvalidSender
	}
	return &domain.Message{Content: content, Sender: sender}, nil
}
