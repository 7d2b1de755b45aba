package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/therabot/therabot/internal/core/domain"
	"github.com/therabot/therabot/internal/core/repository"
)

// FallbackResponse is stored and returned when the completion provider fails.
const FallbackResponse = "I'm having trouble responding right now. Can you try again?"

const DefaultSystemPrompt = "You are a compassionate, empathetic, and non-judgmental digital therapist named Therabot. " +
	"Your goal is to listen actively, provide emotional support, and gently guide users toward " +
	"self-reflection and healthier coping strategies. Avoid giving medical advice. Encourage users " +
	"to seek professional help for serious issues."

const (
	MsgLoginRequired = "Please log in first"
	msgEmptyMessage  = "Message cannot be empty"
)

// Completer produces a model reply for a single user utterance.
type Completer interface {
	Complete(ctx context.Context, utterance, systemPrompt string) (string, error)
}

type ChatService struct {
	chatRepo     repository.ChatRepository
	completer    Completer
	systemPrompt string
	timeout      time.Duration
	log          logrus.FieldLogger
}

// NewChatService creates a chat service. An empty systemPrompt selects
// DefaultSystemPrompt; a zero timeout leaves the upstream call unbounded.
func NewChatService(
	chatRepo repository.ChatRepository,
	completer Completer,
	systemPrompt string,
	timeout time.Duration,
	log logrus.FieldLogger,
) *ChatService {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	return &ChatService{
		chatRepo:     chatRepo,
		completer:    completer,
		systemPrompt: systemPrompt,
		timeout:      timeout,
		log:          log,
	}
}

// Send runs one chat turn for identity and persists it. Upstream failures
// never surface: the fallback text is returned and stored instead.
func (s *ChatService) Send(ctx context.Context, identity *domain.Identity, message string) (string, error) {
	if identity == nil {
		return "", NewError(KindUnauthenticated, MsgLoginRequired)
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", NewError(KindInvalidInput, msgEmptyMessage)
	}

	response := s.complete(ctx, identity, message)

	record := domain.NewChatRecord(identity.UserID, message, response)
	if err := s.chatRepo.Append(ctx, record); err != nil {
		return "", internalError("failed to save chat record", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":        identity.UserID,
		"record_id":      record.ID,
		"message_chars":  utf8.RuneCountInString(message),
		"response_chars": utf8.RuneCountInString(response),
	}).Debug("Saved chat turn")

	return response, nil
}

func (s *ChatService) complete(ctx context.Context, identity *domain.Identity, message string) string {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	response, err := s.completer.Complete(ctx, message, s.systemPrompt)
	if err == nil && strings.TrimSpace(response) == "" {
		err = NewError(KindUpstream, "empty completion")
	}
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"user_id": identity.UserID,
			"kind":    KindUpstream.String(),
		}).Warn("Completion provider failed, using fallback response")
		return FallbackResponse
	}

	s.log.WithFields(logrus.Fields{
		"user_id":    identity.UserID,
		"latency_ms": time.Since(start).Milliseconds(),
	}).Info("Completion received")

	return response
}
