package chat

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tasteal/internal/storage"
)

// ImageStore is where attachments are uploaded.
type ImageStore interface {
	Save(path string, r io.Reader) (string, error)
	Delete(path string) error
	URL(path string) string
}

// Service sends and reads messages.
type Service struct {
	repo   *Repository
	images ImageStore
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new Service.
func NewService(repo *Repository, images ImageStore, logger *zap.Logger) *Service {
	return &Service{repo: repo, images: images, logger: logger.Named("chat"), now: time.Now}
}

// Send uploads the attachments in parallel and stores the message.
func (s *Service) Send(ctx context.Context, sender, receiver, text string, attachments []Attachment) (Message, error) {
	sender, receiver = strings.TrimSpace(sender), strings.TrimSpace(receiver)
	if sender == "" || receiver == "" || sender == receiver ||
		strings.Contains(sender, idSeparator) || strings.Contains(receiver, idSeparator) {
		return Message{}, ErrInvalidParticipants
	}
	text = strings.TrimSpace(text)
	if text == "" && len(attachments) == 0 {
		return Message{}, ErrEmptyMessage
	}

	urls := make([]string, len(attachments))
	saved := make([]string, len(attachments))
	g, gctx := errgroup.WithContext(ctx)
	for i, att := range attachments {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := s.images.Save(storage.ObjectName(ImageFolder, sender, att.Ext), att.Body)
			if err != nil {
				return fmt.Errorf("failed to upload attachment %d: %w", i+1, err)
			}
			saved[i] = p
			urls[i] = s.images.URL(p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.discard(saved)
		return Message{}, err
	}

	msg := Message{
		ID:         uuid.NewString(),
		CombinedID: CombinedID(sender, receiver),
		SenderID:   sender,
		Text:       text,
		Images:     urls,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Append(ctx, msg, receiver); err != nil {
		s.discard(saved)
		return Message{}, err
	}
	s.logger.Debug("message sent",
		zap.String("combined_id", msg.CombinedID),
		zap.String("sender", sender),
		zap.Int("images", len(urls)))
	return msg, nil
}

// discard removes attachments of a message that was not stored.
func (s *Service) discard(paths []string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := s.images.Delete(p); err != nil {
			s.logger.Warn("failed to remove orphaned attachment", zap.String("path", p), zap.Error(err))
		}
	}
}

// Messages returns the latest messages of a conversation uid takes part in
// and marks it read for uid.
func (s *Service) Messages(ctx context.Context, uid, combinedID string, limit int) ([]Message, error) {
	a, b, err := s.repo.Participants(ctx, combinedID)
	if err != nil {
		return nil, err
	}
	if uid != a && uid != b {
		return nil, ErrNotParticipant
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	msgs, err := s.repo.Messages(ctx, combinedID, limit)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkRead(ctx, combinedID, uid); err != nil {
		s.logger.Warn("failed to mark conversation read", zap.String("combined_id", combinedID), zap.Error(err))
	}
	return msgs, nil
}

// Conversations returns uid's inbox.
func (s *Service) Conversations(ctx context.Context, uid string) ([]Conversation, error) {
	return s.repo.Conversations(ctx, uid)
}
