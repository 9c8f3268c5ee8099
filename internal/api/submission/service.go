package submission

import (
	"context"
	"time"

	"github.com/chivis/survey-relay/internal/config"
	"github.com/chivis/survey-relay/internal/loaders"
	"github.com/chivis/survey-relay/internal/types"
	"github.com/chivis/survey-relay/internal/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	cfg     *config.Config
	newSink loaders.SinkFactory
	now     func() time.Time
}

func NewService(cfg *config.Config, newSink loaders.SinkFactory) *Service {
	return &Service{cfg: cfg, newSink: newSink, now: time.Now}
}

// Submit appends one row for record. Every successful call appends a new
// row; nothing is deduplicated. A missing secret fails before the sink is built.
func (s *Service) Submit(ctx context.Context, record types.AnswerRecord) (*types.SubmitResponse, error) {
	if name := s.cfg.MissingSecret(); name != "" {
		utils.Zlog.Error("Sink secret not configured", zap.String("name", name))
		return nil, &types.ConfigError{Name: name}
	}

	submissionID := uuid.New().String()
	row, err := BuildRow(s.cfg.SheetColumns, RowInput{
		Record:       record,
		ReceivedAt:   s.now(),
		SubmissionID: submissionID,
	})
	if err != nil {
		return nil, err
	}

	if s.cfg.SinkTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.SinkTimeout)
		defer cancel()
	}

	sink, err := s.newSink(ctx, s.cfg)
	if err != nil {
		return nil, err
	}

	data, err := sink.AppendRow(ctx, row)
	if err != nil {
		return nil, err
	}

	utils.Zlog.Info("Submission appended",
		zap.String("submissionId", submissionID),
		zap.Int("columns", len(row)))

	return &types.SubmitResponse{Success: true, Data: data}, nil
}
