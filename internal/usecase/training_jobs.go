package usecase

import (
	"context"
	"fmt"

	"FinCast/internal/domain/models"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/queue"
)

// Queue message types for background training work.
const (
	MsgTransferLearn = "transfer_learn"
	MsgAugment       = "augment"
)

// TransferLearnJob runs transfer-learning requests from the queue so large
// corpora do not block the request path.
type TransferLearnJob struct {
	orch   *ForecastOrchestrator
	logger *applogger.Logger
}

func NewTransferLearnJob(orch *ForecastOrchestrator, lgr *applogger.Logger) *TransferLearnJob {
	return &TransferLearnJob{orch: orch, logger: lgr}
}

func (j *TransferLearnJob) Name() string { return "forecast.transfer_learn" }
func (j *TransferLearnJob) Type() string { return MsgTransferLearn }

func (j *TransferLearnJob) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[models.TransferLearnRequest](payload)
	if err != nil {
		return fmt.Errorf("parse transfer-learn payload: %w", err)
	}
	resp, err := j.orch.TransferLearn(ctx, *req)
	if err != nil {
		return err
	}
	j.logger.Info("queued transfer-learn finished",
		applogger.String("target", req.TargetSecurityID),
		applogger.Int("sources", resp.PretrainSources))
	return nil
}

// AugmentJob generates synthetic series in the background, for callers that
// only need the generation side effects logged.
type AugmentJob struct {
	orch   *ForecastOrchestrator
	logger *applogger.Logger
}

func NewAugmentJob(orch *ForecastOrchestrator, lgr *applogger.Logger) *AugmentJob {
	return &AugmentJob{orch: orch, logger: lgr}
}

func (j *AugmentJob) Name() string { return "forecast.augment" }
func (j *AugmentJob) Type() string { return MsgAugment }

func (j *AugmentJob) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[models.AugmentRequest](payload)
	if err != nil {
		return fmt.Errorf("parse augment payload: %w", err)
	}
	resp, err := j.orch.Augment(ctx, *req)
	if err != nil {
		return err
	}
	j.logger.Info("queued augmentation finished",
		applogger.String("security_id", req.SecurityID),
		applogger.Int("n_generated", resp.NGenerated))
	return nil
}
