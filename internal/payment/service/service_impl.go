package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/payrecord/internal/events"
	obsmetrics "github.com/smallbiznis/payrecord/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/payrecord/internal/payment/domain"
	"github.com/smallbiznis/payrecord/internal/payment/validation"
	"github.com/smallbiznis/payrecord/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       paymentdomain.Repository
	Validator  *validation.Validator
	Publisher  events.Publisher    `optional:"true"`
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       paymentdomain.Repository
	validator  *validation.Validator
	publisher  events.Publisher
	obsMetrics *obsmetrics.Metrics
}

func NewService(p Params) paymentdomain.Service {
	validator := p.Validator
	if validator == nil {
		validator = validation.New()
	}
	publisher := p.Publisher
	if publisher == nil {
		publisher = events.NewNoopPublisher()
	}
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		validator:  validator,
		publisher:  publisher,
		obsMetrics: p.ObsMetrics,
	}
}

func (s *Service) Create(ctx context.Context, req paymentdomain.CreatePaymentRequest) (paymentdomain.PaymentView, error) {
	if violations := s.validator.Validate(req); len(violations) > 0 {
		s.obsMetrics.RecordPaymentRejected(ctx, string(paymentdomain.KindValidationFailed))
		return paymentdomain.PaymentView{}, paymentdomain.NewValidationError(violations)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		violations := paymentdomain.Violations{{
			Field:   "amount",
			Code:    paymentdomain.CodeInvalidFormat,
			Message: "amount must be a decimal number",
		}}
		return paymentdomain.PaymentView{}, paymentdomain.NewValidationError(violations)
	}

	candidate := paymentdomain.Payment{
		ExternalID: req.ExternalID,
		Email:      req.Email,
		Amount:     amount,
		Currency:   paymentdomain.Currency(req.Currency),
	}

	var stored *paymentdomain.Payment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inserted, err := s.repo.InsertIfAbsent(ctx, tx, &candidate)
		if err != nil {
			if db.IsDuplicateKeyErr(err) {
				return paymentdomain.NewDuplicateError(req.ExternalID)
			}
			return paymentdomain.NewCreateError(req.ExternalID, err)
		}
		if !inserted {
			return paymentdomain.NewDuplicateError(req.ExternalID)
		}

		stored, err = s.repo.FindByExternalID(ctx, tx, req.ExternalID)
		if err != nil {
			return paymentdomain.NewCreateError(req.ExternalID, err)
		}
		if stored == nil {
			return paymentdomain.NewCreateError(req.ExternalID, errors.New("inserted payment not readable"))
		}
		return nil
	})
	if err != nil {
		var domainErr *paymentdomain.Error
		if !errors.As(err, &domainErr) {
			// Commit failures surface here without a kind.
			domainErr = paymentdomain.NewCreateError(req.ExternalID, err)
		}
		s.logCreateFailure(ctx, domainErr)
		s.obsMetrics.RecordPaymentRejected(ctx, string(domainErr.Kind))
		return paymentdomain.PaymentView{}, domainErr
	}

	view := paymentdomain.NewPaymentView(stored)
	s.obsMetrics.RecordPaymentCreated(ctx, string(view.Currency))
	s.log.Info("payment recorded",
		zap.String("external_id", view.ExternalID),
		zap.String("currency", string(view.Currency)),
	)
	s.publishCreated(ctx, view)

	return view, nil
}

func (s *Service) GetByExternalID(ctx context.Context, externalID string) (paymentdomain.PaymentView, error) {
	if strings.TrimSpace(externalID) == "" {
		return paymentdomain.PaymentView{}, paymentdomain.NewNotFoundError(externalID)
	}

	item, err := s.repo.FindByExternalID(ctx, s.db, externalID)
	if err != nil {
		s.log.Error("lookup by external id failed", zap.String("external_id", externalID), zap.Error(err))
		return paymentdomain.PaymentView{}, paymentdomain.NewLookupError(externalID, err)
	}
	if item == nil {
		return paymentdomain.PaymentView{}, paymentdomain.NewNotFoundError(externalID)
	}

	return paymentdomain.NewPaymentView(item), nil
}

func (s *Service) ListByEmail(ctx context.Context, email string) ([]paymentdomain.PaymentView, error) {
	items, err := s.repo.ListByEmail(ctx, s.db, email)
	if err != nil {
		s.log.Error("lookup by email failed", zap.Error(err))
		return nil, paymentdomain.NewLookupError("", err)
	}

	views := make([]paymentdomain.PaymentView, 0, len(items))
	for _, item := range items {
		views = append(views, paymentdomain.NewPaymentView(item))
	}
	return views, nil
}

func (s *Service) logCreateFailure(ctx context.Context, err *paymentdomain.Error) {
	fields := []zap.Field{
		zap.String("external_id", err.ExternalID),
		zap.String("kind", string(err.Kind)),
	}
	if err.Kind == paymentdomain.KindDuplicateExternalID {
		s.log.Info("duplicate external id rejected", fields...)
		return
	}
	s.log.Error("create payment failed", append(fields, zap.Error(err.Cause))...)
}

// publishCreated never fails the create; the row is already committed.
func (s *Service) publishCreated(ctx context.Context, view paymentdomain.PaymentView) {
	event := events.PaymentCreated{
		Type:       events.TypePaymentCreated,
		ExternalID: view.ExternalID,
		Email:      view.Email,
		Amount:     view.Amount.StringFixed(view.Currency.MinorUnits()),
		Currency:   string(view.Currency),
		CreatedAt:  view.CreatedAt,
	}
	if s.genID != nil {
		event.EventID = s.genID.Generate().String()
	}

	err := s.publisher.PublishPaymentCreated(ctx, event)
	s.obsMetrics.RecordEventPublished(ctx, events.TypePaymentCreated, err == nil)
	if err != nil {
		s.log.Warn("publish payment.created failed",
			zap.String("external_id", view.ExternalID),
			zap.Error(err),
		)
	}
}

var _ paymentdomain.Service = (*Service)(nil)
