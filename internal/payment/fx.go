package payment

import (
	"github.com/smallbiznis/payrecord/internal/payment/repository"
	paymentservice "github.com/smallbiznis/payrecord/internal/payment/service"
	"github.com/smallbiznis/payrecord/internal/payment/validation"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(validation.New),
	fx.Provide(paymentservice.NewService),
)
