package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	calldetaildomain "github.com/railzwaylabs/mediation/internal/calldetail/domain"
	calltypedomain "github.com/railzwaylabs/mediation/internal/calltype/domain"
	"github.com/railzwaylabs/mediation/internal/clock"
	"github.com/railzwaylabs/mediation/internal/config"
	"github.com/railzwaylabs/mediation/internal/observability"
	subscriberdomain "github.com/railzwaylabs/mediation/internal/subscriber/domain"
	taxdomain "github.com/railzwaylabs/mediation/internal/tax/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/railzwaylabs/mediation/internal/calldetail/service")

// ErrorReporter records accounts that could not be resolved.
type ErrorReporter interface {
	ReportAccountError(ban, msisdn string)
}

type Service struct {
	log     *zap.Logger
	clock   clock.Clock
	metrics *observability.Metrics

	subscribers subscriberdomain.Repository
	callTypes   calltypedomain.Repository
	taxes       taxdomain.Repository
	splitter    calldetaildomain.Splitter
	reporter    ErrorReporter

	delimiter        rune
	logAccountErrors bool
}

type ServiceParam struct {
	fx.In

	Log            *zap.Logger
	Clock          clock.Clock
	Config         config.Config
	Metrics        *observability.Metrics `optional:"true"`
	Subscribers    subscriberdomain.Repository
	CallTypes      calltypedomain.Repository
	TaxAuthorities taxdomain.Repository
	Splitter       calldetaildomain.Splitter
	Reporter       ErrorReporter `optional:"true"`
}

func NewService(p ServiceParam) *Service {
	delimiter := ','
	if d := []rune(p.Config.IPCG.Delimiter); len(d) > 0 {
		delimiter = d[0]
	}
	return &Service{
		log:     p.Log.Named("calldetail.service"),
		clock:   p.Clock,
		metrics: p.Metrics,

		subscribers: p.Subscribers,
		callTypes:   p.CallTypes,
		taxes:       p.TaxAuthorities,
		splitter:    p.Splitter,
		reporter:    p.Reporter,

		delimiter:        delimiter,
		logAccountErrors: p.Config.IPCG.LogAccountErrors,
	}
}

var _ calldetaildomain.Creator = (*Service)(nil)

// CreateCallDetail resolves the owning account and call type of rec and
// returns the normalized call detail. Nothing is returned on failure.
func (s *Service) CreateCallDetail(ctx context.Context, rec calldetaildomain.RawUsageRecord, opts ...calldetaildomain.CreateOption) (*calldetaildomain.CallDetail, error) {
	options := calldetaildomain.CreateOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	logError := s.logAccountErrors
	if options.LogError != nil {
		logError = *options.LogError
	}

	ctx, span := tracer.Start(ctx, "calldetail.Create", trace.WithAttributes(
		attribute.Int64("ipcg.record_id", rec.RecordID),
		attribute.String("ipcg.subscriber_id", rec.SubscriberID),
	))
	defer span.End()

	cd, err := s.build(ctx, rec, logError)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.ObserveFailed(failureReason(err))
		return nil, err
	}

	s.metrics.ObserveCreated()
	return cd, nil
}

func (s *Service) build(ctx context.Context, rec calldetaildomain.RawUsageRecord, logError bool) (*calldetaildomain.CallDetail, error) {
	id, err := s.resolveIdentity(ctx, rec, logError)
	if err != nil {
		return nil, err
	}
	spid := id.account.Spid

	callType, err := s.resolveCallType(ctx, rec.CallType, spid)
	if err != nil {
		return nil, err
	}

	taxAuthority, err := s.taxes.FindDataTaxAuthority(ctx, spid)
	if err != nil {
		return nil, fmt.Errorf("lookup tax authority for spid %d: %w", spid, err)
	}
	if taxAuthority == 0 {
		s.log.Warn("no data tax authority configured", zap.Int("spid", spid))
	}

	usage := normalizeUsage(rec.UnitType, rec.Usage)

	cd := &calldetaildomain.CallDetail{
		BAN:              id.account.BAN,
		SubscriberID:     id.subscriber.ID,
		TranDate:         rec.TranDate,
		CallType:         rec.CallType,
		PostedDate:       s.clock.Now(ctx),
		ChargedMSISDN:    rec.ChargedMSISDN,
		Duration:         usage.duration,
		DataUsage:        usage.dataUsage,
		VariableRateUnit: rec.UnitType,
		Charge:           normalizeCharge(rec.Charge),
		Spid:             spid,
		TaxAuthority1:    taxAuthority,

		ComponentCharge1: rec.ComponentCharge1,
		ComponentCharge2: rec.ComponentCharge2,
		ComponentCharge3: rec.ComponentCharge3,

		BillingOption:    rec.BillingOption,
		CallID:           strconv.FormatInt(rec.RecordID, 10),
		LocationCountry:  rec.LocationCountry,
		LocationOperator: rec.LocationOperator,
		APN:              rec.APN,
		TeleserviceType:  calldetaildomain.TeleserviceTypeData,
		HomeProv:         rec.ChargedMSISDN,

		SecondaryBalanceIndicator:     rec.SecondaryBalanceIndicator,
		SecondaryBalanceChargedAmount: rec.SecondaryBalanceChargedAmount,

		RatingRule: rec.RateRuleID,
	}

	if gl, ok := decomposeGLCodes(rec.GLCode); ok {
		cd.GLCode = gl.primary
		cd.ComponentGLCode1 = gl.components[0]
		cd.ComponentGLCode2 = gl.components[1]
		cd.ComponentGLCode3 = gl.components[2]
	} else {
		cd.GLCode = callType.GLCode
	}

	return cd, nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, calldetaildomain.ErrAccountResolution):
		return "account"
	case errors.Is(err, calldetaildomain.ErrCallTypeResolution):
		return "call_type"
	default:
		return "lookup"
	}
}
