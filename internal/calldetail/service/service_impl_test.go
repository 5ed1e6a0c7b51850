package service

import (
	"context"
	"errors"
	"testing"
	"time"

	calldetaildomain "github.com/railzwaylabs/mediation/internal/calldetail/domain"
	calltypedomain "github.com/railzwaylabs/mediation/internal/calltype/domain"
	"github.com/railzwaylabs/mediation/internal/clock"
	"github.com/railzwaylabs/mediation/internal/config"
	subscriberdomain "github.com/railzwaylabs/mediation/internal/subscriber/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// -- Mocks --

type subscriberMock struct {
	mock.Mock
}

func (m *subscriberMock) FindSubscriberByID(ctx context.Context, id string) (*subscriberdomain.Subscriber, error) {
	args := m.Called(ctx, id)
	res := args.Get(0)
	if res == nil {
		return nil, args.Error(1)
	}
	return res.(*subscriberdomain.Subscriber), args.Error(1)
}

func (m *subscriberMock) FindAccountByBAN(ctx context.Context, ban string) (*subscriberdomain.Account, error) {
	args := m.Called(ctx, ban)
	res := args.Get(0)
	if res == nil {
		return nil, args.Error(1)
	}
	return res.(*subscriberdomain.Account), args.Error(1)
}

type callTypeMock struct {
	mock.Mock
}

func (m *callTypeMock) FindByCode(ctx context.Context, code, spid int) (*calltypedomain.CallType, error) {
	args := m.Called(ctx, code, spid)
	res := args.Get(0)
	if res == nil {
		return nil, args.Error(1)
	}
	return res.(*calltypedomain.CallType), args.Error(1)
}

type taxMock struct {
	mock.Mock
}

func (m *taxMock) FindDataTaxAuthority(ctx context.Context, spid int) (int, error) {
	args := m.Called(ctx, spid)
	return args.Int(0), args.Error(1)
}

type reporterMock struct {
	mock.Mock
}

func (m *reporterMock) ReportAccountError(ban, msisdn string) {
	m.Called(ban, msisdn)
}

// -- Fixtures --

var postedAt = time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC)

type fixture struct {
	subs     *subscriberMock
	types    *callTypeMock
	taxes    *taxMock
	reporter *reporterMock
	svc      *Service
}

func newFixture(t *testing.T, logAccountErrors bool) *fixture {
	t.Helper()
	f := &fixture{
		subs:     new(subscriberMock),
		types:    new(callTypeMock),
		taxes:    new(taxMock),
		reporter: new(reporterMock),
	}
	f.svc = NewService(ServiceParam{
		Log:   zap.NewNop(),
		Clock: clock.Fixed(postedAt),
		Config: config.Config{IPCG: config.IPCGConfig{
			Delimiter:        ",",
			LogAccountErrors: logAccountErrors,
		}},
		Subscribers:    f.subs,
		CallTypes:      f.types,
		TaxAuthorities: f.taxes,
		Splitter:       nil,
		Reporter:       f.reporter,
	})
	return f
}

// resolvable wires sub-1 -> BAN 100200 -> spid 7 -> call type 12 (GL 4000).
func (f *fixture) resolvable() {
	f.subs.On("FindSubscriberByID", mock.Anything, "sub-1").
		Return(&subscriberdomain.Subscriber{ID: "sub-1", BAN: "100200"}, nil)
	f.subs.On("FindAccountByBAN", mock.Anything, "100200").
		Return(&subscriberdomain.Account{BAN: "100200", Spid: 7}, nil)
	f.types.On("FindByCode", mock.Anything, 12, 7).
		Return(&calltypedomain.CallType{Code: 12, Spid: 7, GLCode: "4000"}, nil)
	f.taxes.On("FindDataTaxAuthority", mock.Anything, 7).Return(41, nil)
}

func rawRecord() calldetaildomain.RawUsageRecord {
	return calldetaildomain.RawUsageRecord{
		RecordID:         9001,
		TranDate:         time.Date(2024, 5, 1, 10, 15, 30, 0, time.UTC),
		SubscriberID:     "sub-1",
		ChargedMSISDN:    "4165550100",
		CallType:         12,
		UnitType:         calldetaildomain.UnitTypeSeconds,
		Usage:            90,
		Charge:           105,
		ComponentCharge1: 10,
		ComponentCharge2: 20,
		ComponentCharge3: 30,
		GLCode:           "100|200|300",
		BillingOption:    "PREPAID",
		LocationCountry:  "CAN",
		LocationOperator: "ROGERS",
		APN:              "internet.apn",

		SecondaryBalanceIndicator:     true,
		SecondaryBalanceChargedAmount: 25,

		RateRuleID: "RR-7",
	}
}

// -- Tests --

func TestCreateCallDetail(t *testing.T) {
	f := newFixture(t, false)
	f.resolvable()

	cd, err := f.svc.CreateCallDetail(context.Background(), rawRecord())
	require.NoError(t, err)

	assert.Equal(t, "100200", cd.BAN)
	assert.Equal(t, "sub-1", cd.SubscriberID)
	assert.Equal(t, 7, cd.Spid)
	assert.Equal(t, 41, cd.TaxAuthority1)
	assert.Equal(t, 12, cd.CallType)
	assert.Equal(t, postedAt, cd.PostedDate)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 15, 30, 0, time.UTC), cd.TranDate)
	assert.Equal(t, "4165550100", cd.ChargedMSISDN)
	assert.Equal(t, "4165550100", cd.HomeProv)
	assert.Equal(t, int64(11), cd.Charge)
	assert.Equal(t, calldetaildomain.UnitTypeSeconds, cd.VariableRateUnit)
	assert.Equal(t, &calldetaildomain.Duration{Seconds: 90}, cd.Duration)
	assert.Nil(t, cd.DataUsage)

	assert.Equal(t, "100", cd.GLCode)
	assert.Equal(t, "100", cd.ComponentGLCode1)
	assert.Equal(t, "200", cd.ComponentGLCode2)
	assert.Equal(t, "300", cd.ComponentGLCode3)

	assert.Equal(t, int64(10), cd.ComponentCharge1)
	assert.Equal(t, int64(20), cd.ComponentCharge2)
	assert.Equal(t, int64(30), cd.ComponentCharge3)
	assert.Equal(t, "PREPAID", cd.BillingOption)
	assert.Equal(t, "9001", cd.CallID)
	assert.Equal(t, "CAN", cd.LocationCountry)
	assert.Equal(t, "ROGERS", cd.LocationOperator)
	assert.Equal(t, "internet.apn", cd.APN)
	assert.Equal(t, calldetaildomain.TeleserviceTypeData, cd.TeleserviceType)
	assert.True(t, cd.SecondaryBalanceIndicator)
	assert.Equal(t, int64(25), cd.SecondaryBalanceChargedAmount)
	assert.Equal(t, "RR-7", cd.RatingRule)

	f.reporter.AssertNotCalled(t, "ReportAccountError", mock.Anything, mock.Anything)
}

func TestCreateCallDetail_DataUsage(t *testing.T) {
	f := newFixture(t, false)
	f.resolvable()

	rec := rawRecord()
	rec.UnitType = calldetaildomain.UnitTypeData
	rec.Usage = 1024
	rec.Charge = 104

	cd, err := f.svc.CreateCallDetail(context.Background(), rec)
	require.NoError(t, err)

	assert.Nil(t, cd.Duration)
	require.NotNil(t, cd.DataUsage)
	assert.Equal(t, int64(1024), *cd.DataUsage)
	assert.Equal(t, int64(10), cd.Charge)
	assert.Equal(t, calldetaildomain.UnitTypeData, cd.VariableRateUnit)
}

func TestCreateCallDetail_GLCodeFallback(t *testing.T) {
	tests := []struct {
		name       string
		glCode     string
		primary    string
		components [3]string
	}{
		{name: "all components", glCode: "100|200|300", primary: "100", components: [3]string{"100", "200", "300"}},
		{name: "middle only", glCode: "|200|", primary: "200", components: [3]string{"", "200", ""}},
		{name: "last only", glCode: "||300", primary: "300", components: [3]string{"", "", "300"}},
		{name: "empty uses call type", glCode: "", primary: "4000"},
		{name: "blank uses call type", glCode: "   ", primary: "4000"},
		{name: "only delimiters uses call type", glCode: "||", primary: "4000"},
		{name: "extra segments ignored", glCode: "|||400|500", primary: "4000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, false)
			f.resolvable()

			rec := rawRecord()
			rec.GLCode = tt.glCode

			cd, err := f.svc.CreateCallDetail(context.Background(), rec)
			require.NoError(t, err)
			assert.Equal(t, tt.primary, cd.GLCode)
			assert.Equal(t, tt.components[0], cd.ComponentGLCode1)
			assert.Equal(t, tt.components[1], cd.ComponentGLCode2)
			assert.Equal(t, tt.components[2], cd.ComponentGLCode3)
		})
	}
}

func TestCreateCallDetail_AccountResolution(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(*subscriberMock)
		wantBAN    string
		wantLogged bool
	}{
		{
			name: "subscriber not found",
			setupMocks: func(s *subscriberMock) {
				s.On("FindSubscriberByID", mock.Anything, "sub-1").Return(nil, nil)
			},
		},
		{
			name: "subscriber without BAN",
			setupMocks: func(s *subscriberMock) {
				s.On("FindSubscriberByID", mock.Anything, "sub-1").
					Return(&subscriberdomain.Subscriber{ID: "sub-1", BAN: "  "}, nil)
			},
		},
		{
			name: "account not found",
			setupMocks: func(s *subscriberMock) {
				s.On("FindSubscriberByID", mock.Anything, "sub-1").
					Return(&subscriberdomain.Subscriber{ID: "sub-1", BAN: "100200"}, nil)
				s.On("FindAccountByBAN", mock.Anything, "100200").Return(nil, nil)
			},
			wantBAN:    "100200",
			wantLogged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Run("without error log", func(t *testing.T) {
				f := newFixture(t, false)
				tt.setupMocks(f.subs)

				cd, err := f.svc.CreateCallDetail(context.Background(), rawRecord())
				assert.Nil(t, cd)
				assert.ErrorIs(t, err, calldetaildomain.ErrAccountResolution)

				var accErr *calldetaildomain.AccountResolutionError
				require.ErrorAs(t, err, &accErr)
				assert.Equal(t, "4165550100", accErr.ChargedMSISDN)
				assert.Equal(t, tt.wantBAN, accErr.BAN)
				assert.Contains(t, err.Error(), "4165550100")

				f.reporter.AssertNotCalled(t, "ReportAccountError", mock.Anything, mock.Anything)
				f.types.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything, mock.Anything)
			})

			t.Run("with error log", func(t *testing.T) {
				f := newFixture(t, false)
				tt.setupMocks(f.subs)
				if tt.wantLogged {
					f.reporter.On("ReportAccountError", tt.wantBAN, "4165550100").Once()
				}

				_, err := f.svc.CreateCallDetail(context.Background(), rawRecord(), calldetaildomain.WithErrorLog(true))
				assert.ErrorIs(t, err, calldetaildomain.ErrAccountResolution)
				if tt.wantLogged {
					f.reporter.AssertExpectations(t)
				} else {
					f.reporter.AssertNotCalled(t, "ReportAccountError", mock.Anything, mock.Anything)
				}
			})
		})
	}
}

func TestCreateCallDetail_ErrorLogDefaultFromConfig(t *testing.T) {
	f := newFixture(t, true)
	f.subs.On("FindSubscriberByID", mock.Anything, "sub-1").
		Return(&subscriberdomain.Subscriber{ID: "sub-1", BAN: "100200"}, nil)
	f.subs.On("FindAccountByBAN", mock.Anything, "100200").Return(nil, nil)
	f.reporter.On("ReportAccountError", "100200", "4165550100").Once()

	_, err := f.svc.CreateCallDetail(context.Background(), rawRecord())
	assert.ErrorIs(t, err, calldetaildomain.ErrAccountResolution)
	f.reporter.AssertExpectations(t)

	// An explicit option wins over the configured default.
	_, err = f.svc.CreateCallDetail(context.Background(), rawRecord(), calldetaildomain.WithErrorLog(false))
	assert.ErrorIs(t, err, calldetaildomain.ErrAccountResolution)
	f.reporter.AssertNumberOfCalls(t, "ReportAccountError", 1)
}

func TestCreateCallDetail_CallTypeResolution(t *testing.T) {
	f := newFixture(t, true)
	f.subs.On("FindSubscriberByID", mock.Anything, "sub-1").
		Return(&subscriberdomain.Subscriber{ID: "sub-1", BAN: "100200"}, nil)
	f.subs.On("FindAccountByBAN", mock.Anything, "100200").
		Return(&subscriberdomain.Account{BAN: "100200", Spid: 7}, nil)
	f.types.On("FindByCode", mock.Anything, 12, 7).Return(nil, nil)

	cd, err := f.svc.CreateCallDetail(context.Background(), rawRecord())
	assert.Nil(t, cd)
	assert.ErrorIs(t, err, calldetaildomain.ErrCallTypeResolution)

	var ctErr *calldetaildomain.CallTypeResolutionError
	require.ErrorAs(t, err, &ctErr)
	assert.Equal(t, 12, ctErr.Code)
	assert.Equal(t, 7, ctErr.Spid)
	assert.Contains(t, err.Error(), "type id 12")
	assert.Contains(t, err.Error(), "service provider 7")

	// The error log is reserved for account failures.
	f.reporter.AssertNotCalled(t, "ReportAccountError", mock.Anything, mock.Anything)
}

func TestCreateCallDetail_LookupErrors(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("subscriber store", func(t *testing.T) {
		f := newFixture(t, true)
		f.subs.On("FindSubscriberByID", mock.Anything, "sub-1").Return(nil, boom)

		_, err := f.svc.CreateCallDetail(context.Background(), rawRecord())
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, calldetaildomain.ErrAccountResolution)
		f.reporter.AssertNotCalled(t, "ReportAccountError", mock.Anything, mock.Anything)
	})

	t.Run("call type store", func(t *testing.T) {
		f := newFixture(t, false)
		f.subs.On("FindSubscriberByID", mock.Anything, "sub-1").
			Return(&subscriberdomain.Subscriber{ID: "sub-1", BAN: "100200"}, nil)
		f.subs.On("FindAccountByBAN", mock.Anything, "100200").
			Return(&subscriberdomain.Account{BAN: "100200", Spid: 7}, nil)
		f.types.On("FindByCode", mock.Anything, 12, 7).Return(nil, boom)

		_, err := f.svc.CreateCallDetail(context.Background(), rawRecord())
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, calldetaildomain.ErrCallTypeResolution)
	})
}

func TestCreateCallDetail_Idempotent(t *testing.T) {
	f := newFixture(t, false)
	f.resolvable()

	first, err := f.svc.CreateCallDetail(context.Background(), rawRecord())
	require.NoError(t, err)

	f.svc.clock = clock.Fixed(postedAt.Add(time.Hour))
	second, err := f.svc.CreateCallDetail(context.Background(), rawRecord())
	require.NoError(t, err)

	assert.NotEqual(t, first.PostedDate, second.PostedDate)
	second.PostedDate = first.PostedDate
	assert.Equal(t, first, second)
}
