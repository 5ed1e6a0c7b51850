package service

import (
	"context"
	"fmt"
	"strings"

	calldetaildomain "github.com/railzwaylabs/mediation/internal/calldetail/domain"
	calltypedomain "github.com/railzwaylabs/mediation/internal/calltype/domain"
	subscriberdomain "github.com/railzwaylabs/mediation/internal/subscriber/domain"
	"go.uber.org/zap"
)

// identity is what the account resolution step hands to the rest of one
// CreateCallDetail call.
type identity struct {
	subscriber *subscriberdomain.Subscriber
	account    *subscriberdomain.Account
}

func (s *Service) resolveIdentity(ctx context.Context, rec calldetaildomain.RawUsageRecord, logError bool) (identity, error) {
	sub, err := s.subscribers.FindSubscriberByID(ctx, rec.SubscriberID)
	if err != nil {
		return identity{}, fmt.Errorf("lookup subscriber %q: %w", rec.SubscriberID, err)
	}

	var ban string
	if sub != nil {
		ban = strings.TrimSpace(sub.BAN)
	}
	if ban == "" {
		// Only an unknown account is written to the error log.
		return identity{}, s.accountError(rec, "", false)
	}

	acct, err := s.subscribers.FindAccountByBAN(ctx, ban)
	if err != nil {
		return identity{}, fmt.Errorf("lookup account %q: %w", ban, err)
	}
	if acct == nil {
		return identity{}, s.accountError(rec, ban, logError)
	}

	return identity{subscriber: sub, account: acct}, nil
}

func (s *Service) accountError(rec calldetaildomain.RawUsageRecord, ban string, logError bool) error {
	err := &calldetaildomain.AccountResolutionError{
		SubscriberID:  rec.SubscriberID,
		ChargedMSISDN: rec.ChargedMSISDN,
		BAN:           ban,
	}
	s.log.Error("cannot resolve account",
		zap.String("subscriber_id", rec.SubscriberID),
		zap.String("msisdn", rec.ChargedMSISDN),
		zap.String("ban", ban),
		zap.Int64("record_id", rec.RecordID),
	)
	if logError && s.reporter != nil {
		s.reporter.ReportAccountError(ban, rec.ChargedMSISDN)
	}
	return err
}

func (s *Service) resolveCallType(ctx context.Context, code, spid int) (*calltypedomain.CallType, error) {
	ct, err := s.callTypes.FindByCode(ctx, code, spid)
	if err != nil {
		return nil, fmt.Errorf("lookup call type %d for spid %d: %w", code, spid, err)
	}
	if ct == nil {
		s.log.Error("cannot resolve call type", zap.Int("call_type", code), zap.Int("spid", spid))
		return nil, &calldetaildomain.CallTypeResolutionError{Code: code, Spid: spid}
	}
	return ct, nil
}
