package domain

import (
	"errors"
	"fmt"
)

var (
	ErrAccountResolution  = errors.New("account_resolution_failed")
	ErrCallTypeResolution = errors.New("call_type_resolution_failed")
	ErrBatchRejected      = errors.New("batch_rejected")
)

// AccountResolutionError is returned when a record cannot be tied to a billing
// account: the subscriber is unknown, has no BAN, or the BAN has no account.
type AccountResolutionError struct {
	SubscriberID  string
	ChargedMSISDN string
	BAN           string
}

func (e *AccountResolutionError) Error() string {
	if e.BAN == "" {
		return fmt.Sprintf("cannot find account for subscriber %q (msisdn %q)", e.SubscriberID, e.ChargedMSISDN)
	}
	return fmt.Sprintf("invalid account %q for subscriber %q (msisdn %q)", e.BAN, e.SubscriberID, e.ChargedMSISDN)
}

func (e *AccountResolutionError) Unwrap() error { return ErrAccountResolution }

// CallTypeResolutionError is returned when no call type is configured for the
// record's call-type code within the account's service provider.
type CallTypeResolutionError struct {
	Code int
	Spid int
}

func (e *CallTypeResolutionError) Error() string {
	return fmt.Sprintf("could not find call type entry for type id %d and service provider %d", e.Code, e.Spid)
}

func (e *CallTypeResolutionError) Unwrap() error { return ErrCallTypeResolution }

// BatchRejectedError aborts a whole ER batch before any record is built.
type BatchRejectedError struct {
	ERID  int
	Cause error
}

func (e *BatchRejectedError) Error() string {
	return fmt.Sprintf("ER %d rejected: %v", e.ERID, e.Cause)
}

// Is matches ErrBatchRejected while Unwrap keeps the splitter cause reachable.
func (e *BatchRejectedError) Is(target error) bool { return target == ErrBatchRejected }

func (e *BatchRejectedError) Unwrap() error { return e.Cause }
