package redisstore

import (
	"bot-for-order/internal/pkg/errs"
)

func storeErr(err error, msg string) error {
	return errs.Mark(errs.Wrap(err, msg), errs.ErrStoreUnavailable)
}
