package endpoint

import (
	"context"
	"math/big"
	"strconv"
	"time"

	"github.com/egimarket/reserve/lib/errors"
	"github.com/egimarket/reserve/reserve"
	"github.com/egimarket/reserve/reserve/model"
	"github.com/google/uuid"
)

// ValidateAsset validates an external asset id.
func ValidateAsset(
	ctx context.Context,
	asset string,
) (*string, error) {
	if !reserve.AssetRegexp.MatchString(asset) {
		return nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "asset_invalid",
			"The asset you provided is invalid: %s. Assets must start with "+
				"an alphanumeric character and be at most 256 characters "+
				"long.",
			asset,
		))
	}

	return &asset, nil
}

// ValidateWallet validates a claimant wallet identifier.
func ValidateWallet(
	ctx context.Context,
	wallet string,
) (*string, error) {
	if !reserve.WalletRegexp.MatchString(wallet) {
		return nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "wallet_invalid",
			"The wallet you provided is invalid: %s. Wallets must start "+
				"with an alphanumeric character and be between 3 and 128 "+
				"characters long.",
			wallet,
		))
	}

	return &wallet, nil
}

// ValidateKind validates a reservation kind.
func ValidateKind(
	ctx context.Context,
	kind string,
) (*model.RvKind, error) {
	switch kind {
	case string(model.RvKdStrong):
		k := model.RvKdStrong
		return &k, nil
	case string(model.RvKdWeak):
		k := model.RvKdWeak
		return &k, nil
	default:
		return nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "kind_invalid",
			"The kind you provided is invalid: %s. Kinds must be either "+
				"'strong' or 'weak'.",
			kind,
		))
	}
}

// ValidateAmount validates an amount. Amounts must be strictly positive.
func ValidateAmount(
	ctx context.Context,
	amount string,
) (*big.Int, error) {
	var a big.Int
	_, success := a.SetString(amount, 10)
	if !success ||
		a.Cmp(new(big.Int)) <= 0 ||
		a.Cmp(model.MaxAmount) >= 0 {
		return nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "amount_invalid",
			"The amount you provided is invalid: %s. Amounts must be "+
				"integers strictly between 0 and 2^128.",
			amount,
		))
	}

	return &a, nil
}

// ValidateToken validates an object token.
func ValidateToken(
	ctx context.Context,
	token string,
) (*string, error) {
	if !reserve.TokenRegexp.MatchString(token) {
		return nil, errors.Trace(errors.NewUserErrorf(nil,
			400, "token_invalid",
			"The token you provided is invalid: %s.",
			token,
		))
	}

	return &token, nil
}

// ValidateUUID validates a certificate uuid.
func ValidateUUID(
	ctx context.Context,
	id string,
) (*string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.Trace(errors.NewUserErrorf(err,
			400, "uuid_invalid",
			"The certificate uuid you provided is invalid: %s.",
			id,
		))
	}

	return &id, nil
}

// ValidateCreatedBefore validates a paging created_before.
func ValidateCreatedBefore(
	ctx context.Context,
	createdBefore string,
) (*time.Time, error) {
	if createdBefore == "" {
		t := time.Now()
		return &t, nil
	}

	c, err := strconv.ParseInt(createdBefore, 10, 64)
	if err != nil || c < 0 {
		return nil, errors.Trace(errors.NewUserErrorf(err,
			400, "created_before_invalid",
			"The paging created_before value provided is invalid: %s. "+
				"Paging created_before must be a positive integer "+
				"representing a unix time in milliseconds.",
			createdBefore,
		))
	}
	converted := time.Unix(0, c*reserve.TimeResolutionNs)

	return &converted, nil
}

// ValidateLimit validates a paging limit.
func ValidateLimit(
	ctx context.Context,
	limit string,
) (*uint, error) {
	if limit == "" {
		l := uint(100)
		return &l, nil
	}

	l, err := strconv.ParseInt(limit, 10, 64)
	if err != nil || l < 0 || l > 1000 {
		return nil, errors.Trace(errors.NewUserErrorf(err,
			400, "limit_invalid",
			"The paging limit value provided is invalid: %s. Paging limits "+
				"must be integers between 0 and 1000.",
			limit,
		))
	}
	converted := uint(l)

	return &converted, nil
}
