package multisig

import "errors"

// Protocol error taxonomy. All client operations are pure and fail fast;
// nothing here is retried internally.
var (
	// ErrOwnerMismatch means an account is not owned by the multisig
	// program and therefore cannot be one of its accounts.
	ErrOwnerMismatch = errors.New("account not owned by multisig program")

	// ErrTypeMismatch means the account-type byte did not match the kind
	// the caller asked to decode.
	ErrTypeMismatch = errors.New("account type tag mismatch")

	// ErrAlreadyExecutedOrClosed marks a proposal account whose payload has
	// been zeroed after execution. It is a valid terminal state: callers
	// skip, they do not abort.
	ErrAlreadyExecutedOrClosed = errors.New("proposal already executed or closed")

	// ErrDerivationExhausted means the bounded program-address search found
	// no valid off-curve address for the given seeds.
	ErrDerivationExhausted = errors.New("program address derivation exhausted")

	// ErrUnsupportedProposition means a proposition kind has no
	// instruction-building rule.
	ErrUnsupportedProposition = errors.New("unsupported proposition")
)
