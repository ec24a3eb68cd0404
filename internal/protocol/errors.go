package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Rule/action layer. Every code names a rejected precondition; a
	// rejected request never partially mutates game state.
	ErrBadRequest     = "E_BAD_REQUEST"
	ErrTooFar         = "E_TOO_FAR"
	ErrCarryFull      = "E_CARRY_FULL"
	ErrNothingCarried = "E_NOTHING_CARRIED"
	ErrValueMismatch  = "E_VALUE_MISMATCH"
	ErrNoCache        = "E_NO_CACHE"
	ErrInternal       = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadRequest:      {},
	ErrTooFar:          {},
	ErrCarryFull:       {},
	ErrNothingCarried:  {},
	ErrValueMismatch:   {},
	ErrNoCache:         {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
