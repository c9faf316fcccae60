package usecases

import (
	"context"
	"errors"
	"regexp"
	"strings"

	domainerrors "venture-ledger.backend/internal/domain/errors"
	"venture-ledger.backend/internal/infrastructure/blockchain"
)

var revertReasonPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)reverted with reason string '([^']+)'`),
	regexp.MustCompile(`(?i)execution reverted: (.+)`),
	regexp.MustCompile(`(?i)revert(?:ed)?: (.+)`),
}

// classifyProviderError maps a raw provider failure onto the gateway taxonomy.
// Errors already in the taxonomy pass through unchanged.
func classifyProviderError(err error) error {
	if err == nil {
		return nil
	}
	if isClassified(err) {
		return err
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case blockchain.IsProviderCode(err, blockchain.CodeUserRejected),
		strings.Contains(lower, "user rejected"),
		strings.Contains(lower, "user denied"):
		return domainerrors.ErrUserRejected
	case strings.Contains(lower, "insufficient funds"):
		return domainerrors.ErrInsufficientFunds
	case strings.Contains(lower, "revert"):
		return &domainerrors.ContractRevertedError{Reason: extractRevertReason(err)}
	}
	if decoded, ok := decodeRevertDataFromError(err); ok && decoded.Message != "" {
		return &domainerrors.ContractRevertedError{Reason: decoded.Message}
	}
	return &domainerrors.UnknownProviderError{Raw: msg}
}

// extractRevertReason prefers decoded revert data, then message patterns,
// then the generic reason.
func extractRevertReason(err error) string {
	if decoded, ok := decodeRevertDataFromError(err); ok && decoded.Message != "" {
		return decoded.Message
	}
	msg := err.Error()
	for _, p := range revertReasonPatterns {
		if m := p.FindStringSubmatch(msg); len(m) == 2 {
			if reason := strings.TrimSpace(m[1]); reason != "" && !revertHexPattern.MatchString(reason) {
				return reason
			}
		}
	}
	return domainerrors.GenericRevertReason
}

func isClassified(err error) bool {
	var reverted *domainerrors.ContractRevertedError
	var unknown *domainerrors.UnknownProviderError
	return errors.Is(err, domainerrors.ErrConnectionRejected) ||
		errors.Is(err, domainerrors.ErrInsufficientFunds) ||
		errors.Is(err, domainerrors.ErrValidation) ||
		errors.Is(err, domainerrors.ErrNetworkMismatch) ||
		errors.Is(err, domainerrors.ErrNotConnected) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &reverted) ||
		errors.As(err, &unknown)
}
