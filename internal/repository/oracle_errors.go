package repository

import (
	"errors"
	"fmt"
	"strings"

	"quiz-pipeline/internal/domain"

	"github.com/sijms/go-ora/v2/network"
)

const (
	oraUniqueViolation = 1
	oraDeadlock        = 60
	oraResourceBusy    = 54
	oraSerialization   = 8177
	oraUndoRetention   = 30006
)

var transientOraCodes = []int{oraDeadlock, oraResourceBusy, oraSerialization, oraUndoRetention}

// OracleErrorCode extracts the ORA-nnnnn code, or 0 when err is not an Oracle error.
func OracleErrorCode(err error) int {
	if err == nil {
		return 0
	}
	var oraErr *network.OracleError
	if errors.As(err, &oraErr) {
		return oraErr.ErrCode
	}
	var code int
	msg := err.Error()
	if idx := strings.Index(msg, "ORA-"); idx >= 0 {
		if _, scanErr := fmt.Sscanf(msg[idx:], "ORA-%05d", &code); scanErr == nil {
			return code
		}
	}
	return 0
}

// IsTransientOracleError reports deadlocks, lock waits and serialization failures.
func IsTransientOracleError(err error) bool {
	code := OracleErrorCode(err)
	for _, c := range transientOraCodes {
		if code == c {
			return true
		}
	}
	return false
}

func isUniqueViolation(err error) bool {
	return OracleErrorCode(err) == oraUniqueViolation
}

// wrapDBError marks retryable Oracle errors as domain.TransientDBError and wraps the rest.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsTransientOracleError(err) {
		return &domain.TransientDBError{Op: op, Cause: err}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
