// Package delivery decides what to do with failed activity deliveries:
// whether the attempt is worth retrying and whether the failure is an
// application bug worth reporting.
package delivery

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// maxCauseDepth bounds the walk down an error's cause chain.
const maxCauseDepth = 10

// StatusError is a delivery failure carrying the remote peer's HTTP status.
type StatusError struct {
	Code int
}

// Error ...
func (e *StatusError) Error() string {
	return fmt.Sprintf("delivery rejected with status %d", e.Code)
}

// permanentStatusCodes are remote rejections which no retry will fix.
var permanentStatusCodes = map[int]struct{}{
	http.StatusBadRequest:          {},
	http.StatusUnauthorized:        {},
	http.StatusForbidden:           {},
	http.StatusNotFound:            {},
	http.StatusMethodNotAllowed:    {},
	http.StatusGone:                {},
	http.StatusUnprocessableEntity: {},
	http.StatusNotImplemented:      {},
}

// Classification is the retry/report decision handed to the transport.
type Classification struct {
	IsRetryable  bool
	IsReportable bool
}

// Classify inspects a delivery error. DNS, TLS and raw connectivity
// failures mean a permanently or environmentally broken remote peer:
// neither retryable nor reportable. Status-carrying failures are judged by
// the status code and never reported. Anything else is an application
// error: retryable and reportable.
func Classify(err error) Classification {
	current := err
	for i := 0; i < maxCauseDepth && current != nil; i++ {
		switch e := current.(type) {
		case *net.DNSError,
			x509.UnknownAuthorityError,
			x509.HostnameError,
			x509.CertificateInvalidError,
			*tls.CertificateVerificationError,
			*net.OpError:
			return Classification{}

		case *StatusError:
			return Classification{IsRetryable: isRetryableStatus(e.Code)}
		}

		current = unwrapOne(current)
	}

	if err == nil {
		return Classification{}
	}

	return Classification{IsRetryable: true, IsReportable: true}
}

func isRetryableStatus(code int) bool {
	if _, permanent := permanentStatusCodes[code]; permanent {
		return false
	}

	// non-standard codes are neither retried nor reported
	return http.StatusText(code) != ""
}

// unwrapOne steps one level down the cause chain, descending into the first
// branch of aggregate (multi-attempt) errors.
func unwrapOne(err error) error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := joined.Unwrap(); len(errs) != 0 {
			return errs[0]
		}
		return nil
	}

	return errors.Unwrap(err)
}
