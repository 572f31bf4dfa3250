package delivery

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("package", "delivery")

const activityContentType = `application/ld+json; profile="https://www.w3.org/ns/activitystreams"`

// Deliverer posts serialized activities to remote inboxes. Retries are
// whatever the classifier allows; the final failure is classified again to
// decide reporting. Delivery runs after persistence succeeded, so nothing
// here ever surfaces into the mutation path.
type Deliverer struct {
	client *retryablehttp.Client
}

// NewDeliverer ...
func NewDeliverer(retryMax int, retryWait time.Duration) *Deliverer {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.RetryWaitMin = retryWait
	client.Logger = nil
	// hand the final response/error back untouched so the classifier sees
	// the real failure, not a synthesized giving-up error
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return Classify(err).IsRetryable, nil
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return Classify(&StatusError{Code: resp.StatusCode}).IsRetryable, nil
		}
		return false, nil
	}

	return &Deliverer{client: client}
}

// Deliver posts one activity to the target inbox.
func (d *Deliverer) Deliver(ctx context.Context, activity []byte, inbox string) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, inbox, bytes.NewReader(activity))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", activityContentType)

	resp, err := d.client.Do(req)
	if err != nil {
		return d.report(inbox, fmt.Errorf("failed to deliver activity: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return d.report(inbox, fmt.Errorf("failed to deliver activity: %w", &StatusError{Code: resp.StatusCode}))
	}

	return nil
}

// report logs the failure and forwards it to error tracking when the
// classifier says it is an application bug. Remote-originated failures are
// never reported.
func (d *Deliverer) report(inbox string, err error) error {
	c := Classify(err)

	log.WithError(err).WithFields(logrus.Fields{
		"inbox":      inbox,
		"retryable":  c.IsRetryable,
		"reportable": c.IsReportable,
	}).Warn("delivery failed")

	if c.IsReportable {
		sentry.CaptureException(err)
	}

	return err
}
