package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/opencampus-io/registrar-api/pkg/errors"
)

// requester is the shared HTTP core behind the student and course
// lookup clients. A lookup is a side-effect-free read: one attempt,
// no retries, no state kept between calls. The request carries the
// caller's context so an aborted orchestration cancels the in-flight
// upstream call.
type requester struct {
	baseURL string
	role    string
	client  *http.Client
	logger  *zap.Logger
}

func newRequester(baseURL, role string, timeout time.Duration, logger *zap.Logger) requester {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return requester{
		baseURL: baseURL,
		role:    role,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// resolve fetches /{id} from the upstream and decodes the body into
// dest. Upstream outcomes map onto the failure taxonomy:
// 404 means the upstream is healthy and the id does not exist;
// 422 means the upstream itself rejected the identifier format;
// anything else, including transport errors, is unavailability.
func (r requester) resolve(ctx context.Context, id string, dest interface{}) error {
	url := fmt.Sprintf("%s/%s", r.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status,
			fmt.Sprintf("%s service request could not be built", r.role))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("upstream unreachable", zap.String("role", r.role), zap.String("id", id), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status,
			fmt.Sprintf("%s service is unavailable", r.role))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := decodeBody(resp.Body, dest); err != nil {
			return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status,
				fmt.Sprintf("%s service returned an unreadable body", r.role))
		}
		return nil
	case http.StatusNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s with id=%s is not found", r.role, id))
	case http.StatusUnprocessableEntity:
		return appErrors.Clone(appErrors.ErrInvalidIdentifier, fmt.Sprintf("%s id=%s is invalid", r.role, id))
	default:
		r.logger.Warn("upstream error status", zap.String("role", r.role), zap.String("id", id), zap.Int("status", resp.StatusCode))
		return appErrors.Clone(appErrors.ErrUpstreamUnavailable, fmt.Sprintf("%s service is unavailable", r.role))
	}
}

// decodeBody accepts either a bare JSON object or the registrar
// response envelope {"data": ...}.
func decodeBody(body io.Reader, dest interface{}) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		return json.Unmarshal(envelope.Data, dest)
	}
	return json.Unmarshal(raw, dest)
}
