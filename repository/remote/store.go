// Package remote implements the REST API backed repository. Each domain maps to
// one resource collection under a configurable base URL:
//
//	GET    {base}/{resource}?accountId=N
//	GET    {base}/{resource}/{id}
//	POST   {base}/{resource}
//	PUT    {base}/{resource}/{id}
//	DELETE {base}/{resource}/{id}
//	DELETE {base}/{resource}?accountId=N
//
// Non-2xx responses become errors. A 404 on a single item read is "not found"
// (nil, nil) rather than a failure. Calls are guarded by a circuit breaker so
// a dead backend fails fast; nothing is retried.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/goliatone/go-repository-switch/domain"
	"github.com/goliatone/go-repository-switch/repository"
)

// Config configures a remote store.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures that opens the
	// breaker. Zero uses 5.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open. Zero uses 30s.
	OpenTimeout time.Duration
}

var _ repository.Repository[domain.Account] = (*Store[domain.Account])(nil)

// Store is a Repository over HTTP.
type Store[T any] struct {
	client   *http.Client
	base     string
	resource string
	handlers repository.Handlers[T]
	breaker  *gobreaker.CircuitBreaker
}

// New creates a store for the resource named after the handlers' domain.
func New[T any](cfg Config, client *http.Client, handlers repository.Handlers[T]) *Store[T] {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout == 0 {
		openTimeout = 30 * time.Second
	}

	return &Store[T]{
		client:   client,
		base:     strings.TrimRight(cfg.BaseURL, "/"),
		resource: string(handlers.Domain),
		handlers: handlers,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "remote-" + string(handlers.Domain),
			Timeout: openTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				// client side outcomes say nothing about backend health
				switch domain.CategoryOf(err) {
				case domain.CategoryNotFound, domain.CategoryValidation, domain.CategoryUnauthorized:
					return true
				}
				return err == nil
			},
		}),
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

func (s *Store[T]) collectionURL(scope domain.Scope) string {
	u := s.base + "/" + s.resource
	if scope.Scoped() {
		u += "?" + url.Values{"accountId": {strconv.FormatInt(scope.AccountID, 10)}}.Encode()
	}
	return u
}

func (s *Store[T]) itemURL(id int64) string {
	return s.base + "/" + s.resource + "/" + strconv.FormatInt(id, 10)
}

// do runs one request through the breaker and decodes a 2xx body into out.
// It returns the status code so callers can special case 404.
func (s *Store[T]) do(ctx context.Context, method, target string, in, out any) (int, error) {
	res, err := s.breaker.Execute(func() (interface{}, error) {
		return s.roundTrip(ctx, method, target, in, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return 0, domain.NewNetworkError(s.resource+" backend unavailable", err)
	}
	status, _ := res.(int)
	return status, err
}

func (s *Store[T]) roundTrip(ctx context.Context, method, target string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, domain.NewRepositoryError("encode request", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, domain.NewRepositoryError("build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, domain.NewNetworkError(method+" "+target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, nil
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return resp.StatusCode, &domain.Error{Category: domain.CategoryUnauthorized, Message: method + " " + target}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, domain.NewRepositoryError(s.resource+" request failed", &StatusError{
			Method: method,
			URL:    target,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(snippet)),
		})
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, domain.NewRepositoryError("decode "+s.resource+" response", err)
	}
	return resp.StatusCode, nil
}

func (s *Store[T]) FindAll(ctx context.Context, scope domain.Scope) ([]T, error) {
	var records []T
	status, err := s.do(ctx, http.MethodGet, s.collectionURL(scope), nil, &records)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, domain.NewRepositoryError(s.resource+" collection not found", &StatusError{
			Method: http.MethodGet, URL: s.collectionURL(scope), Status: status,
		})
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func (s *Store[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	var record T
	status, err := s.do(ctx, http.MethodGet, s.itemURL(id), nil, &record)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	return &record, nil
}

func (s *Store[T]) Create(ctx context.Context, record T) (T, error) {
	var created T
	if _, err := s.do(ctx, http.MethodPost, s.collectionURL(domain.Scope{}), record, &created); err != nil {
		var zero T
		return zero, err
	}
	return created, nil
}

func (s *Store[T]) Update(ctx context.Context, record T) (T, error) {
	var zero, updated T
	id := s.handlers.GetID(record)
	status, err := s.do(ctx, http.MethodPut, s.itemURL(id), record, &updated)
	if err != nil {
		return zero, err
	}
	if status == http.StatusNotFound {
		return zero, domain.NewNotFoundError(s.handlers.Domain, id)
	}
	return updated, nil
}

func (s *Store[T]) Delete(ctx context.Context, id int64) error {
	status, err := s.do(ctx, http.MethodDelete, s.itemURL(id), nil, nil)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return domain.NewNotFoundError(s.handlers.Domain, id)
	}
	return nil
}

func (s *Store[T]) ClearAll(ctx context.Context, scope domain.Scope) error {
	_, err := s.do(ctx, http.MethodDelete, s.collectionURL(scope), nil, nil)
	return err
}
