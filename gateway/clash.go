/*
Copyright 2025 Legendtrack Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/hordestats/legendtrack/config"
	"github.com/hordestats/legendtrack/internal/apierror"
	"github.com/hordestats/legendtrack/model"
)

// ClashGateway is the read-only contract against the upstream ranking API.
// Every call can fail independently; callers treat failures as
// retryable-by-skip at the item they were fetching.
type ClashGateway interface {
	GetClanMembers(ctx context.Context, clanTag string) ([]model.ClanMember, error)
	GetPlayer(ctx context.Context, playerTag string) (*model.Player, error)
}

// maxFetchRetries bounds the in-call retry on 429 and 5xx responses. Anything
// still failing after that surfaces to the caller's skip handling.
const maxFetchRetries = 2

type ClashClient struct {
	baseURL string
	token   string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClashClient builds a client from configuration: Bearer token auth, a
// per-request timeout and a client-side rate limiter kept under the upstream
// allowance.
func NewClashClient(cnf *config.Configuration) *ClashClient {
	return &ClashClient{
		baseURL: cnf.ClashAPI.BaseUrl,
		token:   cnf.ClashAPI.Token,
		client: &http.Client{
			Timeout: time.Duration(cnf.ClashAPI.TimeoutSec) * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cnf.ClashAPI.RequestsPerSecond), int(cnf.ClashAPI.RequestsPerSecond)+1),
	}
}

// GetClanMembers fetches the current member roster of a clan.
func (c *ClashClient) GetClanMembers(ctx context.Context, clanTag string) ([]model.ClanMember, error) {
	endpoint := fmt.Sprintf("%s/clans/%s/members", c.baseURL, url.PathEscape(clanTag))

	var list model.ClanMemberList
	if err := c.getJSON(ctx, endpoint, &list); err != nil {
		return nil, errors.Wrapf(err, "fetching members of clan %s", clanTag)
	}
	return list.Items, nil
}

// GetPlayer fetches the detailed record of a single player.
func (c *ClashClient) GetPlayer(ctx context.Context, playerTag string) (*model.Player, error) {
	endpoint := fmt.Sprintf("%s/players/%s", c.baseURL, url.PathEscape(playerTag))

	var player model.Player
	if err := c.getJSON(ctx, endpoint, &player); err != nil {
		return nil, errors.Wrapf(err, "fetching player %s", playerTag)
	}
	return &player, nil
}

// getJSON performs a rate-limited GET with bounded retry on transient upstream
// failures and decodes the response body into out.
func (c *ClashClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.client.Do(req)
		if err != nil {
			// Connectivity and timeout errors are worth one more try.
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		switch {
		case resp.StatusCode == http.StatusOK:
			return json.NewDecoder(resp.Body).Decode(out)
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("upstream resource not found: %s", endpoint), readBody(resp.Body)))
		case resp.StatusCode == http.StatusTooManyRequests:
			logrus.Warnf("upstream rate limited on %s, backing off", endpoint)
			return apierror.NewAPIError(apierror.ErrRateLimited, "upstream rate limit hit", readBody(resp.Body))
		case resp.StatusCode >= http.StatusInternalServerError:
			return apierror.NewAPIError(apierror.ErrUpstream, fmt.Sprintf("upstream returned %d", resp.StatusCode), readBody(resp.Body))
		default:
			return backoff.Permanent(apierror.NewAPIError(apierror.ErrUpstream, fmt.Sprintf("upstream returned %d", resp.StatusCode), readBody(resp.Body)))
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxFetchRetries), ctx)
	return backoff.Retry(operation, policy)
}

func readBody(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 1024))
	if err != nil {
		return ""
	}
	return string(b)
}
