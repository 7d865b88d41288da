package partner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"adrelay/internal/core/identity"
	perr "adrelay/internal/platform/errors"
)

// ListAudiences fetches one page of the audience catalog. Transient
// statuses are retried with backoff
func (c *Client) ListAudiences(ctx context.Context, page, pageSize int) (AudiencePage, error) {
	path := fmt.Sprintf("/audiences?page=%d&page_size=%d", page, pageSize)
	resp, err := c.Do(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return AudiencePage{}, err
	}
	defer c.closeBody(resp, path)

	var out AudiencePage
	if err := decode(resp.Body, &out); err != nil {
		return AudiencePage{}, perr.Wrapf(err, perr.ErrorCodeJSON, "partner list audiences decode")
	}
	return out, nil
}

// CreateAudience registers a new audience under name and returns its id.
// Creation is not idempotent at the partner so only transient statuses
// are retried
func (c *Client) CreateAudience(ctx context.Context, name string, idType identity.Type) (string, error) {
	body, err := json.Marshal(createRequest{Name: name, IDType: idType.String(), Action: "create"})
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeJSON, "partner create audience encode")
	}
	resp, err := c.Do(ctx, http.MethodPost, "/audiences", body, true)
	if err != nil {
		return "", err
	}
	defer c.closeBody(resp, "/audiences")

	var out createResponse
	if err := decode(resp.Body, &out); err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeJSON, "partner create audience decode")
	}
	if out.Data.AudienceID == "" {
		return "", perr.Newf(perr.ErrorCodeUpstream, "partner create audience returned no id")
	}
	return out.Data.AudienceID, nil
}

// MutateMembers sends one membership mutation batch. Non-2xx responses
// are returned as *StatusError without retrying so the caller can
// classify them against the invocation's create history
func (c *Client) MutateMembers(ctx context.Context, req MutationRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "partner mutation encode")
	}
	resp, err := c.Do(ctx, http.MethodPost, "/audience_mutations", body, false)
	if err != nil {
		return err
	}
	// body is advisory on success
	drainAndClose(resp.Body)
	return nil
}

func (c *Client) closeBody(resp *http.Response, path string) {
	if cerr := resp.Body.Close(); cerr != nil {
		c.log.Error().Err(cerr).Str("path", path).Msg("partner close body failed")
	}
}

func decode(r io.Reader, out any) error {
	b, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
