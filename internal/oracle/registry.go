package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	derr "github.com/gamesrv/driftwatch/pkg/errors"
	"github.com/gamesrv/driftwatch/pkg/protocol"
)

// RegistryClient fetches the currently published build identifier for a
// package on a distribution branch.
type RegistryClient interface {
	LatestBuild(ctx context.Context, ref protocol.PackageRef, branch string) (protocol.BuildVersion, error)
}

// HTTPRegistry queries the build registry's HTTP API.
type HTTPRegistry struct {
	base   string
	client *http.Client
}

func NewHTTPRegistry(base string, timeout time.Duration) *HTTPRegistry {
	return &HTTPRegistry{
		base:   base,
		client: &http.Client{Timeout: timeout},
	}
}

type buildResponse struct {
	BuildID string `json:"buildid"`
}

func (r *HTTPRegistry) LatestBuild(ctx context.Context, ref protocol.PackageRef, branch string) (protocol.BuildVersion, error) {
	url := fmt.Sprintf("%s/api/v1/builds/%d?branch=%s", r.base, ref.AppID, branch)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", derr.New(derr.ErrCodeRegistryFailed, "oracle.registry", "building request", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", derr.New(derr.ErrCodeRegistryFailed, "oracle.registry", "registry unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", derr.New(derr.ErrCodeRegistryFailed, "oracle.registry",
			fmt.Sprintf("registry returned %s", resp.Status), nil)
	}

	var body buildResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", derr.New(derr.ErrCodeRegistryFailed, "oracle.registry", "malformed registry response", err)
	}
	if body.BuildID == "" {
		return "", derr.New(derr.ErrCodeRegistryFailed, "oracle.registry", "registry returned empty buildid", nil)
	}
	return protocol.BuildVersion(body.BuildID), nil
}
