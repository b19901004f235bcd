package probing

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/pkg/errors"
)

// ErrNoConfig is returned by ContainerEnv when inspect carries no config section.
var ErrNoConfig = errors.New("container has no config")

type DockerOptions struct {
	// Host overrides DOCKER_HOST when set.
	Host string
	// APIVersion pins the API version; empty negotiates with the daemon.
	APIVersion string
	// CallTimeout bounds each call. Zero disables the bound.
	CallTimeout time.Duration
	HTTPClient  *http.Client
}

// DockerClient implements Client with the Docker Engine SDK.
type DockerClient struct {
	api     *client.Client
	timeout time.Duration
}

func NewDockerClient(opts DockerOptions) (*DockerClient, error) {
	clientOpts := []client.Opt{client.FromEnv}
	if opts.Host != "" {
		clientOpts = append(clientOpts, client.WithHost(opts.Host))
	}
	if opts.HTTPClient != nil {
		clientOpts = append(clientOpts, client.WithHTTPClient(opts.HTTPClient))
	}
	if opts.APIVersion != "" {
		clientOpts = append(clientOpts, client.WithVersion(opts.APIVersion))
	} else {
		clientOpts = append(clientOpts, client.WithAPIVersionNegotiation())
	}

	api, err := client.NewClientWithOpts(clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "create docker client")
	}
	return &DockerClient{api: api, timeout: opts.CallTimeout}, nil
}

// NewDockerFactory returns a Factory producing DockerClients with opts.
func NewDockerFactory(opts DockerOptions) Factory {
	return func() (Client, error) {
		return NewDockerClient(opts)
	}
}

func (d *DockerClient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.timeout)
}

func (d *DockerClient) ListContainers(ctx context.Context, all bool) ([]Container, error) {
	ctx, cancel := d.callContext(ctx)
	defer cancel()

	list, err := d.api.ContainerList(ctx, container.ListOptions{All: all})
	if err != nil {
		return nil, errors.Wrapf(err, "list containers (all=%t)", all)
	}

	out := make([]Container, 0, len(list))
	for _, c := range list {
		out = append(out, Container{ID: c.ID, Names: c.Names, State: c.State})
	}
	return out, nil
}

func (d *DockerClient) ListImageIDs(ctx context.Context, danglingOnly bool) ([]string, error) {
	ctx, cancel := d.callContext(ctx)
	defer cancel()

	opts := types.ImageListOptions{}
	if danglingOnly {
		opts.All = true
		opts.Filters = filters.NewArgs(filters.Arg("dangling", "true"))
	}

	images, err := d.api.ImageList(ctx, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "list images (dangling=%t)", danglingOnly)
	}

	ids := make([]string, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.ID)
	}
	return ids, nil
}

func (d *DockerClient) ContainerEnv(ctx context.Context, id string) ([]string, error) {
	ctx, cancel := d.callContext(ctx)
	defer cancel()

	info, err := d.api.ContainerInspect(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "inspect container %s", id)
	}
	if info.Config == nil {
		return nil, errors.Wrapf(ErrNoConfig, "inspect container %s", id)
	}
	return info.Config.Env, nil
}

func (d *DockerClient) ContainerStats(ctx context.Context, id string) (io.ReadCloser, error) {
	ctx, cancel := d.callContext(ctx)

	stats, err := d.api.ContainerStatsOneShot(ctx, id)
	if err != nil {
		cancel()
		return nil, errors.Wrapf(err, "stats for container %s", id)
	}
	return &statsBody{ReadCloser: stats.Body, cancel: cancel}, nil
}

func (d *DockerClient) Ping(ctx context.Context) error {
	ctx, cancel := d.callContext(ctx)
	defer cancel()

	if _, err := d.api.Ping(ctx); err != nil {
		return errors.Wrap(err, "ping docker daemon")
	}
	return nil
}

func (d *DockerClient) Close() error {
	return d.api.Close()
}

// statsBody releases the call context together with the stream.
type statsBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *statsBody) Close() error {
	defer b.cancel()
	return b.ReadCloser.Close()
}
