// Package probing talks to the container runtime.
package probing

import (
	"context"
	"io"
)

// Container is one entry of a container listing.
type Container struct {
	ID    string
	Names []string
	State string
}

// Client is the set of runtime calls a collection cycle needs.
type Client interface {
	// ListContainers lists running containers, or every container when all is set.
	ListContainers(ctx context.Context, all bool) ([]Container, error)
	// ListImageIDs lists image ids, restricted to dangling images when danglingOnly is set.
	ListImageIDs(ctx context.Context, danglingOnly bool) ([]string, error)
	// ContainerEnv returns the container's environment as KEY=VALUE entries.
	ContainerEnv(ctx context.Context, id string) ([]string, error)
	// ContainerStats opens a one-shot stats stream. The caller closes it.
	ContainerStats(ctx context.Context, id string) (io.ReadCloser, error)
	Ping(ctx context.Context) error
	Close() error
}

// Factory builds a fresh client; a cycle owns the client it gets.
type Factory func() (Client, error)
