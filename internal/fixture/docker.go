// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

// Package fixture runs the storage backends under test in ephemeral
// containers and wires the harness core to them. Each fixture owns one
// session handle, created in Start and closed in Stop; there is no
// ambient global state.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"go.uber.org/zap"
)

// ErrBackendUnavailable means the backend could not be reached at
// setup. Tests treat it as an environment problem and skip, not fail.
var ErrBackendUnavailable = errors.New("storage backend unavailable")

const healthWaitInterval = 100 * time.Millisecond

func newDockerClient() (*client.Client, error) {
	return client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
}

// startContainer pulls the image if needed, starts a container with
// the given port published on the loopback interface, waits for it to
// report healthy, and returns the container ID and mapped host port.
func startContainer(ctx context.Context, cli *client.Client, logger *zap.Logger, imageRef string, port nat.Port) (string, string, error) {
	if err := pullIfAbsent(ctx, cli, imageRef); err != nil {
		return "", "", err
	}

	created, err := cli.ContainerCreate(ctx,
		&container.Config{
			Image:        imageRef,
			ExposedPorts: nat.PortSet{port: struct{}{}},
		},
		&container.HostConfig{
			PortBindings: nat.PortMap{
				port: []nat.PortBinding{{HostIP: "127.0.0.1"}},
			},
			AutoRemove: false,
		},
		nil, nil, "")
	if err != nil {
		return "", "", fmt.Errorf("create container: %w", err)
	}
	id := created.ID

	if err := cli.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		removeContainer(context.WithoutCancel(ctx), cli, logger, id)
		return "", "", fmt.Errorf("start container: %w", err)
	}
	logger.Info("Started container", zap.String("image", imageRef), zap.String("id", id[:12]))

	hostPort, err := waitRunning(ctx, cli, id, port)
	if err != nil {
		removeContainer(context.WithoutCancel(ctx), cli, logger, id)
		return "", "", err
	}
	return id, hostPort, nil
}

func pullIfAbsent(ctx context.Context, cli *client.Client, imageRef string) error {
	if _, _, err := cli.ImageInspectWithRaw(ctx, imageRef); err == nil {
		return nil
	}
	rc, err := cli.ImagePull(ctx, imageRef, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("pull %s: %w", imageRef, err)
	}
	defer rc.Close()
	// The pull completes when the progress stream is drained.
	_, err = io.Copy(io.Discard, rc)
	return err
}

// waitRunning polls container state until the image's healthcheck
// reports healthy (or, for images without one, until the container is
// running) and the port mapping is published.
func waitRunning(ctx context.Context, cli *client.Client, id string, port nat.Port) (string, error) {
	hostPort, err := backoff.Retry(ctx, func() (string, error) {
		info, err := cli.ContainerInspect(ctx, id)
		if err != nil {
			return "", backoff.Permanent(err)
		}
		if info.State == nil || !info.State.Running {
			return "", backoff.Permanent(fmt.Errorf("container %s is not running", id[:12]))
		}
		if h := info.State.Health; h != nil && h.Status != container.Healthy {
			return "", fmt.Errorf("container health is %q", h.Status)
		}
		bindings := info.NetworkSettings.Ports[port]
		if len(bindings) == 0 || bindings[0].HostPort == "" {
			return "", fmt.Errorf("port %s not published yet", port)
		}
		return bindings[0].HostPort, nil
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(healthWaitInterval)),
		backoff.WithMaxElapsedTime(3*time.Minute),
	)
	if err != nil {
		return "", fmt.Errorf("wait for container: %w", err)
	}
	return hostPort, nil
}

func removeContainer(ctx context.Context, cli *client.Client, logger *zap.Logger, id string) {
	err := cli.ContainerRemove(ctx, id, container.RemoveOptions{
		Force:         true,
		RemoveVolumes: true,
	})
	if err != nil {
		logger.Warn("Failed to remove container", zap.String("id", id[:12]), zap.Error(err))
	}
}
