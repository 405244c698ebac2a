package EVMRPC

import (
	"context"
	"errors"
	"fmt"

	"btsbridge/config"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

var ErrNoEndpoint = errors.New("no RPC endpoint reachable")

// Dial returns a client for the first endpoint of the list that answers.
// Only connection establishment fails over, calls made on the returned
// client are never resent to another endpoint.
func Dial(ctx context.Context, network config.NetworkConfig) (*ethclient.Client, error) {
	var lastErr error
	for _, url := range network.RPCList {
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			zap.S().Warnf("Error connecting to %s: %s", url, err.Error())
			lastErr = err
			continue
		}
		// http endpoints dial lazily, make sure this one is alive
		if _, err := client.ChainID(ctx); err != nil {
			zap.S().Warnf("Error querying chain id on %s: %s", url, err.Error())
			client.Close()
			lastErr = err
			continue
		}
		return client, nil
	}
	if lastErr == nil {
		return nil, ErrNoEndpoint
	}
	return nil, fmt.Errorf("%w: %s", ErrNoEndpoint, lastErr)
}

// WithClient runs a read-only query, moving on to the next endpoint when one fails.
// Never use it for state-changing calls.
func WithClient[T any](network config.NetworkConfig, f func(client *ethclient.Client) (T, error)) (res T, err error) {
	err = ErrNoEndpoint
	var client *ethclient.Client
	for _, url := range network.RPCList {
		client, err = ethclient.Dial(url)
		if err != nil {
			zap.S().Warnf("Error connecting to %s: %s", url, err.Error())
			continue
		}

		res, err = f(client)
		client.Close()
		if err == nil {
			return
		}
	}
	return
}
