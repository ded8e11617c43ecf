package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShutdownClosesStoresLast(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, name)
	}
	stops := []stopFunc{
		func(context.Context) error {
			time.Sleep(20 * time.Millisecond)
			record("worker")
			return nil
		},
		func(context.Context) error {
			record("http")
			return nil
		},
	}
	closeStores := func(context.Context) error {
		record("stores")
		return nil
	}

	err := shutdown(context.Background(), stops, closeStores)
	assert.NoError(t, err)
	assert.Len(t, order, 3)
	assert.Equal(t, "stores", order[len(order)-1])
}

func TestShutdownJoinsErrors(t *testing.T) {
	errWorker := errors.New("worker did not stop")
	errStores := errors.New("close redis")
	err := shutdown(context.Background(),
		[]stopFunc{func(context.Context) error { return errWorker }},
		func(context.Context) error { return errStores })
	assert.ErrorIs(t, err, errWorker)
	assert.ErrorIs(t, err, errStores)
}
