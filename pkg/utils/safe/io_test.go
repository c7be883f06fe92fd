package safe_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/WilderMartins/GRC-sub003/pkg/utils/safe"
)

type closer struct {
	called bool
	err    error
}

func (c *closer) Close() error {
	c.called = true
	return c.err
}

func TestClose(t *testing.T) {
	c := &closer{err: errors.New("already closed")}
	safe.Close(context.Background(), c)
	gt.B(t, c.called).True()

	safe.Close(context.Background(), nil)

	var called bool
	safe.Close(context.Background(), safe.CloseFunc(func() { called = true }))
	gt.B(t, called).True()
}
