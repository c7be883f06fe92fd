package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/WilderMartins/GRC-sub003/pkg/usecase"
)

func TestStatusOf(t *testing.T) {
	testCases := []struct {
		err  error
		want int
	}{
		{err: goerr.Wrap(usecase.ErrInsufficientRole, "x"), want: http.StatusForbidden},
		{err: goerr.Wrap(usecase.ErrNotApprover, "x"), want: http.StatusForbidden},
		{err: goerr.Wrap(usecase.ErrRiskHasNoOwner, "x"), want: http.StatusBadRequest},
		{err: goerr.Wrap(usecase.ErrInvalidInput, "x"), want: http.StatusBadRequest},
		{err: goerr.Wrap(errBadRequest, "x"), want: http.StatusBadRequest},
		{err: goerr.Wrap(usecase.ErrWorkflowNotFound, "x"), want: http.StatusNotFound},
		{err: goerr.Wrap(usecase.ErrApprovalPending, "x"), want: http.StatusConflict},
		{err: goerr.Wrap(usecase.ErrAlreadyDecided, "x"), want: http.StatusConflict},
		{err: errors.New("connection reset"), want: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			gt.Number(t, statusOf(tc.err)).Equal(tc.want)
		})
	}
}
