//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/sync/errgroup"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/interfaces"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/model"
	"github.com/WilderMartins/GRC-sub003/pkg/domain/types"
	"github.com/WilderMartins/GRC-sub003/pkg/repository/postgres"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) *postgres.Postgres {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	gt.NoError(t, err).Required()
	port, err := container.MappedPort(ctx, "5432")
	gt.NoError(t, err).Required()

	repo, err := postgres.New(ctx, &postgres.PoolConfig{
		ConnString: fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port()),
	})
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = repo.Close() })

	gt.NoError(t, repo.Migrate(ctx)).Required()
	// second run must be a no-op
	gt.NoError(t, repo.Migrate(ctx)).Required()

	return repo
}

func TestIntegration_ConcurrentApproval(t *testing.T) {
	ctx := context.Background()
	repo := setupPostgresContainer(t, ctx)
	now := time.Now().UTC().Truncate(time.Microsecond)

	risk := &model.Risk{
		ID:             types.NewRiskID(),
		OrganizationID: "org-1",
		Title:          "legacy payroll system",
		Category:       types.RiskCategoryTechnological,
		Impact:         types.SeverityHigh,
		Probability:    types.SeverityHigh,
		Level:          types.SeverityCritical,
		Status:         types.RiskStatusOpen,
		OwnerID:        "owner-1",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	_, err := repo.Risk().Create(ctx, risk)
	gt.NoError(t, err).Required()

	const workers = 8

	var created atomic.Int32
	var winner atomic.Value
	var eg errgroup.Group
	for i := 0; i < workers; i++ {
		eg.Go(func() error {
			wf, err := repo.ApprovalWorkflow().CreatePending(ctx, model.NewApprovalWorkflow(risk, "manager-1", now))
			if errors.Is(err, interfaces.ErrPendingExists) {
				return nil
			}
			if err != nil {
				return err
			}
			created.Add(1)
			winner.Store(wf.ID)
			return nil
		})
	}
	gt.NoError(t, eg.Wait()).Required()
	gt.Number(t, created.Load()).Equal(1)

	wfID := winner.Load().(types.WorkflowID)

	var decided atomic.Int32
	var eg2 errgroup.Group
	for i := 0; i < workers; i++ {
		status := types.WorkflowStatusApproved
		if i%2 == 1 {
			status = types.WorkflowStatusRejected
		}
		eg2.Go(func() error {
			d := model.NewDecision(wfID, status, "", now.Add(time.Minute))
			_, err := repo.ApprovalWorkflow().Decide(ctx, "org-1", d)
			if errors.Is(err, interfaces.ErrNotPending) {
				return nil
			}
			if err != nil {
				return err
			}
			decided.Add(1)
			return nil
		})
	}
	gt.NoError(t, eg2.Wait()).Required()
	gt.Number(t, decided.Load()).Equal(1)

	wf, err := repo.ApprovalWorkflow().Get(ctx, "org-1", wfID)
	gt.NoError(t, err).Required()
	gotRisk, err := repo.Risk().Get(ctx, "org-1", risk.ID)
	gt.NoError(t, err).Required()

	if wf.Status == types.WorkflowStatusApproved {
		gt.Value(t, gotRisk.Status).Equal(types.RiskStatusAccepted)
	} else {
		gt.Value(t, gotRisk.Status).Equal(types.RiskStatusOpen)
	}

	// the risk is free for a new cycle once decided
	_, err = repo.ApprovalWorkflow().CreatePending(ctx, model.NewApprovalWorkflow(risk, "manager-1", now.Add(2*time.Minute)))
	gt.NoError(t, err)
}
