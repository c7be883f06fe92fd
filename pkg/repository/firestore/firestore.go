package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/WilderMartins/GRC-sub003/pkg/domain/interfaces"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = interfaces.ErrNotFound

type Firestore struct {
	client   *firestore.Client
	risk     *riskRepository
	workflow *approvalWorkflowRepository
	member   *memberRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// collections resolves collection names under an optional prefix
type collections struct {
	prefix string
}

func (c *collections) name(base string) string {
	if c.prefix != "" {
		return c.prefix + "_" + base
	}
	return base
}

func (c *collections) risks() string     { return c.name("risks") }
func (c *collections) workflows() string { return c.name("approval_workflows") }
func (c *collections) locks() string     { return c.name("approval_locks") }
func (c *collections) members() string   { return c.name("members") }

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.risk.prefix = prefix
		f.workflow.prefix = prefix
		f.member.prefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:   client,
		risk:     &riskRepository{client: client},
		workflow: &approvalWorkflowRepository{client: client},
		member:   &memberRepository{client: client},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Risk() interfaces.RiskRepository {
	return f.risk
}

func (f *Firestore) ApprovalWorkflow() interfaces.ApprovalWorkflowRepository {
	return f.workflow
}

func (f *Firestore) Member() interfaces.MemberRepository {
	return f.member
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
