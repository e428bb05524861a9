package services

import (
	"context"

	"github.com/vknys/ingot/internal/drupal"
	"github.com/vknys/ingot/internal/filesystem"
	"github.com/vknys/ingot/pkg/ingot"
)

// Gateway bundles the remote collaborators one batch needs. The default
// implementation is backed by the repository's REST API; tests substitute
// an in-memory fake.
type Gateway interface {
	// Ping verifies the host is reachable with the configured credentials.
	Ping(ctx context.Context) error

	// FetchFieldSchema retrieves the field configuration for a node bundle.
	FetchFieldSchema(ctx context.Context, bundle string) (ingot.FieldSchema, error)

	// LoadTaxonomy fetches every term of the given vocabularies.
	LoadTaxonomy(ctx context.Context, vocabularies []string) (*drupal.Snapshot, error)

	// TermCreator returns the remote term creation collaborator.
	TermCreator() ingot.TermCreator

	// EntityChecker returns the remote existence-check collaborator.
	EntityChecker() ingot.EntityChecker

	// MediaLookup returns the node-media listing collaborator.
	MediaLookup() ingot.MediaLookup

	// FileChecker returns a file accessibility checker rooted at inputDir.
	FileChecker(fs filesystem.Provider, inputDir string) ingot.FileChecker

	// Executor returns the step executor for the batch.
	Executor(config ingot.BatchConfig, logger ingot.Logger) ingot.StepExecutor

	// Close releases the gateway's resources.
	Close() error
}

// GatewayFactory opens a gateway for one batch run.
type GatewayFactory func(config ingot.BatchConfig, logger ingot.Logger) Gateway

// drupalGateway adapts the REST client to the Gateway interface.
type drupalGateway struct {
	client *drupal.Client
}

// NewDrupalGateway is the production GatewayFactory.
func NewDrupalGateway(config ingot.BatchConfig, logger ingot.Logger) Gateway {
	return &drupalGateway{client: drupal.NewClient(config, logger)}
}

func (g *drupalGateway) Ping(ctx context.Context) error {
	return g.client.Ping(ctx)
}

func (g *drupalGateway) FetchFieldSchema(ctx context.Context, bundle string) (ingot.FieldSchema, error) {
	return g.client.FetchFieldSchema(ctx, bundle)
}

func (g *drupalGateway) LoadTaxonomy(ctx context.Context, vocabularies []string) (*drupal.Snapshot, error) {
	return g.client.LoadTaxonomy(ctx, vocabularies)
}

func (g *drupalGateway) TermCreator() ingot.TermCreator {
	return g.client
}

func (g *drupalGateway) EntityChecker() ingot.EntityChecker {
	return g.client
}

func (g *drupalGateway) MediaLookup() ingot.MediaLookup {
	return g.client.MediaIDsForNode
}

func (g *drupalGateway) FileChecker(fs filesystem.Provider, inputDir string) ingot.FileChecker {
	return drupal.NewFileChecker(fs, g.client, inputDir)
}

func (g *drupalGateway) Executor(config ingot.BatchConfig, logger ingot.Logger) ingot.StepExecutor {
	return drupal.NewExecutor(g.client, config, logger)
}

func (g *drupalGateway) Close() error {
	return g.client.Close()
}
