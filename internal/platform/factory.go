package platform

import (
	"github.com/aretw0/manual/pkg/core"
)

// New creates a Service on the configured adapter.
//
//	svc, err := manual.New("data/processes.yaml", manual.WithAdapter("document"))
//
// Storage is not touched until the first operation; a store that cannot be
// read surfaces as core.ErrStorageUnavailable from that operation.
func New(uri string, opts ...Option) (*core.Service, error) {
	o := parseOptions(opts)

	repo, err := open(uri, o)
	if err != nil {
		return nil, err
	}

	svcOpts := []core.ServiceOption{core.WithServiceLogger(o.logger)}
	if o.seed != nil {
		svcOpts = append(svcOpts, core.WithSeed(*o.seed))
	}
	if o.registerer != nil {
		svcOpts = append(svcOpts, core.WithMetrics(o.registerer))
	}

	service, err := core.NewService(repo, svcOpts...)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	return service, nil
}
