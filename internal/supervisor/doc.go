// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

/*
Package supervisor provides the process supervision tree built on
thejerf/suture v4.

Tree layout:

	storyline (root)
	├── data-layer
	│   └── taxonomy-refresh
	└── api-layer
	    └── http-server

Failed services are restarted with suture's backoff. Supervisor events are
logged through zerolog by way of sutureslog and logging.NewSlogLogger.

Usage:

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(logging.Logger()), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewTaxonomyRefreshService(resolver, interval, logger))
	tree.AddAPIService(services.NewHTTPServerService(srv, shutdownTimeout, logger))
	err := tree.Serve(ctx)

Service wrappers live in the services subpackage.
*/
package supervisor
