// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

/*
Package supervisor runs the long-lived parts of the server under suture v4.

	RootSupervisor ("sommelier")
	├── EngineSupervisor ("engine-layer")
	│   └── RefreshService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff. Supervisor events are
logged through sutureslog, bridged to zerolog by logging.NewSlogLogger.

Example:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddEngineService(refresh)
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))
	return tree.Serve(ctx)
*/
package supervisor
