// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the OpenCircle API.

	mux := router.NewRouter(db, cfg, engine, metricService)

# Endpoints

	GET    /health
	GET    /metrics
	POST   /users/register
	GET    /users/me
	POST   /channels
	POST   /channels/{id}/members
	POST   /posts
	GET    /posts/{id}
	DELETE /posts/{id}
	GET    /posts/{id}/comments/summary
	GET    /posts/{postId}/poll
	POST   /polls
	GET    /polls/{id}
	DELETE /polls/{id}
	POST   /polls/{id}/vote
	PUT    /polls/{id}/vote
	GET    /polls/{id}/results

All handlers share one polls.Engine so metrics and the duplicate vote policy
are consistent across routes.
*/
package router
