// Package adminclient provides the primary entry point for constructing an
// admin API client that implements the adminapi.Client interface.
//
// It layers configuration, HTTP transport and authentication on top of the
// resource interfaces and types defined in the adminapi package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/adminapi-client/pkg/adminapi"
//	  "github.com/fivetwenty-io/adminapi-client/pkg/adminclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // With an access token you already have:
//	  cli, err := adminclient.New(ctx, &adminapi.Config{
//	    APIEndpoint: "https://api.example.com/api/v1",
//	    AccessToken: "eyJhbGciOi...",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  user, err := cli.Users().Get(ctx, "1")
//	  if adminapi.IsNotFound(err) { /* ... */ }
//	  _ = user
//	}
//
// Retries are off by default; set Config.RetryMax to retry 5xx, 429 and
// connection failures with exponential backoff.
package adminclient
